// Package form is the computation and validation engine shared by every ERP
// form. A Model is a closed schema of typed fields plus the derivations that
// compute read-only fields from editable ones. Validate checks a set of
// Values against a Model, and a Controller owns the values of one form
// instance, recomputes derived fields as inputs change, and hands validated
// values to an injected Submitter.
package form
