// Package calc holds the pure calculators behind the derived fields of the
// ERP forms: invoice totals and due dates, payroll gross-to-net, attendance
// hours, and leave day counts. Every function is deterministic and safe to
// call on every input change.
package calc
