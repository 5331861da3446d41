// Package forms defines the ERP form catalogue: one closed form.Model per
// form type, with its derivations and cross-field rules.
package forms

import (
	"errors"
	"fmt"
	"sort"

	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/form"
)

// ErrUnknownForm is returned when a form name is not in the catalogue.
var ErrUnknownForm = errors.New("unknown form")

// Settings carries the tunable business constants used by the derivations.
type Settings struct {
	TaxRate             float64
	StandardWorkDay     float64
	DefaultPaymentTerms int
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		TaxRate:             calc.DefaultTaxRate,
		StandardWorkDay:     calc.StandardWorkDay,
		DefaultPaymentTerms: 30,
	}
}

// Registry holds the models of every form type.
type Registry struct {
	settings Settings
	models   map[string]*form.Model
}

// NewRegistry builds the catalogue for the given settings.
func NewRegistry(s Settings) *Registry {
	if s.TaxRate < 0 {
		s.TaxRate = calc.DefaultTaxRate
	}
	if s.StandardWorkDay <= 0 {
		s.StandardWorkDay = calc.StandardWorkDay
	}
	if s.DefaultPaymentTerms < 0 {
		s.DefaultPaymentTerms = 0
	}

	r := &Registry{settings: s, models: make(map[string]*form.Model)}
	for _, m := range []*form.Model{
		invoiceModel(s),
		payrollModel(),
		attendanceModel(s),
		leaveModel(),
		accountModel(),
		transactionModel(),
		jobPostingModel(),
	} {
		r.models[m.Name] = m
	}
	return r
}

// Settings returns the settings the registry was built with.
func (r *Registry) Settings() Settings {
	return r.settings
}

// Get returns the model for a form name.
func (r *Registry) Get(name string) (*form.Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}
	return m, nil
}

// Names lists the form names in the catalogue, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models lists every model, sorted by name.
func (r *Registry) Models() []*form.Model {
	out := make([]*form.Model, 0, len(r.models))
	for _, name := range r.Names() {
		out = append(out, r.models[name])
	}
	return out
}
