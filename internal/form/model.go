package form

import (
	"fmt"
	"regexp"
)

// Derivation computes one or more derived fields from a declared set of
// inputs. Compute receives a snapshot of the values and returns the outputs
// it could compute; an output missing from the result is left unset.
type Derivation struct {
	Inputs  []string
	Outputs []string
	Compute func(v Values) Values
}

// Rule is a cross-field check. It returns the field to blame and a message,
// or empty strings when the values satisfy it.
type Rule func(v Values) (field, message string)

// Model is the closed schema of one form type.
type Model struct {
	Name        string
	Title       string
	Fields      []Field
	Derivations []Derivation
	Rules       []Rule

	index    map[string]int
	patterns map[string]*regexp.Regexp
}

// NewModel checks the schema and indexes it. Field names must be unique,
// derivations may only reference known fields, every derivation output must
// be a derived field, and every derived field must be produced by a
// derivation.
func NewModel(name, title string, fields []Field, derivations []Derivation, rules ...Rule) (*Model, error) {
	m := &Model{
		Name:        name,
		Title:       title,
		Fields:      fields,
		Derivations: derivations,
		Rules:       rules,
		index:       make(map[string]int, len(fields)),
		patterns:    make(map[string]*regexp.Regexp),
	}

	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w %s: field %d has no name", ErrInvalidModel, name, i)
		}
		if _, dup := m.index[f.Name]; dup {
			return nil, fmt.Errorf("%w %s: duplicate field %q", ErrInvalidModel, name, f.Name)
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w %s: field %q pattern: %v", ErrInvalidModel, name, f.Name, err)
			}
			m.patterns[f.Name] = re
		}
		m.index[f.Name] = i
	}

	produced := make(map[string]bool)
	for i, d := range derivations {
		if d.Compute == nil {
			return nil, fmt.Errorf("%w %s: derivation %d has no compute function", ErrInvalidModel, name, i)
		}
		for _, in := range d.Inputs {
			if _, ok := m.index[in]; !ok {
				return nil, fmt.Errorf("%w %s: derivation %d reads unknown field %q", ErrInvalidModel, name, i, in)
			}
		}
		for _, out := range d.Outputs {
			f, ok := m.Field(out)
			if !ok {
				return nil, fmt.Errorf("%w %s: derivation %d writes unknown field %q", ErrInvalidModel, name, i, out)
			}
			if !f.Derived {
				return nil, fmt.Errorf("%w %s: derivation %d writes editable field %q", ErrInvalidModel, name, i, out)
			}
			produced[out] = true
		}
	}
	for _, f := range fields {
		if f.Derived && !produced[f.Name] {
			return nil, fmt.Errorf("%w %s: derived field %q has no derivation", ErrInvalidModel, name, f.Name)
		}
	}

	return m, nil
}

// MustModel is like NewModel but panics on an invalid schema. It is meant for
// package-level form definitions.
func MustModel(name, title string, fields []Field, derivations []Derivation, rules ...Rule) *Model {
	m, err := NewModel(name, title, fields, derivations, rules...)
	if err != nil {
		panic(err)
	}
	return m
}

// Field looks up a field by name.
func (m *Model) Field(name string) (Field, bool) {
	i, ok := m.index[name]
	if !ok {
		return Field{}, false
	}
	return m.Fields[i], true
}

// Recompute runs every derivation that depends on changed, then every
// derivation that depends on the fields those wrote, until nothing is left.
// Each derivation runs at most once per call.
func (m *Model) Recompute(v Values, changed ...string) {
	queue := append([]string(nil), changed...)
	ran := make([]bool, len(m.Derivations))

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for i, d := range m.Derivations {
			if ran[i] || !contains(d.Inputs, name) {
				continue
			}
			ran[i] = true
			m.apply(d, v)
			queue = append(queue, d.Outputs...)
		}
	}
}

// RecomputeAll runs every derivation in declaration order.
func (m *Model) RecomputeAll(v Values) {
	for _, d := range m.Derivations {
		m.apply(d, v)
	}
}

func (m *Model) apply(d Derivation, v Values) {
	out := d.Compute(v.Clone())
	for _, name := range d.Outputs {
		if val, ok := out[name]; ok {
			v[name] = val
		} else {
			v[name] = nil
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
