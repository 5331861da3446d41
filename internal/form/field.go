package form

import (
	"time"

	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
)

// Kind is the data kind of a field.
type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindDate      Kind = "date"
	KindTime      Kind = "time"
	KindEnum      Kind = "enum"
	KindTextList  Kind = "text-list"
	KindLineItems Kind = "line-items"
)

// IsList reports whether the kind holds repeatable rows.
func (k Kind) IsList() bool {
	return k == KindTextList || k == KindLineItems
}

// Mode selects how a form instance is initialised.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Bound is a lower bound on a numeric field.
type Bound struct {
	Value     float64 `json:"value"`
	Exclusive bool    `json:"exclusive"`
}

// AtLeast returns an inclusive lower bound.
func AtLeast(v float64) *Bound {
	return &Bound{Value: v}
}

// GreaterThan returns an exclusive lower bound.
func GreaterThan(v float64) *Bound {
	return &Bound{Value: v, Exclusive: true}
}

// Default produces the create-mode value of a field.
type Default func(now time.Time) any

// Today defaults a date field to the current day.
func Today(now time.Time) any {
	return now.Format(calc.DateLayout)
}

// OneRow seeds a list field with a single empty row. It is resolved against
// the field kind by Init.
func OneRow(time.Time) any {
	return oneRow{}
}

type oneRow struct{}

// Literal defaults a field to a fixed value.
func Literal(v any) Default {
	return func(time.Time) any { return v }
}

// Field describes one input of a form.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Min      *Bound   `json:"min,omitempty"`
	Options  []string `json:"options,omitempty"`
	Lookup   string   `json:"lookup,omitempty"` // reference data kind feeding the options
	Pattern  string   `json:"pattern,omitempty"`
	Derived  bool     `json:"derived"`
	Default  Default  `json:"-"`
}

// zero returns the empty value of the field kind.
func (f Field) zero() any {
	switch f.Kind {
	case KindNumber:
		return 0.0
	case KindTextList:
		return []string{}
	case KindLineItems:
		return []entity.LineItem{}
	default:
		return ""
	}
}

// emptyRow returns a blank row for a list field.
func (f Field) emptyRow(id string) any {
	if f.Kind == KindLineItems {
		return entity.LineItem{ID: id}
	}
	return ""
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
