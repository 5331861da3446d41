package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/pkg/utils"
)

// Choice is one selectable entry of a lookup.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Lookup is the state of the reference data behind a select field, as
// reported by the list-fetch collaborator.
type Lookup struct {
	Items   []Choice `json:"items"`
	Loading bool     `json:"loading"`
}

// Has reports whether value is one of the loaded items.
func (l Lookup) Has(value string) bool {
	for _, item := range l.Items {
		if item.Value == value {
			return true
		}
	}
	return false
}

// Lookups maps a field name to its lookup state.
type Lookups map[string]Lookup

// Validate checks values against the model and returns every problem found.
// The returned map is never nil and is empty when the values are valid.
// Derived fields are not checked. Validate does not modify values.
func Validate(m *Model, v Values, lookups Lookups) ErrorMap {
	errs := make(ErrorMap)
	for _, f := range m.Fields {
		if f.Derived {
			continue
		}
		if msg := validateField(m, f, v[f.Name], lookups); msg != "" {
			errs[f.Name] = msg
		}
	}
	for _, rule := range m.Rules {
		field, msg := rule(v)
		if msg == "" {
			continue
		}
		if _, taken := errs[field]; !taken {
			errs[field] = msg
		}
	}
	return errs
}

func validateField(m *Model, f Field, raw any, lookups Lookups) string {
	label := f.label()

	switch f.Kind {
	case KindNumber:
		if isBlank(raw) {
			if f.Required {
				return label + " is required"
			}
			return ""
		}
		n, ok := calc.ParseNumberStrict(raw)
		if !ok {
			return label + " must be a number"
		}
		if f.Min != nil {
			if f.Min.Exclusive && n <= f.Min.Value {
				return fmt.Sprintf("%s must be greater than %s", label, formatBound(f.Min.Value))
			}
			if !f.Min.Exclusive && n < f.Min.Value {
				return fmt.Sprintf("%s must be at least %s", label, formatBound(f.Min.Value))
			}
		}
		return ""

	case KindTextList:
		list, _ := raw.([]string)
		if f.Required && countFilled(list) == 0 {
			return label + " needs at least one entry"
		}
		return ""

	case KindLineItems:
		return validateItems(label, raw)
	}

	s, _ := raw.(string)
	if utils.IsBlank(s) {
		if f.Required {
			return label + " is required"
		}
		return ""
	}

	switch f.Kind {
	case KindDate:
		if _, err := time.Parse(calc.DateLayout, s); err != nil {
			return label + " must be a valid date"
		}
	case KindTime:
		if NormalizeTime(s) != s {
			return label + " must be a time in HH:MM format"
		}
	case KindEnum:
		if len(f.Options) > 0 && !contains(f.Options, s) {
			return fmt.Sprintf("%s must be one of: %s", label, strings.Join(f.Options, ", "))
		}
	}

	if f.Lookup != "" {
		if l, ok := lookups[f.Name]; ok && !l.Loading && !l.Has(s) {
			return label + " is not a valid choice"
		}
	}
	if re, ok := m.patterns[f.Name]; ok && !re.MatchString(s) {
		return label + " has an invalid format"
	}
	return ""
}

var tooLarge = fmt.Sprintf("Line item amounts must not exceed %s", formatBound(calc.MaxAmount))

// validateItems reports a single list-level message when any row is
// incomplete.
func validateItems(label string, raw any) string {
	items, err := coerceItems(raw)
	if err != nil {
		return label + " are invalid"
	}
	rows := items.([]entity.LineItem)
	if len(rows) == 0 {
		return "At least one line item is required"
	}
	for _, item := range rows {
		if utils.IsBlank(item.Description) || item.Quantity <= 0 || item.UnitPrice <= 0 {
			return "Every line item needs a description, and a quantity and unit price greater than 0"
		}
		if amount, ok := calc.LineAmount(item.Quantity, item.UnitPrice); !ok || amount > calc.MaxAmount {
			return tooLarge
		}
	}
	if _, totals := calc.Invoice(rows, 0); totals.Subtotal > calc.MaxAmount {
		return tooLarge
	}
	return ""
}

func isBlank(raw any) bool {
	switch s := raw.(type) {
	case nil:
		return true
	case string:
		return utils.IsBlank(s)
	}
	return false
}

func countFilled(list []string) int {
	n := 0
	for _, s := range list {
		if !utils.IsBlank(s) {
			n++
		}
	}
	return n
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
