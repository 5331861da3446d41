package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/pkg/utils"
)

// Values is the current state of one form instance, keyed by field name.
// Values are stored normalised by kind: string for text, date, time and
// enum fields; float64 for numbers (or the raw string when it cannot be
// read, so validation can report it); []string for text lists; and
// []entity.LineItem for line items. Derived fields may hold nil while their
// inputs are incomplete.
type Values map[string]any

// Text returns a string field, or "" when absent.
func (v Values) Text(name string) string {
	switch s := v[name].(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// Number returns a numeric field, coercing unreadable input to 0.
func (v Values) Number(name string) float64 {
	return calc.ParseNumber(v[name])
}

// List returns a text-list field.
func (v Values) List(name string) []string {
	list, _ := v[name].([]string)
	return list
}

// Items returns a line-items field.
func (v Values) Items(name string) []entity.LineItem {
	items, _ := v[name].([]entity.LineItem)
	return items
}

// Clone returns a deep copy; list fields do not share backing arrays.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		switch typed := val.(type) {
		case []string:
			out[k] = append(make([]string, 0, len(typed)), typed...)
		case []entity.LineItem:
			out[k] = append(make([]entity.LineItem, 0, len(typed)), typed...)
		default:
			out[k] = typed
		}
	}
	return out
}

// coerce normalises a raw input value for a field.
func coerce(f Field, raw any) (any, error) {
	switch f.Kind {
	case KindNumber:
		return coerceNumber(raw)
	case KindTextList:
		return coerceList(raw)
	case KindLineItems:
		return coerceItems(raw)
	case KindDate:
		if raw == nil {
			return "", nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a date", ErrInvalidValue, f.Name)
		}
		if norm := NormalizeDate(s); norm != "" {
			return norm, nil
		}
		return strings.TrimSpace(s), nil
	case KindTime:
		if raw == nil {
			return "", nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a time", ErrInvalidValue, f.Name)
		}
		if norm := NormalizeTime(s); norm != "" {
			return norm, nil
		}
		return strings.TrimSpace(s), nil
	default:
		switch s := raw.(type) {
		case nil:
			return "", nil
		case string:
			return utils.SanitizeString(s), nil
		case float64, int, int64, bool:
			return fmt.Sprint(s), nil
		default:
			return nil, fmt.Errorf("%w: %s expects text", ErrInvalidValue, f.Name)
		}
	}
}

func coerceNumber(raw any) (any, error) {
	switch n := raw.(type) {
	case nil:
		return 0.0, nil
	case string:
		if f, ok := calc.ParseNumberStrict(n); ok {
			return f, nil
		}
		return strings.TrimSpace(n), nil
	case float64, float32, int, int64, int32:
		return calc.ParseNumber(n), nil
	default:
		return nil, fmt.Errorf("%w: expected a number, got %T", ErrInvalidValue, raw)
	}
}

func coerceList(raw any) (any, error) {
	switch list := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		out := make([]string, len(list))
		for i, s := range list {
			out[i] = utils.SanitizeString(s)
		}
		return out, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, err := coerceRowText(item)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrInvalidValue, raw)
	}
}

func coerceRowText(raw any) (string, error) {
	switch s := raw.(type) {
	case nil:
		return "", nil
	case string:
		return utils.SanitizeString(s), nil
	case float64, int, int64:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("%w: expected text, got %T", ErrInvalidValue, raw)
	}
}

func coerceItems(raw any) (any, error) {
	switch list := raw.(type) {
	case nil:
		return []entity.LineItem{}, nil
	case []entity.LineItem:
		out := make([]entity.LineItem, len(list))
		for i, item := range list {
			out[i] = normalizeItem(item, i)
		}
		return out, nil
	case []any:
		out := make([]entity.LineItem, len(list))
		for i, row := range list {
			item, err := mergeItem(entity.LineItem{}, row)
			if err != nil {
				return nil, err
			}
			out[i] = normalizeItem(item, i)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected line items, got %T", ErrInvalidValue, raw)
	}
}

// mergeItem overlays a raw row onto an existing line item. A map only
// replaces the keys it carries. Amount is ignored; it is always derived.
func mergeItem(base entity.LineItem, raw any) (entity.LineItem, error) {
	switch row := raw.(type) {
	case entity.LineItem:
		return row, nil
	case map[string]any:
		if id, ok := row["id"]; ok {
			base.ID = fmt.Sprint(id)
		}
		if desc, ok := row["description"]; ok {
			s, err := coerceRowText(desc)
			if err != nil {
				return base, err
			}
			base.Description = s
		}
		if q, ok := row["quantity"]; ok {
			base.Quantity = calc.ParseNumber(q)
		}
		for _, key := range []string{"unit_price", "unitPrice"} {
			if p, ok := row[key]; ok {
				base.UnitPrice = calc.ParseNumber(p)
			}
		}
		return base, nil
	default:
		return base, fmt.Errorf("%w: expected a line item, got %T", ErrInvalidValue, raw)
	}
}

func normalizeItem(item entity.LineItem, index int) entity.LineItem {
	if item.ID == "" {
		item.ID = rowID(index)
	}
	item.Description = utils.SanitizeString(item.Description)
	item.Amount, _ = calc.LineAmount(item.Quantity, item.UnitPrice)
	return item
}

func rowID(index int) string {
	return strconv.Itoa(index + 1)
}

// nextRowID returns an id one past the largest numeric row id in use.
func nextRowID(items []entity.LineItem) string {
	max := 0
	for _, item := range items {
		if n, err := strconv.Atoi(item.ID); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}
