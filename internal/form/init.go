package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
)

var (
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::\d{1,2})?$`)
	durationPattern = regexp.MustCompile(`^(\d{1,2})\s*h(?:\s*(\d{1,2})\s*m)?$`)
)

// Init builds the initial values of a form instance. In create mode every
// field takes its default. In edit mode fields are read from record and fall
// back to the create default when absent or malformed. Derived fields are
// computed before returning, so the snapshot is always consistent.
func Init(m *Model, mode Mode, record map[string]any, now time.Time) Values {
	v := make(Values, len(m.Fields))
	for _, f := range m.Fields {
		v[f.Name] = defaultValue(f, now)
		if mode != ModeEdit || f.Derived {
			continue
		}
		raw, ok := record[f.Name]
		if !ok || raw == nil {
			continue
		}
		if val, ok := hydrate(f, raw); ok {
			v[f.Name] = val
		}
	}
	m.RecomputeAll(v)
	return v
}

func defaultValue(f Field, now time.Time) any {
	if f.Default == nil {
		return f.zero()
	}
	val := f.Default(now)
	if _, seed := val.(oneRow); seed {
		if f.Kind == KindLineItems {
			return []entity.LineItem{f.emptyRow(rowID(0)).(entity.LineItem)}
		}
		if f.Kind == KindTextList {
			return []string{""}
		}
		return f.zero()
	}
	if coerced, err := coerce(f, val); err == nil {
		return coerced
	}
	return f.zero()
}

// hydrate reads one stored value. Malformed values report false so the
// caller keeps the default.
func hydrate(f Field, raw any) (any, bool) {
	switch f.Kind {
	case KindTime:
		s, ok := raw.(string)
		if !ok {
			return "", true
		}
		return NormalizeTime(s), true
	case KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, false
		}
		if s = NormalizeDate(s); s == "" {
			return nil, false
		}
		return s, true
	case KindNumber:
		n, ok := calc.ParseNumberStrict(raw)
		if !ok {
			return nil, false
		}
		return n, true
	default:
		val, err := coerce(f, raw)
		if err != nil {
			return nil, false
		}
		return val, true
	}
}

// NormalizeTime converts a time of day to canonical HH:MM. It accepts
// "H:MM", "HH:MM", "HH:MM:SS", and the human form "Nh Mm" (or "Nh").
// Anything else, including out of range values, yields "".
func NormalizeTime(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var hh, mm string
	if match := clockPattern.FindStringSubmatch(s); match != nil {
		hh, mm = match[1], match[2]
	} else if match := durationPattern.FindStringSubmatch(s); match != nil {
		hh, mm = match[1], match[2]
	} else {
		return ""
	}

	h, _ := strconv.Atoi(hh)
	mins := 0
	if mm != "" {
		mins, _ = strconv.Atoi(mm)
	}
	if h > 23 || mins > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", h, mins)
}

// NormalizeDate converts a date or RFC 3339 timestamp to YYYY-MM-DD. An
// unreadable value yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(calc.DateLayout, s); err == nil {
		return t.Format(calc.DateLayout)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(calc.DateLayout)
	}
	return ""
}

// FromInput builds values from user input in one step: create defaults,
// then every supplied editable field, then the derivations. Derived fields
// in input are ignored so a client may send back a full snapshot. Unlike
// Init, malformed input is kept so Validate can report it.
func FromInput(m *Model, input map[string]any, now time.Time) (Values, error) {
	v := Init(m, ModeCreate, nil, now)
	for name, raw := range input {
		f, ok := m.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if f.Derived {
			continue
		}
		val, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		v[name] = val
	}
	m.RecomputeAll(v)
	return v, nil
}
