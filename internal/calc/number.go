package calc

import (
	"math"
	"strconv"
	"strings"
)

// Layouts used for date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseNumber coerces a form value into a float64. Strings are trimmed and
// may carry thousands separators. Anything that cannot be read as a finite
// number yields 0.
func ParseNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseNumberStrict is like ParseNumber but reports whether the value was a
// readable number. Empty strings are not numbers.
func ParseNumberStrict(v any) (float64, bool) {
	switch n := v.(type) {
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return ParseNumberStrict(float64(n))
	case int, int64, int32:
		return ParseNumber(n), true
	default:
		return 0, false
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
