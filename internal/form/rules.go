package form

import (
	"time"

	"github.com/garyjia/erp-forms/internal/calc"
)

// DateOrder requires the date in later to fall after the date in earlier.
// When strict is false the two dates may be equal. The error is reported on
// later. Missing or unreadable dates are left to the field checks.
func DateOrder(earlier, later string, strict bool, message string) Rule {
	return orderRule(calc.DateLayout, earlier, later, strict, message)
}

// TimeOrder is DateOrder for HH:MM times of the same day.
func TimeOrder(earlier, later string, strict bool, message string) Rule {
	return orderRule(calc.TimeLayout, earlier, later, strict, message)
}

func orderRule(layout, earlier, later string, strict bool, message string) Rule {
	return func(v Values) (string, string) {
		from, err := time.Parse(layout, v.Text(earlier))
		if err != nil {
			return "", ""
		}
		to, err := time.Parse(layout, v.Text(later))
		if err != nil {
			return "", ""
		}
		if to.Before(from) || (strict && to.Equal(from)) {
			return later, message
		}
		return "", ""
	}
}
