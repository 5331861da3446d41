package calc

import (
	"math"
	"time"
)

// LeaveDays counts the calendar days of a leave request, inclusive of both
// endpoints. The count is clamped to 0 when end precedes start. The boolean
// is false when either date is unreadable.
func LeaveDays(start, end string) (int, bool) {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0, false
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0, false
	}

	days := int(math.Ceil(to.Sub(from).Hours()/24)) + 1
	if days < 0 {
		days = 0
	}
	return days, true
}
