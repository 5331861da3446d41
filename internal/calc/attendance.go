package calc

import (
	"math"
	"strings"
	"time"
)

// StandardWorkDay is the length of a regular working day in hours.
const StandardWorkDay = 8.0

// AttendanceResult holds the derived hours of an attendance entry.
type AttendanceResult struct {
	TotalHours float64 `json:"total_hours"`
	Overtime   float64 `json:"overtime"`
}

// Attendance computes hours worked between two same-day HH:MM times and the
// overtime beyond standardDay. The boolean is false when either time is
// missing or unreadable, in which case nothing should be derived.
func Attendance(checkIn, checkOut string, standardDay float64) (AttendanceResult, bool) {
	in, ok := parseClock(checkIn)
	if !ok {
		return AttendanceResult{}, false
	}
	out, ok := parseClock(checkOut)
	if !ok {
		return AttendanceResult{}, false
	}
	if standardDay <= 0 {
		standardDay = StandardWorkDay
	}

	total := math.Max(0, out.Sub(in).Hours())
	return AttendanceResult{
		TotalHours: round2(total),
		Overtime:   round2(math.Max(0, total-standardDay)),
	}, true
}

func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
