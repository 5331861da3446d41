package forms

import (
	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Attendance field names
const (
	AttendanceEmployee   = "employee"
	AttendanceDate       = "date"
	AttendanceCheckIn    = "check_in"
	AttendanceCheckOut   = "check_out"
	AttendanceStatus     = "status"
	AttendanceNotes      = "notes"
	AttendanceTotalHours = "total_hours"
	AttendanceOvertime   = "overtime"
)

func attendanceModel(s Settings) *form.Model {
	return form.MustModel(entity.FormAttendance, "Attendance",
		[]form.Field{
			{Name: AttendanceEmployee, Label: "Employee", Kind: form.KindEnum, Required: true, Lookup: entity.RefEmployees},
			{Name: AttendanceDate, Label: "Date", Kind: form.KindDate, Required: true, Default: form.Today},
			{Name: AttendanceCheckIn, Label: "Check-in", Kind: form.KindTime, Required: true},
			{Name: AttendanceCheckOut, Label: "Check-out", Kind: form.KindTime},
			{
				Name: AttendanceStatus, Label: "Status", Kind: form.KindEnum, Required: true,
				Options: []string{entity.AttendancePresent, entity.AttendanceLate, entity.AttendanceAbsent, entity.AttendanceHalfDay},
				Default: form.Literal(entity.AttendancePresent),
			},
			{Name: AttendanceNotes, Label: "Notes", Kind: form.KindText},
			{Name: AttendanceTotalHours, Label: "Total hours", Kind: form.KindNumber, Derived: true},
			{Name: AttendanceOvertime, Label: "Overtime hours", Kind: form.KindNumber, Derived: true},
		},
		[]form.Derivation{{
			Inputs:  []string{AttendanceCheckIn, AttendanceCheckOut},
			Outputs: []string{AttendanceTotalHours, AttendanceOvertime},
			Compute: func(v form.Values) form.Values {
				res, ok := calc.Attendance(v.Text(AttendanceCheckIn), v.Text(AttendanceCheckOut), s.StandardWorkDay)
				if !ok {
					return nil
				}
				return form.Values{
					AttendanceTotalHours: res.TotalHours,
					AttendanceOvertime:   res.Overtime,
				}
			},
		}},
		form.TimeOrder(AttendanceCheckIn, AttendanceCheckOut, true, "Check-out time must be after check-in time"),
	)
}
