package forms

import (
	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Leave field names
const (
	LeaveEmployee      = "employee"
	LeaveType          = "leave_type"
	LeaveStartDate     = "start_date"
	LeaveEndDate       = "end_date"
	LeaveReason        = "reason"
	LeaveAttachments   = "attachments"
	LeaveDaysRequested = "days_requested"
)

func leaveModel() *form.Model {
	return form.MustModel(entity.FormLeave, "Leave Request",
		[]form.Field{
			{Name: LeaveEmployee, Label: "Employee", Kind: form.KindEnum, Required: true, Lookup: entity.RefEmployees},
			{
				Name: LeaveType, Label: "Leave type", Kind: form.KindEnum, Required: true,
				Options: []string{
					entity.LeaveAnnual, entity.LeaveSick, entity.LeaveMaternity,
					entity.LeavePaternity, entity.LeaveCompassionate, entity.LeaveUnpaid,
				},
				Default: form.Literal(entity.LeaveAnnual),
			},
			{Name: LeaveStartDate, Label: "Start date", Kind: form.KindDate, Required: true, Default: form.Today},
			{Name: LeaveEndDate, Label: "End date", Kind: form.KindDate, Required: true, Default: form.Today},
			{Name: LeaveReason, Label: "Reason", Kind: form.KindText, Required: true},
			{Name: LeaveAttachments, Label: "Attachments", Kind: form.KindTextList},
			{Name: LeaveDaysRequested, Label: "Days requested", Kind: form.KindNumber, Derived: true},
		},
		[]form.Derivation{{
			Inputs:  []string{LeaveStartDate, LeaveEndDate},
			Outputs: []string{LeaveDaysRequested},
			Compute: func(v form.Values) form.Values {
				days, ok := calc.LeaveDays(v.Text(LeaveStartDate), v.Text(LeaveEndDate))
				if !ok {
					return nil
				}
				return form.Values{LeaveDaysRequested: float64(days)}
			},
		}},
		form.DateOrder(LeaveStartDate, LeaveEndDate, false, "End date cannot be before start date"),
	)
}
