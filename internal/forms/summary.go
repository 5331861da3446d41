package forms

import (
	"strings"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Summarize returns the one-line description and headline amount stored
// alongside a submitted form for listings.
func Summarize(name string, v form.Values) (string, float64) {
	switch name {
	case entity.FormInvoice:
		return join(v.Text(InvoiceCustomer), v.Text(InvoiceIssueDate)), v.Number(InvoiceTotal)
	case entity.FormPayroll:
		return join(v.Text(PayrollEmployee), v.Text(PayrollPeriod)), v.Number(PayrollNetSalary)
	case entity.FormAttendance:
		return join(v.Text(AttendanceEmployee), v.Text(AttendanceDate), v.Text(AttendanceStatus)), v.Number(AttendanceTotalHours)
	case entity.FormLeave:
		return join(v.Text(LeaveEmployee), v.Text(LeaveType), v.Text(LeaveStartDate)), v.Number(LeaveDaysRequested)
	case entity.FormAccount:
		return join(v.Text(AccountCode), v.Text(AccountName)), v.Number(AccountBalance)
	case entity.FormTransaction:
		return join(v.Text(TransactionDate), v.Text(TransactionType), v.Text(TransactionAccount)), v.Number(TransactionAmount)
	case entity.FormJobPosting:
		return join(v.Text(JobTitle), v.Text(JobDepartment)), v.Number(JobOpenings)
	}
	return "", 0
}

func join(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " / ")
}
