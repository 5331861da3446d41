package form

import (
	"time"

	"github.com/garyjia/erp-forms/internal/calc"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// testInvoiceModel is a cut-down invoice schema exercising every kind.
func testInvoiceModel() *Model {
	return MustModel("test-invoice", "Test Invoice",
		[]Field{
			{Name: "customer", Label: "Customer", Kind: KindText, Required: true, Lookup: "customers"},
			{Name: "issue_date", Label: "Issue date", Kind: KindDate, Required: true, Default: Today},
			{Name: "payment_terms", Label: "Payment terms", Kind: KindNumber, Min: AtLeast(0), Default: Literal(30)},
			{Name: "due_date", Label: "Due date", Kind: KindDate, Derived: true},
			{Name: "status", Label: "Status", Kind: KindEnum, Options: []string{"draft", "sent"}, Default: Literal("draft")},
			{Name: "items", Label: "Line items", Kind: KindLineItems, Required: true, Default: OneRow},
			{Name: "tags", Label: "Tags", Kind: KindTextList},
			{Name: "subtotal", Label: "Subtotal", Kind: KindNumber, Derived: true},
			{Name: "tax", Label: "Tax", Kind: KindNumber, Derived: true},
			{Name: "total", Label: "Total", Kind: KindNumber, Derived: true},
		},
		[]Derivation{
			{
				Inputs:  []string{"issue_date", "payment_terms"},
				Outputs: []string{"due_date"},
				Compute: func(v Values) Values {
					return Values{"due_date": calc.DueDate(v.Text("issue_date"), int(v.Number("payment_terms")))}
				},
			},
			{
				Inputs:  []string{"items"},
				Outputs: []string{"subtotal", "tax", "total"},
				Compute: func(v Values) Values {
					_, t := calc.Invoice(v.Items("items"), calc.DefaultTaxRate)
					return Values{"subtotal": t.Subtotal, "tax": t.Tax, "total": t.Total}
				},
			},
		},
	)
}

// testShiftModel carries a time pair, an ordering rule, and a derivation
// that leaves its outputs unset when inputs are missing.
func testShiftModel() *Model {
	return MustModel("test-shift", "Test Shift",
		[]Field{
			{Name: "check_in", Label: "Check-in", Kind: KindTime, Required: true},
			{Name: "check_out", Label: "Check-out", Kind: KindTime, Required: true},
			{Name: "total_hours", Label: "Total hours", Kind: KindNumber, Derived: true},
		},
		[]Derivation{
			{
				Inputs:  []string{"check_in", "check_out"},
				Outputs: []string{"total_hours"},
				Compute: func(v Values) Values {
					res, ok := calc.Attendance(v.Text("check_in"), v.Text("check_out"), calc.StandardWorkDay)
					if !ok {
						return nil
					}
					return Values{"total_hours": res.TotalHours}
				},
			},
		},
		TimeOrder("check_in", "check_out", true, "Check-out must be after check-in"),
	)
}
