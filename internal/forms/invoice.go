package forms

import (
	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Invoice field names
const (
	InvoiceCustomer     = "customer"
	InvoiceProject      = "project"
	InvoiceIssueDate    = "issue_date"
	InvoicePaymentTerms = "payment_terms"
	InvoiceDueDate      = "due_date"
	InvoiceItems        = "items"
	InvoiceNotes        = "notes"
	InvoiceSubtotal     = "subtotal"
	InvoiceTax          = "tax"
	InvoiceTotal        = "total"
)

func invoiceModel(s Settings) *form.Model {
	return form.MustModel(entity.FormInvoice, "Invoice",
		[]form.Field{
			{Name: InvoiceCustomer, Label: "Customer", Kind: form.KindEnum, Required: true, Lookup: entity.RefCustomers},
			{Name: InvoiceProject, Label: "Project", Kind: form.KindEnum, Lookup: entity.RefProjects},
			{Name: InvoiceIssueDate, Label: "Issue date", Kind: form.KindDate, Required: true, Default: form.Today},
			{Name: InvoicePaymentTerms, Label: "Payment terms", Kind: form.KindNumber, Required: true, Min: form.AtLeast(0), Default: form.Literal(float64(s.DefaultPaymentTerms))},
			{Name: InvoiceDueDate, Label: "Due date", Kind: form.KindDate, Derived: true},
			{Name: InvoiceItems, Label: "Line items", Kind: form.KindLineItems, Required: true, Default: form.OneRow},
			{Name: InvoiceNotes, Label: "Notes", Kind: form.KindText},
			{Name: InvoiceSubtotal, Label: "Subtotal", Kind: form.KindNumber, Derived: true},
			{Name: InvoiceTax, Label: "Tax", Kind: form.KindNumber, Derived: true},
			{Name: InvoiceTotal, Label: "Total", Kind: form.KindNumber, Derived: true},
		},
		[]form.Derivation{
			{
				Inputs:  []string{InvoiceIssueDate, InvoicePaymentTerms},
				Outputs: []string{InvoiceDueDate},
				Compute: func(v form.Values) form.Values {
					due := calc.DueDate(v.Text(InvoiceIssueDate), int(v.Number(InvoicePaymentTerms)))
					if due == "" {
						return nil
					}
					return form.Values{InvoiceDueDate: due}
				},
			},
			{
				Inputs:  []string{InvoiceItems},
				Outputs: []string{InvoiceSubtotal, InvoiceTax, InvoiceTotal},
				Compute: func(v form.Values) form.Values {
					_, t := calc.Invoice(v.Items(InvoiceItems), s.TaxRate)
					return form.Values{
						InvoiceSubtotal: t.Subtotal,
						InvoiceTax:      t.Tax,
						InvoiceTotal:    t.Total,
					}
				},
			},
		},
	)
}

// InvoiceFromValues maps submitted invoice values onto the entity.
func InvoiceFromValues(v form.Values) entity.Invoice {
	return entity.Invoice{
		Customer:     v.Text(InvoiceCustomer),
		Project:      v.Text(InvoiceProject),
		IssueDate:    v.Text(InvoiceIssueDate),
		PaymentTerms: int(v.Number(InvoicePaymentTerms)),
		DueDate:      v.Text(InvoiceDueDate),
		Items:        v.Items(InvoiceItems),
		Notes:        v.Text(InvoiceNotes),
		Subtotal:     v.Number(InvoiceSubtotal),
		Tax:          v.Number(InvoiceTax),
		Total:        v.Number(InvoiceTotal),
	}
}
