package calc

import (
	"math"
	"time"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the VAT rate applied to invoices unless configured
// otherwise.
const DefaultTaxRate = 0.18

// InvoiceTotals holds the derived totals of an invoice.
type InvoiceTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// MaxAmount bounds a line amount and an invoice subtotal. Larger values
// no longer hold whole units exactly in a float64.
const MaxAmount = 1e15

// LineAmount returns quantity x unitPrice taken in decimal. It reports false,
// with a zero amount, when the product is not a finite float64.
func LineAmount(quantity, unitPrice float64) (float64, bool) {
	amount, ok := finite(lineAmount(quantity, unitPrice))
	return amount, ok
}

func lineAmount(quantity, unitPrice float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
}

// finite converts d to a float64, or 0 and false when it overflows.
func finite(d decimal.Decimal) (float64, bool) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Invoice recomputes every line amount and the invoice totals. The input
// slice is not modified; the returned slice carries the fresh amounts.
// Non-positive quantities and prices are computed as given. Sums are taken
// in decimal so 3 x 0.1 is 0.3, and the subtotal equals the sum of the
// returned amounts. A line or total that overflows a float64 becomes 0.
func Invoice(items []entity.LineItem, taxRate float64) ([]entity.LineItem, InvoiceTotals) {
	out := make([]entity.LineItem, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		amount := lineAmount(item.Quantity, item.UnitPrice)
		f, ok := finite(amount)
		if !ok {
			amount = decimal.Zero
		}
		item.Amount = f
		out[i] = item
		subtotal = subtotal.Add(amount)
	}
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate))

	var totals InvoiceTotals
	totals.Subtotal, _ = finite(subtotal)
	totals.Tax, _ = finite(tax)
	totals.Total, _ = finite(subtotal.Add(tax))
	return out, totals
}

// DueDate adds termDays calendar days to issueDate. An unparsable issue date
// yields an empty string.
func DueDate(issueDate string, termDays int) string {
	issued, err := time.Parse(DateLayout, issueDate)
	if err != nil {
		return ""
	}
	return issued.AddDate(0, 0, termDays).Format(DateLayout)
}
