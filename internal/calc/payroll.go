package calc

import "github.com/shopspring/decimal"

// PayrollInput holds the raw salary components of a payroll entry.
type PayrollInput struct {
	BasicSalary float64
	Allowances  float64
	Overtime    float64
	Bonuses     float64
	Deductions  float64
	TaxAmount   float64
}

// PayrollResult holds the derived salary figures.
type PayrollResult struct {
	GrossSalary float64 `json:"gross_salary"`
	NetSalary   float64 `json:"net_salary"`
}

// Payroll computes gross and net salary. Net salary never drops below zero.
// A figure that overflows a float64 becomes 0.
func Payroll(in PayrollInput) PayrollResult {
	gross := sum(in.BasicSalary, in.Allowances, in.Overtime, in.Bonuses)
	net := decimal.Max(decimal.Zero, gross.Sub(sum(in.Deductions, in.TaxAmount)))

	var out PayrollResult
	out.GrossSalary, _ = finite(gross)
	out.NetSalary, _ = finite(net)
	return out
}

func sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
