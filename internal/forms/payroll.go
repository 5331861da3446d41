package forms

import (
	"github.com/garyjia/erp-forms/internal/calc"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Payroll field names
const (
	PayrollEmployee    = "employee"
	PayrollPeriod      = "period"
	PayrollBasicSalary = "basic_salary"
	PayrollAllowances  = "allowances"
	PayrollOvertime    = "overtime"
	PayrollBonuses     = "bonuses"
	PayrollDeductions  = "deductions"
	PayrollTaxAmount   = "tax_amount"
	PayrollGrossSalary = "gross_salary"
	PayrollNetSalary   = "net_salary"
)

func payrollModel() *form.Model {
	money := func(name, label string) form.Field {
		return form.Field{Name: name, Label: label, Kind: form.KindNumber, Min: form.AtLeast(0), Default: form.Literal(0.0)}
	}

	return form.MustModel(entity.FormPayroll, "Payroll",
		[]form.Field{
			{Name: PayrollEmployee, Label: "Employee", Kind: form.KindEnum, Required: true, Lookup: entity.RefEmployees},
			{Name: PayrollPeriod, Label: "Pay period", Kind: form.KindText, Required: true, Pattern: `^\d{4}-(0[1-9]|1[0-2])$`},
			{Name: PayrollBasicSalary, Label: "Basic salary", Kind: form.KindNumber, Required: true, Min: form.GreaterThan(0)},
			money(PayrollAllowances, "Allowances"),
			money(PayrollOvertime, "Overtime pay"),
			money(PayrollBonuses, "Bonuses"),
			money(PayrollDeductions, "Deductions"),
			{Name: PayrollTaxAmount, Label: "Tax amount", Kind: form.KindNumber, Required: true, Min: form.AtLeast(0), Default: form.Literal(0.0)},
			{Name: PayrollGrossSalary, Label: "Gross salary", Kind: form.KindNumber, Derived: true},
			{Name: PayrollNetSalary, Label: "Net salary", Kind: form.KindNumber, Derived: true},
		},
		[]form.Derivation{{
			Inputs: []string{
				PayrollBasicSalary, PayrollAllowances, PayrollOvertime,
				PayrollBonuses, PayrollDeductions, PayrollTaxAmount,
			},
			Outputs: []string{PayrollGrossSalary, PayrollNetSalary},
			Compute: func(v form.Values) form.Values {
				res := calc.Payroll(calc.PayrollInput{
					BasicSalary: v.Number(PayrollBasicSalary),
					Allowances:  v.Number(PayrollAllowances),
					Overtime:    v.Number(PayrollOvertime),
					Bonuses:     v.Number(PayrollBonuses),
					Deductions:  v.Number(PayrollDeductions),
					TaxAmount:   v.Number(PayrollTaxAmount),
				})
				return form.Values{
					PayrollGrossSalary: res.GrossSalary,
					PayrollNetSalary:   res.NetSalary,
				}
			},
		}},
	)
}
