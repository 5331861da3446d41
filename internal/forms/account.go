package forms

import (
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Account field names
const (
	AccountCode        = "code"
	AccountName        = "name"
	AccountType        = "type"
	AccountCurrency    = "currency"
	AccountBalance     = "balance"
	AccountDescription = "description"
)

func accountModel() *form.Model {
	return form.MustModel(entity.FormAccount, "Account",
		[]form.Field{
			{Name: AccountCode, Label: "Account code", Kind: form.KindText, Required: true, Pattern: `^\d{4,6}$`},
			{Name: AccountName, Label: "Account name", Kind: form.KindText, Required: true},
			{Name: AccountType, Label: "Account type", Kind: form.KindEnum, Required: true, Options: []string{"asset", "liability", "equity", "revenue", "expense"}},
			{Name: AccountCurrency, Label: "Currency", Kind: form.KindEnum, Required: true, Options: []string{"RWF", "USD", "EUR"}, Default: form.Literal("RWF")},
			{Name: AccountBalance, Label: "Balance", Kind: form.KindNumber, Required: true, Min: form.AtLeast(0), Default: form.Literal(0.0)},
			{Name: AccountDescription, Label: "Description", Kind: form.KindText},
		},
		nil,
	)
}
