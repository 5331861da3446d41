package forms

import (
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Transaction field names
const (
	TransactionDate        = "date"
	TransactionAccount     = "account"
	TransactionType        = "type"
	TransactionAmount      = "amount"
	TransactionReference   = "reference"
	TransactionDescription = "description"
)

func transactionModel() *form.Model {
	return form.MustModel(entity.FormTransaction, "Transaction",
		[]form.Field{
			{Name: TransactionDate, Label: "Date", Kind: form.KindDate, Required: true, Default: form.Today},
			{Name: TransactionAccount, Label: "Account", Kind: form.KindEnum, Required: true, Lookup: entity.RefAccounts},
			{Name: TransactionType, Label: "Type", Kind: form.KindEnum, Required: true, Options: []string{"debit", "credit"}},
			{Name: TransactionAmount, Label: "Amount", Kind: form.KindNumber, Required: true, Min: form.GreaterThan(0)},
			{Name: TransactionReference, Label: "Reference", Kind: form.KindText},
			{Name: TransactionDescription, Label: "Description", Kind: form.KindText, Required: true},
		},
		nil,
	)
}
