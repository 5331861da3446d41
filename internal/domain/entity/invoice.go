package entity

import "time"

// LineItem represents one row of an invoice. Amount is always
// Quantity * UnitPrice and is never taken from user input.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice is the typed view of a stored invoice record, used by exports.
type Invoice struct {
	ID           int64      `json:"id"`
	Customer     string     `json:"customer"`
	Project      string     `json:"project,omitempty"`
	IssueDate    string     `json:"issue_date"`
	PaymentTerms int        `json:"payment_terms"`
	DueDate      string     `json:"due_date"`
	Items        []LineItem `json:"items"`
	Notes        string     `json:"notes,omitempty"`
	Subtotal     float64    `json:"subtotal"`
	Tax          float64    `json:"tax"`
	Total        float64    `json:"total"`
	CreatedAt    time.Time  `json:"created_at"`
}
