package entity

import "time"

// Record represents a submitted form. Values holds the JSON encoded form
// values including every derived field at the time of submission.
type Record struct {
	ID        int64     `json:"id"`
	FormName  string    `json:"form_name"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary"`
	Amount    float64   `json:"amount"`
	Values    string    `json:"values"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReferenceItem is one entry of read-only reference data offered to select
// fields (customers, projects, accounts, employees, departments).
type ReferenceItem struct {
	ID     int64  `json:"id"`
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}
