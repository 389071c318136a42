package model

import "time"

// Expense is a financial record derived from a completed document. At most
// one expense is created per document, and only when extraction reported a
// positive total amount. Description always embeds the originating document
// id for traceability.
type Expense struct {
	ExpenseDate time.Time
	CreatedAt   time.Time
	ID          string
	DocumentID  string
	Vendor      string
	Category    string
	Description string
	TenantID    int64
	Amount      float64
	VATAmount   float64
	VATRate     float64
}
