package model

import (
	"encoding/json"
	"time"
)

// ExtractionResult holds the structured fields the extraction collaborator
// pulled out of a document, plus its confidence in them. Confidence is a
// 0-1 score; the pipeline records it but does not threshold on it.
type ExtractionResult struct {
	IssueDate   time.Time
	Vendor      string
	Category    string
	Description string
	Fields      json.RawMessage
	TotalAmount float64
	VATAmount   float64
	VATRate     float64
	Confidence  float64
}

// HasExpense reports whether the result carries enough information to
// derive an expense record: a positive total and a known vendor.
func (r ExtractionResult) HasExpense() bool {
	return r.TotalAmount > 0 && r.Vendor != ""
}
