package model

import (
	"encoding/json"
	"time"
)

// ProcessingStatus tracks a document through the ingestion pipeline.
type ProcessingStatus string

// Valid processing statuses. A document is created as StatusProcessing and
// transitions exactly once, to StatusCompleted or StatusFailed.
const (
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Document is the persisted record of an ingested file. Documents are owned
// exclusively by their tenant; failed documents are kept as an audit trail
// and are never deleted by the pipeline.
type Document struct {
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ID               string
	Filename         string
	OriginalFilename string
	MimeType         string
	ContentHash      string
	Status           ProcessingStatus
	ExtractedData    json.RawMessage
	TenantID         int64
	FileSize         int64
}
