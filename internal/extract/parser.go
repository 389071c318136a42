package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
)

// extractionPayload is the wire format of the extraction service response.
type extractionPayload struct {
	Vendor      string          `json:"vendor"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	IssueDate   string          `json:"issue_date"`
	TotalAmount float64         `json:"total_amount"`
	VATAmount   float64         `json:"vat_amount"`
	VATRate     float64         `json:"vat_rate"`
	Confidence  float64         `json:"confidence"`
	Fields      json.RawMessage `json:"fields"`
}

// parseExtraction decodes a service response into an extraction result.
// Model-backed services sometimes wrap their JSON in markdown code fences;
// those are stripped before decoding.
func parseExtraction(data []byte) (model.ExtractionResult, error) {
	cleaned := cleanMarkdownWrapper(string(data))

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return model.ExtractionResult{}, fmt.Errorf("invalid extraction payload: %w", err)
	}

	result := model.ExtractionResult{
		Vendor:      strings.TrimSpace(payload.Vendor),
		Category:    strings.TrimSpace(payload.Category),
		Description: strings.TrimSpace(payload.Description),
		TotalAmount: payload.TotalAmount,
		VATAmount:   payload.VATAmount,
		VATRate:     payload.VATRate,
		Confidence:  payload.Confidence,
		Fields:      payload.Fields,
	}

	if result.Fields == nil {
		result.Fields = json.RawMessage(cleaned)
	}

	if payload.IssueDate != "" {
		issueDate, err := parseIssueDate(payload.IssueDate)
		if err != nil {
			return model.ExtractionResult{}, err
		}
		result.IssueDate = issueDate
	}

	if result.TotalAmount < 0 {
		return model.ExtractionResult{}, fmt.Errorf("invalid extraction payload: negative total %f", result.TotalAmount)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return model.ExtractionResult{}, fmt.Errorf("invalid extraction payload: confidence %f out of range", result.Confidence)
	}

	return result, nil
}

// parseIssueDate accepts the date formats Portuguese invoices actually
// carry.
func parseIssueDate(value string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02/01/2006",
		"02-01-2006",
		time.RFC3339,
	}
	for _, format := range formats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable issue date: %q", value)
}

// cleanMarkdownWrapper strips markdown code fences from a response.
func cleanMarkdownWrapper(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	return strings.TrimSpace(cleaned)
}
