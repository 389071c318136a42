package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
)

const defaultTimeout = 2 * time.Minute

// HTTPClient calls a JSON extraction service over HTTP. The service
// receives the document bytes base64-encoded and answers with the
// structured fields defined by the wire format in parser.go.
type HTTPClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

// NewHTTPClient creates a new HTTP extraction client.
func NewHTTPClient(config Config) (*HTTPClient, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("extraction endpoint is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: config.Endpoint,
		apiKey:   config.APIKey,
		model:    config.Model,
	}, nil
}

type extractRequest struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
	Model    string `json:"model,omitempty"`
}

// Extract sends the document to the extraction service and parses the
// structured fields out of its response.
func (c *HTTPClient) Extract(ctx context.Context, data []byte, mimeType, filename string) (model.ExtractionResult, error) {
	payload := extractRequest{
		Filename: filename,
		MimeType: mimeType,
		Content:  base64.StdEncoding.EncodeToString(data),
		Model:    c.model,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return model.ExtractionResult{}, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.ExtractionResult{}, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	slog.Debug("Sending extraction request",
		"file", filename,
		"mime_type", mimeType,
		"size", len(data))

	resp, err := c.client.Do(req)
	if err != nil {
		return model.ExtractionResult{}, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.ExtractionResult{}, fmt.Errorf("failed to read extraction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.ExtractionResult{}, fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, respBody)
	}

	result, err := parseExtraction(respBody)
	if err != nil {
		return model.ExtractionResult{}, fmt.Errorf("failed to parse extraction response for %s: %w", filename, err)
	}
	return result, nil
}
