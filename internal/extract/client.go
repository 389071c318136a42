// Package extract provides clients that turn raw document bytes into
// structured accounting fields by calling an extraction service.
package extract

import (
	"fmt"
	"time"

	"github.com/afonsomatos/recibo/internal/ingest"
)

// Config holds configuration for creating an extraction client.
type Config struct {
	// Provider selects the client implementation ("http").
	Provider string

	// Endpoint is the base URL of the extraction service.
	Endpoint string

	// APIKey authenticates requests to the extraction service.
	APIKey string

	// Model names the extraction model to request, when the service
	// supports more than one.
	Model string

	// Timeout bounds a single extraction request.
	Timeout time.Duration
}

// NewClient creates an extraction client based on the provider specified
// in the config.
func NewClient(config Config) (ingest.Extractor, error) {
	switch config.Provider {
	case "http", "":
		return NewHTTPClient(config)
	default:
		return nil, fmt.Errorf("unsupported extraction provider: %s", config.Provider)
	}
}
