package ingest

import (
	"context"
	"sync"

	"github.com/afonsomatos/recibo/internal/model"
)

// MockExtractor is a mock implementation of Extractor for testing.
type MockExtractor struct {
	mu sync.Mutex

	// Results maps filenames to canned extraction results.
	Results map[string]model.ExtractionResult

	// Errs maps filenames to a forced extraction failure. A filename in
	// Errs fails every attempt.
	Errs map[string]error

	// Default is returned for filenames absent from Results and Errs.
	Default model.ExtractionResult

	// Calls records the filenames passed to Extract, including retries.
	Calls []string
}

// NewMockExtractor creates a mock extractor with the given canned results.
func NewMockExtractor(results map[string]model.ExtractionResult) *MockExtractor {
	return &MockExtractor{Results: results}
}

// Extract returns the canned result or error configured for the filename.
func (m *MockExtractor) Extract(ctx context.Context, content []byte, mimeType, filename string) (model.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, filename)

	if err, ok := m.Errs[filename]; ok {
		return model.ExtractionResult{}, err
	}
	if result, ok := m.Results[filename]; ok {
		return result, nil
	}
	return m.Default, nil
}

// CallCount returns how many times Extract was invoked for the filename.
func (m *MockExtractor) CallCount(filename string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.Calls {
		if call == filename {
			count++
		}
	}
	return count
}
