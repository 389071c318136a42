package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/afonsomatos/recibo/internal/model"
)

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	mu sync.Mutex

	// Files maps candidate names to their content.
	Files map[string][]byte

	// ListErr, when set, is returned from ListCandidates.
	ListErr error

	// DownloadErrs maps candidate names to a forced download failure.
	DownloadErrs map[string]error

	// DownloadCalls records the candidate names passed to Download.
	DownloadCalls []string
}

// NewMockSource creates a mock source serving the given files.
func NewMockSource(files map[string][]byte) *MockSource {
	return &MockSource{Files: files}
}

// ListCandidates returns one candidate per file, sorted by name.
func (m *MockSource) ListCandidates(ctx context.Context, path string) ([]model.FileCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	names := make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	candidates := make([]model.FileCandidate, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, model.FileCandidate{
			Name: name,
			Path: path + "/" + name,
			Size: int64(len(m.Files[name])),
		})
	}
	return candidates, nil
}

// Download returns the configured content for the candidate.
func (m *MockSource) Download(ctx context.Context, candidate model.FileCandidate) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DownloadCalls = append(m.DownloadCalls, candidate.Name)

	if err, ok := m.DownloadErrs[candidate.Name]; ok {
		return nil, err
	}

	data, ok := m.Files[candidate.Name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", candidate.Name)
	}
	return data, nil
}
