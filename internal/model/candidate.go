// Package model defines the core domain types for document ingestion.
package model

import (
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// FileCandidate is a file discovered at an external source that has not yet
// been ingested. Candidates are transient: they are produced by listing the
// source and consumed once per ingestion run.
type FileCandidate struct {
	ModifiedAt time.Time
	Name       string
	Path       string
	Size       int64
}

// MimeType guesses the candidate's MIME type from its file extension,
// falling back to application/octet-stream for unknown extensions.
func (c FileCandidate) MimeType() string {
	ext := strings.ToLower(filepath.Ext(c.Name))
	if mt := mime.TypeByExtension(ext); mt != "" {
		// Strip optional parameters like "; charset=utf-8"
		if idx := strings.Index(mt, ";"); idx > 0 {
			mt = strings.TrimSpace(mt[:idx])
		}
		return mt
	}
	return "application/octet-stream"
}
