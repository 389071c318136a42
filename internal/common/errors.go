// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Run initialization errors. These are the only errors that fail a whole
	// run; everything past candidate listing is scoped to one candidate.
	ErrInvalidTenant = errors.New("invalid tenant id")
	ErrNoSource      = errors.New("no source configured")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds reported in run summaries so an operator can diagnose a
// failure without re-running.
const (
	KindDownload    = "download"
	KindResolution  = "resolution"
	KindExtraction  = "extraction"
	KindPersistence = "persistence"
)

// DownloadError indicates a candidate's bytes could not be fetched from the
// external source.
type DownloadError struct {
	Err       error
	Candidate string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Candidate, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ResolutionError indicates the duplicate check itself failed. The candidate
// is indeterminate: callers must skip it rather than risk double-processing.
type ResolutionError struct {
	Err      error
	Filename string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve duplicate for %s: %v", e.Filename, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ExtractionError indicates the extraction collaborator could not produce
// structured fields for a document.
type ExtractionError struct {
	Err      error
	Filename string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed write or read against the persistence
// collaborator, carrying the operation that failed.
type PersistenceError struct {
	Err error
	Op  string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrorKind classifies err into one of the summary kinds, or "unknown".
func ErrorKind(err error) string {
	var (
		downloadErr    *DownloadError
		resolutionErr  *ResolutionError
		extractionErr  *ExtractionError
		persistenceErr *PersistenceError
	)

	switch {
	case errors.As(err, &downloadErr):
		return KindDownload
	case errors.As(err, &resolutionErr):
		return KindResolution
	case errors.As(err, &extractionErr):
		return KindExtraction
	case errors.As(err, &persistenceErr):
		return KindPersistence
	default:
		return "unknown"
	}
}
