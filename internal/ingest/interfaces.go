package ingest

import (
	"context"

	"github.com/afonsomatos/recibo/internal/model"
)

// Source lists and downloads candidate files from a configured external
// location (a synced cloud-drive folder, a local directory, ...). Listing
// is restartable: the pipeline retains no cursor state between runs.
type Source interface {
	ListCandidates(ctx context.Context, sourcePath string) ([]model.FileCandidate, error)
	Download(ctx context.Context, candidate model.FileCandidate) ([]byte, error)
}

// Extractor turns raw file bytes into structured accounting fields.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType, filename string) (model.ExtractionResult, error)
}
