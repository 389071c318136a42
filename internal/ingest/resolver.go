package ingest

import (
	"context"
	"fmt"

	"github.com/afonsomatos/recibo/internal/common"
	"github.com/afonsomatos/recibo/internal/model"
	"github.com/afonsomatos/recibo/internal/service"
)

// Resolver classifies an incoming candidate against a tenant's existing
// documents. It is read-only: resolution never mutates state, and the check
// is re-evaluated on every run rather than cached.
type Resolver struct {
	storage service.Storage
}

// NewResolver creates a duplicate resolver backed by the given storage.
func NewResolver(storage service.Storage) *Resolver {
	return &Resolver{storage: storage}
}

// Resolve compares a candidate's filename and content hash against the
// tenant's existing documents. The content-hash check runs first and wins:
// a byte-identical file is an exact match even under a different name.
// Storage failures surface as a ResolutionError; the caller must then treat
// the candidate as indeterminate and skip it.
func (r *Resolver) Resolve(ctx context.Context, tenantID int64, filename, contentHash string) (model.DuplicateVerdict, error) {
	if tenantID < 1 {
		return model.DuplicateVerdict{}, fmt.Errorf("%w: got %d", common.ErrInvalidTenant, tenantID)
	}
	if filename == "" {
		return model.DuplicateVerdict{}, fmt.Errorf("filename is required")
	}
	if contentHash == "" {
		return model.DuplicateVerdict{}, fmt.Errorf("content hash is required")
	}

	byHash, err := r.storage.GetDocumentsByContentHash(ctx, tenantID, contentHash)
	if err != nil {
		return model.DuplicateVerdict{}, &common.ResolutionError{Filename: filename, Err: err}
	}
	if len(byHash) > 0 {
		return model.DuplicateVerdict{
			Kind:                 model.VerdictExactContentMatch,
			ExistingDocumentID:   byHash[0].ID,
			ExistingDocumentName: byHash[0].OriginalFilename,
		}, nil
	}

	byName, err := r.storage.GetDocumentsByFilename(ctx, tenantID, filename)
	if err != nil {
		return model.DuplicateVerdict{}, &common.ResolutionError{Filename: filename, Err: err}
	}
	if len(byName) > 0 {
		return model.DuplicateVerdict{
			Kind:                 model.VerdictNameCollision,
			ExistingDocumentID:   byName[0].ID,
			ExistingDocumentName: byName[0].OriginalFilename,
		}, nil
	}

	return model.DuplicateVerdict{Kind: model.VerdictNew}, nil
}
