package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/afonsomatos/recibo/internal/common"
	"github.com/afonsomatos/recibo/internal/model"
	"github.com/afonsomatos/recibo/internal/service"
	"github.com/afonsomatos/recibo/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) service.Storage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func insertTestDocument(t *testing.T, store service.Storage, tenantID int64, filename, contentHash string, status model.ProcessingStatus) string {
	t.Helper()

	id, err := store.CreateDocument(context.Background(), &model.Document{
		TenantID:         tenantID,
		Filename:         filename,
		OriginalFilename: filename,
		MimeType:         "application/pdf",
		FileSize:         1024,
		ContentHash:      contentHash,
		Status:           status,
	})
	require.NoError(t, err)
	return id
}

func TestResolverNewDocument(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)

	verdict, err := resolver.Resolve(context.Background(), 1, "fatura-001.pdf", "abc123")
	require.NoError(t, err)

	assert.Equal(t, model.VerdictNew, verdict.Kind)
	assert.Empty(t, verdict.ExistingDocumentID)
	assert.True(t, verdict.ShouldProcess(false))
}

func TestResolverExactContentMatch(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)

	existingID := insertTestDocument(t, store, 1, "fatura-001.pdf", "hash-aaa", model.StatusCompleted)

	// Same bytes under a different name is still an exact match.
	verdict, err := resolver.Resolve(context.Background(), 1, "renamed-copy.pdf", "hash-aaa")
	require.NoError(t, err)

	assert.Equal(t, model.VerdictExactContentMatch, verdict.Kind)
	assert.Equal(t, existingID, verdict.ExistingDocumentID)
	assert.Equal(t, "fatura-001.pdf", verdict.ExistingDocumentName)
	assert.False(t, verdict.ShouldProcess(false))
}

func TestResolverNameCollision(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)

	existingID := insertTestDocument(t, store, 1, "fatura-001.pdf", "hash-aaa", model.StatusCompleted)

	// Same name, different content.
	verdict, err := resolver.Resolve(context.Background(), 1, "fatura-001.pdf", "hash-bbb")
	require.NoError(t, err)

	assert.Equal(t, model.VerdictNameCollision, verdict.Kind)
	assert.Equal(t, existingID, verdict.ExistingDocumentID)
	assert.False(t, verdict.ShouldProcess(false))
}

func TestResolverHashMatchBeatsNameCollision(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)

	hashMatchID := insertTestDocument(t, store, 1, "original.pdf", "hash-shared", model.StatusCompleted)
	insertTestDocument(t, store, 1, "collide.pdf", "hash-other", model.StatusCompleted)

	// Candidate collides on name with one document and on content with
	// another; the content match must win.
	verdict, err := resolver.Resolve(context.Background(), 1, "collide.pdf", "hash-shared")
	require.NoError(t, err)

	assert.Equal(t, model.VerdictExactContentMatch, verdict.Kind)
	assert.Equal(t, hashMatchID, verdict.ExistingDocumentID)
}

func TestResolverTenantIsolation(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)

	insertTestDocument(t, store, 1, "fatura-001.pdf", "hash-aaa", model.StatusCompleted)

	// Another tenant's identical upload must not register as a duplicate.
	verdict, err := resolver.Resolve(context.Background(), 2, "fatura-001.pdf", "hash-aaa")
	require.NoError(t, err)

	assert.Equal(t, model.VerdictNew, verdict.Kind)
}

func TestResolverAllowDuplicates(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)

	insertTestDocument(t, store, 1, "fatura-001.pdf", "hash-aaa", model.StatusCompleted)

	verdict, err := resolver.Resolve(context.Background(), 1, "fatura-001.pdf", "hash-aaa")
	require.NoError(t, err)

	// The verdict still reports the duplicate even when overridden.
	assert.Equal(t, model.VerdictExactContentMatch, verdict.Kind)
	assert.True(t, verdict.ShouldProcess(true))
}

func TestResolverValidation(t *testing.T) {
	store := setupTestStorage(t)
	resolver := NewResolver(store)
	ctx := context.Background()

	tests := []struct {
		name        string
		tenantID    int64
		filename    string
		contentHash string
	}{
		{"zero tenant", 0, "a.pdf", "hash"},
		{"negative tenant", -5, "a.pdf", "hash"},
		{"empty filename", 1, "", "hash"},
		{"empty hash", 1, "a.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tt.tenantID, tt.filename, tt.contentHash)
			assert.Error(t, err)
		})
	}
}

// failingStorage forces query errors to exercise the fail-safe path.
type failingStorage struct {
	service.Storage
	hashErr error
	nameErr error
}

func (f *failingStorage) GetDocumentsByContentHash(ctx context.Context, tenantID int64, contentHash string) ([]model.Document, error) {
	if f.hashErr != nil {
		return nil, f.hashErr
	}
	return f.Storage.GetDocumentsByContentHash(ctx, tenantID, contentHash)
}

func (f *failingStorage) GetDocumentsByFilename(ctx context.Context, tenantID int64, filename string) ([]model.Document, error) {
	if f.nameErr != nil {
		return nil, f.nameErr
	}
	return f.Storage.GetDocumentsByFilename(ctx, tenantID, filename)
}

func TestResolverStorageFailureIsResolutionError(t *testing.T) {
	store := setupTestStorage(t)

	t.Run("hash query fails", func(t *testing.T) {
		resolver := NewResolver(&failingStorage{Storage: store, hashErr: errors.New("disk gone")})

		_, err := resolver.Resolve(context.Background(), 1, "a.pdf", "hash")
		require.Error(t, err)

		var resErr *common.ResolutionError
		assert.ErrorAs(t, err, &resErr)
		assert.Equal(t, "a.pdf", resErr.Filename)
	})

	t.Run("filename query fails", func(t *testing.T) {
		resolver := NewResolver(&failingStorage{Storage: store, nameErr: errors.New("disk gone")})

		_, err := resolver.Resolve(context.Background(), 1, "a.pdf", "hash")
		require.Error(t, err)

		var resErr *common.ResolutionError
		assert.ErrorAs(t, err, &resErr)
	})
}
