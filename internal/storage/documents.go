package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
	"github.com/google/uuid"
)

// CreateDocument inserts a new document record and returns its id. If the
// document carries no id, one is assigned.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *model.Document) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateDocument(doc); err != nil {
		return "", err
	}

	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, tenant_id, filename, original_filename, mime_type,
			file_size, content_hash, status, extracted_data, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		doc.TenantID,
		doc.Filename,
		doc.OriginalFilename,
		doc.MimeType,
		doc.FileSize,
		doc.ContentHash,
		string(doc.Status),
		nullableJSON(doc.ExtractedData),
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return id, nil
}

// UpdateDocumentStatus transitions a document to a new processing status,
// optionally attaching extracted data. The update is tenant-scoped: a
// matching id under another tenant is not found.
func (s *SQLiteStorage) UpdateDocumentStatus(ctx context.Context, tenantID int64, id string, status model.ProcessingStatus, extractedData []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateStatus(status); err != nil {
		return err
	}

	var result sql.Result
	var err error
	if extractedData != nil {
		result, err = s.db.ExecContext(ctx, `
			UPDATE documents
			SET status = ?, extracted_data = ?, updated_at = ?
			WHERE tenant_id = ? AND id = ?
		`, string(status), string(extractedData), time.Now().UTC(), tenantID, id)
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE documents
			SET status = ?, updated_at = ?
			WHERE tenant_id = ? AND id = ?
		`, string(status), time.Now().UTC(), tenantID, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	return nil
}

// GetDocumentByID retrieves a single document scoped to a tenant.
func (s *SQLiteStorage) GetDocumentByID(ctx context.Context, tenantID int64, id string) (*model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, documentSelect+` WHERE tenant_id = ? AND id = ?`, tenantID, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocumentsByContentHash retrieves a tenant's documents whose stored
// content hash matches. Used by duplicate resolution to catch byte-identical
// re-uploads regardless of filename.
func (s *SQLiteStorage) GetDocumentsByContentHash(ctx context.Context, tenantID int64, contentHash string) ([]model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	if err := validateString(contentHash, "contentHash"); err != nil {
		return nil, err
	}

	return s.queryDocuments(ctx,
		documentSelect+` WHERE tenant_id = ? AND content_hash = ? ORDER BY created_at`,
		tenantID, contentHash)
}

// GetDocumentsByFilename retrieves a tenant's documents whose original
// filename matches the candidate's.
func (s *SQLiteStorage) GetDocumentsByFilename(ctx context.Context, tenantID int64, filename string) ([]model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	if err := validateString(filename, "filename"); err != nil {
		return nil, err
	}

	return s.queryDocuments(ctx,
		documentSelect+` WHERE tenant_id = ? AND original_filename = ? ORDER BY created_at`,
		tenantID, filename)
}

// GetDocumentsByTenant lists a tenant's documents, newest first.
func (s *SQLiteStorage) GetDocumentsByTenant(ctx context.Context, tenantID int64, limit int) ([]model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	return s.queryDocuments(ctx,
		documentSelect+` WHERE tenant_id = ? ORDER BY created_at DESC LIMIT ?`,
		tenantID, limit)
}

const documentSelect = `
	SELECT id, tenant_id, filename, original_filename, mime_type,
	       file_size, content_hash, status, extracted_data, created_at, updated_at
	FROM documents`

func (s *SQLiteStorage) queryDocuments(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var documents []model.Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		documents = append(documents, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return documents, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*model.Document, error) {
	var doc model.Document
	var mimeType, extractedData sql.NullString
	var status string

	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.Filename,
		&doc.OriginalFilename,
		&mimeType,
		&doc.FileSize,
		&doc.ContentHash,
		&status,
		&extractedData,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.MimeType = mimeType.String
	doc.Status = model.ProcessingStatus(status)
	if extractedData.Valid && extractedData.String != "" {
		doc.ExtractedData = []byte(extractedData.String)
	}

	return &doc, nil
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
