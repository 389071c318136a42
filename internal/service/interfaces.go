// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
)

// Storage defines the contract for our persistence layer. Every operation
// is scoped by tenant id: documents and expenses belong to exactly one
// tenant and are never visible across tenants.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *model.Document) (string, error)
	UpdateDocumentStatus(ctx context.Context, tenantID int64, id string, status model.ProcessingStatus, extractedData []byte) error
	GetDocumentByID(ctx context.Context, tenantID int64, id string) (*model.Document, error)
	GetDocumentsByContentHash(ctx context.Context, tenantID int64, contentHash string) ([]model.Document, error)
	GetDocumentsByFilename(ctx context.Context, tenantID int64, filename string) ([]model.Document, error)
	GetDocumentsByTenant(ctx context.Context, tenantID int64, limit int) ([]model.Document, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) (string, error)
	GetExpensesByTenant(ctx context.Context, tenantID int64, limit int) ([]model.Expense, error)
	GetExpenseCountForDocument(ctx context.Context, tenantID int64, documentID string) (int, error)

	// Bank statement operations
	SaveBankTransactions(ctx context.Context, tenantID int64, transactions []model.BankTransaction) (int, error)
	GetBankTransactionsByTenant(ctx context.Context, tenantID int64, start, end time.Time) ([]model.BankTransaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
