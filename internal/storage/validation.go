package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/afonsomatos/recibo/internal/model"
)

// Validation and lookup errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTenantID    = errors.New("tenant id must be >= 1")
	ErrInvalidStatus      = errors.New("invalid processing status")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrInvalidExpense     = errors.New("invalid expense")
	ErrInvalidTransaction = errors.New("invalid bank transaction")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTenantID ensures a tenant id is explicit and positive. There is
// deliberately no default tenant.
func validateTenantID(tenantID int64) error {
	if tenantID < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTenantID, tenantID)
	}
	return nil
}

// validateStatus ensures the status is one of the known pipeline states.
func validateStatus(status model.ProcessingStatus) error {
	switch status {
	case model.StatusProcessing, model.StatusCompleted, model.StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
}

// validateDocument validates a document ahead of insertion.
func validateDocument(doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document", ErrNilParameter)
	}
	if err := validateTenantID(doc.TenantID); err != nil {
		return err
	}
	if doc.Filename == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidDocument)
	}
	if doc.OriginalFilename == "" {
		return fmt.Errorf("%w: missing original filename", ErrInvalidDocument)
	}
	if doc.ContentHash == "" {
		return fmt.Errorf("%w: missing content hash", ErrInvalidDocument)
	}
	if doc.FileSize < 0 {
		return fmt.Errorf("%w: negative file size", ErrInvalidDocument)
	}
	return validateStatus(doc.Status)
}

// validateExpense validates an expense ahead of insertion.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if err := validateTenantID(expense.TenantID); err != nil {
		return err
	}
	if expense.DocumentID == "" {
		return fmt.Errorf("%w: missing document id", ErrInvalidExpense)
	}
	if expense.Vendor == "" {
		return fmt.Errorf("%w: missing vendor", ErrInvalidExpense)
	}
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if !strings.Contains(expense.Description, expense.DocumentID) {
		return fmt.Errorf("%w: description must reference document id", ErrInvalidExpense)
	}
	return nil
}

// validateBankTransactions validates a slice of bank transactions.
func validateBankTransactions(transactions []model.BankTransaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i := range transactions {
		txn := &transactions[i]
		if txn.Date.IsZero() {
			return fmt.Errorf("%w at index %d: missing date", ErrInvalidTransaction, i)
		}
		if txn.Name == "" {
			return fmt.Errorf("%w at index %d: missing name", ErrInvalidTransaction, i)
		}
		if txn.AccountID == "" {
			return fmt.Errorf("%w at index %d: missing account id", ErrInvalidTransaction, i)
		}
	}
	return nil
}
