package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
	"github.com/google/uuid"
)

// CreateExpense inserts a derived expense record and returns its id.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateExpense(expense); err != nil {
		return "", err
	}

	id := expense.ID
	if id == "" {
		id = uuid.NewString()
	}

	expenseDate := expense.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (
			id, tenant_id, document_id, vendor, amount,
			vat_amount, vat_rate, category, description, expense_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		expense.TenantID,
		expense.DocumentID,
		expense.Vendor,
		expense.Amount,
		expense.VATAmount,
		expense.VATRate,
		expense.Category,
		expense.Description,
		expenseDate,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert expense: %w", err)
	}

	return id, nil
}

// GetExpensesByTenant lists a tenant's expenses, newest first.
func (s *SQLiteStorage) GetExpensesByTenant(ctx context.Context, tenantID int64, limit int) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, document_id, vendor, amount,
		       vat_amount, vat_rate, category, description, expense_date, created_at
		FROM expenses
		WHERE tenant_id = ?
		ORDER BY expense_date DESC
		LIMIT ?
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var expense model.Expense
		if err := rows.Scan(
			&expense.ID,
			&expense.TenantID,
			&expense.DocumentID,
			&expense.Vendor,
			&expense.Amount,
			&expense.VATAmount,
			&expense.VATRate,
			&expense.Category,
			&expense.Description,
			&expense.ExpenseDate,
			&expense.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// GetExpenseCountForDocument returns how many expenses reference a document.
// The pipeline uses this as a guard against creating a second expense for
// the same document.
func (s *SQLiteStorage) GetExpenseCountForDocument(ctx context.Context, tenantID int64, documentID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return 0, err
	}
	if err := validateString(documentID, "documentID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM expenses WHERE tenant_id = ? AND document_id = ?
	`, tenantID, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	return count, nil
}
