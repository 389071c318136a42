package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
	"github.com/google/uuid"
)

// SaveBankTransactions inserts imported bank transactions for a tenant,
// silently skipping rows whose dedup hash is already present. Returns the
// number of rows actually inserted.
func (s *SQLiteStorage) SaveBankTransactions(ctx context.Context, tenantID int64, transactions []model.BankTransaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return 0, err
	}
	if err := validateBankTransactions(transactions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO bank_transactions (
			id, tenant_id, hash, date, name, payee, amount, account_id, transaction_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range transactions {
		txn := transactions[i]
		txn.TenantID = tenantID
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}

		result, execErr := stmt.ExecContext(ctx,
			txn.ID,
			txn.TenantID,
			txn.Hash,
			txn.Date,
			txn.Name,
			txn.Payee,
			txn.Amount,
			txn.AccountID,
			txn.Type,
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert bank transaction %s: %w", txn.ID, execErr)
		}

		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return 0, fmt.Errorf("failed to check affected rows: %w", affErr)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bank transactions: %w", err)
	}

	return inserted, nil
}

// GetBankTransactionsByTenant lists a tenant's bank transactions within a
// date range, oldest first. Zero start/end mean unbounded.
func (s *SQLiteStorage) GetBankTransactionsByTenant(ctx context.Context, tenantID int64, start, end time.Time) ([]model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("%w: %v is before %v", ErrInvalidDateRange, end, start)
	}

	query := `
		SELECT id, tenant_id, hash, date, name, payee, amount, account_id, transaction_type
		FROM bank_transactions
		WHERE tenant_id = ?`
	args := []any{tenantID}

	if !start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, start)
	}
	if !end.IsZero() {
		query += ` AND date <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.BankTransaction
	for rows.Next() {
		var txn model.BankTransaction
		if err := rows.Scan(
			&txn.ID,
			&txn.TenantID,
			&txn.Hash,
			&txn.Date,
			&txn.Name,
			&txn.Payee,
			&txn.Amount,
			&txn.AccountID,
			&txn.Type,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bank transactions: %w", err)
	}

	return transactions, nil
}
