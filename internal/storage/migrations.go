package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. Schema evolution happens only here: there is no runtime column
// probing anywhere in the codebase.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Documents table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS documents (
					id TEXT PRIMARY KEY,
					tenant_id INTEGER NOT NULL,
					filename TEXT NOT NULL,
					original_filename TEXT NOT NULL,
					mime_type TEXT,
					file_size INTEGER NOT NULL DEFAULT 0,
					content_hash TEXT NOT NULL,
					status TEXT NOT NULL,
					extracted_data TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_documents_tenant_hash ON documents(tenant_id, content_hash)`,
				`CREATE INDEX idx_documents_tenant_filename ON documents(tenant_id, original_filename)`,
				`CREATE INDEX idx_documents_tenant_status ON documents(tenant_id, status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Derived expenses table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					tenant_id INTEGER NOT NULL,
					document_id TEXT NOT NULL,
					vendor TEXT NOT NULL,
					amount REAL NOT NULL,
					vat_amount REAL NOT NULL DEFAULT 0,
					vat_rate REAL NOT NULL DEFAULT 0,
					category TEXT,
					description TEXT NOT NULL,
					expense_date DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (document_id) REFERENCES documents(id)
				)`,
				`CREATE INDEX idx_expenses_tenant ON expenses(tenant_id)`,
				`CREATE INDEX idx_expenses_document ON expenses(tenant_id, document_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Bank transactions table for statement imports",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS bank_transactions (
					id TEXT NOT NULL,
					tenant_id INTEGER NOT NULL,
					hash TEXT NOT NULL,
					date DATETIME NOT NULL,
					name TEXT NOT NULL,
					payee TEXT,
					amount REAL NOT NULL,
					account_id TEXT NOT NULL,
					transaction_type TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (tenant_id, hash)
				)`,
				`CREATE INDEX idx_bank_transactions_tenant_date ON bank_transactions(tenant_id, date)`,
				`CREATE INDEX idx_bank_transactions_account ON bank_transactions(tenant_id, account_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
