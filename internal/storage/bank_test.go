package storage

import (
	"context"
	"testing"
	"time"

	"github.com/afonsomatos/recibo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBankTransactions() []model.BankTransaction {
	return []model.BankTransaction{
		{
			Date:      time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
			Name:      "DD EDP COMERCIAL SA",
			Payee:     "EDP COMERCIAL SA",
			Amount:    83.12,
			AccountID: "45310012345",
			Type:      "DEBIT",
		},
		{
			Date:      time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			Name:      "COMPRA STAPLES LISBOA",
			Payee:     "STAPLES LISBOA",
			Amount:    49.90,
			AccountID: "45310012345",
			Type:      "DEBIT",
		},
	}
}

func TestSaveBankTransactions(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	inserted, err := store.SaveBankTransactions(ctx, 1, testBankTransactions())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	saved, err := store.GetBankTransactionsByTenant(ctx, 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	// Oldest first, with hash and tenant backfilled on save.
	assert.Equal(t, "EDP COMERCIAL SA", saved[0].Payee)
	assert.Equal(t, int64(1), saved[0].TenantID)
	assert.NotEmpty(t, saved[0].Hash)
	assert.NotEmpty(t, saved[0].ID)
}

func TestSaveBankTransactionsDeduplicates(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	inserted, err := store.SaveBankTransactions(ctx, 1, testBankTransactions())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-importing an overlapping statement inserts nothing new.
	inserted, err = store.SaveBankTransactions(ctx, 1, testBankTransactions())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	saved, err := store.GetBankTransactionsByTenant(ctx, 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	// The same lines under another tenant are not duplicates.
	inserted, err = store.SaveBankTransactions(ctx, 2, testBankTransactions())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestSaveBankTransactionsValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	t.Run("nil slice", func(t *testing.T) {
		_, err := store.SaveBankTransactions(ctx, 1, nil)
		assert.ErrorIs(t, err, ErrNilParameter)
	})

	t.Run("missing date", func(t *testing.T) {
		txns := testBankTransactions()
		txns[1].Date = time.Time{}

		_, err := store.SaveBankTransactions(ctx, 1, txns)
		assert.ErrorIs(t, err, ErrInvalidTransaction)
	})

	t.Run("invalid tenant", func(t *testing.T) {
		_, err := store.SaveBankTransactions(ctx, 0, testBankTransactions())
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})
}

func TestGetBankTransactionsByTenantDateRange(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.SaveBankTransactions(ctx, 1, testBankTransactions())
	require.NoError(t, err)

	t.Run("bounded range", func(t *testing.T) {
		start := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

		txns, err := store.GetBankTransactionsByTenant(ctx, 1, start, end)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "STAPLES LISBOA", txns[0].Payee)
	})

	t.Run("open start", func(t *testing.T) {
		end := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)

		txns, err := store.GetBankTransactionsByTenant(ctx, 1, time.Time{}, end)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "EDP COMERCIAL SA", txns[0].Payee)
	})

	t.Run("inverted range", func(t *testing.T) {
		start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

		_, err := store.GetBankTransactionsByTenant(ctx, 1, start, end)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}
