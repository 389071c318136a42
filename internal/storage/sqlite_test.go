package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates parent directory", func(t *testing.T) {
		dbPath := t.TempDir() + "/nested/dir/recibo.db"

		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Migrate(context.Background()))
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}
