package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func TestLocalDirListCandidates(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "b-fatura.pdf", []byte("pdf content"))
	writeTestFile(t, dir, "a-recibo.jpg", []byte("jpg content"))
	writeTestFile(t, dir, "notes.txt", []byte("ignored"))
	writeTestFile(t, dir, "SCAN.PDF", []byte("uppercase extension"))

	src := NewLocalDir()
	candidates, err := src.ListCandidates(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	assert.Equal(t, "SCAN.PDF", candidates[0].Name)
	assert.Equal(t, "a-recibo.jpg", candidates[1].Name)
	assert.Equal(t, "b-fatura.pdf", candidates[2].Name)

	for _, c := range candidates {
		assert.NotEmpty(t, c.Path)
		assert.Positive(t, c.Size)
		assert.False(t, c.ModifiedAt.IsZero())
	}
}

func TestLocalDirSkipsSubdirectoriesByDefault(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "top.pdf", []byte("top"))

	nested := filepath.Join(dir, "arquivo")
	require.NoError(t, os.Mkdir(nested, 0750))
	writeTestFile(t, nested, "old.pdf", []byte("nested"))

	src := NewLocalDir()
	candidates, err := src.ListCandidates(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "top.pdf", candidates[0].Name)
}

func TestLocalDirRecursive(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "top.pdf", []byte("top"))

	nested := filepath.Join(dir, "arquivo")
	require.NoError(t, os.Mkdir(nested, 0750))
	writeTestFile(t, nested, "old.pdf", []byte("nested"))

	src := NewLocalDir(WithRecursive())
	candidates, err := src.ListCandidates(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, candidates, 2)
}

func TestLocalDirCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "statement.csv", []byte("csv"))
	writeTestFile(t, dir, "fatura.pdf", []byte("pdf"))

	src := NewLocalDir(WithExtensions([]string{".csv"}))
	candidates, err := src.ListCandidates(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "statement.csv", candidates[0].Name)
}

func TestLocalDirListErrors(t *testing.T) {
	src := NewLocalDir()
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		_, err := src.ListCandidates(ctx, filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("path is a file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestFile(t, dir, "fatura.pdf", []byte("pdf"))

		_, err := src.ListCandidates(ctx, path)
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "fatura.pdf", []byte("pdf"))

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := src.ListCandidates(canceled, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalDirDownload(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "fatura.pdf", []byte("pdf content"))

	src := NewLocalDir()
	ctx := context.Background()

	candidates, err := src.ListCandidates(ctx, dir)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	data, err := src.Download(ctx, candidates[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf content"), data)

	_, err = src.Download(ctx, candidates[0])
	require.NoError(t, err)

	t.Run("missing file", func(t *testing.T) {
		require.NoError(t, os.Remove(path))
		_, err := src.Download(ctx, candidates[0])
		assert.Error(t, err)
	})
}
