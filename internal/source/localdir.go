// Package source provides candidate file sources for the ingestion
// pipeline.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/afonsomatos/recibo/internal/model"
)

// DefaultExtensions are the file types the pipeline knows how to extract.
var DefaultExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".xml"}

// LocalDir serves candidates from a directory on the local filesystem,
// typically a folder kept in sync with the tenant's cloud drive.
type LocalDir struct {
	extensions map[string]bool
	recursive  bool
}

// Option configures a LocalDir source.
type Option func(*LocalDir)

// WithRecursive makes listing descend into subdirectories.
func WithRecursive() Option {
	return func(l *LocalDir) { l.recursive = true }
}

// WithExtensions replaces the default extension filter. Extensions are
// matched case-insensitively and must include the leading dot.
func WithExtensions(extensions []string) Option {
	return func(l *LocalDir) {
		l.extensions = make(map[string]bool, len(extensions))
		for _, ext := range extensions {
			l.extensions[strings.ToLower(ext)] = true
		}
	}
}

// NewLocalDir creates a local directory source.
func NewLocalDir(opts ...Option) *LocalDir {
	l := &LocalDir{}
	WithExtensions(DefaultExtensions)(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListCandidates returns the matching files under sourcePath, sorted by
// name so runs are deterministic.
func (l *LocalDir) ListCandidates(ctx context.Context, sourcePath string) ([]model.FileCandidate, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", sourcePath)
	}

	var candidates []model.FileCandidate

	err = filepath.WalkDir(sourcePath, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if !l.recursive && path != sourcePath {
				return fs.SkipDir
			}
			return nil
		}

		if !l.extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			return nil
		}

		fileInfo, err := entry.Info()
		if err != nil {
			return err
		}

		candidates = append(candidates, model.FileCandidate{
			Name:       entry.Name(),
			Path:       path,
			Size:       fileInfo.Size(),
			ModifiedAt: fileInfo.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})

	return candidates, nil
}

// Download reads the candidate's bytes from disk.
func (l *LocalDir) Download(ctx context.Context, candidate model.FileCandidate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(candidate.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", candidate.Path, err)
	}
	return data, nil
}
