package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/afonsomatos/recibo/internal/extract"
	"github.com/afonsomatos/recibo/internal/ingest"
	"github.com/afonsomatos/recibo/internal/service"
	"github.com/afonsomatos/recibo/internal/storage"
	"github.com/spf13/viper"
)

// expandPath resolves a leading ~ and any environment variables in a
// configured path.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

// initStorage opens the configured database and brings its schema up to
// date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/recibo/recibo.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initExtractor builds the extraction client from configuration.
func initExtractor() (ingest.Extractor, error) {
	endpoint := viper.GetString("extraction.endpoint")
	if endpoint == "" {
		return nil, fmt.Errorf("extraction.endpoint is not configured")
	}

	return extract.NewClient(extract.Config{
		Provider: viper.GetString("extraction.provider"),
		Endpoint: endpoint,
		APIKey:   viper.GetString("extraction.api_key"),
		Model:    viper.GetString("extraction.model"),
		Timeout:  viper.GetDuration("extraction.timeout"),
	})
}

// orchestratorConfig assembles pipeline settings from configuration plus
// the per-command overrides.
func orchestratorConfig(allowDuplicates bool, concurrency int) ingest.Config {
	cfg := ingest.DefaultConfig()
	cfg.AllowDuplicates = allowDuplicates
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if timeout := viper.GetDuration("pipeline.download_timeout"); timeout > 0 {
		cfg.DownloadTimeout = timeout
	}
	if timeout := viper.GetDuration("pipeline.extract_timeout"); timeout > 0 {
		cfg.ExtractTimeout = timeout
	}
	if timeout := viper.GetDuration("pipeline.persist_timeout"); timeout > 0 {
		cfg.PersistTimeout = timeout
	}
	return cfg
}

// formatDate renders a timestamp for table output.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
