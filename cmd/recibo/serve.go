package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/afonsomatos/recibo/internal/ingest"
	"github.com/afonsomatos/recibo/internal/server"
	"github.com/afonsomatos/recibo/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP sync API",
		Long: `Start the HTTP server that exposes the ingestion pipeline. Syncs can
then be triggered per tenant with POST /api/sync. With --interval set,
configured tenants are also synced on a schedule.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Duration("interval", 0, "periodically sync all configured tenants (0 disables)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	interval, _ := cmd.Flags().GetDuration("interval")

	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	extractor, err := initExtractor()
	if err != nil {
		return err
	}

	orch := ingest.New(store, source.NewLocalDir(), extractor, orchestratorConfig(false, viper.GetInt("pipeline.concurrency")))
	srv := server.New(addr, orch)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	if interval > 0 {
		go runScheduler(ctx, orch, interval)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return <-errCh
	}
}

// runScheduler syncs every tenant under the sources config key on a fixed
// interval until the context is canceled.
func runScheduler(ctx context.Context, orch *ingest.Orchestrator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			syncConfiguredTenants(ctx, orch)
		}
	}
}

func syncConfiguredTenants(ctx context.Context, orch *ingest.Orchestrator) {
	sources := viper.GetStringMapString("sources")
	if len(sources) == 0 {
		slog.Warn("Scheduler tick with no configured sources")
		return
	}

	for tenant, dir := range sources {
		var tenantID int64
		if _, err := fmt.Sscanf(tenant, "%d", &tenantID); err != nil {
			slog.Error("Invalid tenant id in sources config", "tenant", tenant)
			continue
		}

		summary, err := orch.RunOnce(ctx, tenantID, expandPath(dir))
		if err != nil {
			slog.Error("Scheduled sync failed", "tenant_id", tenantID, "error", err)
			continue
		}

		slog.Info("Scheduled sync finished",
			"tenant_id", tenantID,
			"processed", summary.DocumentsProcessed,
			"skipped_duplicates", summary.DocumentsSkippedAsDuplicate,
			"failed", summary.DocumentsFailed)
	}
}
