package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/afonsomatos/recibo/internal/ingest"
	"github.com/afonsomatos/recibo/internal/model"
	"github.com/afonsomatos/recibo/internal/source"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Ingest new documents from the source folder",
		Long: `Scan the tenant's source folder, ingest every new document through
extraction, and derive expenses. Documents already ingested are skipped
by content hash, so re-running sync is always safe.`,
		RunE: runSync,
	}

	cmd.Flags().Int64("tenant", 0, "tenant id to sync (required)")
	cmd.Flags().String("source", "", "source directory (default: sources.<tenant> from config)")
	cmd.Flags().Bool("allow-duplicates", false, "process documents even when flagged as duplicates")
	cmd.Flags().Bool("recursive", false, "descend into subdirectories of the source")
	cmd.Flags().Int("concurrency", 0, "number of documents processed in parallel")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	tenantID, _ := cmd.Flags().GetInt64("tenant")
	sourcePath, _ := cmd.Flags().GetString("source")
	allowDuplicates, _ := cmd.Flags().GetBool("allow-duplicates")
	recursive, _ := cmd.Flags().GetBool("recursive")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if sourcePath == "" {
		sourcePath = viper.GetString(fmt.Sprintf("sources.%d", tenantID))
	}
	if sourcePath == "" {
		return fmt.Errorf("no source directory: pass --source or configure sources.%d", tenantID)
	}
	sourcePath = expandPath(sourcePath)

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

	var opts []source.Option
	if recursive {
		opts = append(opts, source.WithRecursive())
	}
	src := source.NewLocalDir(opts...)

	orchCfg := orchestratorConfig(allowDuplicates, concurrency)

	var bar *progressbar.ProgressBar
	orchCfg.OnProgress = func(completed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Ingesting documents"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(completed)
	}

	orch := ingest.New(store, src, extractor, orchCfg)

	summary, err := orch.RunOnce(ctx, tenantID, sourcePath)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, summary *model.RunSummary) {
	cmd.Printf("\nSync finished in %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	cmd.Printf("  Candidates:         %d\n", summary.TotalCandidates)
	cmd.Printf("  Processed:          %d\n", summary.DocumentsProcessed)
	cmd.Printf("  Skipped duplicates: %d\n", summary.DocumentsSkippedAsDuplicate)
	cmd.Printf("  Failed:             %d\n", summary.DocumentsFailed)
	cmd.Printf("  Expenses created:   %d\n", summary.ExpensesCreated)

	for _, result := range summary.Results {
		switch {
		case result.Outcome == model.OutcomeFailed:
			cmd.Printf("  ✗ %s: %s error: %s\n", result.Filename, result.ErrorKind, result.Error)
		case result.ExpenseError != "":
			cmd.Printf("  ! %s: document saved but expense failed: %s\n", result.Filename, result.ExpenseError)
			slog.Warn("Expense missing for completed document",
				"file", result.Filename,
				"document_id", result.DocumentID)
		}
	}
}
