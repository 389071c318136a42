package main

import (
	"fmt"
	"os"

	"github.com/afonsomatos/recibo/internal/bank"
	"github.com/spf13/cobra"
)

func importBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-bank <file.ofx>",
		Short: "Import an OFX bank statement",
		Long: `Parse an OFX/QFX statement export and store its transactions for the
tenant. Re-importing overlapping statements is safe: lines already seen
are skipped by their dedup hash.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportBank,
	}

	cmd.Flags().Int64("tenant", 0, "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runImportBank(cmd *cobra.Command, args []string) error {
	tenantID, _ := cmd.Flags().GetInt64("tenant")
	path := args[0]

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = file.Close() }()

	ctx := cmd.Context()

	transactions, err := bank.NewParser().ParseFile(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to parse statement: %w", err)
	}
	if len(transactions) == 0 {
		cmd.Println("Statement contains no transactions.")
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	inserted, err := store.SaveBankTransactions(ctx, tenantID, transactions)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	cmd.Printf("Imported %d of %d transactions (%d already present).\n",
		inserted, len(transactions), len(transactions)-inserted)
	return nil
}
