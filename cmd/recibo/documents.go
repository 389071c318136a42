package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List a tenant's ingested documents",
		RunE:  runDocuments,
	}

	cmd.Flags().Int64("tenant", 0, "tenant id (required)")
	cmd.Flags().Int("limit", 50, "maximum number of documents to show")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	tenantID, _ := cmd.Flags().GetInt64("tenant")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	docs, err := store.GetDocumentsByTenant(ctx, tenantID, limit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tSIZE\tINGESTED")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			doc.ID,
			doc.OriginalFilename,
			doc.Status,
			doc.FileSize,
			formatDate(doc.CreatedAt))
	}
	return w.Flush()
}
