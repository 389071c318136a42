package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List a tenant's derived expenses",
		RunE:  runExpenses,
	}

	cmd.Flags().Int64("tenant", 0, "tenant id (required)")
	cmd.Flags().Int("limit", 50, "maximum number of expenses to show")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runExpenses(cmd *cobra.Command, _ []string) error {
	tenantID, _ := cmd.Flags().GetInt64("tenant")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	expenses, err := store.GetExpensesByTenant(ctx, tenantID, limit)
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	if len(expenses) == 0 {
		cmd.Println("No expenses found.")
		return nil
	}

	var total, totalVAT float64
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tVENDOR\tCATEGORY\tAMOUNT\tVAT")
	for _, expense := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\n",
			expense.ExpenseDate.Format("2006-01-02"),
			expense.Vendor,
			expense.Category,
			expense.Amount,
			expense.VATAmount)
		total += expense.Amount
		totalVAT += expense.VATAmount
	}
	fmt.Fprintf(w, "\tTOTAL\t\t%.2f\t%.2f\n", total, totalVAT)
	return w.Flush()
}
