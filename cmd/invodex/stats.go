package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store-wide invoice statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := apiClient().Statistics(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Invoices:     %d\n", stats.TotalInvoices)
	fmt.Printf("Line items:   %d\n", stats.TotalItems)
	fmt.Printf("Total amount: %.2f\n", stats.TotalAmount)
	if stats.LastUpdated != nil {
		fmt.Printf("Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	return nil
}
