package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"invodex/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show a revenue analytics dashboard",
	Long: `Fetch every invoice and print an aggregate dashboard: total and
average revenue, month-over-month growth, top customers, monthly
revenue buckets and recent activity.`,
	Args: cobra.NoArgs,
	RunE: runAnalytics,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	invoices, err := apiClient().ListAllInvoices(cmd.Context(), "")
	if err != nil {
		return err
	}

	summary := analytics.Summarize(invoices)

	fmt.Printf("Total revenue:  %.2f\n", summary.TotalRevenue)
	fmt.Printf("Invoices:       %d\n", summary.InvoiceCount)
	fmt.Printf("Average value:  %.2f\n", summary.AverageValue)
	fmt.Printf("Growth rate:    %+.1f%%\n", summary.GrowthRate)

	if len(summary.TopCustomers) > 0 {
		fmt.Println("\nTop customers")
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CUSTOMER\tINVOICES\tREVENUE")
		for _, c := range summary.TopCustomers {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\n", c.CustomerName, c.InvoiceCount, c.TotalAmount)
		}
		tw.Flush()
	}

	if len(summary.MonthlyRevenue) > 0 {
		fmt.Println("\nMonthly revenue")
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tINVOICES\tREVENUE")
		for _, m := range summary.MonthlyRevenue {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\n", m.Month, m.Count, m.Revenue)
		}
		tw.Flush()
	}

	if len(summary.RecentActivity) > 0 {
		fmt.Println("\nRecent activity")
		for _, a := range summary.RecentActivity {
			fmt.Printf("  %-12s %-40s %10.2f\n", a.When, a.Description, a.Amount)
		}
	}
	return nil
}
