package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"invodex/internal/csvexport"
	"invodex/internal/domain"
	"invodex/internal/editor"
	"invodex/internal/listing"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List, inspect, edit and delete extracted invoices",
}

var (
	listSearch string
	listRange  string
	listSort   string
	listOrder  string
	listCSV    bool
	listOutput string
)

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, optionally filtered and sorted",
	Example: `  invodex invoices list
  invodex invoices list --search acme --range month
  invodex invoices list --sort total --order desc
  invodex invoices list --csv --output invoices.csv`,
	Args: cobra.NoArgs,
	RunE: runInvoicesList,
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one invoice in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesShow,
}

var (
	editItemQty    []string
	editItemPrice  []string
	editAddItems   int
	editRemoveItem []int
	editTaxRate    float64
)

var invoicesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit invoice line items and recalculate totals",
	Long: `Edit an invoice's line items. Item edits use zero-based indexes in
i=value form and totals are recalculated after every change. Edits are
applied in a fixed order: quantities, unit prices, tax rate, added
items, removals. Removals are applied highest index first so that the
indexes you pass refer to the invoice as fetched.`,
	Example: `  invodex invoices edit INV_20240101_000001 --item-qty 0=3
  invodex invoices edit INV_20240101_000001 --item-price 1=99.50 --tax-rate 0.18
  invodex invoices edit INV_20240101_000001 --add-item --remove-item 2`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoicesEdit,
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesDelete,
}

func init() {
	rootCmd.AddCommand(invoicesCmd)
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesEditCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)

	invoicesListCmd.Flags().StringVar(&listSearch, "search", "", "substring match on invoice number, customer and PO number")
	invoicesListCmd.Flags().StringVar(&listRange, "range", "all", "date range: all, today, week, month, year")
	invoicesListCmd.Flags().StringVar(&listSort, "sort", "invoice_date", "sort key: invoice_date, total, customer_name, invoice_number")
	invoicesListCmd.Flags().StringVar(&listOrder, "order", "desc", "sort order: asc or desc")
	invoicesListCmd.Flags().BoolVar(&listCSV, "csv", false, "emit CSV instead of a table")
	invoicesListCmd.Flags().StringVar(&listOutput, "output", "", "write CSV to this file instead of stdout")

	invoicesEditCmd.Flags().StringArrayVar(&editItemQty, "item-qty", nil, "set item quantity, i=n (repeatable)")
	invoicesEditCmd.Flags().StringArrayVar(&editItemPrice, "item-price", nil, "set item unit price, i=v (repeatable)")
	invoicesEditCmd.Flags().CountVar(&editAddItems, "add-item", "append an empty line item (repeatable)")
	invoicesEditCmd.Flags().IntSliceVar(&editRemoveItem, "remove-item", nil, "remove the item at index i (repeatable)")
	invoicesEditCmd.Flags().Float64Var(&editTaxRate, "tax-rate", 0, "set the tax rate as a fraction, e.g. 0.18")
}

func runInvoicesList(cmd *cobra.Command, args []string) error {
	invoices, err := apiClient().ListAllInvoices(cmd.Context(), "")
	if err != nil {
		return err
	}

	filtered := listing.FilterAndSort(invoices, listing.Params{
		Query:     listSearch,
		DateRange: listing.DateRange(listRange),
		SortBy:    listing.SortKey(listSort),
		SortOrder: listing.SortOrder(listOrder),
	})

	if listCSV {
		return writeListCSV(filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("no invoices found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tDATE\tCUSTOMER\tTOTAL")
	for i := range filtered {
		inv := &filtered[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n",
			inv.ID, inv.InvoiceNumber, inv.InvoiceDate, inv.CustomerName, inv.TotalAmount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d invoices\n", len(filtered))
	return nil
}

func writeListCSV(invoices []domain.Invoice) error {
	out := os.Stdout
	if listOutput != "" {
		f, err := os.Create(listOutput)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		// Files get a BOM so Excel opens them as UTF-8.
		if _, err := f.Write(csvexport.BOM); err != nil {
			return err
		}
		out = f
	}

	w := csvexport.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func runInvoicesShow(cmd *cobra.Command, args []string) error {
	inv, err := apiClient().GetInvoice(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printInvoice(inv)
	return nil
}

func runInvoicesEdit(cmd *cobra.Command, args []string) error {
	c := apiClient()
	inv, err := c.GetInvoice(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	e := editor.New(*inv)

	for _, pair := range editItemQty {
		i, qty, err := parseIntPair(pair)
		if err != nil {
			return fmt.Errorf("--item-qty %s: %w", pair, err)
		}
		if err := e.SetItemQuantity(i, qty); err != nil {
			return err
		}
	}
	for _, pair := range editItemPrice {
		i, price, err := parseFloatPair(pair)
		if err != nil {
			return fmt.Errorf("--item-price %s: %w", pair, err)
		}
		if err := e.SetItemUnitPrice(i, price); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("tax-rate") {
		if err := e.SetTaxRate(editTaxRate); err != nil {
			return err
		}
	}
	for i := 0; i < editAddItems; i++ {
		e.AddItem()
	}
	// Highest index first, so earlier removals do not shift later ones.
	removals := append([]int(nil), editRemoveItem...)
	sort.Sort(sort.Reverse(sort.IntSlice(removals)))
	for _, i := range removals {
		if err := e.RemoveItem(i); err != nil {
			return err
		}
	}

	edited := e.Invoice()
	updated, err := c.UpdateInvoice(cmd.Context(), args[0], &edited)
	if err != nil {
		return err
	}

	fmt.Println("invoice updated")
	printInvoice(updated)
	return nil
}

func runInvoicesDelete(cmd *cobra.Command, args []string) error {
	if err := apiClient().DeleteInvoice(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func printInvoice(inv *domain.Invoice) {
	fmt.Printf("Invoice %s (%s)\n", inv.InvoiceNumber, inv.ID)
	fmt.Printf("Date:        %s\n", inv.InvoiceDate)
	fmt.Printf("Customer:    %s", inv.CustomerName)
	if inv.CustomerID != "" {
		fmt.Printf(" (%s)", inv.CustomerID)
	}
	fmt.Println()
	if inv.PONumber != "" {
		fmt.Printf("PO number:   %s\n", inv.PONumber)
	}
	if inv.Salesperson != "" {
		fmt.Printf("Salesperson: %s\n", inv.Salesperson)
	}
	if inv.Terms != "" {
		fmt.Printf("Terms:       %s\n", inv.Terms)
	}

	fmt.Println()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tITEM\tDESCRIPTION\tQTY\tUNIT PRICE\tTOTAL")
	for i := range inv.Items {
		it := &inv.Items[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%.2f\n",
			i, it.ItemNumber, it.Description, it.Quantity, it.UnitPrice, it.Total)
	}
	tw.Flush()

	fmt.Println()
	fmt.Printf("Subtotal:    %.2f\n", inv.Subtotal)
	fmt.Printf("Tax (%.1f%%):  %.2f\n", inv.TaxRate*100, inv.TaxAmount)
	fmt.Printf("Total:       %.2f\n", inv.TotalAmount)
	if inv.ExtractionConfidence > 0 {
		fmt.Printf("Confidence:  %.0f%%\n", inv.ExtractionConfidence*100)
	}
}

func parseIntPair(pair string) (int, int, error) {
	idx, val, err := splitPair(pair)
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, 0, fmt.Errorf("value %q is not an integer", val)
	}
	return idx, n, nil
}

func parseFloatPair(pair string) (int, float64, error) {
	idx, val, err := splitPair(pair)
	if err != nil {
		return 0, 0, err
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("value %q is not a number", val)
	}
	return idx, f, nil
}

func splitPair(pair string) (int, string, error) {
	k, v, ok := strings.Cut(pair, "=")
	if !ok {
		return 0, "", fmt.Errorf("expected i=value")
	}
	idx, err := strconv.Atoi(k)
	if err != nil {
		return 0, "", fmt.Errorf("index %q is not an integer", k)
	}
	return idx, v, nil
}
