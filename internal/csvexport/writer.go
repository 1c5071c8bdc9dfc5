package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"invodex/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (17 columns).
var columns = []string{
	"ID",
	"Invoice Number",
	"Invoice Date",
	"Customer ID",
	"Customer Name",
	"Subtotal",
	"Tax Rate",
	"Tax Amount",
	"Total",
	"Salesperson",
	"PO Number",
	"Terms",
	"Line Item Count",
	"Extraction Confidence",
	"Ship Date",
	"Created At",
	"Updated At",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		row := invoiceToRow(&invoices[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// invoiceToRow converts a single invoice to a 17-element string slice.
func invoiceToRow(inv *domain.Invoice) []string {
	row := make([]string, len(columns))

	row[0] = inv.ID
	row[1] = inv.InvoiceNumber
	row[2] = inv.InvoiceDate
	row[3] = inv.CustomerID
	row[4] = inv.CustomerName
	row[5] = formatMoney(inv.Subtotal)
	row[6] = strconv.FormatFloat(inv.TaxRate, 'f', 4, 64)
	row[7] = formatMoney(inv.TaxAmount)
	row[8] = formatMoney(inv.TotalAmount)
	row[9] = inv.Salesperson
	row[10] = inv.PONumber
	row[11] = inv.Terms
	row[12] = strconv.Itoa(len(inv.Items))
	row[13] = strconv.FormatFloat(inv.ExtractionConfidence, 'f', 2, 64)
	row[14] = inv.ShipDate
	row[15] = inv.CreatedAt.Format(time.RFC3339)
	row[16] = formatTime(inv.UpdatedAt)

	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
