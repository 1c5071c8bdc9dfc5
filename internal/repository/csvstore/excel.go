package csvstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"invodex/internal/domain"
)

const (
	headerSheet = "SalesOrderHeader"
	detailSheet = "SalesOrderDetail"
)

// ExportExcel writes the full store to an Excel workbook with one sheet
// of invoice headers and one of line items. An empty path picks a
// timestamped file in the data directory.
func (s *Store) ExportExcel(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = filepath.Join(s.dataDir, fmt.Sprintf("exported_data_%s.xlsx", s.now().Format("20060102_150405")))
	}
	if err := s.exportLocked(path); err != nil {
		return "", fmt.Errorf("csvstore.ExportExcel: %w", err)
	}
	return path, nil
}

func (s *Store) exportLocked(path string) error {
	invoices, err := s.loadAll()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", headerSheet)
	if _, err := f.NewSheet(detailSheet); err != nil {
		return err
	}

	headerData := make([][]interface{}, 0, len(invoices))
	var detailData [][]interface{}
	for i := range invoices {
		headerData = append(headerData, headerCells(&invoices[i]))
		detailData = append(detailData, detailCells(&invoices[i])...)
	}
	if err := writeSheet(f, headerSheet, headerColumns, headerData); err != nil {
		return err
	}
	if err := writeSheet(f, detailSheet, detailColumns, detailData); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return err
	}
	log.Printf("csvstore: exported %d invoices to %s", len(invoices), path)
	return nil
}

// Backup snapshots the store into a timestamped directory under the
// backup directory: copies of both CSV files plus an Excel export.
func (s *Store) Backup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.backupDir, fmt.Sprintf("backup_%s", s.now().Format("20060102_150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("csvstore.Backup: %w", err)
	}

	for _, src := range []string{s.invoices, s.details} {
		if !fileExists(src) {
			continue
		}
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return "", fmt.Errorf("csvstore.Backup: %w", err)
		}
	}

	if err := s.exportLocked(filepath.Join(dir, "export.xlsx")); err != nil {
		return "", fmt.Errorf("csvstore.Backup: %w", err)
	}
	log.Printf("csvstore: backup written to %s", dir)
	return dir, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// ImportExcel seeds the store from a workbook holding a header sheet and
// a detail sheet. It is a no-op when the CSV files already exist, so a
// restart never clobbers live data.
func (s *Store) ImportExcel(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if fileExists(s.invoices) && fileExists(s.details) {
		log.Printf("csvstore: data files already exist, skipping import")
		return nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("csvstore.ImportExcel: %w", err)
	}
	defer func() { _ = f.Close() }()

	var headerSrc, detailSrc [][]string
	for _, name := range f.GetSheetList() {
		lower := strings.ToLower(name)
		rows, err := f.GetRows(name)
		if err != nil {
			return fmt.Errorf("csvstore.ImportExcel: sheet %s: %w", name, err)
		}
		// Detail match runs first; "SalesOrderDetail" contains "order" too.
		switch {
		case strings.Contains(lower, "detail") || strings.Contains(lower, "line"):
			detailSrc = rows
		case strings.Contains(lower, "header") || strings.Contains(lower, "order"):
			headerSrc = rows
		}
	}

	headers := remapRows(headerSrc, headerColumns, headerAliases)
	details := remapRows(detailSrc, detailColumns, detailAliases)

	if err := writeFile(s.invoices, headerColumns, headers); err != nil {
		return fmt.Errorf("csvstore.ImportExcel: %w", err)
	}
	if err := writeFile(s.details, detailColumns, details); err != nil {
		return fmt.Errorf("csvstore.ImportExcel: %w", err)
	}
	log.Printf("csvstore: imported %d invoices and %d line items from %s", len(headers), len(details), path)
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]interface{}) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, cells := range rows {
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func headerCells(inv *domain.Invoice) []interface{} {
	return []interface{}{
		inv.ID,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.CustomerID,
		inv.CustomerName,
		inv.BillingAddress.Street,
		inv.BillingAddress.City,
		inv.BillingAddress.State,
		inv.BillingAddress.ZipCode,
		inv.BillingAddress.Phone,
		inv.ShippingAddress.Street,
		inv.ShippingAddress.City,
		inv.ShippingAddress.State,
		inv.ShippingAddress.ZipCode,
		inv.ShippingAddress.Phone,
		inv.Subtotal,
		inv.TaxRate,
		inv.TaxAmount,
		inv.TotalAmount,
		inv.Salesperson,
		inv.PONumber,
		inv.Terms,
		inv.ShipDate,
		inv.ShipVia,
		inv.FOB,
		inv.CreatedAt.Format(time.RFC3339),
		formatTimePtr(inv.UpdatedAt),
		inv.ExtractionConfidence,
	}
}

func detailCells(inv *domain.Invoice) [][]interface{} {
	rows := make([][]interface{}, 0, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		rows = append(rows, []interface{}{
			it.ID,
			inv.ID,
			it.ItemNumber,
			it.Description,
			it.Quantity,
			it.UnitPrice,
			it.Total,
			inv.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// headerAliases maps legacy spreadsheet column names onto the canonical
// layout. Older workbooks used "tax" and "total".
var headerAliases = map[string]string{
	"tax":   "tax_amount",
	"total": "total_amount",
	"zip":   "billing_zip",
}

var detailAliases = map[string]string{
	"total":    "line_total",
	"item_no":  "item_number",
	"order_id": "invoice_id",
}

// remapRows converts sheet rows (first row is the column header) into
// rows laid out by the canonical columns. Unrecognized source columns
// are dropped; absent canonical columns come through empty.
func remapRows(rows [][]string, columns []string, aliases map[string]string) [][]string {
	if len(rows) < 2 {
		return nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		key := normalizeColumn(name)
		if canonical, ok := aliases[key]; ok {
			key = canonical
		}
		index[key] = i
	}

	out := make([][]string, 0, len(rows)-1)
	for _, src := range rows[1:] {
		row := make([]string, len(columns))
		for i, col := range columns {
			if j, ok := index[col]; ok && j < len(src) {
				row[i] = src[j]
			}
		}
		out = append(out, row)
	}
	return out
}

func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
