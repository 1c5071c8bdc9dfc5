// Package csvstore implements the invoice store on two flat CSV files,
// one for invoice headers and one for line items, linked by invoice id.
// Writes append; updates and deletes rewrite the files through a temp
// file and rename. A single mutex serializes all access, so the store is
// safe for concurrent handlers but assumes one process owns the files.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"invodex/internal/domain"
	"invodex/internal/port"
)

const (
	invoicesFile = "invoices.csv"
	detailsFile  = "invoice_details.csv"
)

// headerColumns defines the invoice header row layout.
var headerColumns = []string{
	"id",
	"invoice_number",
	"invoice_date",
	"customer_id",
	"customer_name",
	"billing_street",
	"billing_city",
	"billing_state",
	"billing_zip",
	"billing_phone",
	"shipping_street",
	"shipping_city",
	"shipping_state",
	"shipping_zip",
	"shipping_phone",
	"subtotal",
	"tax_rate",
	"tax_amount",
	"total_amount",
	"salesperson",
	"po_number",
	"terms",
	"ship_date",
	"ship_via",
	"fob",
	"created_at",
	"updated_at",
	"extraction_confidence",
}

// detailColumns defines the line item row layout.
var detailColumns = []string{
	"id",
	"invoice_id",
	"item_number",
	"description",
	"quantity",
	"unit_price",
	"line_total",
	"created_at",
}

// Store is a CSV-file-backed implementation of port.InvoiceStore.
type Store struct {
	mu        sync.Mutex
	dataDir   string
	backupDir string
	invoices  string
	details   string
	now       func() time.Time
}

var _ port.InvoiceStore = (*Store)(nil)

// New creates the data directories if needed and returns a ready Store.
func New(dataDir, backupDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("csvstore.New: %w", err)
	}
	s := &Store{
		dataDir:   dataDir,
		backupDir: backupDir,
		invoices:  filepath.Join(dataDir, invoicesFile),
		details:   filepath.Join(dataDir, detailsFile),
		now:       time.Now,
	}
	return s, nil
}

// Save appends the invoice to both files, assigning an id and creation
// time when absent. The invoice is mutated with the assigned values.
func (s *Store) Save(ctx context.Context, inv *domain.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = domain.NewInvoiceID(s.now())
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.now()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = uuid.NewString()
		}
	}

	if err := appendRows(s.invoices, headerColumns, [][]string{headerRow(inv)}); err != nil {
		return fmt.Errorf("csvstore.Save: %w", err)
	}
	if err := appendRows(s.details, detailColumns, detailRows(inv)); err != nil {
		return fmt.Errorf("csvstore.Save: %w", err)
	}
	return nil
}

// Get returns the invoice with the given id, items included.
func (s *Store) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.loadAll()
	if err != nil {
		return nil, fmt.Errorf("csvstore.Get: %w", err)
	}
	for i := range invoices {
		if invoices[i].ID == id {
			inv := invoices[i].Clone()
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns every stored invoice in file order, items included.
func (s *Store) List(ctx context.Context) ([]domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.loadAll()
	if err != nil {
		return nil, fmt.Errorf("csvstore.List: %w", err)
	}
	return invoices, nil
}

// Update replaces the stored invoice with the same id, stamping
// updated_at. The full item set is replaced.
func (s *Store) Update(ctx context.Context, inv *domain.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.loadAll()
	if err != nil {
		return fmt.Errorf("csvstore.Update: %w", err)
	}
	found := false
	for i := range invoices {
		if invoices[i].ID == inv.ID {
			now := s.now()
			inv.UpdatedAt = &now
			if inv.CreatedAt.IsZero() {
				inv.CreatedAt = invoices[i].CreatedAt
			}
			for j := range inv.Items {
				if inv.Items[j].ID == "" {
					inv.Items[j].ID = uuid.NewString()
				}
			}
			invoices[i] = inv.Clone()
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := s.rewriteAll(invoices); err != nil {
		return fmt.Errorf("csvstore.Update: %w", err)
	}
	return nil
}

// Delete removes the invoice and its items.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.loadAll()
	if err != nil {
		return fmt.Errorf("csvstore.Delete: %w", err)
	}
	kept := invoices[:0]
	found := false
	for i := range invoices {
		if invoices[i].ID == id {
			found = true
			continue
		}
		kept = append(kept, invoices[i])
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := s.rewriteAll(kept); err != nil {
		return fmt.Errorf("csvstore.Delete: %w", err)
	}
	return nil
}

// Stats summarizes the store contents.
func (s *Store) Stats(ctx context.Context) (*domain.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.loadAll()
	if err != nil {
		return nil, fmt.Errorf("csvstore.Stats: %w", err)
	}
	stats := &domain.Statistics{TotalInvoices: len(invoices)}
	for i := range invoices {
		stats.TotalItems += len(invoices[i].Items)
		stats.TotalAmount += invoices[i].TotalAmount
	}
	now := s.now()
	stats.LastUpdated = &now
	return stats, nil
}

// Ping reports whether the data directory is reachable.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return fmt.Errorf("csvstore.Ping: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("csvstore.Ping: %s is not a directory", s.dataDir)
	}
	return nil
}

// loadAll reads both files and merges items into their invoices. Missing
// files read as empty, so a fresh data directory is a valid empty store.
func (s *Store) loadAll() ([]domain.Invoice, error) {
	headerRecs, err := readRecords(s.invoices)
	if err != nil {
		return nil, err
	}
	detailRecs, err := readRecords(s.details)
	if err != nil {
		return nil, err
	}

	itemsByInvoice := make(map[string][]domain.InvoiceItem)
	for _, rec := range detailRecs {
		item, invoiceID := itemFromRecord(rec)
		itemsByInvoice[invoiceID] = append(itemsByInvoice[invoiceID], item)
	}

	invoices := make([]domain.Invoice, 0, len(headerRecs))
	for _, rec := range headerRecs {
		inv := invoiceFromRecord(rec)
		inv.Items = itemsByInvoice[inv.ID]
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// rewriteAll replaces both files with the given set, via temp file and
// rename so readers never observe a half-written file.
func (s *Store) rewriteAll(invoices []domain.Invoice) error {
	headers := make([][]string, 0, len(invoices))
	var details [][]string
	for i := range invoices {
		headers = append(headers, headerRow(&invoices[i]))
		details = append(details, detailRows(&invoices[i])...)
	}
	if err := writeFile(s.invoices, headerColumns, headers); err != nil {
		return err
	}
	return writeFile(s.details, detailColumns, details)
}

func writeFile(path string, columns []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func appendRows(path string, columns []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(columns); err != nil {
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// readRecords returns column-keyed records from a CSV file with a header
// row. Unknown columns are carried through by name, so files written by
// older layouts still load.
func readRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func headerRow(inv *domain.Invoice) []string {
	row := make([]string, len(headerColumns))
	row[0] = inv.ID
	row[1] = inv.InvoiceNumber
	row[2] = inv.InvoiceDate
	row[3] = inv.CustomerID
	row[4] = inv.CustomerName
	row[5] = inv.BillingAddress.Street
	row[6] = inv.BillingAddress.City
	row[7] = inv.BillingAddress.State
	row[8] = inv.BillingAddress.ZipCode
	row[9] = inv.BillingAddress.Phone
	row[10] = inv.ShippingAddress.Street
	row[11] = inv.ShippingAddress.City
	row[12] = inv.ShippingAddress.State
	row[13] = inv.ShippingAddress.ZipCode
	row[14] = inv.ShippingAddress.Phone
	row[15] = formatFloat(inv.Subtotal)
	row[16] = formatFloat(inv.TaxRate)
	row[17] = formatFloat(inv.TaxAmount)
	row[18] = formatFloat(inv.TotalAmount)
	row[19] = inv.Salesperson
	row[20] = inv.PONumber
	row[21] = inv.Terms
	row[22] = inv.ShipDate
	row[23] = inv.ShipVia
	row[24] = inv.FOB
	row[25] = inv.CreatedAt.Format(time.RFC3339Nano)
	row[26] = formatTimePtr(inv.UpdatedAt)
	row[27] = formatFloat(inv.ExtractionConfidence)
	return row
}

func detailRows(inv *domain.Invoice) [][]string {
	rows := make([][]string, 0, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		row := make([]string, len(detailColumns))
		row[0] = it.ID
		row[1] = inv.ID
		row[2] = it.ItemNumber
		row[3] = it.Description
		row[4] = strconv.Itoa(it.Quantity)
		row[5] = formatFloat(it.UnitPrice)
		row[6] = formatFloat(it.Total)
		row[7] = inv.CreatedAt.Format(time.RFC3339Nano)
		rows = append(rows, row)
	}
	return rows
}

func invoiceFromRecord(rec map[string]string) domain.Invoice {
	return domain.Invoice{
		ID:            rec["id"],
		InvoiceNumber: rec["invoice_number"],
		InvoiceDate:   rec["invoice_date"],
		CustomerID:    rec["customer_id"],
		CustomerName:  rec["customer_name"],
		BillingAddress: domain.Address{
			Street:  rec["billing_street"],
			City:    rec["billing_city"],
			State:   rec["billing_state"],
			ZipCode: rec["billing_zip"],
			Phone:   rec["billing_phone"],
		},
		ShippingAddress: domain.Address{
			Street:  rec["shipping_street"],
			City:    rec["shipping_city"],
			State:   rec["shipping_state"],
			ZipCode: rec["shipping_zip"],
			Phone:   rec["shipping_phone"],
		},
		Subtotal:             parseFloat(rec["subtotal"]),
		TaxRate:              parseFloat(rec["tax_rate"]),
		TaxAmount:            parseFloat(rec["tax_amount"]),
		TotalAmount:          parseFloat(rec["total_amount"]),
		Salesperson:          rec["salesperson"],
		PONumber:             rec["po_number"],
		Terms:                rec["terms"],
		ShipDate:             rec["ship_date"],
		ShipVia:              rec["ship_via"],
		FOB:                  rec["fob"],
		ExtractionConfidence: parseFloat(rec["extraction_confidence"]),
		CreatedAt:            parseTime(rec["created_at"]),
		UpdatedAt:            parseTimePtr(rec["updated_at"]),
	}
}

func itemFromRecord(rec map[string]string) (domain.InvoiceItem, string) {
	item := domain.InvoiceItem{
		ID:          rec["id"],
		ItemNumber:  rec["item_number"],
		Description: rec["description"],
		Quantity:    parseInt(rec["quantity"]),
		UnitPrice:   parseFloat(rec["unit_price"]),
		Total:       parseFloat(rec["line_total"]),
	}
	return item, rec["invoice_id"]
}

// formatFloat uses the shortest representation that round-trips, so
// fractional tax rates survive a store cycle exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	// Seed data sometimes carries quantities as "2.0".
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return int(parseFloat(s))
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
