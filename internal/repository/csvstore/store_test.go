package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invodex/internal/domain"
)

var testClock = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "csv"), filepath.Join(dir, "backups"))
	require.NoError(t, err)
	s.now = func() time.Time { return testClock }
	return s
}

func sampleInvoice() *domain.Invoice {
	return &domain.Invoice{
		InvoiceNumber: "INV-1001",
		InvoiceDate:   "2025-03-01",
		CustomerID:    "CUST-9",
		CustomerName:  "Acme Corp",
		BillingAddress: domain.Address{
			Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Phone: "555-0100",
		},
		ShippingAddress: domain.Address{
			Street: "2 Dock Rd", City: "Shelbyville", State: "IL", ZipCode: "62565",
		},
		Items: []domain.InvoiceItem{
			{ItemNumber: "A-1", Description: "alpha", Quantity: 2, UnitPrice: 10, Total: 20},
			{ItemNumber: "B-2", Description: "beta", Quantity: 1, UnitPrice: 5, Total: 5},
		},
		Subtotal:             25,
		TaxRate:              0.085,
		TaxAmount:            2.125,
		TotalAmount:          27.125,
		Salesperson:          "Jo",
		PONumber:             "PO-77",
		Terms:                "Net 30",
		ShipDate:             "2025-03-05",
		ShipVia:              "Ground",
		FOB:                  "Origin",
		ExtractionConfidence: 0.95,
	}
}

func TestSaveAssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	inv := sampleInvoice()

	require.NoError(t, s.Save(context.Background(), inv))

	assert.Equal(t, "INV_20250314_092653_589793", inv.ID)
	assert.Equal(t, testClock, inv.CreatedAt)
	for _, it := range inv.Items {
		assert.NotEmpty(t, it.ID)
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	inv := sampleInvoice()
	require.NoError(t, s.Save(context.Background(), inv))

	got, err := s.Get(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, inv.CustomerName, got.CustomerName)
	assert.Equal(t, inv.BillingAddress, got.BillingAddress)
	assert.Equal(t, inv.ShippingAddress, got.ShippingAddress)
	// Fractional rates survive the text round trip exactly.
	assert.Equal(t, 0.085, got.TaxRate)
	assert.Equal(t, 2.125, got.TaxAmount)
	assert.Equal(t, 27.125, got.TotalAmount)
	assert.Equal(t, "PO-77", got.PONumber)
	assert.Equal(t, 0.95, got.ExtractionConfidence)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "alpha", got.Items[0].Description)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 10.0, got.Items[0].UnitPrice)
	assert.Equal(t, 20.0, got.Items[0].Total)
	assert.True(t, got.CreatedAt.Equal(testClock))
	assert.Nil(t, got.UpdatedAt)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "INV_NOPE")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEmptyStore(t *testing.T) {
	s := newTestStore(t)

	invoices, err := s.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, num := range []string{"INV-1", "INV-2", "INV-3"} {
		inv := sampleInvoice()
		inv.ID = ""
		inv.InvoiceNumber = num
		s.now = func() time.Time { return testClock.Add(time.Duration(i) * time.Second) }
		require.NoError(t, s.Save(ctx, inv))
	}

	invoices, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "INV-1", invoices[0].InvoiceNumber)
	assert.Equal(t, "INV-3", invoices[2].InvoiceNumber)
	assert.Len(t, invoices[0].Items, 2)
}

func TestUpdateReplacesHeaderAndItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	inv := sampleInvoice()
	require.NoError(t, s.Save(ctx, inv))

	mod := inv.Clone()
	mod.CustomerName = "Updated Corp"
	mod.Items = []domain.InvoiceItem{{Description: "only", Quantity: 3, UnitPrice: 4, Total: 12}}
	mod.Subtotal = 12
	mod.TaxAmount = 1.02
	mod.TotalAmount = 13.02
	require.NoError(t, s.Update(ctx, &mod))
	require.NotNil(t, mod.UpdatedAt)

	got, err := s.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Corp", got.CustomerName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "only", got.Items[0].Description)
	assert.Equal(t, 12.0, got.Subtotal)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(testClock))
	// Creation time is preserved across updates.
	assert.True(t, got.CreatedAt.Equal(testClock))
}

func TestUpdateMissing(t *testing.T) {
	s := newTestStore(t)
	inv := sampleInvoice()
	inv.ID = "INV_GHOST"

	err := s.Update(context.Background(), inv)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesInvoiceAndItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleInvoice()
	require.NoError(t, s.Save(ctx, first))
	second := sampleInvoice()
	second.InvoiceNumber = "INV-2002"
	s.now = func() time.Time { return testClock.Add(time.Second) }
	require.NoError(t, s.Save(ctx, second))

	require.NoError(t, s.Delete(ctx, first.ID))

	_, err := s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	assert.ErrorIs(t, s.Delete(ctx, first.ID), domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalInvoices)
	assert.Zero(t, stats.TotalAmount)

	first := sampleInvoice()
	require.NoError(t, s.Save(ctx, first))
	second := sampleInvoice()
	second.TotalAmount = 100
	second.Items = second.Items[:1]
	s.now = func() time.Time { return testClock.Add(time.Second) }
	require.NoError(t, s.Save(ctx, second))

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalInvoices)
	assert.Equal(t, 3, stats.TotalItems)
	assert.InDelta(t, 127.125, stats.TotalAmount, 1e-9)
	require.NotNil(t, stats.LastUpdated)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(s.dataDir))
	assert.Error(t, s.Ping(context.Background()))
}

func TestContextCancellationRejectsOps(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Save(ctx, sampleInvoice()))
	_, err := s.List(ctx)
	assert.Error(t, err)
}

func TestExportExcel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleInvoice()))

	path, err := s.ExportExcel(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "exported_data_20250314_092653")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(headerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "INV-1001", rows[1][1])

	details, err := f.GetRows(detailSheet)
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "alpha", details[1][3])
}

func TestBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleInvoice()))

	dir, err := s.Backup(ctx)
	require.NoError(t, err)

	assert.Equal(t, s.backupDir, filepath.Dir(dir))
	assert.Equal(t, "backup_20250314_092653", filepath.Base(dir))
	for _, name := range []string{"invoices.csv", "invoice_details.csv", "export.xlsx"} {
		info, statErr := os.Stat(filepath.Join(dir, name))
		require.NoError(t, statErr, name)
		assert.NotZero(t, info.Size(), name)
	}
}

func TestBackupEmptyStore(t *testing.T) {
	s := newTestStore(t)

	dir, err := s.Backup(context.Background())
	require.NoError(t, err)

	// No CSVs written yet; the backup still carries an (empty) export.
	_, statErr := os.Stat(filepath.Join(dir, "invoices.csv"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "export.xlsx"))
	assert.NoError(t, statErr)
}

func TestImportExcelSeedsEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "seed.xlsx")
	buildSeedWorkbook(t, src)

	require.NoError(t, s.ImportExcel(ctx, src))

	invoices, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	inv := invoices[0]
	assert.Equal(t, "SO-1", inv.ID)
	assert.Equal(t, "INV-9", inv.InvoiceNumber)
	assert.Equal(t, "Legacy Co", inv.CustomerName)
	// Legacy "tax"/"total" columns land on the canonical fields.
	assert.Equal(t, 1.0, inv.TaxAmount)
	assert.Equal(t, 11.0, inv.TotalAmount)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "widget", inv.Items[0].Description)
	assert.Equal(t, 10.0, inv.Items[0].Total)
}

func TestImportExcelSkipsWhenDataExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleInvoice()))

	src := filepath.Join(t.TempDir(), "seed.xlsx")
	buildSeedWorkbook(t, src)

	require.NoError(t, s.ImportExcel(ctx, src))

	invoices, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-1001", invoices[0].InvoiceNumber)
}

// buildSeedWorkbook writes a minimal legacy-style workbook with "tax"
// and "total" column names.
func buildSeedWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", "SalesOrderHeader")
	require.NoError(t, f.SetSheetRow("SalesOrderHeader", "A1",
		&[]interface{}{"id", "invoice_number", "customer_name", "subtotal", "tax", "total"}))
	require.NoError(t, f.SetSheetRow("SalesOrderHeader", "A2",
		&[]interface{}{"SO-1", "INV-9", "Legacy Co", 10.0, 1.0, 11.0}))

	_, err := f.NewSheet("SalesOrderDetail")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("SalesOrderDetail", "A1",
		&[]interface{}{"id", "invoice_id", "description", "quantity", "unit_price", "total"}))
	require.NoError(t, f.SetSheetRow("SalesOrderDetail", "A2",
		&[]interface{}{"D-1", "SO-1", "widget", 2, 5.0, 10.0}))

	require.NoError(t, f.SaveAs(path))
}
