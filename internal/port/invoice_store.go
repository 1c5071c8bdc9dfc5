package port

import (
	"context"

	"invodex/internal/domain"
)

// InvoiceStore is the keyed store holding extracted invoices. Updates replace
// the header fields and the full item set; concurrent writers follow
// last-write-wins semantics.
type InvoiceStore interface {
	Save(ctx context.Context, inv *domain.Invoice) error
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.Statistics, error)

	// ExportExcel writes the store contents to an Excel workbook at path,
	// returning the path written. Backup snapshots the store into a
	// timestamped directory and returns it.
	ExportExcel(ctx context.Context, path string) (string, error)
	Backup(ctx context.Context) (string, error)

	// Ping reports whether the backing files are reachable and writable.
	Ping(ctx context.Context) error
}
