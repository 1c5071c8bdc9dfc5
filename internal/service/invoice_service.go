package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"invodex/internal/domain"
	"invodex/internal/port"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListInvoicesInput is the DTO for paginated invoice listing.
type ListInvoicesInput struct {
	Page    int
	PerPage int
	Search  string
}

// InvoiceService defines the invoice management contract.
type InvoiceService interface {
	List(ctx context.Context, input ListInvoicesInput) ([]domain.Invoice, int, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	Update(ctx context.Context, id string, inv *domain.Invoice) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*domain.Statistics, error)
	Export(ctx context.Context) (string, error)
	Backup(ctx context.Context) (string, error)
}

type invoiceService struct {
	store port.InvoiceStore
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(store port.InvoiceStore) InvoiceService {
	return &invoiceService{store: store}
}

// List returns one page of invoices matching the search query plus the total
// match count. Search is a case-insensitive substring match over invoice
// number, customer name, and PO number.
func (s *invoiceService) List(ctx context.Context, input ListInvoicesInput) ([]domain.Invoice, int, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("listing invoices: %w", err)
	}

	matched := all
	if q := strings.ToLower(strings.TrimSpace(input.Search)); q != "" {
		matched = make([]domain.Invoice, 0, len(all))
		for _, inv := range all {
			if strings.Contains(strings.ToLower(inv.InvoiceNumber), q) ||
				strings.Contains(strings.ToLower(inv.CustomerName), q) ||
				strings.Contains(strings.ToLower(inv.PONumber), q) {
				matched = append(matched, inv)
			}
		}
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := input.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	start := (page - 1) * perPage
	if start >= len(matched) {
		return []domain.Invoice{}, len(matched), nil
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.store.Get(ctx, id)
}

// Update replaces an invoice's header fields and full item set. Derived
// amounts missing from the body are refilled before persisting.
func (s *invoiceService) Update(ctx context.Context, id string, inv *domain.Invoice) (*domain.Invoice, error) {
	inv.ID = id
	inv.FillDerived()

	if err := s.store.Update(ctx, inv); err != nil {
		return nil, err
	}

	log.Printf("invoiceService.Update: invoice %s updated (%d items)", id, len(inv.Items))
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	log.Printf("invoiceService.Delete: deleting invoice %s", id)
	return s.store.Delete(ctx, id)
}

func (s *invoiceService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	return s.store.Stats(ctx)
}

// Export writes the full store to an Excel workbook, returning the path.
func (s *invoiceService) Export(ctx context.Context) (string, error) {
	path, err := s.store.ExportExcel(ctx, "")
	if err != nil {
		return "", fmt.Errorf("exporting invoices: %w", err)
	}
	log.Printf("invoiceService.Export: wrote %s", path)
	return path, nil
}

// Backup snapshots the store into a timestamped backup directory, returning its path.
func (s *invoiceService) Backup(ctx context.Context) (string, error) {
	path, err := s.store.Backup(ctx)
	if err != nil {
		return "", fmt.Errorf("backing up invoices: %w", err)
	}
	log.Printf("invoiceService.Backup: wrote %s", path)
	return path, nil
}
