package port

import (
	"context"

	"invodex/internal/domain"
)

// ExtractInput carries the document bytes handed to a vision extractor.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	Filename    string
}

// InvoiceExtractor abstracts vision-LLM invoice extraction. Implementations
// return the raw extracted invoice; confidence scoring and validation happen
// above this interface.
type InvoiceExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.Invoice, error)
}
