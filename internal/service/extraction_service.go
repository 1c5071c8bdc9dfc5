package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"invodex/internal/domain"
	"invodex/internal/extractor"
	"invodex/internal/port"
	"invodex/internal/validator"
)

const defaultBatchConcurrency = 2

// BatchItemResult is the per-document outcome within a batch extraction.
type BatchItemResult struct {
	DocumentID string                   `json:"document_id"`
	Success    bool                     `json:"success"`
	Result     *domain.ExtractionResult `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// BatchSummary aggregates a batch extraction run.
type BatchSummary struct {
	TotalProcessed int `json:"total_processed"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
}

// BatchExtractionResult is the full outcome of a batch extraction.
type BatchExtractionResult struct {
	Results []BatchItemResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// ExtractionService defines the invoice extraction contract.
type ExtractionService interface {
	Extract(ctx context.Context, documentID string) (*domain.ExtractionResult, error)
	ExtractBatch(ctx context.Context, documentIDs []string) (*BatchExtractionResult, error)
}

type extractionService struct {
	storage     port.ObjectStorage
	store       port.InvoiceStore
	extractor   port.InvoiceExtractor
	concurrency int
}

// NewExtractionService creates a new ExtractionService implementation.
// batchConcurrency bounds parallel provider calls during batch extraction.
func NewExtractionService(
	storage port.ObjectStorage,
	store port.InvoiceStore,
	invExtractor port.InvoiceExtractor,
	batchConcurrency int,
) ExtractionService {
	if batchConcurrency <= 0 {
		batchConcurrency = defaultBatchConcurrency
	}
	return &extractionService{
		storage:     storage,
		store:       store,
		extractor:   invExtractor,
		concurrency: batchConcurrency,
	}
}

func (s *extractionService) Extract(ctx context.Context, documentID string) (*domain.ExtractionResult, error) {
	start := time.Now()

	obj, filename, err := resolveDocument(ctx, s.storage, documentID)
	if err != nil {
		return nil, err
	}

	fileBytes, err := s.storage.Get(ctx, obj.Key)
	if err != nil {
		return nil, fmt.Errorf("reading stored document %s: %w", obj.Key, err)
	}

	fileType, ok := domain.FileTypeForName(filename)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	log.Printf("extractionService.Extract: extracting document %s (%s, %d bytes)",
		documentID, filename, len(fileBytes))

	inv, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:   fileBytes,
		ContentType: domain.AllowedFileTypes[fileType],
		Filename:    filename,
	})
	if err != nil {
		log.Printf("extractionService.Extract: extraction failed for %s: %v", documentID, err)
		var rlErr *extractor.RateLimitError
		if errors.As(err, &rlErr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	inv.FillDerived()
	report := validator.Validate(inv)
	inv.ExtractionConfidence = validator.ConfidenceScore(inv)

	if err := s.store.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving extracted invoice: %w", err)
	}

	result := &domain.ExtractionResult{
		ExtractionID:    fmt.Sprintf("extract_%s_%d", documentID, start.Unix()),
		InvoiceID:       inv.ID,
		Invoice:         inv,
		ConfidenceScore: inv.ExtractionConfidence,
		ProcessingTime:  time.Since(start).Seconds(),
		Validation:      &report,
	}

	log.Printf("extractionService.Extract: document %s extracted as invoice %s (confidence %.2f, valid %t)",
		documentID, inv.ID, result.ConfidenceScore, report.IsValid)

	return result, nil
}

func (s *extractionService) ExtractBatch(ctx context.Context, documentIDs []string) (*BatchExtractionResult, error) {
	if len(documentIDs) == 0 {
		return nil, fmt.Errorf("%w: no document ids provided", domain.ErrInvalidInput)
	}

	log.Printf("extractionService.ExtractBatch: extracting %d documents (concurrency %d)",
		len(documentIDs), s.concurrency)

	results := make([]BatchItemResult, len(documentIDs))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, id := range documentIDs {
		i, id := i, id // copy for goroutine

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release

			result, err := s.Extract(ctx, id)
			if err != nil {
				results[i] = BatchItemResult{DocumentID: id, Error: err.Error()}
				return
			}
			results[i] = BatchItemResult{DocumentID: id, Success: true, Result: result}
		}()
	}
	wg.Wait()

	summary := BatchSummary{TotalProcessed: len(documentIDs)}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	return &BatchExtractionResult{Results: results, Summary: summary}, nil
}
