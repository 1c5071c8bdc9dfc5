package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invodex/internal/domain"
	"invodex/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, documentID string) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

func (m *MockExtractionService) ExtractBatch(ctx context.Context, documentIDs []string) (*service.BatchExtractionResult, error) {
	args := m.Called(ctx, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchExtractionResult), args.Error(1)
}
