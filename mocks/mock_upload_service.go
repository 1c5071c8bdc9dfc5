package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invodex/internal/domain"
	"invodex/internal/service"
)

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, input service.DocumentUploadInput) (*domain.UploadedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedDocument), args.Error(1)
}

func (m *MockUploadService) Status(ctx context.Context, documentID string) (*domain.UploadedDocument, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedDocument), args.Error(1)
}

func (m *MockUploadService) Validate(input service.DocumentUploadInput) (string, error) {
	args := m.Called(input)
	return args.String(0), args.Error(1)
}
