package mocks

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
)

// MockSourceService is a mock implementation of service.SourceService.
type MockSourceService struct {
	mock.Mock
}

func (m *MockSourceService) FromUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.LocalDocument, error) {
	args := m.Called(ctx, file, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LocalDocument), args.Error(1)
}

func (m *MockSourceService) FromURL(ctx context.Context, rawURL string) (*domain.LocalDocument, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LocalDocument), args.Error(1)
}

func (m *MockSourceService) FromBase64(ctx context.Context, data string) (*domain.LocalDocument, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LocalDocument), args.Error(1)
}
