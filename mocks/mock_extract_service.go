package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billscan/internal/domain"
)

// MockExtractService is a mock implementation of service.ExtractService.
type MockExtractService struct {
	mock.Mock
}

func (m *MockExtractService) Extract(ctx context.Context, doc *domain.LocalDocument) (*domain.ExtractionData, domain.TokenUsage, error) {
	args := m.Called(ctx, doc)
	usage, _ := args.Get(1).(domain.TokenUsage)
	if args.Get(0) == nil {
		return nil, usage, args.Error(2)
	}
	return args.Get(0).(*domain.ExtractionData), usage, args.Error(2)
}
