package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"autoprice/internal/domain"
)

// MockEstimateService is a mock implementation of service.EstimateService.
type MockEstimateService struct {
	mock.Mock
}

func (m *MockEstimateService) Estimate(ctx context.Context, description string) (*domain.Estimate, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Estimate), args.Error(1)
}

func (m *MockEstimateService) Usage() domain.UsageStatus {
	args := m.Called()
	return args.Get(0).(domain.UsageStatus)
}
