package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPriceModel is a mock implementation of port.PriceModel.
type MockPriceModel struct {
	mock.Mock
}

func (m *MockPriceModel) Predict(ctx context.Context, names []string, values []any) (float64, error) {
	args := m.Called(ctx, names, values)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockPriceModel) Name() string {
	args := m.Called()
	return args.String(0)
}
