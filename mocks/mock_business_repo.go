package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
)

// MockBusinessRepo is a mock implementation of port.BusinessRepository.
type MockBusinessRepo struct {
	mock.Mock
}

func (m *MockBusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *MockBusinessRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessRepo) Update(ctx context.Context, business *domain.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}
