package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
)

// MockExchangeRateRepo is a mock implementation of port.ExchangeRateRepository.
type MockExchangeRateRepo struct {
	mock.Mock
}

func (m *MockExchangeRateRepo) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepo) Latest(ctx context.Context, from, to string, at time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// MockIdempotencyRepo is a mock implementation of port.IdempotencyRepository.
type MockIdempotencyRepo struct {
	mock.Mock
}

func (m *MockIdempotencyRepo) Insert(ctx context.Context, rec *domain.IdempotencyRecord) (*domain.IdempotencyRecord, bool, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyRepo) Delete(ctx context.Context, businessID uuid.UUID, key string) error {
	args := m.Called(ctx, businessID, key)
	return args.Error(0)
}
