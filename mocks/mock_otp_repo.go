package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
)

// MockOTPRepo is a mock implementation of port.OTPRepository.
type MockOTPRepo struct {
	mock.Mock
}

func (m *MockOTPRepo) Create(ctx context.Context, code *domain.OTPCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockOTPRepo) GetLatest(ctx context.Context, destination string) (*domain.OTPCode, error) {
	args := m.Called(ctx, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTPCode), args.Error(1)
}

func (m *MockOTPRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepo) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
