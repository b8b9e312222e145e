package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
)

// MockRecurringRepo is a mock implementation of port.RecurringRepository.
type MockRecurringRepo struct {
	mock.Mock
}

func (m *MockRecurringRepo) Create(ctx context.Context, rec *domain.RecurringInvoice) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecurringRepo) GetByID(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.RecurringInvoice, error) {
	args := m.Called(ctx, businessID, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringRepo) List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.RecurringInvoice, int, error) {
	args := m.Called(ctx, businessID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecurringInvoice), args.Int(1), args.Error(2)
}

func (m *MockRecurringRepo) Update(ctx context.Context, rec *domain.RecurringInvoice) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecurringRepo) UpdateStatus(ctx context.Context, businessID, recurringID uuid.UUID, status domain.RecurringStatus) error {
	args := m.Called(ctx, businessID, recurringID, status)
	return args.Error(0)
}

func (m *MockRecurringRepo) Delete(ctx context.Context, businessID, recurringID uuid.UUID) error {
	args := m.Called(ctx, businessID, recurringID)
	return args.Error(0)
}

func (m *MockRecurringRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.RecurringInvoice, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringRepo) AdvanceRun(ctx context.Context, recurringID uuid.UUID, lastRun, nextRun time.Time, status domain.RecurringStatus) error {
	args := m.Called(ctx, recurringID, lastRun, nextRun, status)
	return args.Error(0)
}
