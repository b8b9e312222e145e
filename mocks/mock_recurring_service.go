package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/service"
)

// MockRecurringService is a mock implementation of service.RecurringService.
type MockRecurringService struct {
	mock.Mock
}

func (m *MockRecurringService) Create(ctx context.Context, businessID, userID uuid.UUID, input service.RecurringInput) (*domain.RecurringInvoice, error) {
	args := m.Called(ctx, businessID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringService) AttachToInvoice(ctx context.Context, inv *domain.Invoice, settings billing.RecurringSettings) (*domain.RecurringInvoice, error) {
	args := m.Called(ctx, inv, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringService) Get(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.RecurringInvoice, error) {
	args := m.Called(ctx, businessID, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringService) List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.RecurringInvoice, int, error) {
	args := m.Called(ctx, businessID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.RecurringInvoice), args.Int(1), args.Error(2)
}

func (m *MockRecurringService) Update(ctx context.Context, businessID, recurringID uuid.UUID, input service.RecurringInput) (*domain.RecurringInvoice, error) {
	args := m.Called(ctx, businessID, recurringID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringService) SetStatus(ctx context.Context, businessID, recurringID uuid.UUID, status domain.RecurringStatus) error {
	args := m.Called(ctx, businessID, recurringID, status)
	return args.Error(0)
}

func (m *MockRecurringService) Delete(ctx context.Context, businessID, recurringID uuid.UUID) error {
	args := m.Called(ctx, businessID, recurringID)
	return args.Error(0)
}

func (m *MockRecurringService) GenerateNow(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, businessID, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockRecurringService) RunOccurrence(ctx context.Context, rec *domain.RecurringInvoice) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
