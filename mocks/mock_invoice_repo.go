package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
	"finbook/internal/port"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceLineItem) error {
	args := m.Called(ctx, inv, items)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) List(ctx context.Context, businessID uuid.UUID, filters port.InvoiceFilters) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, businessID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepo) Update(ctx context.Context, inv *domain.Invoice, changes []port.LineItemChange) error {
	args := m.Called(ctx, inv, changes)
	return args.Error(0)
}

func (m *MockInvoiceRepo) Delete(ctx context.Context, businessID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, businessID, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceRepo) MarkSent(ctx context.Context, businessID, invoiceID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, businessID, invoiceID, at)
	return args.Error(0)
}

func (m *MockInvoiceRepo) SetRecurringLink(ctx context.Context, businessID, invoiceID, recurringID uuid.UUID) error {
	args := m.Called(ctx, businessID, invoiceID, recurringID)
	return args.Error(0)
}

func (m *MockInvoiceRepo) NextNumber(ctx context.Context, businessID uuid.UUID, at time.Time) (string, error) {
	args := m.Called(ctx, businessID, at)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepo) PeekNumber(ctx context.Context, businessID uuid.UUID, at time.Time) (string, error) {
	args := m.Called(ctx, businessID, at)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepo) ByClientExists(ctx context.Context, businessID, clientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, businessID, clientID)
	return args.Bool(0), args.Error(1)
}
