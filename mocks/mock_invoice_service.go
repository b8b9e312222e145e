package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, businessID, userID uuid.UUID, input service.InvoiceInput, idempotencyKey string) (*domain.Invoice, error) {
	args := m.Called(ctx, businessID, userID, input, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, businessID uuid.UUID, filters port.InvoiceFilters) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, businessID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, businessID, invoiceID uuid.UUID, input service.InvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, businessID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, businessID, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceService) SetStatus(ctx context.Context, businessID, invoiceID uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Send(ctx context.Context, businessID, invoiceID uuid.UUID, input service.SendInvoiceInput) error {
	args := m.Called(ctx, businessID, invoiceID, input)
	return args.Error(0)
}

func (m *MockInvoiceService) RenderPDF(ctx context.Context, businessID, invoiceID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockInvoiceService) NextNumber(ctx context.Context, businessID uuid.UUID) (string, error) {
	args := m.Called(ctx, businessID)
	return args.String(0), args.Error(1)
}
