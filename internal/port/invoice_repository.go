package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finbook/internal/domain"
)

// InvoiceFilters narrows invoice listings.
type InvoiceFilters struct {
	ClientID *uuid.UUID
	Status   *domain.InvoiceStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Offset   int
	Limit    int
}

// LineItemChange is a single line-item mutation within an invoice update.
// Items with an ID and Destroy set are deleted; with an ID, updated; without
// an ID, inserted.
type LineItemChange struct {
	ID      *int64
	Destroy bool
	Item    domain.InvoiceLineItem
}

// InvoiceRepository defines the contract for invoice persistence.
// All query methods include businessID for isolation.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceLineItem) error
	GetByID(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, businessID uuid.UUID, filters InvoiceFilters) ([]domain.Invoice, int, error)
	// Update rewrites the invoice row and applies line-item changes in one
	// transaction, honouring the soft-delete diffing contract.
	Update(ctx context.Context, inv *domain.Invoice, changes []LineItemChange) error
	Delete(ctx context.Context, businessID, invoiceID uuid.UUID) error
	MarkSent(ctx context.Context, businessID, invoiceID uuid.UUID, at time.Time) error
	SetRecurringLink(ctx context.Context, businessID, invoiceID, recurringID uuid.UUID) error
	// NextNumber returns the next sequential invoice number for the fiscal
	// year, formatted like INV-2026-27-0042.
	NextNumber(ctx context.Context, businessID uuid.UUID, at time.Time) (string, error)
	// PeekNumber previews the number NextNumber would hand out without
	// consuming it.
	PeekNumber(ctx context.Context, businessID uuid.UUID, at time.Time) (string, error)
	ByClientExists(ctx context.Context, businessID, clientID uuid.UUID) (bool, error)
}
