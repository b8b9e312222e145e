package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finbook/internal/domain"
)

// RecurringRepository defines the contract for recurring-invoice
// schedule persistence.
type RecurringRepository interface {
	Create(ctx context.Context, rec *domain.RecurringInvoice) error
	GetByID(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.RecurringInvoice, error)
	List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.RecurringInvoice, int, error)
	Update(ctx context.Context, rec *domain.RecurringInvoice) error
	UpdateStatus(ctx context.Context, businessID, recurringID uuid.UUID, status domain.RecurringStatus) error
	Delete(ctx context.Context, businessID, recurringID uuid.UUID) error
	// ClaimDue marks active schedules whose next_run_at is at or before the
	// given time as claimed and returns them, skipping rows another sweep
	// already claimed. Claims persist until AdvanceRun or a lease expiry.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.RecurringInvoice, error)
	// AdvanceRun records a completed occurrence, moves next_run_at, and
	// releases the claim.
	AdvanceRun(ctx context.Context, recurringID uuid.UUID, lastRun, nextRun time.Time, status domain.RecurringStatus) error
}
