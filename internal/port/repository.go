package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finbook/internal/domain"
)

// BusinessRepository defines the contract for business persistence.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error)
	Update(ctx context.Context, business *domain.Business) error
}

// UserRepository defines the contract for user persistence.
// All query methods include businessID to enforce isolation at the data layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, businessID, userID uuid.UUID) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	LinkGoogleSub(ctx context.Context, businessID, userID uuid.UUID, sub string) error
}

// OTPRepository defines the contract for one-time passcode persistence.
type OTPRepository interface {
	Create(ctx context.Context, code *domain.OTPCode) error
	// GetLatest returns the most recent unconsumed code for a destination.
	GetLatest(ctx context.Context, destination string) (*domain.OTPCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	MarkConsumed(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// IdempotencyRepository records client-supplied idempotency keys for create
// operations. Insert returns the already-stored record when the key was seen
// before, with created=false.
type IdempotencyRepository interface {
	Insert(ctx context.Context, rec *domain.IdempotencyRecord) (existing *domain.IdempotencyRecord, created bool, err error)
	// Delete releases a key so a retry after a failed create is not stuck
	// replaying a resource that never got saved.
	Delete(ctx context.Context, businessID uuid.UUID, key string) error
}
