package port

import (
	"context"
	"time"

	"finbook/internal/domain"
)

// ExchangeRateRepository defines the contract for stored conversion rates.
type ExchangeRateRepository interface {
	Upsert(ctx context.Context, rate *domain.ExchangeRate) error
	// Latest returns the most recent rate for the pair at or before the
	// given date.
	Latest(ctx context.Context, from, to string, at time.Time) (*domain.ExchangeRate, error)
}
