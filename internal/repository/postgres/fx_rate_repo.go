package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type fxRateRepo struct {
	db *sqlx.DB
}

// NewExchangeRateRepo creates a new PostgreSQL-backed ExchangeRateRepository.
func NewExchangeRateRepo(db *sqlx.DB) port.ExchangeRateRepository {
	return &fxRateRepo{db: db}
}

func (r *fxRateRepo) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	rate.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (id, from_currency, to_currency, rate, rate_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_currency, to_currency, rate_date)
		DO UPDATE SET rate = EXCLUDED.rate`,
		rate.ID, rate.FromCurrency, rate.ToCurrency, rate.Rate,
		rate.RateDate, rate.CreatedAt)
	if err != nil {
		return fmt.Errorf("fxRateRepo.Upsert: %w", err)
	}
	return nil
}

func (r *fxRateRepo) Latest(ctx context.Context, from, to string, at time.Time) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := r.db.GetContext(ctx, &rate, `
		SELECT * FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND rate_date <= $3
		ORDER BY rate_date DESC
		LIMIT 1`, from, to, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRateUnavailable
		}
		return nil, fmt.Errorf("fxRateRepo.Latest: %w", err)
	}
	return &rate, nil
}
