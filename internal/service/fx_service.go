package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finbook/internal/domain"
	"finbook/internal/port"
)

// UpsertRateInput is the DTO for recording an exchange rate.
type UpsertRateInput struct {
	FromCurrency string    `json:"from_currency" binding:"required"`
	Rate         float64   `json:"rate" binding:"required,gt=0"`
	RateDate     time.Time `json:"rate_date" binding:"required"`
}

// FxService manages stored conversion rates into the base currency.
type FxService interface {
	Upsert(ctx context.Context, input UpsertRateInput) (*domain.ExchangeRate, error)
	// Latest returns the freshest rate for the currency at or before the
	// given date.
	Latest(ctx context.Context, fromCurrency string, at time.Time) (*domain.ExchangeRate, error)
	// Convert turns an amount in the given currency into INR using the
	// freshest stored rate.
	Convert(ctx context.Context, amount float64, fromCurrency string, at time.Time) (float64, *domain.ExchangeRate, error)
}

type fxService struct {
	fxRepo port.ExchangeRateRepository
}

// NewFxService creates a new FxService implementation.
func NewFxService(fxRepo port.ExchangeRateRepository) FxService {
	return &fxService{fxRepo: fxRepo}
}

func (s *fxService) Upsert(ctx context.Context, input UpsertRateInput) (*domain.ExchangeRate, error) {
	if !domain.AllowedCurrencies[input.FromCurrency] || input.FromCurrency == domain.BaseCurrency {
		return nil, domain.ErrUnsupportedCurrency
	}

	rate := &domain.ExchangeRate{
		ID:           uuid.New(),
		FromCurrency: input.FromCurrency,
		ToCurrency:   domain.BaseCurrency,
		Rate:         input.Rate,
		RateDate:     input.RateDate.UTC().Truncate(24 * time.Hour),
	}
	if err := s.fxRepo.Upsert(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *fxService) Latest(ctx context.Context, fromCurrency string, at time.Time) (*domain.ExchangeRate, error) {
	if !domain.AllowedCurrencies[fromCurrency] {
		return nil, domain.ErrUnsupportedCurrency
	}
	if fromCurrency == domain.BaseCurrency {
		return nil, fmt.Errorf("%w: %s needs no conversion", domain.ErrValidation, domain.BaseCurrency)
	}
	return s.fxRepo.Latest(ctx, fromCurrency, domain.BaseCurrency, at)
}

func (s *fxService) Convert(ctx context.Context, amount float64, fromCurrency string, at time.Time) (float64, *domain.ExchangeRate, error) {
	if fromCurrency == domain.BaseCurrency {
		return amount, nil, nil
	}
	rate, err := s.Latest(ctx, fromCurrency, at)
	if err != nil {
		return 0, nil, err
	}
	return amount * rate.Rate, rate, nil
}
