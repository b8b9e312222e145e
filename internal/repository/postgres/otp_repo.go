package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type otpRepo struct {
	db *sqlx.DB
}

// NewOTPRepo creates a new PostgreSQL-backed OTPRepository.
func NewOTPRepo(db *sqlx.DB) port.OTPRepository {
	return &otpRepo{db: db}
}

func (r *otpRepo) Create(ctx context.Context, c *domain.OTPCode) error {
	c.CreatedAt = time.Now().UTC()

	query := `INSERT INTO otp_codes (
		id, destination, channel, code_hash, attempts, expires_at,
		consumed_at, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Destination, c.Channel, c.CodeHash, c.Attempts,
		c.ExpiresAt, c.ConsumedAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("otpRepo.Create: %w", err)
	}
	return nil
}

func (r *otpRepo) GetLatest(ctx context.Context, destination string) (*domain.OTPCode, error) {
	var c domain.OTPCode
	err := r.db.GetContext(ctx, &c, `
		SELECT * FROM otp_codes
		WHERE destination = $1 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, destination)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("otpRepo.GetLatest: %w", err)
	}
	return &c, nil
}

func (r *otpRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE otp_codes SET attempts = attempts + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("otpRepo.IncrementAttempts: %w", err)
	}
	return nil
}

func (r *otpRepo) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE otp_codes SET consumed_at = $2 WHERE id = $1", id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("otpRepo.MarkConsumed: %w", err)
	}
	return nil
}

func (r *otpRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM otp_codes WHERE expires_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("otpRepo.DeleteExpired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
