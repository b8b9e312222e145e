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

type idempotencyRepo struct {
	db *sqlx.DB
}

// NewIdempotencyRepo creates a new PostgreSQL-backed IdempotencyRepository.
func NewIdempotencyRepo(db *sqlx.DB) port.IdempotencyRepository {
	return &idempotencyRepo{db: db}
}

// Insert attempts to record the key. On conflict the previously stored record
// is returned so the caller can replay the original response.
func (r *idempotencyRepo) Insert(ctx context.Context, rec *domain.IdempotencyRecord) (*domain.IdempotencyRecord, bool, error) {
	rec.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (business_id, key, resource_type, resource_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (business_id, key) DO NOTHING`,
		rec.BusinessID, rec.Key, rec.ResourceType, rec.ResourceID, rec.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("idempotencyRepo.Insert: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return rec, true, nil
	}

	var existing domain.IdempotencyRecord
	err = r.db.GetContext(ctx, &existing,
		"SELECT * FROM idempotency_keys WHERE business_id = $1 AND key = $2",
		rec.BusinessID, rec.Key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("idempotencyRepo.Insert lookup: %w", err)
	}
	return &existing, false, nil
}

func (r *idempotencyRepo) Delete(ctx context.Context, businessID uuid.UUID, key string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM idempotency_keys WHERE business_id = $1 AND key = $2",
		businessID, key)
	if err != nil {
		return fmt.Errorf("idempotencyRepo.Delete: %w", err)
	}
	return nil
}
