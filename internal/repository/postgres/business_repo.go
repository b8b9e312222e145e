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

type businessRepo struct {
	db *sqlx.DB
}

// NewBusinessRepo creates a new PostgreSQL-backed BusinessRepository.
func NewBusinessRepo(db *sqlx.DB) port.BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) Create(ctx context.Context, b *domain.Business) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `INSERT INTO businesses (
		id, name, gstin, state_code, address, email, phone,
		base_currency, is_onboarded, is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Name, b.GSTIN, b.StateCode, b.Address, b.Email, b.Phone,
		b.BaseCurrency, b.IsOnboarded, b.IsActive, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("businessRepo.Create: %w", err)
	}
	return nil
}

func (r *businessRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	var b domain.Business
	err := r.db.GetContext(ctx, &b, "SELECT * FROM businesses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("businessRepo.GetByID: %w", err)
	}
	return &b, nil
}

func (r *businessRepo) Update(ctx context.Context, b *domain.Business) error {
	b.UpdatedAt = time.Now().UTC()

	query := `UPDATE businesses SET
		name = $2, gstin = $3, state_code = $4, address = $5, email = $6,
		phone = $7, base_currency = $8, is_onboarded = $9, is_active = $10,
		updated_at = $11
	WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		b.ID, b.Name, b.GSTIN, b.StateCode, b.Address, b.Email,
		b.Phone, b.BaseCurrency, b.IsOnboarded, b.IsActive, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("businessRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
