package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, c *domain.Client) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO clients (
		id, business_id, name, email, phone, gstin, state_code, address,
		currency, payment_terms_days, is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.BusinessID, c.Name, c.Email, c.Phone, c.GSTIN, c.StateCode,
		c.Address, c.Currency, c.PaymentTermsDays, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateClient
		}
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, businessID, clientID uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM clients WHERE id = $1 AND business_id = $2", clientID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *clientRepo) GetByName(ctx context.Context, businessID uuid.UUID, name string) (*domain.Client, error) {
	var c domain.Client
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM clients WHERE business_id = $1 AND lower(name) = lower($2)", businessID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByName: %w", err)
	}
	return &c, nil
}

func (r *clientRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM clients WHERE business_id = $1 AND is_active", businessID)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.ListByBusiness count: %w", err)
	}

	var clients []domain.Client
	err = r.db.SelectContext(ctx, &clients, `
		SELECT * FROM clients
		WHERE business_id = $1 AND is_active
		ORDER BY name
		OFFSET $2 LIMIT $3`, businessID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.ListByBusiness: %w", err)
	}
	return clients, total, nil
}

func (r *clientRepo) Update(ctx context.Context, c *domain.Client) error {
	c.UpdatedAt = time.Now().UTC()

	query := `UPDATE clients SET
		name = $3, email = $4, phone = $5, gstin = $6, state_code = $7,
		address = $8, currency = $9, payment_terms_days = $10,
		is_active = $11, updated_at = $12
	WHERE id = $1 AND business_id = $2`

	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.BusinessID, c.Name, c.Email, c.Phone, c.GSTIN, c.StateCode,
		c.Address, c.Currency, c.PaymentTermsDays, c.IsActive, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, businessID, clientID uuid.UUID) error {
	// Soft delete keeps historical invoices resolvable.
	res, err := r.db.ExecContext(ctx,
		"UPDATE clients SET is_active = false, updated_at = $3 WHERE id = $1 AND business_id = $2",
		clientID, businessID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
