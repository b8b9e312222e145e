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

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `INSERT INTO users (
		id, business_id, phone, email, full_name, role, google_sub,
		is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.BusinessID, u.Phone, u.Email, u.FullName, u.Role,
		u.GoogleSub, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("userRepo.Create: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, businessID, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		"SELECT * FROM users WHERE id = $1 AND business_id = $2", userID, businessID)
	return handleUserErr(&u, err, "GetByID")
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, "SELECT * FROM users WHERE phone = $1", phone)
	return handleUserErr(&u, err, "GetByPhone")
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, "SELECT * FROM users WHERE email = $1", email)
	return handleUserErr(&u, err, "GetByEmail")
}

func (r *userRepo) GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, "SELECT * FROM users WHERE google_sub = $1", sub)
	return handleUserErr(&u, err, "GetByGoogleSub")
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `UPDATE users SET
		phone = $3, email = $4, full_name = $5, role = $6, is_active = $7,
		updated_at = $8
	WHERE id = $1 AND business_id = $2`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.BusinessID, u.Phone, u.Email, u.FullName, u.Role,
		u.IsActive, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("userRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) LinkGoogleSub(ctx context.Context, businessID, userID uuid.UUID, sub string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET google_sub = $3, updated_at = $4 WHERE id = $1 AND business_id = $2",
		userID, businessID, sub, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("userRepo.LinkGoogleSub: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func handleUserErr(u *domain.User, err error, op string) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.%s: %w", op, err)
	}
	return u, nil
}
