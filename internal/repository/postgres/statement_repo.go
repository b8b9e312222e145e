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

type statementRepo struct {
	db *sqlx.DB
}

// NewStatementRepo creates a new PostgreSQL-backed StatementRepository.
func NewStatementRepo(db *sqlx.DB) port.StatementRepository {
	return &statementRepo{db: db}
}

func (r *statementRepo) Create(ctx context.Context, st *domain.BankStatement) error {
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	query := `INSERT INTO bank_statements (
		id, business_id, file_name, bank_name, s3_bucket, s3_key, status,
		parse_attempts, parse_error, transaction_count, parsed_at,
		uploaded_by, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		st.ID, st.BusinessID, st.FileName, st.BankName, st.S3Bucket,
		st.S3Key, st.Status, st.ParseAttempts, st.ParseError,
		st.TransactionCount, st.ParsedAt, st.UploadedBy, st.CreatedAt,
		st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("statementRepo.Create: %w", err)
	}
	return nil
}

func (r *statementRepo) GetByID(ctx context.Context, businessID, statementID uuid.UUID) (*domain.BankStatement, error) {
	var st domain.BankStatement
	err := r.db.GetContext(ctx, &st,
		"SELECT * FROM bank_statements WHERE id = $1 AND business_id = $2",
		statementID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("statementRepo.GetByID: %w", err)
	}
	return &st, nil
}

func (r *statementRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.BankStatement, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM bank_statements WHERE business_id = $1", businessID); err != nil {
		return nil, 0, fmt.Errorf("statementRepo.ListByBusiness count: %w", err)
	}

	var statements []domain.BankStatement
	err := r.db.SelectContext(ctx, &statements, `
		SELECT * FROM bank_statements
		WHERE business_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, businessID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("statementRepo.ListByBusiness: %w", err)
	}
	return statements, total, nil
}

// ClaimQueued flips queued rows to processing inside a single statement so
// concurrent workers skip rows a sibling already holds.
func (r *statementRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.BankStatement, error) {
	var statements []domain.BankStatement
	err := r.db.SelectContext(ctx, &statements, `
		UPDATE bank_statements SET
			status = $1,
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM bank_statements
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		domain.StatementStatusProcessing, domain.StatementStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("statementRepo.ClaimQueued: %w", err)
	}
	return statements, nil
}

func (r *statementRepo) MarkCompleted(ctx context.Context, statementID uuid.UUID, txnCount int, parsedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bank_statements SET
			status = $2,
			transaction_count = $3,
			parsed_at = $4,
			parse_error = '',
			updated_at = $5
		WHERE id = $1`,
		statementID, domain.StatementStatusCompleted, txnCount,
		parsedAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("statementRepo.MarkCompleted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *statementRepo) MarkFailed(ctx context.Context, statementID uuid.UUID, attempts int, parseErr string, terminal bool) error {
	status := domain.StatementStatusQueued
	if terminal {
		status = domain.StatementStatusFailed
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE bank_statements SET
			status = $2,
			parse_attempts = $3,
			parse_error = $4,
			updated_at = $5
		WHERE id = $1`,
		statementID, status, attempts, parseErr, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("statementRepo.MarkFailed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
