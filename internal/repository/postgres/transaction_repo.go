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

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) BulkInsert(ctx context.Context, txns []domain.BankTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range txns {
		txns[i].CreatedAt = now
		txns[i].UpdatedAt = now
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bank_transactions (
			id, business_id, statement_id, txn_date, description, reference,
			amount, direction, category, category_source, created_at, updated_at
		) VALUES (
			:id, :business_id, :statement_id, :txn_date, :description,
			:reference, :amount, :direction, :category, :category_source,
			:created_at, :updated_at
		)`, txns)
	if err != nil {
		return fmt.Errorf("transactionRepo.BulkInsert: %w", err)
	}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, businessID, txnID uuid.UUID) (*domain.BankTransaction, error) {
	var txn domain.BankTransaction
	err := r.db.GetContext(ctx, &txn,
		"SELECT * FROM bank_transactions WHERE id = $1 AND business_id = $2",
		txnID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByID: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepo) List(ctx context.Context, businessID uuid.UUID, f port.TransactionFilters) ([]domain.BankTransaction, int, error) {
	conditions := []string{"business_id = $1"}
	args := []interface{}{businessID}

	if f.StatementID != nil {
		args = append(args, *f.StatementID)
		conditions = append(conditions, fmt.Sprintf("statement_id = $%d", len(args)))
	}
	if f.Category != nil {
		args = append(args, *f.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Direction != nil {
		args = append(args, *f.Direction)
		conditions = append(conditions, fmt.Sprintf("direction = $%d", len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		conditions = append(conditions, fmt.Sprintf("txn_date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		conditions = append(conditions, fmt.Sprintf("txn_date <= $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM bank_transactions "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.List count: %w", err)
	}

	args = append(args, f.Offset, f.Limit)
	query := fmt.Sprintf(`
		SELECT * FROM bank_transactions %s
		ORDER BY txn_date DESC, created_at DESC
		OFFSET $%d LIMIT $%d`, where, len(args)-1, len(args))

	var txns []domain.BankTransaction
	if err := r.db.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.List: %w", err)
	}
	return txns, total, nil
}

func (r *transactionRepo) UpdateCategory(ctx context.Context, businessID, txnID uuid.UUID, category string, source domain.CategorySource) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bank_transactions SET category = $3, category_source = $4, updated_at = $5
		WHERE id = $1 AND business_id = $2`,
		txnID, businessID, category, source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("transactionRepo.UpdateCategory: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepo) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM bank_transactions WHERE statement_id = $1", statementID)
	if err != nil {
		return fmt.Errorf("transactionRepo.DeleteByStatement: %w", err)
	}
	return nil
}
