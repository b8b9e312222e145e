package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finbook/internal/domain"
)

// StatementRepository defines the contract for bank-statement persistence,
// including the parse-queue claim used by the worker.
type StatementRepository interface {
	Create(ctx context.Context, st *domain.BankStatement) error
	GetByID(ctx context.Context, businessID, statementID uuid.UUID) (*domain.BankStatement, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.BankStatement, int, error)
	// ClaimQueued atomically moves up to limit queued statements to
	// processing and returns them; concurrent workers never claim the same
	// row.
	ClaimQueued(ctx context.Context, limit int) ([]domain.BankStatement, error)
	MarkCompleted(ctx context.Context, statementID uuid.UUID, txnCount int, parsedAt time.Time) error
	MarkFailed(ctx context.Context, statementID uuid.UUID, attempts int, parseErr string, terminal bool) error
}

// TransactionFilters narrows bank-transaction listings.
type TransactionFilters struct {
	StatementID *uuid.UUID
	Category    *string
	Direction   *domain.TxnDirection
	DateFrom    *time.Time
	DateTo      *time.Time
	Offset      int
	Limit       int
}

// TransactionRepository defines the contract for bank-transaction
// persistence.
type TransactionRepository interface {
	BulkInsert(ctx context.Context, txns []domain.BankTransaction) error
	GetByID(ctx context.Context, businessID, txnID uuid.UUID) (*domain.BankTransaction, error)
	List(ctx context.Context, businessID uuid.UUID, filters TransactionFilters) ([]domain.BankTransaction, int, error)
	UpdateCategory(ctx context.Context, businessID, txnID uuid.UUID, category string, source domain.CategorySource) error
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// CategoryRuleRepository defines the contract for per-business categorizer
// rules.
type CategoryRuleRepository interface {
	Create(ctx context.Context, rule *domain.CategoryRule) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.CategoryRule, error)
	Delete(ctx context.Context, businessID, ruleID uuid.UUID) error
}
