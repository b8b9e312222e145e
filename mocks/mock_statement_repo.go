package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
	"finbook/internal/port"
)

// MockStatementRepo is a mock implementation of port.StatementRepository.
type MockStatementRepo struct {
	mock.Mock
}

func (m *MockStatementRepo) Create(ctx context.Context, st *domain.BankStatement) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockStatementRepo) GetByID(ctx context.Context, businessID, statementID uuid.UUID) (*domain.BankStatement, error) {
	args := m.Called(ctx, businessID, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatement), args.Error(1)
}

func (m *MockStatementRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.BankStatement, int, error) {
	args := m.Called(ctx, businessID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.BankStatement), args.Int(1), args.Error(2)
}

func (m *MockStatementRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.BankStatement, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankStatement), args.Error(1)
}

func (m *MockStatementRepo) MarkCompleted(ctx context.Context, statementID uuid.UUID, txnCount int, parsedAt time.Time) error {
	args := m.Called(ctx, statementID, txnCount, parsedAt)
	return args.Error(0)
}

func (m *MockStatementRepo) MarkFailed(ctx context.Context, statementID uuid.UUID, attempts int, parseErr string, terminal bool) error {
	args := m.Called(ctx, statementID, attempts, parseErr, terminal)
	return args.Error(0)
}

// MockTransactionRepo is a mock implementation of port.TransactionRepository.
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) BulkInsert(ctx context.Context, txns []domain.BankTransaction) error {
	args := m.Called(ctx, txns)
	return args.Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, businessID, txnID uuid.UUID) (*domain.BankTransaction, error) {
	args := m.Called(ctx, businessID, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, businessID uuid.UUID, filters port.TransactionFilters) ([]domain.BankTransaction, int, error) {
	args := m.Called(ctx, businessID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.BankTransaction), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepo) UpdateCategory(ctx context.Context, businessID, txnID uuid.UUID, category string, source domain.CategorySource) error {
	args := m.Called(ctx, businessID, txnID, category, source)
	return args.Error(0)
}

func (m *MockTransactionRepo) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	args := m.Called(ctx, statementID)
	return args.Error(0)
}

// MockCategoryRuleRepo is a mock implementation of port.CategoryRuleRepository.
type MockCategoryRuleRepo struct {
	mock.Mock
}

func (m *MockCategoryRuleRepo) Create(ctx context.Context, rule *domain.CategoryRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockCategoryRuleRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.CategoryRule, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryRule), args.Error(1)
}

func (m *MockCategoryRuleRepo) Delete(ctx context.Context, businessID, ruleID uuid.UUID) error {
	args := m.Called(ctx, businessID, ruleID)
	return args.Error(0)
}
