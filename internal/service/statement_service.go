package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"finbook/internal/config"
	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/report"
	"finbook/internal/statement"
)

// UploadStatementInput carries an uploaded statement file into the parse
// queue.
type UploadStatementInput struct {
	FileName string
	BankName string
	Size     int64
	Body     io.Reader
}

// UpdateCategoryInput is the DTO for recategorizing a transaction.
type UpdateCategoryInput struct {
	Category string `json:"category" binding:"required"`
	// Remember turns this correction into a keyword rule applied to future
	// statements.
	Remember bool   `json:"remember"`
	Keyword  string `json:"keyword"`
}

// CategoryRuleInput is the DTO for creating a categorizer rule.
type CategoryRuleInput struct {
	Keyword  string `json:"keyword" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// StatementService manages bank statement ingestion and the categorized
// transactions it produces.
type StatementService interface {
	Upload(ctx context.Context, businessID, userID uuid.UUID, input UploadStatementInput) (*domain.BankStatement, error)
	Get(ctx context.Context, businessID, statementID uuid.UUID) (*domain.BankStatement, error)
	List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.BankStatement, int, error)
	// Parse downloads, parses, and categorizes a claimed statement. Called by
	// the queue worker; failures within budget requeue the statement.
	Parse(ctx context.Context, st *domain.BankStatement, maxRetries int)

	ListTransactions(ctx context.Context, businessID uuid.UUID, filters port.TransactionFilters) ([]domain.BankTransaction, int, error)
	UpdateTransactionCategory(ctx context.Context, businessID, userID, txnID uuid.UUID, input UpdateCategoryInput) (*domain.BankTransaction, error)
	ExportTransactionsCSV(ctx context.Context, businessID uuid.UUID, filters port.TransactionFilters, w io.Writer) error

	CreateRule(ctx context.Context, businessID, userID uuid.UUID, input CategoryRuleInput) (*domain.CategoryRule, error)
	ListRules(ctx context.Context, businessID uuid.UUID) ([]domain.CategoryRule, error)
	DeleteRule(ctx context.Context, businessID, ruleID uuid.UUID) error
}

type statementService struct {
	statementRepo port.StatementRepository
	txnRepo       port.TransactionRepository
	ruleRepo      port.CategoryRuleRepository
	storage       port.ObjectStorage
	s3cfg         config.S3Config
}

// NewStatementService creates a new StatementService implementation.
func NewStatementService(
	statementRepo port.StatementRepository,
	txnRepo port.TransactionRepository,
	ruleRepo port.CategoryRuleRepository,
	storage port.ObjectStorage,
	s3cfg config.S3Config,
) StatementService {
	return &statementService{
		statementRepo: statementRepo,
		txnRepo:       txnRepo,
		ruleRepo:      ruleRepo,
		storage:       storage,
		s3cfg:         s3cfg,
	}
}

func (s *statementService) Upload(ctx context.Context, businessID, userID uuid.UUID, input UploadStatementInput) (*domain.BankStatement, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	if ext != "csv" {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Size > s.s3cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	id := uuid.New()
	key := fmt.Sprintf("statements/%s/%s.csv", businessID, id)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        input.Body,
		ContentType: "text/csv",
		Size:        input.Size,
	}); err != nil {
		return nil, fmt.Errorf("statement.Upload: %w", err)
	}

	st := &domain.BankStatement{
		ID:         id,
		BusinessID: businessID,
		FileName:   input.FileName,
		BankName:   input.BankName,
		S3Bucket:   s.s3cfg.Bucket,
		S3Key:      key,
		Status:     domain.StatementStatusQueued,
		UploadedBy: userID,
	}
	if err := s.statementRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *statementService) Get(ctx context.Context, businessID, statementID uuid.UUID) (*domain.BankStatement, error) {
	return s.statementRepo.GetByID(ctx, businessID, statementID)
}

func (s *statementService) List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.BankStatement, int, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.statementRepo.ListByBusiness(ctx, businessID, offset, limit)
}

func (s *statementService) Parse(ctx context.Context, st *domain.BankStatement, maxRetries int) {
	if err := s.parse(ctx, st); err != nil {
		terminal := st.ParseAttempts >= maxRetries
		log.Printf("statement: parsing %s failed (attempt %d, terminal=%v): %v", st.ID, st.ParseAttempts, terminal, err)
		if merr := s.statementRepo.MarkFailed(ctx, st.ID, st.ParseAttempts, err.Error(), terminal); merr != nil {
			log.Printf("statement: recording failure for %s: %v", st.ID, merr)
		}
	}
}

func (s *statementService) parse(ctx context.Context, st *domain.BankStatement) error {
	body, err := s.storage.Download(ctx, st.S3Bucket, st.S3Key)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	parsed, err := statement.ParseCSV(body)
	if err != nil {
		return err
	}

	rules, err := s.ruleRepo.ListByBusiness(ctx, st.BusinessID)
	if err != nil {
		return err
	}
	categorizer, err := statement.NewCategorizer(rules)
	if err != nil {
		return err
	}

	txns := make([]domain.BankTransaction, len(parsed))
	for i, p := range parsed {
		category, _ := categorizer.Categorize(p.Description)
		txns[i] = domain.BankTransaction{
			ID:             uuid.New(),
			BusinessID:     st.BusinessID,
			StatementID:    st.ID,
			TxnDate:        p.Date,
			Description:    p.Description,
			Reference:      p.Reference,
			Amount:         p.Amount,
			Direction:      p.Direction,
			Category:       category,
			CategorySource: domain.CategorySourceAuto,
		}
	}

	// Idempotent on retry: a half-written earlier attempt is wiped first.
	if err := s.txnRepo.DeleteByStatement(ctx, st.ID); err != nil {
		return err
	}
	if err := s.txnRepo.BulkInsert(ctx, txns); err != nil {
		return err
	}
	return s.statementRepo.MarkCompleted(ctx, st.ID, len(txns), time.Now().UTC())
}

func (s *statementService) ListTransactions(ctx context.Context, businessID uuid.UUID, filters port.TransactionFilters) ([]domain.BankTransaction, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	return s.txnRepo.List(ctx, businessID, filters)
}

func (s *statementService) UpdateTransactionCategory(ctx context.Context, businessID, userID, txnID uuid.UUID, input UpdateCategoryInput) (*domain.BankTransaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, businessID, txnID)
	if err != nil {
		return nil, err
	}

	if err := s.txnRepo.UpdateCategory(ctx, businessID, txnID, input.Category, domain.CategorySourceManual); err != nil {
		return nil, err
	}
	txn.Category = input.Category
	txn.CategorySource = domain.CategorySourceManual

	if input.Remember {
		keyword := input.Keyword
		if keyword == "" {
			keyword = txn.Description
		}
		rule := &domain.CategoryRule{
			ID:         uuid.New(),
			BusinessID: businessID,
			Keyword:    keyword,
			Category:   input.Category,
			CreatedBy:  userID,
		}
		if err := s.ruleRepo.Create(ctx, rule); err != nil {
			log.Printf("statement: saving category rule for %q failed: %v", keyword, err)
		}
	}
	return txn, nil
}

func (s *statementService) ExportTransactionsCSV(ctx context.Context, businessID uuid.UUID, filters port.TransactionFilters, w io.Writer) error {
	// Page through everything matching the filters.
	filters.Offset = 0
	filters.Limit = 500

	if _, err := w.Write(report.BOM); err != nil {
		return fmt.Errorf("statement.ExportTransactionsCSV: %w", err)
	}
	writer := report.NewTransactionWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("statement.ExportTransactionsCSV: %w", err)
	}

	for {
		txns, _, err := s.txnRepo.List(ctx, businessID, filters)
		if err != nil {
			return err
		}
		if err := writer.WriteTransactions(txns); err != nil {
			return fmt.Errorf("statement.ExportTransactionsCSV: %w", err)
		}
		if len(txns) < filters.Limit {
			break
		}
		filters.Offset += filters.Limit
	}

	writer.Flush()
	return writer.Error()
}

func (s *statementService) CreateRule(ctx context.Context, businessID, userID uuid.UUID, input CategoryRuleInput) (*domain.CategoryRule, error) {
	rule := &domain.CategoryRule{
		ID:         uuid.New(),
		BusinessID: businessID,
		Keyword:    input.Keyword,
		Category:   input.Category,
		CreatedBy:  userID,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *statementService) ListRules(ctx context.Context, businessID uuid.UUID) ([]domain.CategoryRule, error) {
	return s.ruleRepo.ListByBusiness(ctx, businessID)
}

func (s *statementService) DeleteRule(ctx context.Context, businessID, ruleID uuid.UUID) error {
	return s.ruleRepo.Delete(ctx, businessID, ruleID)
}
