package service_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbook/internal/config"
	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/report"
	"finbook/internal/service"
	"finbook/mocks"
)

func setupStatementService() (
	service.StatementService,
	*mocks.MockStatementRepo,
	*mocks.MockTransactionRepo,
	*mocks.MockCategoryRuleRepo,
	*mocks.MockObjectStorage,
) {
	statementRepo := new(mocks.MockStatementRepo)
	txnRepo := new(mocks.MockTransactionRepo)
	ruleRepo := new(mocks.MockCategoryRuleRepo)
	storage := new(mocks.MockObjectStorage)

	cfg := config.S3Config{
		Bucket:        "finbook-test",
		MaxFileSizeMB: 10,
	}
	svc := service.NewStatementService(statementRepo, txnRepo, ruleRepo, storage, cfg)
	return svc, statementRepo, txnRepo, ruleRepo, storage
}

func TestStatementService_Upload(t *testing.T) {
	svc, statementRepo, _, _, storage := setupStatementService()
	ctx := context.Background()

	businessID := uuid.New()
	userID := uuid.New()

	var uploaded port.UploadInput
	storage.On("Upload", ctx, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) {
			uploaded = args.Get(1).(port.UploadInput)
		}).
		Return(&port.UploadOutput{Location: "s3://finbook-test/key"}, nil)
	statementRepo.On("Create", ctx, mock.AnythingOfType("*domain.BankStatement")).Return(nil)

	st, err := svc.Upload(ctx, businessID, userID, service.UploadStatementInput{
		FileName: "august.csv",
		BankName: "HDFC",
		Size:     1024,
		Body:     strings.NewReader("Date,Narration,Debit,Credit\n"),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatementStatusQueued, st.Status)
	assert.Equal(t, "finbook-test", uploaded.Bucket)
	assert.Contains(t, uploaded.Key, "statements/"+businessID.String())
	statementRepo.AssertExpectations(t)
}

func TestStatementService_Upload_RejectsNonCSV(t *testing.T) {
	svc, _, _, _, storage := setupStatementService()

	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), service.UploadStatementInput{
		FileName: "statement.xlsx",
		Size:     1024,
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestStatementService_Upload_RejectsOversizedFile(t *testing.T) {
	svc, _, _, _, _ := setupStatementService()

	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), service.UploadStatementInput{
		FileName: "huge.csv",
		Size:     11 * 1024 * 1024,
	})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

const hdfcCSV = `Date,Narration,Chq/Ref No,Debit,Credit
01/08/2026,NEFT FROM GLOBEX INV PAYMENT,NEFT123,,50000.00
03/08/2026,RENT AUGUST OFFICE,CHQ0042,25000.00,
05/08/2026,AWS CLOUD SERVICES,REF991,1200.50,
`

func TestStatementService_Parse_CategorizesAndCompletes(t *testing.T) {
	svc, statementRepo, txnRepo, ruleRepo, storage := setupStatementService()
	ctx := context.Background()

	st := &domain.BankStatement{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		S3Bucket:   "finbook-test",
		S3Key:      "statements/key.csv",
		Status:     domain.StatementStatusProcessing,
	}

	storage.On("Download", ctx, st.S3Bucket, st.S3Key).
		Return(io.NopCloser(strings.NewReader(hdfcCSV)), nil)
	ruleRepo.On("ListByBusiness", ctx, st.BusinessID).Return([]domain.CategoryRule{}, nil)

	var inserted []domain.BankTransaction
	txnRepo.On("DeleteByStatement", ctx, st.ID).Return(nil)
	txnRepo.On("BulkInsert", ctx, mock.AnythingOfType("[]domain.BankTransaction")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]domain.BankTransaction)
		}).
		Return(nil)
	statementRepo.On("MarkCompleted", ctx, st.ID, 3, mock.AnythingOfType("time.Time")).Return(nil)

	svc.Parse(ctx, st, 3)

	assert.Len(t, inserted, 3)
	assert.Equal(t, domain.TxnCredit, inserted[0].Direction)
	assert.InDelta(t, 50000.0, inserted[0].Amount, 1e-9)
	assert.Equal(t, domain.TxnDebit, inserted[1].Direction)
	assert.Equal(t, "Rent", inserted[1].Category)
	assert.Equal(t, domain.CategorySourceAuto, inserted[1].CategorySource)
	statementRepo.AssertExpectations(t)
	statementRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStatementService_Parse_BusinessRuleOverridesDefault(t *testing.T) {
	svc, statementRepo, txnRepo, ruleRepo, storage := setupStatementService()
	ctx := context.Background()

	st := &domain.BankStatement{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		S3Bucket:   "finbook-test",
		S3Key:      "statements/key.csv",
	}

	storage.On("Download", ctx, st.S3Bucket, st.S3Key).
		Return(io.NopCloser(strings.NewReader(hdfcCSV)), nil)
	ruleRepo.On("ListByBusiness", ctx, st.BusinessID).Return([]domain.CategoryRule{
		{Keyword: "rent august", Category: "Warehouse Lease"},
	}, nil)

	var inserted []domain.BankTransaction
	txnRepo.On("DeleteByStatement", ctx, st.ID).Return(nil)
	txnRepo.On("BulkInsert", ctx, mock.AnythingOfType("[]domain.BankTransaction")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]domain.BankTransaction)
		}).
		Return(nil)
	statementRepo.On("MarkCompleted", ctx, st.ID, 3, mock.AnythingOfType("time.Time")).Return(nil)

	svc.Parse(ctx, st, 3)

	assert.Equal(t, "Warehouse Lease", inserted[1].Category)
}

func TestStatementService_Parse_FailureRequeuesWithinBudget(t *testing.T) {
	svc, statementRepo, _, _, storage := setupStatementService()
	ctx := context.Background()

	st := &domain.BankStatement{
		ID:            uuid.New(),
		BusinessID:    uuid.New(),
		S3Bucket:      "finbook-test",
		S3Key:         "statements/key.csv",
		ParseAttempts: 1,
	}

	storage.On("Download", ctx, st.S3Bucket, st.S3Key).
		Return(io.NopCloser(strings.NewReader("no header here\n")), nil)
	statementRepo.On("MarkFailed", ctx, st.ID, 1, mock.AnythingOfType("string"), false).Return(nil)

	svc.Parse(ctx, st, 3)

	statementRepo.AssertExpectations(t)
}

func TestStatementService_Parse_TerminalAfterMaxRetries(t *testing.T) {
	svc, statementRepo, _, _, storage := setupStatementService()
	ctx := context.Background()

	st := &domain.BankStatement{
		ID:            uuid.New(),
		BusinessID:    uuid.New(),
		S3Bucket:      "finbook-test",
		S3Key:         "statements/key.csv",
		ParseAttempts: 3,
	}

	storage.On("Download", ctx, st.S3Bucket, st.S3Key).
		Return(io.NopCloser(strings.NewReader("no header here\n")), nil)
	statementRepo.On("MarkFailed", ctx, st.ID, 3, mock.AnythingOfType("string"), true).Return(nil)

	svc.Parse(ctx, st, 3)

	statementRepo.AssertExpectations(t)
}

func TestStatementService_UpdateTransactionCategory_Remember(t *testing.T) {
	svc, _, txnRepo, ruleRepo, _ := setupStatementService()
	ctx := context.Background()

	businessID := uuid.New()
	userID := uuid.New()
	txnID := uuid.New()

	txn := &domain.BankTransaction{
		ID:          txnID,
		BusinessID:  businessID,
		Description: "AWS CLOUD SERVICES",
		Category:    "Uncategorized",
	}
	txnRepo.On("GetByID", ctx, businessID, txnID).Return(txn, nil)
	txnRepo.On("UpdateCategory", ctx, businessID, txnID, "Software & Subscriptions", domain.CategorySourceManual).
		Return(nil)

	var rule *domain.CategoryRule
	ruleRepo.On("Create", ctx, mock.AnythingOfType("*domain.CategoryRule")).
		Run(func(args mock.Arguments) {
			rule = args.Get(1).(*domain.CategoryRule)
		}).
		Return(nil)

	updated, err := svc.UpdateTransactionCategory(ctx, businessID, userID, txnID, service.UpdateCategoryInput{
		Category: "Software & Subscriptions",
		Remember: true,
		Keyword:  "aws cloud",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Software & Subscriptions", updated.Category)
	assert.Equal(t, domain.CategorySourceManual, updated.CategorySource)
	assert.Equal(t, "aws cloud", rule.Keyword)
	assert.Equal(t, userID, rule.CreatedBy)
}

func TestStatementService_UpdateTransactionCategory_RuleFailureIsNotFatal(t *testing.T) {
	svc, _, txnRepo, ruleRepo, _ := setupStatementService()
	ctx := context.Background()

	businessID := uuid.New()
	txnID := uuid.New()

	txn := &domain.BankTransaction{ID: txnID, BusinessID: businessID, Description: "RENT AUGUST"}
	txnRepo.On("GetByID", ctx, businessID, txnID).Return(txn, nil)
	txnRepo.On("UpdateCategory", ctx, businessID, txnID, "Rent", domain.CategorySourceManual).Return(nil)
	ruleRepo.On("Create", ctx, mock.AnythingOfType("*domain.CategoryRule")).Return(domain.ErrValidation)

	_, err := svc.UpdateTransactionCategory(ctx, businessID, uuid.New(), txnID, service.UpdateCategoryInput{
		Category: "Rent",
		Remember: true,
	})

	assert.NoError(t, err)
}

func TestStatementService_ExportTransactionsCSV(t *testing.T) {
	svc, _, txnRepo, _, _ := setupStatementService()
	ctx := context.Background()

	businessID := uuid.New()
	txns := []domain.BankTransaction{
		{Description: "NEFT FROM GLOBEX", Amount: 50000, Direction: domain.TxnCredit, Category: "Sales", CategorySource: domain.CategorySourceAuto},
	}
	txnRepo.On("List", ctx, businessID, mock.AnythingOfType("port.TransactionFilters")).
		Return(txns, 1, nil)

	var buf bytes.Buffer
	err := svc.ExportTransactionsCSV(ctx, businessID, port.TransactionFilters{}, &buf)

	assert.NoError(t, err)
	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), report.BOM))
	assert.Contains(t, out, "Description")
	assert.Contains(t, out, "NEFT FROM GLOBEX")
	assert.Contains(t, out, "Sales")
}
