package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/report"
	"finbook/internal/service"
)

// StatementHandler handles bank statement ingestion and transaction
// endpoints.
type StatementHandler struct {
	statementService service.StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementService service.StatementService) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// Upload handles POST /api/v1/statements/upload
// @Summary Upload a bank statement
// @Description Upload a CSV bank statement for background parsing and categorization
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement CSV"
// @Param bank_name formData string false "Bank the statement came from"
// @Success 201 {object} APIResponse{data=domain.BankStatement}
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Security BearerAuth
// @Router /statements/upload [post]
func (h *StatementHandler) Upload(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	st, err := h.statementService.Upload(c.Request.Context(), businessID, userID, service.UploadStatementInput{
		FileName: header.Filename,
		BankName: c.PostForm("bank_name"),
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, st)
}

// List handles GET /api/v1/statements
func (h *StatementHandler) List(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	statements, total, err := h.statementService.List(c.Request.Context(), businessID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, statements, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/statements/:id
func (h *StatementHandler) GetByID(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	statementID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	st, err := h.statementService.Get(c.Request.Context(), businessID, statementID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, st)
}

func parseTransactionFilters(c *gin.Context) (port.TransactionFilters, error) {
	var filters port.TransactionFilters
	filters.Offset, filters.Limit = parsePagination(c)

	if sidStr := c.Query("statement_id"); sidStr != "" {
		sid, err := uuid.Parse(sidStr)
		if err != nil {
			return filters, fmt.Errorf("invalid 'statement_id': must be a valid UUID")
		}
		filters.StatementID = &sid
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	if dirStr := c.Query("direction"); dirStr != "" {
		dir := domain.TxnDirection(dirStr)
		if dir != domain.TxnDebit && dir != domain.TxnCredit {
			return filters, fmt.Errorf("invalid 'direction': must be debit or credit")
		}
		filters.Direction = &dir
	}
	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return filters, fmt.Errorf("invalid 'from' date: must be YYYY-MM-DD")
		}
		filters.DateFrom = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return filters, fmt.Errorf("invalid 'to' date: must be YYYY-MM-DD")
		}
		filters.DateTo = &t
	}
	return filters, nil
}

// ListTransactions handles GET /api/v1/transactions
// @Summary List bank transactions
// @Description Lists categorized transactions with statement, category, direction, and date filters
// @Tags statements
// @Produce json
// @Param statement_id query string false "Statement UUID"
// @Param category query string false "Category name"
// @Param direction query string false "debit or credit"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} APIResponse{data=[]domain.BankTransaction,meta=PagMeta}
// @Security BearerAuth
// @Router /transactions [get]
func (h *StatementHandler) ListTransactions(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	txns, total, err := h.statementService.ListTransactions(c.Request.Context(), businessID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, txns, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// UpdateTransactionCategory handles PATCH /api/v1/transactions/:id/category
func (h *StatementHandler) UpdateTransactionCategory(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	txnID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	txn, err := h.statementService.UpdateTransactionCategory(c.Request.Context(), businessID, userID, txnID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txn)
}

// ExportTransactions handles GET /api/v1/reports/transactions.csv
// Streams the filtered transactions as a CSV download.
func (h *StatementHandler) ExportTransactions(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	fileName := report.BuildFilename("transactions", "csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "text/csv; charset=utf-8")

	if err := h.statementService.ExportTransactionsCSV(c.Request.Context(), businessID, filters, c.Writer); err != nil {
		// Headers are already out; all we can do is log via HandleError's 500 path.
		HandleError(c, err)
	}
}

// CreateRule handles POST /api/v1/category_rules
func (h *StatementHandler) CreateRule(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CategoryRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rule, err := h.statementService.CreateRule(c.Request.Context(), businessID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, rule)
}

// ListRules handles GET /api/v1/category_rules
func (h *StatementHandler) ListRules(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	rules, err := h.statementService.ListRules(c.Request.Context(), businessID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rules)
}

// DeleteRule handles DELETE /api/v1/category_rules/:id
func (h *StatementHandler) DeleteRule(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	ruleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.statementService.DeleteRule(c.Request.Context(), businessID, ruleID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "rule deleted"})
}
