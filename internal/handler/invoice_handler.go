package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/service"
)

// InvoiceHandler handles invoice lifecycle endpoints.
type InvoiceHandler struct {
	invoiceService   service.InvoiceService
	recurringService service.RecurringService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, recurringService service.RecurringService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, recurringService: recurringService}
}

// Create handles POST /api/v1/invoices
// Clients may retry safely by sending the same Idempotency-Key header.
func (h *InvoiceHandler) Create(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), businessID, userID, input, c.GetHeader("Idempotency-Key"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// NextNumber handles GET /api/v1/invoices/next_number
// Returns the number the next created invoice would get, for form prefill.
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	number, err := h.invoiceService.NextNumber(c.Request.Context(), businessID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"number": number})
}

func parseInvoiceFilters(c *gin.Context) (port.InvoiceFilters, error) {
	var filters port.InvoiceFilters
	filters.Offset, filters.Limit = parsePagination(c)

	if cidStr := c.Query("client_id"); cidStr != "" {
		cid, err := uuid.Parse(cidStr)
		if err != nil {
			return filters, fmt.Errorf("invalid 'client_id': must be a valid UUID")
		}
		filters.ClientID = &cid
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.InvoiceStatus(statusStr)
		filters.Status = &status
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

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	filters, err := parseInvoiceFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), businessID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), businessID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Update handles PATCH /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), businessID, invoiceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), businessID, invoiceID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// SetStatus handles PATCH /api/v1/invoices/:id/status
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		Status domain.InvoiceStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.SetStatus(c.Request.Context(), businessID, invoiceID, input.Status)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Send handles POST /api/v1/invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.SendInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.invoiceService.Send(c.Request.Context(), businessID, invoiceID, input); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice sent"})
}

// DownloadPDF handles GET /api/v1/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	pdfBytes, fileName, err := h.invoiceService.RenderPDF(c.Request.Context(), businessID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// MakeRecurring handles POST /api/v1/invoices/:id/recurring
// Creates a schedule from the invoice; the invoice itself counts as the
// first occurrence.
func (h *InvoiceHandler) MakeRecurring(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var settings billing.RecurringSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), businessID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	rec, err := h.recurringService.AttachToInvoice(c.Request.Context(), inv, settings)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, rec)
}
