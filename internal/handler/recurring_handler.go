package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbook/internal/domain"
	"finbook/internal/service"
)

// RecurringHandler handles recurring-invoice schedule endpoints.
type RecurringHandler struct {
	recurringService service.RecurringService
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// Create handles POST /api/v1/recurring_invoices
func (h *RecurringHandler) Create(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.RecurringInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := h.recurringService.Create(c.Request.Context(), businessID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, rec)
}

// List handles GET /api/v1/recurring_invoices
func (h *RecurringHandler) List(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	recs, total, err := h.recurringService.List(c.Request.Context(), businessID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, recs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/recurring_invoices/:id
func (h *RecurringHandler) GetByID(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	recurringID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.recurringService.Get(c.Request.Context(), businessID, recurringID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

// Update handles PATCH /api/v1/recurring_invoices/:id
func (h *RecurringHandler) Update(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	recurringID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.RecurringInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := h.recurringService.Update(c.Request.Context(), businessID, recurringID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

// SetStatus handles PATCH /api/v1/recurring_invoices/:id/status
// Pauses or resumes the schedule.
func (h *RecurringHandler) SetStatus(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	recurringID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		Status domain.RecurringStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.recurringService.SetStatus(c.Request.Context(), businessID, recurringID, input.Status); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "status updated"})
}

// Delete handles DELETE /api/v1/recurring_invoices/:id
func (h *RecurringHandler) Delete(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	recurringID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.recurringService.Delete(c.Request.Context(), businessID, recurringID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "schedule deleted"})
}

// GenerateNow handles POST /api/v1/recurring_invoices/:id/generate
func (h *RecurringHandler) GenerateNow(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	recurringID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.recurringService.GenerateNow(c.Request.Context(), businessID, recurringID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}
