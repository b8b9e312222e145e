package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finbook/internal/report"
	"finbook/internal/service"
)

// ReportHandler handles reporting endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /api/v1/reports/dashboard
// @Summary      Dashboard summary
// @Description  Invoice counts by status, outstanding and paid totals in INR, overdue count
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse{data=service.DashboardSummary}
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	summary, err := h.reportService.Dashboard(c.Request.Context(), businessID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}

// InvoiceRegister handles GET /api/v1/reports/invoice_register.xlsx
// Streams an XLSX workbook of issued invoices for the date range.
// @Summary      Invoice register export
// @Description  Download the invoice register as an XLSX workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to query string false "End date (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Failure      400 {object} APIResponse
// @Security     BearerAuth
// @Router       /reports/invoice_register.xlsx [get]
func (h *ReportHandler) InvoiceRegister(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var from, to *time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid 'from' date: must be YYYY-MM-DD")
			return
		}
		from = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid 'to' date: must be YYYY-MM-DD")
			return
		}
		to = &t
	}

	fileName := report.BuildFilename("invoice_register", "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.reportService.WriteInvoiceRegister(c.Request.Context(), businessID, from, to, c.Writer); err != nil {
		HandleError(c, err)
	}
}
