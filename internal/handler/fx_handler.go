package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finbook/internal/domain"
	"finbook/internal/service"
)

// FxHandler handles exchange-rate endpoints.
type FxHandler struct {
	fxService service.FxService
}

// NewFxHandler creates a new FxHandler.
func NewFxHandler(fxService service.FxService) *FxHandler {
	return &FxHandler{fxService: fxService}
}

// Upsert handles PUT /api/v1/exchange_rates
func (h *FxHandler) Upsert(c *gin.Context) {
	if _, _, _, ok := extractAuthContext(c); !ok {
		return
	}

	var input service.UpsertRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rate, err := h.fxService.Upsert(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rate)
}

// parseAtDate reads the optional at=YYYY-MM-DD query param, defaulting to now.
func parseAtDate(c *gin.Context) (time.Time, bool) {
	atStr := c.Query("at")
	if atStr == "" {
		return time.Now().UTC(), true
	}
	at, err := time.Parse("2006-01-02", atStr)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid 'at' date: must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return at, true
}

// GetRate handles GET /api/v1/exchange_rate?from=USD&to=INR
// to is optional and only INR is served; other targets are rejected.
func (h *FxHandler) GetRate(c *gin.Context) {
	if _, _, _, ok := extractAuthContext(c); !ok {
		return
	}

	from := c.Query("from")
	if from == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "missing 'from' currency")
		return
	}
	if to := c.Query("to"); to != "" && to != domain.BaseCurrency {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "only conversion to INR is supported")
		return
	}
	at, ok := parseAtDate(c)
	if !ok {
		return
	}

	rate, err := h.fxService.Latest(c.Request.Context(), from, at)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rate)
}

// Convert handles GET /api/v1/exchange_rates/:currency/convert?amount=100
func (h *FxHandler) Convert(c *gin.Context) {
	if _, _, _, ok := extractAuthContext(c); !ok {
		return
	}

	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid 'amount': must be a number")
		return
	}
	at, ok := parseAtDate(c)
	if !ok {
		return
	}

	converted, rate, convErr := h.fxService.Convert(c.Request.Context(), amount, c.Param("currency"), at)
	if convErr != nil {
		HandleError(c, convErr)
		return
	}

	RespondOK(c, gin.H{
		"amount":    amount,
		"converted": converted,
		"rate":      rate,
	})
}
