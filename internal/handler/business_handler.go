package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbook/internal/service"
)

// BusinessHandler handles business profile and onboarding endpoints.
type BusinessHandler struct {
	businessService service.BusinessService
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(businessService service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// CompleteOnboarding handles POST /api/v1/onboarding/complete
func (h *BusinessHandler) CompleteOnboarding(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.OnboardingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	business, err := h.businessService.CompleteOnboarding(c.Request.Context(), businessID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, business)
}

// Get handles GET /api/v1/profile
func (h *BusinessHandler) Get(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	business, err := h.businessService.Get(c.Request.Context(), businessID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, business)
}

// Update handles PUT /api/v1/profile
func (h *BusinessHandler) Update(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.UpdateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	business, err := h.businessService.Update(c.Request.Context(), businessID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, business)
}
