package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbook/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService       service.AuthService
	otpService        service.OTPService
	socialAuthService service.SocialAuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, otpService service.OTPService, socialAuthService service.SocialAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, otpService: otpService, socialAuthService: socialAuthService}
}

// SendOTP handles POST /api/v1/auth/send_otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var input service.SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.otpService.Send(c.Request.Context(), input); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "code sent"})
}

// ResendOTP handles POST /api/v1/auth/resend_otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var input service.SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.otpService.Resend(c.Request.Context(), input); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "code sent"})
}

// VerifyOTP handles POST /api/v1/auth/verify_otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var input service.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.otpService.Verify(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// SocialLogin handles POST /api/v1/auth/social
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	if h.socialAuthService == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "social login is not enabled")
		return
	}

	var input service.SocialLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.socialAuthService.Login(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
