package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finbook/internal/domain"
	"finbook/internal/middleware"
	"finbook/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response. Fields carries per-field
// validation messages when present.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrBusinessInactive):
		return http.StatusForbidden, "BUSINESS_INACTIVE", "business is inactive"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrOTPInvalid):
		return http.StatusUnauthorized, "OTP_INVALID", "code is invalid or has expired"
	case errors.Is(err, domain.ErrOTPTooManyAttempts):
		return http.StatusTooManyRequests, "OTP_TOO_MANY_ATTEMPTS", "too many verification attempts; request a new code"
	case errors.Is(err, domain.ErrOTPResendTooSoon):
		return http.StatusTooManyRequests, "OTP_RESEND_TOO_SOON", "a code was sent recently; wait before resending"
	case errors.Is(err, domain.ErrSocialTokenInvalid):
		return http.StatusUnauthorized, "INVALID_SOCIAL_TOKEN", "social sign-in token is invalid or expired"
	case errors.Is(err, domain.ErrInvoiceNotDraft):
		return http.StatusConflict, "INVOICE_NOT_DRAFT", "only draft invoices can be modified or deleted"
	case errors.Is(err, domain.ErrInvoiceNumberTaken):
		return http.StatusConflict, "INVOICE_NUMBER_TAKEN", "invoice number already in use"
	case errors.Is(err, domain.ErrScheduleCompleted):
		return http.StatusConflict, "SCHEDULE_COMPLETED", "recurring schedule has ended"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		return http.StatusBadRequest, "UNSUPPORTED_CURRENCY", "currency must be one of INR, USD, EUR, GBP"
	case errors.Is(err, domain.ErrRateUnavailable):
		return http.StatusNotFound, "RATE_UNAVAILABLE", "no exchange rate stored for this currency and date"
	case errors.Is(err, domain.ErrDuplicateClient):
		return http.StatusConflict, "DUPLICATE_CLIENT", "client with this name already exists"
	case errors.Is(err, domain.ErrFolderNotEmpty):
		return http.StatusConflict, "FOLDER_NOT_EMPTY", "folder still holds files"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Field-keyed validation errors keep their per-field messages.
func HandleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Error:   &APIError{Code: "VALIDATION_ERROR", Message: "validation failed", Fields: verr.Fields},
		})
		return
	}

	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// extractAuthContext extracts business ID, user ID, and role from the request
// context. Returns false if auth context is missing (error response already
// written).
func extractAuthContext(c *gin.Context) (businessID, userID uuid.UUID, role domain.UserRole, ok bool) {
	var err error
	businessID, err = middleware.GetBusinessID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing business context")
		return uuid.Nil, uuid.Nil, "", false
	}
	userID, err = middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, "", false
	}
	role = domain.UserRole(middleware.GetRole(c))
	return businessID, userID, role, true
}

// parseUUIDParam parses a UUID path parameter, writing a 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
