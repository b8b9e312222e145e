package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrBusinessInactive    = errors.New("business is inactive")
	ErrUserInactive        = errors.New("user is inactive")
	ErrValidation          = errors.New("validation failed")
	ErrOTPInvalid          = errors.New("invalid or expired code")
	ErrOTPTooManyAttempts  = errors.New("too many verification attempts")
	ErrOTPResendTooSoon    = errors.New("code was sent recently, wait before resending")
	ErrSocialTokenInvalid  = errors.New("social sign-in token is invalid")
	ErrInvoiceNotDraft     = errors.New("only draft invoices can be modified")
	ErrInvoiceNumberTaken  = errors.New("invoice number already in use")
	ErrScheduleCompleted   = errors.New("recurring schedule has ended")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrRateUnavailable     = errors.New("exchange rate unavailable")
	ErrDuplicateClient     = errors.New("client with this name already exists")
	ErrFolderNotEmpty      = errors.New("folder is not empty")
)
