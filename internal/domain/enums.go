package domain

// UserRole defines the role hierarchy within a business.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// TaxType selects the tax regime applied to an invoice.
type TaxType string

const (
	TaxTypeGSTIndia TaxType = "gst_india"
	TaxTypeNone     TaxType = "none"
)

// GSTType is the intra- vs inter-state GST treatment.
type GSTType string

const (
	GSTTypeIGST     GSTType = "igst"
	GSTTypeCGSTSGST GSTType = "cgst_sgst"
)

// DiscountType selects how the invoice-level discount is applied.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// AllowedGSTRates are the GST slab rates accepted on a line item.
var AllowedGSTRates = map[float64]bool{0: true, 5: true, 12: true, 18: true, 28: true}

// AllowedCurrencies are the currencies invoices may be issued in.
// INR is the base currency; everything converts back to it.
var AllowedCurrencies = map[string]bool{"INR": true, "USD": true, "EUR": true, "GBP": true}

// BaseCurrency is the reporting currency.
const BaseCurrency = "INR"

// InvoiceStatus represents the lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

// Frequency is the recurring-invoice cadence.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// ValidFrequencies maps accepted frequency values.
var ValidFrequencies = map[Frequency]bool{
	FrequencyWeekly:    true,
	FrequencyBiweekly:  true,
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyYearly:    true,
}

// EndType is how a recurring schedule terminates.
type EndType string

const (
	EndTypeNever  EndType = "never"
	EndTypeOnDate EndType = "end_on_date"
)

// RecurringStatus represents the lifecycle of a recurring schedule.
type RecurringStatus string

const (
	RecurringStatusActive    RecurringStatus = "active"
	RecurringStatusPaused    RecurringStatus = "paused"
	RecurringStatusCompleted RecurringStatus = "completed"
)

// StatementStatus represents the parse lifecycle of an uploaded bank statement.
type StatementStatus string

const (
	StatementStatusQueued     StatementStatus = "queued"
	StatementStatusProcessing StatementStatus = "processing"
	StatementStatusCompleted  StatementStatus = "completed"
	StatementStatusFailed     StatementStatus = "failed"
)

// TxnDirection is the debit/credit direction of a bank transaction.
type TxnDirection string

const (
	TxnDebit  TxnDirection = "debit"
	TxnCredit TxnDirection = "credit"
)

// CategorySource records whether a transaction category was assigned
// automatically or by a user.
type CategorySource string

const (
	CategorySourceAuto   CategorySource = "auto"
	CategorySourceManual CategorySource = "manual"
)

// OTPChannel is the delivery channel for a one-time passcode.
type OTPChannel string

const (
	OTPChannelSMS   OTPChannel = "sms"
	OTPChannelEmail OTPChannel = "email"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
	FileTypeCSV FileType = "csv"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
	FileTypeCSV: "text/csv",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"csv":  FileTypeCSV,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)
