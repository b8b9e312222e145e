package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Business represents a registered small business. All other rows are
// scoped by business_id.
type Business struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	GSTIN        string    `db:"gstin" json:"gstin"`
	StateCode    string    `db:"state_code" json:"state_code"`
	Address      string    `db:"address" json:"address"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	BaseCurrency string    `db:"base_currency" json:"base_currency"`
	IsOnboarded  bool      `db:"is_onboarded" json:"is_onboarded"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated user belonging to a business.
// Phone is the primary identifier for OTP login; GoogleSub is set when the
// user has linked a Google identity.
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Phone      string    `db:"phone" json:"phone"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Role       UserRole  `db:"role" json:"role"`
	GoogleSub  *string   `db:"google_sub" json:"-"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// OTPCode stores a hashed one-time passcode issued to a destination.
// The plaintext code never touches the database.
type OTPCode struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Destination string     `db:"destination" json:"destination"`
	Channel     OTPChannel `db:"channel" json:"channel"`
	CodeHash    string     `db:"code_hash" json:"-"`
	Attempts    int        `db:"attempts" json:"attempts"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	ConsumedAt  *time.Time `db:"consumed_at" json:"consumed_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Client is a customer the business invoices.
type Client struct {
	ID               uuid.UUID `db:"id" json:"id"`
	BusinessID       uuid.UUID `db:"business_id" json:"business_id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	GSTIN            string    `db:"gstin" json:"gstin"`
	StateCode        string    `db:"state_code" json:"state_code"`
	Address          string    `db:"address" json:"address"`
	Currency         string    `db:"currency" json:"currency"`
	PaymentTermsDays int       `db:"payment_terms_days" json:"payment_terms_days"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is a sales invoice with computed totals persisted alongside the
// inputs that produced them.
type Invoice struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	BusinessID       uuid.UUID       `db:"business_id" json:"business_id"`
	ClientID         uuid.UUID       `db:"client_id" json:"client_id"`
	Number           string          `db:"number" json:"number"`
	Status           InvoiceStatus   `db:"status" json:"status"`
	InvoiceDate      *time.Time      `db:"invoice_date" json:"invoice_date"`
	DueDate          *time.Time      `db:"due_date" json:"due_date"`
	Currency         string          `db:"currency" json:"currency"`
	ExchangeRate     *float64        `db:"exchange_rate" json:"exchange_rate"`
	ExchangeRateDate *time.Time      `db:"exchange_rate_date" json:"exchange_rate_date"`
	DiscountAmount   float64         `db:"discount_amount" json:"discount_amount"`
	DiscountType     DiscountType    `db:"discount_type" json:"discount_type"`
	ExtraCharges     float64         `db:"extra_charges" json:"extra_charges"`
	TaxType          TaxType         `db:"tax_type" json:"tax_type"`
	PlaceOfSupply    string          `db:"place_of_supply" json:"place_of_supply"`
	GSTType          GSTType         `db:"gst_type" json:"gst_type"`
	CessRate         float64         `db:"cess_rate" json:"cess_rate"`
	IsReverseCharge  bool            `db:"is_reverse_charge" json:"is_reverse_charge"`
	Notes            string          `db:"notes" json:"notes"`
	Terms            string          `db:"terms" json:"terms"`
	CustomFields     json.RawMessage `db:"custom_fields" json:"custom_fields"`

	// Persisted output of the totals calculator.
	Subtotal      float64 `db:"subtotal" json:"subtotal"`
	Discount      float64 `db:"discount" json:"discount"`
	TaxableAmount float64 `db:"taxable_amount" json:"taxable_amount"`
	CGSTAmount    float64 `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount    float64 `db:"sgst_amount" json:"sgst_amount"`
	IGSTAmount    float64 `db:"igst_amount" json:"igst_amount"`
	CessAmount    float64 `db:"cess_amount" json:"cess_amount"`
	TotalTax      float64 `db:"total_tax" json:"total_tax"`
	Total         float64 `db:"total" json:"total"`
	TotalInINR    float64 `db:"total_in_inr" json:"total_in_inr"`

	RecurringInvoiceID *uuid.UUID `db:"recurring_invoice_id" json:"recurring_invoice_id"`
	SentAt             *time.Time `db:"sent_at" json:"sent_at"`
	CreatedBy          uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	LineItems []InvoiceLineItem `db:"-" json:"line_items,omitempty"`
}

// InvoiceLineItem is a single billable line on an invoice. IDs are serial so
// clients can diff against server-assigned identities on update.
type InvoiceLineItem struct {
	ID              int64     `db:"id" json:"id"`
	InvoiceID       uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Description     string    `db:"description" json:"description"`
	HSNSACCode      string    `db:"hsn_sac_code" json:"hsn_sac_code"`
	Quantity        float64   `db:"quantity" json:"quantity"`
	Unit            string    `db:"unit" json:"unit"`
	Rate            float64   `db:"rate" json:"rate"`
	GSTRate         float64   `db:"gst_rate" json:"gst_rate"`
	ShowDescription bool      `db:"show_description" json:"show_description"`
	SortOrder       int       `db:"sort_order" json:"sort_order"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// RecurringInvoice is a persisted schedule that generates invoice
// occurrences. TemplateData holds the invoice template (line items stripped
// of server IDs, notes, terms) as stored JSON.
type RecurringInvoice struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	BusinessID       uuid.UUID       `db:"business_id" json:"business_id"`
	ClientID         uuid.UUID       `db:"client_id" json:"client_id"`
	Name             string          `db:"name" json:"name"`
	Frequency        Frequency       `db:"frequency" json:"frequency"`
	StartDate        time.Time       `db:"start_date" json:"start_date"`
	EndType          EndType         `db:"end_type" json:"end_type"`
	EndDate          *time.Time      `db:"end_date" json:"end_date"`
	NextRunAt        time.Time       `db:"next_run_at" json:"next_run_at"`
	Status           RecurringStatus `db:"status" json:"status"`
	Currency         string          `db:"currency" json:"currency"`
	PaymentTermsDays int             `db:"payment_terms_days" json:"payment_terms_days"`
	AutoSend         bool            `db:"auto_send" json:"auto_send"`
	SendToEmail      string          `db:"send_to_email" json:"send_to_email"`
	SendCcEmails     string          `db:"send_cc_emails" json:"send_cc_emails"`
	SendEmailSubject string          `db:"send_email_subject" json:"send_email_subject"`
	SendEmailBody    string          `db:"send_email_body" json:"send_email_body"`
	TemplateData     json.RawMessage `db:"template_data" json:"template_data"`
	OccurrenceCount  int             `db:"occurrence_count" json:"occurrence_count"`
	LastRunAt        *time.Time      `db:"last_run_at" json:"last_run_at"`
	ClaimedAt        *time.Time      `db:"claimed_at" json:"-"`
	CreatedBy        uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// BankStatement is an uploaded bank statement file going through the parse
// queue.
type BankStatement struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	BusinessID       uuid.UUID       `db:"business_id" json:"business_id"`
	FileName         string          `db:"file_name" json:"file_name"`
	BankName         string          `db:"bank_name" json:"bank_name"`
	S3Bucket         string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key            string          `db:"s3_key" json:"s3_key"`
	Status           StatementStatus `db:"status" json:"status"`
	ParseAttempts    int             `db:"parse_attempts" json:"parse_attempts"`
	ParseError       string          `db:"parse_error" json:"parse_error"`
	TransactionCount int             `db:"transaction_count" json:"transaction_count"`
	ParsedAt         *time.Time      `db:"parsed_at" json:"parsed_at"`
	UploadedBy       uuid.UUID       `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// BankTransaction is a single categorized row from a parsed statement.
type BankTransaction struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BusinessID     uuid.UUID      `db:"business_id" json:"business_id"`
	StatementID    uuid.UUID      `db:"statement_id" json:"statement_id"`
	TxnDate        time.Time      `db:"txn_date" json:"txn_date"`
	Description    string         `db:"description" json:"description"`
	Reference      string         `db:"reference" json:"reference"`
	Amount         float64        `db:"amount" json:"amount"`
	Direction      TxnDirection   `db:"direction" json:"direction"`
	Category       string         `db:"category" json:"category"`
	CategorySource CategorySource `db:"category_source" json:"category_source"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// CategoryRule is a per-business keyword → category mapping used by the
// transaction categorizer, layered over the built-in defaults.
type CategoryRule struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Keyword    string    `db:"keyword" json:"keyword"`
	Category   string    `db:"category" json:"category"`
	CreatedBy  uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Folder groups stored files within a business.
type Folder struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BusinessID uuid.UUID  `db:"business_id" json:"business_id"`
	Name       string     `db:"name" json:"name"`
	ParentID   *uuid.UUID `db:"parent_id" json:"parent_id"`
	CreatedBy  uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about an uploaded file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	BusinessID   uuid.UUID  `db:"business_id" json:"business_id"`
	FolderID     *uuid.UUID `db:"folder_id" json:"folder_id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ExchangeRate is a stored conversion rate into INR for a given day.
type ExchangeRate struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FromCurrency string    `db:"from_currency" json:"from_currency"`
	ToCurrency   string    `db:"to_currency" json:"to_currency"`
	Rate         float64   `db:"rate" json:"rate"`
	RateDate     time.Time `db:"rate_date" json:"rate_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IdempotencyRecord maps a client-supplied idempotency key to the resource
// it created, so a duplicate create replays the original identifier.
type IdempotencyRecord struct {
	BusinessID   uuid.UUID `db:"business_id" json:"business_id"`
	Key          string    `db:"key" json:"key"`
	ResourceType string    `db:"resource_type" json:"resource_type"`
	ResourceID   uuid.UUID `db:"resource_id" json:"resource_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
