package port

import "context"

// InvoiceEmail carries everything needed to deliver an invoice by email.
// PDF may be nil when no attachment is wanted.
type InvoiceEmail struct {
	To       string
	Cc       []string
	Subject  string
	Body     string
	FileName string
	PDF      []byte
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendInvoiceEmail(ctx context.Context, email InvoiceEmail) error
	SendOTPEmail(ctx context.Context, toEmail, code string) error
}
