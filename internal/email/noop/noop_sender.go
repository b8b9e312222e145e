package noop

import (
	"context"
	"log"

	"finbook/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendInvoiceEmail(_ context.Context, email port.InvoiceEmail) error {
	log.Printf("[NOOP EMAIL] Invoice email to %s (cc %v), subject %q, attachment %d bytes",
		email.To, email.Cc, email.Subject, len(email.PDF))
	return nil
}

func (s *noopSender) SendOTPEmail(_ context.Context, toEmail, code string) error {
	log.Printf("[NOOP EMAIL] OTP for %s: %s", toEmail, code)
	return nil
}
