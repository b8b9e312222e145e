package noop

import (
	"context"
	"log"

	"finbook/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op SMSSender that logs codes instead of sending.
func NewNoopSender() port.SMSSender {
	return &noopSender{}
}

func (s *noopSender) SendOTP(_ context.Context, toPhone, code string) error {
	log.Printf("[NOOP SMS] OTP for %s: %s", toPhone, code)
	return nil
}
