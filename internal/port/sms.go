package port

import "context"

// SMSSender defines the contract for delivering one-time passcodes by SMS.
type SMSSender interface {
	SendOTP(ctx context.Context, toPhone, code string) error
}
