package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finbook/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvoiceEmail(ctx context.Context, email port.InvoiceEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockEmailSender) SendOTPEmail(ctx context.Context, toEmail, code string) error {
	args := m.Called(ctx, toEmail, code)
	return args.Error(0)
}

// MockSMSSender is a mock implementation of port.SMSSender.
type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendOTP(ctx context.Context, toPhone, code string) error {
	args := m.Called(ctx, toPhone, code)
	return args.Error(0)
}

// MockSocialTokenVerifier is a mock implementation of port.SocialTokenVerifier.
type MockSocialTokenVerifier struct {
	mock.Mock
}

func (m *MockSocialTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*port.SocialAuthClaims, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.SocialAuthClaims), args.Error(1)
}

func (m *MockSocialTokenVerifier) Provider() string {
	args := m.Called()
	return args.String(0)
}
