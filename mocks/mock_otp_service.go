package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finbook/internal/service"
)

// MockOTPService is a mock implementation of service.OTPService.
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Send(ctx context.Context, input service.SendOTPInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockOTPService) Resend(ctx context.Context, input service.SendOTPInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockOTPService) Verify(ctx context.Context, input service.VerifyOTPInput) (*service.VerifyResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerifyResult), args.Error(1)
}
