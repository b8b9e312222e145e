package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finbook/internal/config"
	"finbook/internal/domain"
	"finbook/internal/port"
)

// SendOTPInput is the DTO for OTP send and resend requests.
type SendOTPInput struct {
	Destination string `json:"destination" binding:"required"`
	Channel     string `json:"channel" binding:"required,oneof=sms email"`
}

// VerifyOTPInput is the DTO for OTP verification requests.
type VerifyOTPInput struct {
	Destination string `json:"destination" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// VerifyResult is returned on a successful verification. IsNewUser signals
// the client to route into onboarding.
type VerifyResult struct {
	Tokens      *TokenPair `json:"tokens"`
	IsNewUser   bool       `json:"is_new_user"`
	IsOnboarded bool       `json:"is_onboarded"`
}

// OTPService implements passwordless login with one-time passcodes.
type OTPService interface {
	Send(ctx context.Context, input SendOTPInput) error
	// Resend behaves like Send but enforces the resend throttle against the
	// previous code.
	Resend(ctx context.Context, input SendOTPInput) error
	Verify(ctx context.Context, input VerifyOTPInput) (*VerifyResult, error)
}

type otpService struct {
	otpRepo      port.OTPRepository
	userRepo     port.UserRepository
	businessRepo port.BusinessRepository
	smsSender    port.SMSSender
	emailSender  port.EmailSender
	authService  AuthService
	cfg          config.OTPConfig
}

// NewOTPService creates a new OTPService implementation.
func NewOTPService(
	otpRepo port.OTPRepository,
	userRepo port.UserRepository,
	businessRepo port.BusinessRepository,
	smsSender port.SMSSender,
	emailSender port.EmailSender,
	authService AuthService,
	cfg config.OTPConfig,
) OTPService {
	return &otpService{
		otpRepo:      otpRepo,
		userRepo:     userRepo,
		businessRepo: businessRepo,
		smsSender:    smsSender,
		emailSender:  emailSender,
		authService:  authService,
		cfg:          cfg,
	}
}

func (s *otpService) Send(ctx context.Context, input SendOTPInput) error {
	return s.send(ctx, input, false)
}

func (s *otpService) Resend(ctx context.Context, input SendOTPInput) error {
	return s.send(ctx, input, true)
}

func (s *otpService) send(ctx context.Context, input SendOTPInput, isResend bool) error {
	destination := normalizeDestination(input.Destination)

	if prev, err := s.otpRepo.GetLatest(ctx, destination); err == nil {
		if time.Since(prev.CreatedAt) < s.cfg.ResendAfter {
			if isResend {
				return domain.ErrOTPResendTooSoon
			}
			// A fresh code was already delivered moments ago; treat the
			// duplicate send as a success rather than racing deliveries.
			return nil
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("otp.Send: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("otp.Send: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("otp.Send: %w", err)
	}

	otp := &domain.OTPCode{
		ID:          uuid.New(),
		Destination: destination,
		Channel:     domain.OTPChannel(input.Channel),
		CodeHash:    string(hash),
		ExpiresAt:   time.Now().UTC().Add(s.cfg.Expiry),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return fmt.Errorf("otp.Send: %w", err)
	}

	switch otp.Channel {
	case domain.OTPChannelEmail:
		if err := s.emailSender.SendOTPEmail(ctx, destination, code); err != nil {
			return fmt.Errorf("otp.Send: %w", err)
		}
	default:
		if err := s.smsSender.SendOTP(ctx, destination, code); err != nil {
			return fmt.Errorf("otp.Send: %w", err)
		}
	}
	return nil
}

func (s *otpService) Verify(ctx context.Context, input VerifyOTPInput) (*VerifyResult, error) {
	destination := normalizeDestination(input.Destination)

	otp, err := s.otpRepo.GetLatest(ctx, destination)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrOTPInvalid
		}
		return nil, fmt.Errorf("otp.Verify: %w", err)
	}

	if otp.ConsumedAt != nil || time.Now().UTC().After(otp.ExpiresAt) {
		return nil, domain.ErrOTPInvalid
	}
	if otp.Attempts >= s.cfg.MaxAttempts {
		return nil, domain.ErrOTPTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(input.Code)); err != nil {
		if ierr := s.otpRepo.IncrementAttempts(ctx, otp.ID); ierr != nil {
			return nil, fmt.Errorf("otp.Verify: %w", ierr)
		}
		return nil, domain.ErrOTPInvalid
	}

	if err := s.otpRepo.MarkConsumed(ctx, otp.ID); err != nil {
		return nil, fmt.Errorf("otp.Verify: %w", err)
	}

	user, isNew, err := s.findOrCreateUser(ctx, destination, otp.Channel)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	business, err := s.businessRepo.GetByID(ctx, user.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("otp.Verify: %w", err)
	}
	if !business.IsActive {
		return nil, domain.ErrBusinessInactive
	}

	tokens, err := s.authService.IssueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("otp.Verify: %w", err)
	}

	return &VerifyResult{
		Tokens:      tokens,
		IsNewUser:   isNew,
		IsOnboarded: business.IsOnboarded,
	}, nil
}

// findOrCreateUser resolves the verified destination to a user. First-time
// sign-ins get a shell business that onboarding later completes.
func (s *otpService) findOrCreateUser(ctx context.Context, destination string, channel domain.OTPChannel) (*domain.User, bool, error) {
	var (
		user *domain.User
		err  error
	)
	if channel == domain.OTPChannelEmail {
		user, err = s.userRepo.GetByEmail(ctx, destination)
	} else {
		user, err = s.userRepo.GetByPhone(ctx, destination)
	}
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("otp.Verify: %w", err)
	}

	business := &domain.Business{
		ID:           uuid.New(),
		BaseCurrency: domain.BaseCurrency,
		IsActive:     true,
	}
	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, false, fmt.Errorf("otp.Verify create business: %w", err)
	}

	user = &domain.User{
		ID:         uuid.New(),
		BusinessID: business.ID,
		Role:       domain.RoleAdmin,
		IsActive:   true,
	}
	if channel == domain.OTPChannelEmail {
		user.Email = destination
	} else {
		user.Phone = destination
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("otp.Verify create user: %w", err)
	}
	return user, true, nil
}

func (s *otpService) generateCode() (string, error) {
	// Fixed code short-circuits delivery in development environments.
	if s.cfg.DevFixedCode != "" {
		return s.cfg.DevFixedCode, nil
	}

	var sb strings.Builder
	for i := 0; i < s.cfg.Length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generating code: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

func normalizeDestination(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
