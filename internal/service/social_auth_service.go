package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"finbook/internal/domain"
	"finbook/internal/port"
)

// SocialLoginInput is the DTO for social sign-in requests.
type SocialLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

// SocialAuthService exchanges a verified provider ID token for app tokens.
type SocialAuthService interface {
	Login(ctx context.Context, input SocialLoginInput) (*VerifyResult, error)
}

type socialAuthService struct {
	verifier     port.SocialTokenVerifier
	userRepo     port.UserRepository
	businessRepo port.BusinessRepository
	authService  AuthService
}

// NewSocialAuthService creates a new SocialAuthService implementation.
func NewSocialAuthService(
	verifier port.SocialTokenVerifier,
	userRepo port.UserRepository,
	businessRepo port.BusinessRepository,
	authService AuthService,
) SocialAuthService {
	return &socialAuthService{
		verifier:     verifier,
		userRepo:     userRepo,
		businessRepo: businessRepo,
		authService:  authService,
	}
}

func (s *socialAuthService) Login(ctx context.Context, input SocialLoginInput) (*VerifyResult, error) {
	claims, err := s.verifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, domain.ErrSocialTokenInvalid
	}
	if !claims.EmailVerified {
		return nil, domain.ErrSocialTokenInvalid
	}

	user, isNew, err := s.resolveUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	business, err := s.businessRepo.GetByID(ctx, user.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("socialAuth.Login: %w", err)
	}
	if !business.IsActive {
		return nil, domain.ErrBusinessInactive
	}

	tokens, err := s.authService.IssueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("socialAuth.Login: %w", err)
	}

	return &VerifyResult{
		Tokens:      tokens,
		IsNewUser:   isNew,
		IsOnboarded: business.IsOnboarded,
	}, nil
}

// resolveUser matches by provider subject first, then links an existing
// account by verified email, and finally creates a fresh user and shell
// business.
func (s *socialAuthService) resolveUser(ctx context.Context, claims *port.SocialAuthClaims) (*domain.User, bool, error) {
	user, err := s.userRepo.GetByGoogleSub(ctx, claims.Subject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("socialAuth.Login: %w", err)
	}

	user, err = s.userRepo.GetByEmail(ctx, claims.Email)
	if err == nil {
		if lerr := s.userRepo.LinkGoogleSub(ctx, user.BusinessID, user.ID, claims.Subject); lerr != nil {
			return nil, false, fmt.Errorf("socialAuth.Login link: %w", lerr)
		}
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("socialAuth.Login: %w", err)
	}

	business := &domain.Business{
		ID:           uuid.New(),
		BaseCurrency: domain.BaseCurrency,
		IsActive:     true,
	}
	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, false, fmt.Errorf("socialAuth.Login create business: %w", err)
	}

	sub := claims.Subject
	user = &domain.User{
		ID:         uuid.New(),
		BusinessID: business.ID,
		Email:      claims.Email,
		FullName:   claims.FullName,
		Role:       domain.RoleAdmin,
		GoogleSub:  &sub,
		IsActive:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("socialAuth.Login create user: %w", err)
	}
	return user, true, nil
}
