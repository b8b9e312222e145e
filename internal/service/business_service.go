package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/port"
)

// OnboardingInput is the DTO for completing onboarding.
type OnboardingInput struct {
	BusinessName string `json:"business_name" binding:"required"`
	GSTIN        string `json:"gstin"`
	StateCode    string `json:"state_code" binding:"required"`
	Address      string `json:"address"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	FullName     string `json:"full_name" binding:"required"`
}

// UpdateBusinessInput is the DTO for profile updates after onboarding.
type UpdateBusinessInput struct {
	BusinessName *string `json:"business_name"`
	GSTIN        *string `json:"gstin"`
	StateCode    *string `json:"state_code"`
	Address      *string `json:"address"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
}

// BusinessService manages the business profile and onboarding.
type BusinessService interface {
	CompleteOnboarding(ctx context.Context, businessID, userID uuid.UUID, input OnboardingInput) (*domain.Business, error)
	Get(ctx context.Context, businessID uuid.UUID) (*domain.Business, error)
	Update(ctx context.Context, businessID uuid.UUID, input UpdateBusinessInput) (*domain.Business, error)
}

type businessService struct {
	businessRepo port.BusinessRepository
	userRepo     port.UserRepository
}

// NewBusinessService creates a new BusinessService implementation.
func NewBusinessService(businessRepo port.BusinessRepository, userRepo port.UserRepository) BusinessService {
	return &businessService{businessRepo: businessRepo, userRepo: userRepo}
}

func (s *businessService) CompleteOnboarding(ctx context.Context, businessID, userID uuid.UUID, input OnboardingInput) (*domain.Business, error) {
	if !billing.ValidStateCode(input.StateCode) {
		return nil, fmt.Errorf("%w: unknown state code %q", domain.ErrValidation, input.StateCode)
	}

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("business.CompleteOnboarding: %w", err)
	}

	business.Name = input.BusinessName
	business.GSTIN = input.GSTIN
	business.StateCode = input.StateCode
	business.Address = input.Address
	business.Email = input.Email
	business.Phone = input.Phone
	business.IsOnboarded = true

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("business.CompleteOnboarding: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, businessID, userID)
	if err != nil {
		return nil, fmt.Errorf("business.CompleteOnboarding: %w", err)
	}
	user.FullName = input.FullName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("business.CompleteOnboarding: %w", err)
	}

	return business, nil
}

func (s *businessService) Get(ctx context.Context, businessID uuid.UUID) (*domain.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("business.Get: %w", err)
	}
	return business, nil
}

func (s *businessService) Update(ctx context.Context, businessID uuid.UUID, input UpdateBusinessInput) (*domain.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("business.Update: %w", err)
	}

	if input.StateCode != nil {
		if !billing.ValidStateCode(*input.StateCode) {
			return nil, fmt.Errorf("%w: unknown state code %q", domain.ErrValidation, *input.StateCode)
		}
		business.StateCode = *input.StateCode
	}
	if input.BusinessName != nil {
		business.Name = *input.BusinessName
	}
	if input.GSTIN != nil {
		business.GSTIN = *input.GSTIN
	}
	if input.Address != nil {
		business.Address = *input.Address
	}
	if input.Email != nil {
		business.Email = *input.Email
	}
	if input.Phone != nil {
		business.Phone = *input.Phone
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("business.Update: %w", err)
	}
	return business, nil
}
