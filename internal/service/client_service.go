package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/port"
)

// ClientInput is the DTO for creating and updating clients.
type ClientInput struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"omitempty,email"`
	Phone            string `json:"phone"`
	GSTIN            string `json:"gstin"`
	StateCode        string `json:"state_code"`
	Address          string `json:"address"`
	Currency         string `json:"currency"`
	PaymentTermsDays int    `json:"payment_terms_days"`
}

// ClientService manages the customers a business invoices.
type ClientService interface {
	Create(ctx context.Context, businessID uuid.UUID, input ClientInput) (*domain.Client, error)
	Get(ctx context.Context, businessID, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, businessID, clientID uuid.UUID, input ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, businessID, clientID uuid.UUID) error
}

type clientService struct {
	clientRepo  port.ClientRepository
	invoiceRepo port.InvoiceRepository
}

// NewClientService creates a new ClientService implementation.
func NewClientService(clientRepo port.ClientRepository, invoiceRepo port.InvoiceRepository) ClientService {
	return &clientService{clientRepo: clientRepo, invoiceRepo: invoiceRepo}
}

func validateClientInput(input *ClientInput) error {
	if input.StateCode != "" && !billing.ValidStateCode(input.StateCode) {
		return fmt.Errorf("%w: unknown state code %q", domain.ErrValidation, input.StateCode)
	}
	if input.Currency == "" {
		input.Currency = domain.BaseCurrency
	}
	if !domain.AllowedCurrencies[input.Currency] {
		return domain.ErrUnsupportedCurrency
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, businessID uuid.UUID, input ClientInput) (*domain.Client, error) {
	if err := validateClientInput(&input); err != nil {
		return nil, err
	}

	client := &domain.Client{
		ID:               uuid.New(),
		BusinessID:       businessID,
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		GSTIN:            input.GSTIN,
		StateCode:        input.StateCode,
		Address:          input.Address,
		Currency:         input.Currency,
		PaymentTermsDays: input.PaymentTermsDays,
		IsActive:         true,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, businessID, clientID uuid.UUID) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, businessID, clientID)
}

func (s *clientService) List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	return s.clientRepo.ListByBusiness(ctx, businessID, offset, limit)
}

func (s *clientService) Update(ctx context.Context, businessID, clientID uuid.UUID, input ClientInput) (*domain.Client, error) {
	if err := validateClientInput(&input); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, businessID, clientID)
	if err != nil {
		return nil, err
	}

	client.Name = input.Name
	client.Email = input.Email
	client.Phone = input.Phone
	client.GSTIN = input.GSTIN
	client.StateCode = input.StateCode
	client.Address = input.Address
	client.Currency = input.Currency
	client.PaymentTermsDays = input.PaymentTermsDays

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete soft-deletes the client. Clients with invoices stay resolvable so
// existing invoices keep rendering, which is why the repository deactivates
// rather than removes.
func (s *clientService) Delete(ctx context.Context, businessID, clientID uuid.UUID) error {
	if _, err := s.clientRepo.GetByID(ctx, businessID, clientID); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, businessID, clientID)
}
