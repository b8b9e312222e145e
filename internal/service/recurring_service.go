package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/port"
)

// RecurringInput is the DTO for creating and updating recurring schedules.
type RecurringInput struct {
	ClientID         uuid.UUID                 `json:"client_id" binding:"required"`
	Name             string                    `json:"name" binding:"required"`
	PaymentTermsDays int                       `json:"payment_terms_days"`
	Settings         billing.RecurringSettings `json:"settings" binding:"required"`
	Template         billing.InvoiceTemplate   `json:"template" binding:"required"`
}

// ValidationError carries field-keyed validation messages for a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

// RecurringService manages recurring-invoice schedules and stamps out
// occurrences.
type RecurringService interface {
	Create(ctx context.Context, businessID, userID uuid.UUID, input RecurringInput) (*domain.RecurringInvoice, error)
	// AttachToInvoice creates a schedule from an invoice and back-links the
	// invoice to it; an invoice already linked to a schedule updates that
	// schedule in place. The back-link is best effort: a failure is logged,
	// not returned, since the schedule itself was saved.
	AttachToInvoice(ctx context.Context, inv *domain.Invoice, settings billing.RecurringSettings) (*domain.RecurringInvoice, error)
	Get(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.RecurringInvoice, error)
	List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.RecurringInvoice, int, error)
	Update(ctx context.Context, businessID, recurringID uuid.UUID, input RecurringInput) (*domain.RecurringInvoice, error)
	SetStatus(ctx context.Context, businessID, recurringID uuid.UUID, status domain.RecurringStatus) error
	Delete(ctx context.Context, businessID, recurringID uuid.UUID) error
	// GenerateNow stamps out one occurrence immediately, independent of the
	// schedule's next run.
	GenerateNow(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.Invoice, error)
	// RunOccurrence generates the invoice for a claimed due schedule,
	// advances its next run, and auto-sends when configured.
	RunOccurrence(ctx context.Context, rec *domain.RecurringInvoice) error
}

type recurringService struct {
	recurringRepo  port.RecurringRepository
	invoiceRepo    port.InvoiceRepository
	invoiceService InvoiceService
}

// NewRecurringService creates a new RecurringService implementation.
func NewRecurringService(
	recurringRepo port.RecurringRepository,
	invoiceRepo port.InvoiceRepository,
	invoiceService InvoiceService,
) RecurringService {
	return &recurringService{
		recurringRepo:  recurringRepo,
		invoiceRepo:    invoiceRepo,
		invoiceService: invoiceService,
	}
}

func (s *recurringService) Create(ctx context.Context, businessID, userID uuid.UUID, input RecurringInput) (*domain.RecurringInvoice, error) {
	input.Settings.IsRecurring = true
	if errs := billing.ValidateSettings(input.Settings); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	templateData, err := json.Marshal(input.Template)
	if err != nil {
		return nil, fmt.Errorf("recurring.Create: %w", err)
	}

	rec := &domain.RecurringInvoice{
		ID:               uuid.New(),
		BusinessID:       businessID,
		ClientID:         input.ClientID,
		Name:             input.Name,
		Status:           domain.RecurringStatusActive,
		Currency:         input.Template.Currency,
		PaymentTermsDays: input.PaymentTermsDays,
		TemplateData:     templateData,
		CreatedBy:        userID,
	}
	billing.MergeSettings(rec, input.Settings)

	if err := s.recurringRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recurringService) AttachToInvoice(ctx context.Context, inv *domain.Invoice, settings billing.RecurringSettings) (*domain.RecurringInvoice, error) {
	settings.IsRecurring = true
	if errs := billing.ValidateSettings(settings); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	template := billing.InvoiceTemplate{
		Notes:    inv.Notes,
		Terms:    inv.Terms,
		Currency: inv.Currency,
		TaxType:  inv.TaxType,
		GSTType:  inv.GSTType,
		CessRate: inv.CessRate,
	}
	for _, li := range inv.LineItems {
		template.LineItems = append(template.LineItems, billing.TemplateLineItem{
			Description:     li.Description,
			HSNSACCode:      li.HSNSACCode,
			Quantity:        li.Quantity,
			Unit:            li.Unit,
			Rate:            li.Rate,
			GSTRate:         li.GSTRate,
			ShowDescription: li.ShowDescription,
		})
	}

	templateData, err := json.Marshal(template)
	if err != nil {
		return nil, fmt.Errorf("recurring.AttachToInvoice: %w", err)
	}

	// An invoice that already carries a schedule updates it in place; a
	// second Create would double-bill the client every cycle.
	if inv.RecurringInvoiceID != nil {
		rec, err := s.recurringRepo.GetByID(ctx, inv.BusinessID, *inv.RecurringInvoiceID)
		switch {
		case err == nil:
			if rec.Status == domain.RecurringStatusCompleted {
				return nil, domain.ErrScheduleCompleted
			}
			rec.ClientID = inv.ClientID
			rec.Currency = inv.Currency
			rec.TemplateData = templateData
			billing.MergeSettings(rec, settings)
			if err := s.recurringRepo.Update(ctx, rec); err != nil {
				return nil, err
			}
			return rec, nil
		case errors.Is(err, domain.ErrNotFound):
			// Dangling link, the schedule is gone; fall through and recreate.
		default:
			return nil, err
		}
	}

	rec := &domain.RecurringInvoice{
		ID:           uuid.New(),
		BusinessID:   inv.BusinessID,
		ClientID:     inv.ClientID,
		Name:         fmt.Sprintf("Recurring %s", inv.Number),
		Status:       domain.RecurringStatusActive,
		Currency:     inv.Currency,
		TemplateData: templateData,
		CreatedBy:    inv.CreatedBy,
	}
	billing.MergeSettings(rec, settings)

	// The source invoice covers the first occurrence.
	rec.NextRunAt = billing.NextRun(rec.Frequency, rec.StartDate)
	if err := s.recurringRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SetRecurringLink(ctx, inv.BusinessID, inv.ID, rec.ID); err != nil {
		log.Printf("recurring: back-linking invoice %s to schedule %s failed: %v", inv.ID, rec.ID, err)
	} else {
		inv.RecurringInvoiceID = &rec.ID
	}
	return rec, nil
}

func (s *recurringService) Get(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.RecurringInvoice, error) {
	return s.recurringRepo.GetByID(ctx, businessID, recurringID)
}

func (s *recurringService) List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.RecurringInvoice, int, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.recurringRepo.List(ctx, businessID, offset, limit)
}

func (s *recurringService) Update(ctx context.Context, businessID, recurringID uuid.UUID, input RecurringInput) (*domain.RecurringInvoice, error) {
	input.Settings.IsRecurring = true
	if errs := billing.ValidateSettings(input.Settings); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	rec, err := s.recurringRepo.GetByID(ctx, businessID, recurringID)
	if err != nil {
		return nil, err
	}
	if rec.Status == domain.RecurringStatusCompleted {
		return nil, domain.ErrScheduleCompleted
	}

	templateData, err := json.Marshal(input.Template)
	if err != nil {
		return nil, fmt.Errorf("recurring.Update: %w", err)
	}

	rec.ClientID = input.ClientID
	rec.Name = input.Name
	rec.PaymentTermsDays = input.PaymentTermsDays
	rec.Currency = input.Template.Currency
	rec.TemplateData = templateData
	billing.MergeSettings(rec, input.Settings)

	if err := s.recurringRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recurringService) SetStatus(ctx context.Context, businessID, recurringID uuid.UUID, status domain.RecurringStatus) error {
	if status != domain.RecurringStatusActive && status != domain.RecurringStatusPaused {
		return fmt.Errorf("%w: status must be active or paused", domain.ErrValidation)
	}

	rec, err := s.recurringRepo.GetByID(ctx, businessID, recurringID)
	if err != nil {
		return err
	}
	if rec.Status == domain.RecurringStatusCompleted {
		return domain.ErrScheduleCompleted
	}
	return s.recurringRepo.UpdateStatus(ctx, businessID, recurringID, status)
}

func (s *recurringService) Delete(ctx context.Context, businessID, recurringID uuid.UUID) error {
	return s.recurringRepo.Delete(ctx, businessID, recurringID)
}

func (s *recurringService) GenerateNow(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.Invoice, error) {
	rec, err := s.recurringRepo.GetByID(ctx, businessID, recurringID)
	if err != nil {
		return nil, err
	}
	if rec.Status == domain.RecurringStatusCompleted {
		return nil, domain.ErrScheduleCompleted
	}
	return s.generateInvoice(ctx, rec, time.Now().UTC())
}

func (s *recurringService) RunOccurrence(ctx context.Context, rec *domain.RecurringInvoice) error {
	runAt := rec.NextRunAt
	inv, err := s.generateInvoice(ctx, rec, runAt)
	if err != nil {
		return fmt.Errorf("recurring.RunOccurrence %s: %w", rec.ID, err)
	}

	next := billing.NextRun(rec.Frequency, runAt)
	status := rec.Status
	if billing.Ended(rec.EndType, rec.EndDate, next) {
		status = domain.RecurringStatusCompleted
	}
	if err := s.recurringRepo.AdvanceRun(ctx, rec.ID, runAt, next, status); err != nil {
		return fmt.Errorf("recurring.RunOccurrence %s: %w", rec.ID, err)
	}

	if rec.AutoSend && rec.SendToEmail != "" {
		send := SendInvoiceInput{
			To:      rec.SendToEmail,
			Subject: rec.SendEmailSubject,
			Body:    rec.SendEmailBody,
		}
		if rec.SendCcEmails != "" {
			send.Cc = strings.Split(rec.SendCcEmails, ",")
		}
		if err := s.invoiceService.Send(ctx, rec.BusinessID, inv.ID, send); err != nil {
			// The occurrence exists and the schedule advanced; delivery can
			// be retried by hand.
			log.Printf("recurring: auto-send of invoice %s for schedule %s failed: %v", inv.ID, rec.ID, err)
		}
	}
	return nil
}

// generateInvoice stamps the schedule's template into a real invoice dated at
// the occurrence, then back-links it to the schedule.
func (s *recurringService) generateInvoice(ctx context.Context, rec *domain.RecurringInvoice, runAt time.Time) (*domain.Invoice, error) {
	var template billing.InvoiceTemplate
	if err := json.Unmarshal(rec.TemplateData, &template); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}

	invoiceDate := runAt
	dueDate := runAt.AddDate(0, 0, rec.PaymentTermsDays)

	input := InvoiceInput{
		ClientID:    rec.ClientID,
		InvoiceDate: &invoiceDate,
		DueDate:     &dueDate,
		Currency:    template.Currency,
		TaxType:     template.TaxType,
		CessRate:    template.CessRate,
		Notes:       template.Notes,
		Terms:       template.Terms,
	}
	for _, li := range template.LineItems {
		input.LineItems = append(input.LineItems, LineItemRequest{
			Description:     li.Description,
			HSNSACCode:      li.HSNSACCode,
			Quantity:        li.Quantity,
			Unit:            li.Unit,
			Rate:            li.Rate,
			GSTRate:         li.GSTRate,
			ShowDescription: li.ShowDescription,
		})
	}

	inv, err := s.invoiceService.Create(ctx, rec.BusinessID, rec.CreatedBy, input, "")
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SetRecurringLink(ctx, rec.BusinessID, inv.ID, rec.ID); err != nil {
		log.Printf("recurring: back-linking invoice %s to schedule %s failed: %v", inv.ID, rec.ID, err)
	} else {
		inv.RecurringInvoiceID = &rec.ID
	}
	return inv, nil
}
