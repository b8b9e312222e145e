package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/service"
	"finbook/mocks"
)

func setupRecurringService() (
	service.RecurringService,
	*mocks.MockRecurringRepo,
	*mocks.MockInvoiceRepo,
	*mocks.MockInvoiceService,
) {
	recurringRepo := new(mocks.MockRecurringRepo)
	invoiceRepo := new(mocks.MockInvoiceRepo)
	invoiceSvc := new(mocks.MockInvoiceService)

	svc := service.NewRecurringService(recurringRepo, invoiceRepo, invoiceSvc)
	return svc, recurringRepo, invoiceRepo, invoiceSvc
}

func monthlySettings(start time.Time) billing.RecurringSettings {
	return billing.RecurringSettings{
		Frequency: domain.FrequencyMonthly,
		StartDate: start,
		EndType:   domain.EndTypeNever,
	}
}

func invoiceTemplate() billing.InvoiceTemplate {
	return billing.InvoiceTemplate{
		Currency: "INR",
		TaxType:  domain.TaxTypeGSTIndia,
		LineItems: []billing.TemplateLineItem{
			{Description: "Retainer", Quantity: 1, Rate: 5000, GSTRate: 18},
		},
	}
}

func TestRecurringService_Create(t *testing.T) {
	svc, recurringRepo, _, _ := setupRecurringService()
	ctx := context.Background()

	businessID := uuid.New()
	userID := uuid.New()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	recurringRepo.On("Create", ctx, mock.AnythingOfType("*domain.RecurringInvoice")).Return(nil)

	rec, err := svc.Create(ctx, businessID, userID, service.RecurringInput{
		ClientID: uuid.New(),
		Name:     "Monthly retainer",
		Settings: monthlySettings(start),
		Template: invoiceTemplate(),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RecurringStatusActive, rec.Status)
	assert.Equal(t, domain.FrequencyMonthly, rec.Frequency)
	// A fresh schedule runs first on its start date.
	assert.Equal(t, start, rec.NextRunAt)
	recurringRepo.AssertExpectations(t)
}

func TestRecurringService_Create_InvalidSettings(t *testing.T) {
	svc, _, _, _ := setupRecurringService()
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), service.RecurringInput{
		ClientID: uuid.New(),
		Name:     "Broken",
		Settings: billing.RecurringSettings{
			Frequency: "fortnightly",
			AutoSend:  true,
		},
		Template: invoiceTemplate(),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "frequency")
	assert.Contains(t, verr.Fields, "start_date")
	assert.Contains(t, verr.Fields, "send_to_email")
}

func TestRecurringService_AttachToInvoice(t *testing.T) {
	svc, recurringRepo, invoiceRepo, _ := setupRecurringService()
	ctx := context.Background()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		ClientID:   uuid.New(),
		Number:     "INV-2026-27-0001",
		Currency:   "INR",
		TaxType:    domain.TaxTypeGSTIndia,
		LineItems: []domain.InvoiceLineItem{
			{ID: 3, Description: "Retainer", Quantity: 1, Rate: 5000, GSTRate: 18},
		},
	}

	recurringRepo.On("Create", ctx, mock.AnythingOfType("*domain.RecurringInvoice")).Return(nil)
	invoiceRepo.On("SetRecurringLink", ctx, inv.BusinessID, inv.ID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	rec, err := svc.AttachToInvoice(ctx, inv, monthlySettings(start))

	assert.NoError(t, err)
	// The source invoice covers the first occurrence.
	assert.Equal(t, start.AddDate(0, 1, 0), rec.NextRunAt)
	assert.Equal(t, "Recurring INV-2026-27-0001", rec.Name)
	assert.NotNil(t, inv.RecurringInvoiceID)
	assert.Equal(t, rec.ID, *inv.RecurringInvoiceID)

	var template billing.InvoiceTemplate
	assert.NoError(t, json.Unmarshal(rec.TemplateData, &template))
	assert.Len(t, template.LineItems, 1)
	assert.Equal(t, "Retainer", template.LineItems[0].Description)
}

func TestRecurringService_AttachToInvoice_LinkedInvoiceUpdatesInPlace(t *testing.T) {
	svc, recurringRepo, _, _ := setupRecurringService()
	ctx := context.Background()

	existingID := uuid.New()
	inv := &domain.Invoice{
		ID:                 uuid.New(),
		BusinessID:         uuid.New(),
		ClientID:           uuid.New(),
		Number:             "INV-2026-27-0001",
		Currency:           "INR",
		TaxType:            domain.TaxTypeGSTIndia,
		RecurringInvoiceID: &existingID,
		LineItems: []domain.InvoiceLineItem{
			{ID: 3, Description: "Retainer", Quantity: 1, Rate: 6000, GSTRate: 18},
		},
	}
	existing := &domain.RecurringInvoice{
		ID:         existingID,
		BusinessID: inv.BusinessID,
		ClientID:   inv.ClientID,
		Name:       "Recurring INV-2026-27-0001",
		Status:     domain.RecurringStatusActive,
		Currency:   "INR",
	}

	recurringRepo.On("GetByID", ctx, inv.BusinessID, existingID).Return(existing, nil)
	recurringRepo.On("Update", ctx, mock.AnythingOfType("*domain.RecurringInvoice")).Return(nil)

	rec, err := svc.AttachToInvoice(ctx, inv, monthlySettings(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))

	assert.NoError(t, err)
	// The already-linked schedule is refreshed, never duplicated; a second
	// schedule would bill the client twice every cycle.
	assert.Equal(t, existingID, rec.ID)
	recurringRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	var template billing.InvoiceTemplate
	assert.NoError(t, json.Unmarshal(rec.TemplateData, &template))
	assert.Len(t, template.LineItems, 1)
	assert.InDelta(t, 6000.0, template.LineItems[0].Rate, 1e-9)
	recurringRepo.AssertExpectations(t)
}

func TestRecurringService_AttachToInvoice_BackLinkFailureIsNotFatal(t *testing.T) {
	svc, recurringRepo, invoiceRepo, _ := setupRecurringService()
	ctx := context.Background()

	inv := &domain.Invoice{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		ClientID:   uuid.New(),
		Number:     "INV-2026-27-0001",
		Currency:   "INR",
	}

	recurringRepo.On("Create", ctx, mock.AnythingOfType("*domain.RecurringInvoice")).Return(nil)
	invoiceRepo.On("SetRecurringLink", ctx, inv.BusinessID, inv.ID, mock.AnythingOfType("uuid.UUID")).
		Return(domain.ErrNotFound)

	rec, err := svc.AttachToInvoice(ctx, inv, monthlySettings(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))

	assert.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Nil(t, inv.RecurringInvoiceID)
}

func TestRecurringService_Update_CompletedRejected(t *testing.T) {
	svc, recurringRepo, _, _ := setupRecurringService()
	ctx := context.Background()

	businessID := uuid.New()
	recurringID := uuid.New()
	recurringRepo.On("GetByID", ctx, businessID, recurringID).
		Return(&domain.RecurringInvoice{ID: recurringID, Status: domain.RecurringStatusCompleted}, nil)

	_, err := svc.Update(ctx, businessID, recurringID, service.RecurringInput{
		ClientID: uuid.New(),
		Name:     "Monthly retainer",
		Settings: monthlySettings(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
		Template: invoiceTemplate(),
	})

	assert.ErrorIs(t, err, domain.ErrScheduleCompleted)
}

func TestRecurringService_SetStatus_RejectsCompleted(t *testing.T) {
	svc, _, _, _ := setupRecurringService()
	ctx := context.Background()

	err := svc.SetStatus(ctx, uuid.New(), uuid.New(), domain.RecurringStatusCompleted)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func newTestSchedule(t *testing.T, autoSend bool) *domain.RecurringInvoice {
	t.Helper()
	templateData, err := json.Marshal(invoiceTemplate())
	assert.NoError(t, err)

	rec := &domain.RecurringInvoice{
		ID:               uuid.New(),
		BusinessID:       uuid.New(),
		ClientID:         uuid.New(),
		Name:             "Monthly retainer",
		Frequency:        domain.FrequencyMonthly,
		StartDate:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndType:          domain.EndTypeNever,
		NextRunAt:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:           domain.RecurringStatusActive,
		Currency:         "INR",
		PaymentTermsDays: 15,
		TemplateData:     templateData,
		CreatedBy:        uuid.New(),
	}
	if autoSend {
		rec.AutoSend = true
		rec.SendToEmail = "billing@globex.com"
	}
	return rec
}

func TestRecurringService_RunOccurrence_AdvancesSchedule(t *testing.T) {
	svc, recurringRepo, invoiceRepo, invoiceSvc := setupRecurringService()
	ctx := context.Background()

	rec := newTestSchedule(t, false)
	generated := &domain.Invoice{ID: uuid.New(), BusinessID: rec.BusinessID, Number: "INV-2026-27-0002"}

	var gotInput service.InvoiceInput
	invoiceSvc.On("Create", ctx, rec.BusinessID, rec.CreatedBy, mock.AnythingOfType("service.InvoiceInput"), "").
		Run(func(args mock.Arguments) {
			gotInput = args.Get(3).(service.InvoiceInput)
		}).
		Return(generated, nil)
	invoiceRepo.On("SetRecurringLink", ctx, rec.BusinessID, generated.ID, rec.ID).Return(nil)
	recurringRepo.On("AdvanceRun", ctx, rec.ID, rec.NextRunAt, rec.NextRunAt.AddDate(0, 1, 0), domain.RecurringStatusActive).
		Return(nil)

	err := svc.RunOccurrence(ctx, rec)

	assert.NoError(t, err)
	assert.Equal(t, rec.ClientID, gotInput.ClientID)
	assert.Equal(t, rec.NextRunAt, *gotInput.InvoiceDate)
	assert.Equal(t, rec.NextRunAt.AddDate(0, 0, 15), *gotInput.DueDate)
	assert.Len(t, gotInput.LineItems, 1)
	recurringRepo.AssertExpectations(t)
}

func TestRecurringService_RunOccurrence_CompletesAtEndDate(t *testing.T) {
	svc, recurringRepo, invoiceRepo, invoiceSvc := setupRecurringService()
	ctx := context.Background()

	rec := newTestSchedule(t, false)
	endDate := rec.NextRunAt.AddDate(0, 0, 10)
	rec.EndType = domain.EndTypeOnDate
	rec.EndDate = &endDate

	generated := &domain.Invoice{ID: uuid.New(), BusinessID: rec.BusinessID}
	invoiceSvc.On("Create", ctx, rec.BusinessID, rec.CreatedBy, mock.AnythingOfType("service.InvoiceInput"), "").
		Return(generated, nil)
	invoiceRepo.On("SetRecurringLink", ctx, rec.BusinessID, generated.ID, rec.ID).Return(nil)
	recurringRepo.On("AdvanceRun", ctx, rec.ID, rec.NextRunAt, rec.NextRunAt.AddDate(0, 1, 0), domain.RecurringStatusCompleted).
		Return(nil)

	err := svc.RunOccurrence(ctx, rec)

	assert.NoError(t, err)
	recurringRepo.AssertExpectations(t)
}

func TestRecurringService_RunOccurrence_AutoSend(t *testing.T) {
	svc, recurringRepo, invoiceRepo, invoiceSvc := setupRecurringService()
	ctx := context.Background()

	rec := newTestSchedule(t, true)
	rec.SendCcEmails = "accounts@globex.com,audit@globex.com"

	generated := &domain.Invoice{ID: uuid.New(), BusinessID: rec.BusinessID}
	invoiceSvc.On("Create", ctx, rec.BusinessID, rec.CreatedBy, mock.AnythingOfType("service.InvoiceInput"), "").
		Return(generated, nil)
	invoiceRepo.On("SetRecurringLink", ctx, rec.BusinessID, generated.ID, rec.ID).Return(nil)
	recurringRepo.On("AdvanceRun", ctx, rec.ID, rec.NextRunAt, mock.AnythingOfType("time.Time"), domain.RecurringStatusActive).
		Return(nil)

	var sent service.SendInvoiceInput
	invoiceSvc.On("Send", ctx, rec.BusinessID, generated.ID, mock.AnythingOfType("service.SendInvoiceInput")).
		Run(func(args mock.Arguments) {
			sent = args.Get(3).(service.SendInvoiceInput)
		}).
		Return(nil)

	err := svc.RunOccurrence(ctx, rec)

	assert.NoError(t, err)
	assert.Equal(t, "billing@globex.com", sent.To)
	assert.Equal(t, []string{"accounts@globex.com", "audit@globex.com"}, sent.Cc)
	invoiceSvc.AssertExpectations(t)
}

func TestRecurringService_RunOccurrence_SendFailureStillAdvances(t *testing.T) {
	svc, recurringRepo, invoiceRepo, invoiceSvc := setupRecurringService()
	ctx := context.Background()

	rec := newTestSchedule(t, true)
	generated := &domain.Invoice{ID: uuid.New(), BusinessID: rec.BusinessID}
	invoiceSvc.On("Create", ctx, rec.BusinessID, rec.CreatedBy, mock.AnythingOfType("service.InvoiceInput"), "").
		Return(generated, nil)
	invoiceRepo.On("SetRecurringLink", ctx, rec.BusinessID, generated.ID, rec.ID).Return(nil)
	recurringRepo.On("AdvanceRun", ctx, rec.ID, rec.NextRunAt, mock.AnythingOfType("time.Time"), domain.RecurringStatusActive).
		Return(nil)
	invoiceSvc.On("Send", ctx, rec.BusinessID, generated.ID, mock.AnythingOfType("service.SendInvoiceInput")).
		Return(domain.ErrNotFound)

	err := svc.RunOccurrence(ctx, rec)

	assert.NoError(t, err)
	recurringRepo.AssertExpectations(t)
}

func TestRecurringService_GenerateNow_CompletedRejected(t *testing.T) {
	svc, recurringRepo, _, _ := setupRecurringService()
	ctx := context.Background()

	businessID := uuid.New()
	recurringID := uuid.New()
	recurringRepo.On("GetByID", ctx, businessID, recurringID).
		Return(&domain.RecurringInvoice{ID: recurringID, Status: domain.RecurringStatusCompleted}, nil)

	_, err := svc.GenerateNow(ctx, businessID, recurringID)

	assert.ErrorIs(t, err, domain.ErrScheduleCompleted)
}
