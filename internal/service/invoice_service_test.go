package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/service"
	"finbook/mocks"
)

func setupInvoiceService() (
	service.InvoiceService,
	*mocks.MockInvoiceRepo,
	*mocks.MockClientRepo,
	*mocks.MockBusinessRepo,
	*mocks.MockExchangeRateRepo,
	*mocks.MockIdempotencyRepo,
	*mocks.MockEmailSender,
) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	clientRepo := new(mocks.MockClientRepo)
	businessRepo := new(mocks.MockBusinessRepo)
	fxRepo := new(mocks.MockExchangeRateRepo)
	idemRepo := new(mocks.MockIdempotencyRepo)
	emailSender := new(mocks.MockEmailSender)

	svc := service.NewInvoiceService(invoiceRepo, clientRepo, businessRepo, fxRepo, idemRepo, emailSender)
	return svc, invoiceRepo, clientRepo, businessRepo, fxRepo, idemRepo, emailSender
}

func testDates() (invoiceDate, dueDate *time.Time) {
	d := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	due := d.AddDate(0, 0, 15)
	return &d, &due
}

func testBusinessAndClient(sellerState, buyerState string) (*domain.Business, *domain.Client) {
	business := &domain.Business{
		ID:           uuid.New(),
		Name:         "Acme Traders",
		GSTIN:        "29ABCDE1234F1Z5",
		StateCode:    sellerState,
		BaseCurrency: domain.BaseCurrency,
		IsActive:     true,
		IsOnboarded:  true,
	}
	client := &domain.Client{
		ID:         uuid.New(),
		BusinessID: business.ID,
		Name:       "Globex",
		StateCode:  buyerState,
		Currency:   domain.BaseCurrency,
	}
	return business, client
}

func TestInvoiceService_Create_FixedDiscount(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")
	userID := uuid.New()

	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	invoiceRepo.On("NextNumber", ctx, business.ID, mock.AnythingOfType("time.Time")).
		Return("INV-2026-27-0001", nil)
	invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]domain.InvoiceLineItem")).
		Return(nil)

	invDate, dueDate := testDates()
	inv, err := svc.Create(ctx, business.ID, userID, service.InvoiceInput{
		ClientID:       client.ID,
		InvoiceDate:    invDate,
		DueDate:        dueDate,
		DiscountAmount: 10,
		DiscountType:   domain.DiscountFixed,
		ExtraCharges:   5,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 2, Rate: 100, GSTRate: 18},
		},
	}, "")

	assert.NoError(t, err)
	assert.Equal(t, "INV-2026-27-0001", inv.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, domain.GSTTypeCGSTSGST, inv.GSTType)
	assert.InDelta(t, 200.0, inv.Subtotal, 1e-9)
	assert.InDelta(t, 10.0, inv.Discount, 1e-9)
	assert.InDelta(t, 195.0, inv.TaxableAmount, 1e-9)
	assert.InDelta(t, 18.0, inv.CGSTAmount, 1e-9)
	assert.InDelta(t, 18.0, inv.SGSTAmount, 1e-9)
	assert.InDelta(t, 0.0, inv.IGSTAmount, 1e-9)
	assert.InDelta(t, 231.0, inv.Total, 1e-9)
	assert.InDelta(t, 231.0, inv.TotalInINR, 1e-9)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_PercentageDiscount(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "27")
	userID := uuid.New()

	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	invoiceRepo.On("NextNumber", ctx, business.ID, mock.AnythingOfType("time.Time")).
		Return("INV-2026-27-0002", nil)
	invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]domain.InvoiceLineItem")).
		Return(nil)

	invDate, dueDate := testDates()
	inv, err := svc.Create(ctx, business.ID, userID, service.InvoiceInput{
		ClientID:       client.ID,
		InvoiceDate:    invDate,
		DueDate:        dueDate,
		DiscountAmount: 10,
		DiscountType:   domain.DiscountPercentage,
		ExtraCharges:   5,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 2, Rate: 100, GSTRate: 18},
		},
	}, "")

	assert.NoError(t, err)
	// Inter-state supply resolves to IGST.
	assert.Equal(t, domain.GSTTypeIGST, inv.GSTType)
	assert.InDelta(t, 20.0, inv.Discount, 1e-9)
	assert.InDelta(t, 185.0, inv.TaxableAmount, 1e-9)
	assert.InDelta(t, 36.0, inv.IGSTAmount, 1e-9)
	assert.InDelta(t, 221.0, inv.Total, 1e-9)
}

func TestInvoiceService_Create_ForeignCurrencyWithRate(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, fxRepo, _, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")
	userID := uuid.New()

	rate := &domain.ExchangeRate{
		FromCurrency: "USD",
		ToCurrency:   "INR",
		Rate:         83.5,
		RateDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	fxRepo.On("Latest", ctx, "USD", "INR", mock.AnythingOfType("time.Time")).Return(rate, nil)
	invoiceRepo.On("NextNumber", ctx, business.ID, mock.AnythingOfType("time.Time")).
		Return("INV-2026-27-0003", nil)
	invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]domain.InvoiceLineItem")).
		Return(nil)

	invDate, dueDate := testDates()
	inv, err := svc.Create(ctx, business.ID, userID, service.InvoiceInput{
		ClientID:    client.ID,
		InvoiceDate: invDate,
		DueDate:     dueDate,
		Currency:    "USD",
		TaxType:     domain.TaxTypeNone,
		LineItems: []service.LineItemRequest{
			{Description: "Export services", Quantity: 1, Rate: 100},
		},
	}, "")

	assert.NoError(t, err)
	assert.InDelta(t, 100.0, inv.Total, 1e-9)
	assert.InDelta(t, 8350.0, inv.TotalInINR, 1e-9)
	assert.NotNil(t, inv.ExchangeRate)
	assert.InDelta(t, 83.5, *inv.ExchangeRate, 1e-9)
}

func TestInvoiceService_Create_MissingRateDegradesToUnconverted(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, fxRepo, _, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")

	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	fxRepo.On("Latest", ctx, "EUR", "INR", mock.AnythingOfType("time.Time")).
		Return(nil, domain.ErrRateUnavailable)
	invoiceRepo.On("NextNumber", ctx, business.ID, mock.AnythingOfType("time.Time")).
		Return("INV-2026-27-0004", nil)
	invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]domain.InvoiceLineItem")).
		Return(nil)

	invDate, dueDate := testDates()
	inv, err := svc.Create(ctx, business.ID, uuid.New(), service.InvoiceInput{
		ClientID:    client.ID,
		InvoiceDate: invDate,
		DueDate:     dueDate,
		Currency:    "EUR",
		TaxType:     domain.TaxTypeNone,
		LineItems: []service.LineItemRequest{
			{Description: "Export services", Quantity: 1, Rate: 100},
		},
	}, "")

	assert.NoError(t, err)
	assert.Nil(t, inv.ExchangeRate)
	assert.InDelta(t, 100.0, inv.TotalInINR, 1e-9)
}

func TestInvoiceService_Create_IdempotentReplay(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, idemRepo, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")
	originalID := uuid.New()

	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	idemRepo.On("Insert", ctx, mock.AnythingOfType("*domain.IdempotencyRecord")).
		Return(&domain.IdempotencyRecord{
			BusinessID: business.ID,
			Key:        "retry-key",
			ResourceID: originalID,
		}, false, nil)

	original := &domain.Invoice{ID: originalID, BusinessID: business.ID, Number: "INV-2026-27-0001"}
	invoiceRepo.On("GetByID", ctx, business.ID, originalID).Return(original, nil)

	invDate, dueDate := testDates()
	inv, err := svc.Create(ctx, business.ID, uuid.New(), service.InvoiceInput{
		ClientID:    client.ID,
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 2, Rate: 100, GSTRate: 18},
		},
	}, "retry-key")

	assert.NoError(t, err)
	assert.Equal(t, originalID, inv.ID)
	invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	idemRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_MissingDatesRejected(t *testing.T) {
	svc, invoiceRepo, _, _, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	// A date-less invoice has to fail validation, not reach the database
	// and bounce off the NOT NULL constraint as a 500.
	_, err := svc.Create(ctx, uuid.New(), uuid.New(), service.InvoiceInput{
		ClientID: uuid.New(),
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 1, Rate: 100, GSTRate: 18},
		},
	}, "")

	assert.ErrorIs(t, err, domain.ErrValidation)
	invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Create_FailedSaveReleasesIdempotencyKey(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, idemRepo, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")

	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	idemRepo.On("Insert", ctx, mock.AnythingOfType("*domain.IdempotencyRecord")).
		Return(&domain.IdempotencyRecord{BusinessID: business.ID, Key: "retry-key"}, true, nil)
	invoiceRepo.On("NextNumber", ctx, business.ID, mock.AnythingOfType("time.Time")).
		Return("INV-2026-27-0001", nil)
	invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]domain.InvoiceLineItem")).
		Return(assert.AnError)
	// The key must be freed when the save fails, or the retry replays an
	// invoice that was never inserted.
	idemRepo.On("Delete", ctx, business.ID, "retry-key").Return(nil)

	invDate, dueDate := testDates()
	_, err := svc.Create(ctx, business.ID, uuid.New(), service.InvoiceInput{
		ClientID:    client.ID,
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 2, Rate: 100, GSTRate: 18},
		},
	}, "retry-key")

	assert.Error(t, err)
	idemRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_ExplicitZeroSortOrderKept(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")

	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)
	invoiceRepo.On("NextNumber", ctx, business.ID, mock.AnythingOfType("time.Time")).
		Return("INV-2026-27-0001", nil)

	var gotItems []domain.InvoiceLineItem
	invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]domain.InvoiceLineItem")).
		Run(func(args mock.Arguments) {
			gotItems = args.Get(2).([]domain.InvoiceLineItem)
		}).
		Return(nil)

	first, second := 1, 0
	invDate, dueDate := testDates()
	_, err := svc.Create(ctx, business.ID, uuid.New(), service.InvoiceInput{
		ClientID:    client.ID,
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{Description: "Second", Quantity: 1, Rate: 100, GSTRate: 18, SortOrder: &first},
			{Description: "First", Quantity: 1, Rate: 200, GSTRate: 18, SortOrder: &second},
			{Description: "Unordered", Quantity: 1, Rate: 300, GSTRate: 18},
		},
	}, "")

	assert.NoError(t, err)
	assert.Len(t, gotItems, 3)
	// An explicit 0 sticks; only an omitted sort_order falls back to
	// request order.
	assert.Equal(t, 1, gotItems[0].SortOrder)
	assert.Equal(t, 0, gotItems[1].SortOrder)
	assert.Equal(t, 2, gotItems[2].SortOrder)
}

func TestInvoiceService_Create_RejectsNonSlabGSTRate(t *testing.T) {
	svc, _, _, _, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	invDate, dueDate := testDates()
	_, err := svc.Create(ctx, uuid.New(), uuid.New(), service.InvoiceInput{
		ClientID:    uuid.New(),
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 1, Rate: 100, GSTRate: 17},
		},
	}, "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceService_Create_RejectsAllDestroyedItems(t *testing.T) {
	svc, _, _, _, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	invDate, dueDate := testDates()
	_, err := svc.Create(ctx, uuid.New(), uuid.New(), service.InvoiceInput{
		ClientID:    uuid.New(),
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 1, Rate: 100, GSTRate: 18, Destroy: true},
		},
	}, "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceService_Update_ExcludesDestroyedItemsFromTotals(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")
	invoiceID := uuid.New()
	existingItemID := int64(7)

	draft := &domain.Invoice{
		ID:         invoiceID,
		BusinessID: business.ID,
		ClientID:   client.ID,
		Number:     "INV-2026-27-0001",
		Status:     domain.InvoiceStatusDraft,
	}
	invoiceRepo.On("GetByID", ctx, business.ID, invoiceID).Return(draft, nil)
	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)

	var gotChanges []port.LineItemChange
	invoiceRepo.On("Update", ctx, mock.AnythingOfType("*domain.Invoice"), mock.AnythingOfType("[]port.LineItemChange")).
		Run(func(args mock.Arguments) {
			gotChanges = args.Get(2).([]port.LineItemChange)
		}).
		Return(nil)

	invDate, dueDate := testDates()
	_, err := svc.Update(ctx, business.ID, invoiceID, service.InvoiceInput{
		ClientID:    client.ID,
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{ID: &existingItemID, Description: "Old line", Quantity: 1, Rate: 500, GSTRate: 18, Destroy: true},
			{Description: "New line", Quantity: 2, Rate: 100, GSTRate: 18},
		},
	})

	assert.NoError(t, err)
	// Destroyed item is excluded from money math but still sent for deletion.
	assert.InDelta(t, 200.0, draft.Subtotal, 1e-9)
	assert.InDelta(t, 236.0, draft.Total, 1e-9)
	assert.Len(t, gotChanges, 2)
	assert.True(t, gotChanges[0].Destroy)
	assert.Equal(t, existingItemID, *gotChanges[0].ID)
	assert.Nil(t, gotChanges[1].ID)
}

func TestInvoiceService_Update_NonDraftRejected(t *testing.T) {
	svc, invoiceRepo, _, _, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	businessID := uuid.New()
	invoiceID := uuid.New()
	invoiceRepo.On("GetByID", ctx, businessID, invoiceID).
		Return(&domain.Invoice{ID: invoiceID, Status: domain.InvoiceStatusSent}, nil)

	invDate, dueDate := testDates()
	_, err := svc.Update(ctx, businessID, invoiceID, service.InvoiceInput{
		ClientID:    uuid.New(),
		InvoiceDate: invDate,
		DueDate:     dueDate,
		LineItems: []service.LineItemRequest{
			{Description: "Consulting", Quantity: 1, Rate: 100, GSTRate: 18},
		},
	})

	assert.ErrorIs(t, err, domain.ErrInvoiceNotDraft)
}

func TestInvoiceService_Delete_NonDraftRejected(t *testing.T) {
	svc, invoiceRepo, _, _, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	businessID := uuid.New()
	invoiceID := uuid.New()
	invoiceRepo.On("GetByID", ctx, businessID, invoiceID).
		Return(&domain.Invoice{ID: invoiceID, Status: domain.InvoiceStatusPaid}, nil)

	err := svc.Delete(ctx, businessID, invoiceID)

	assert.ErrorIs(t, err, domain.ErrInvoiceNotDraft)
	invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_SetStatus_RejectsArbitraryStatus(t *testing.T) {
	svc, _, _, _, _, _, _ := setupInvoiceService()
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, uuid.New(), uuid.New(), domain.InvoiceStatusDraft)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceService_Send_MarksSent(t *testing.T) {
	svc, invoiceRepo, clientRepo, businessRepo, _, _, emailSender := setupInvoiceService()
	ctx := context.Background()

	business, client := testBusinessAndClient("29", "29")
	invoiceID := uuid.New()

	inv := &domain.Invoice{
		ID:         invoiceID,
		BusinessID: business.ID,
		ClientID:   client.ID,
		Number:     "INV-2026-27-0001",
		Status:     domain.InvoiceStatusDraft,
		Currency:   "INR",
		Total:      231,
	}
	invoiceRepo.On("GetByID", ctx, business.ID, invoiceID).Return(inv, nil)
	businessRepo.On("GetByID", ctx, business.ID).Return(business, nil)
	clientRepo.On("GetByID", ctx, business.ID, client.ID).Return(client, nil)

	var sent port.InvoiceEmail
	emailSender.On("SendInvoiceEmail", ctx, mock.AnythingOfType("port.InvoiceEmail")).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(port.InvoiceEmail)
		}).
		Return(nil)
	invoiceRepo.On("MarkSent", ctx, business.ID, invoiceID, mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.Send(ctx, business.ID, invoiceID, service.SendInvoiceInput{To: "billing@globex.com"})

	assert.NoError(t, err)
	assert.Equal(t, "billing@globex.com", sent.To)
	assert.Equal(t, "Invoice INV-2026-27-0001", sent.Subject)
	assert.Equal(t, "INV-2026-27-0001.pdf", sent.FileName)
	assert.NotEmpty(t, sent.PDF)
	invoiceRepo.AssertExpectations(t)
}
