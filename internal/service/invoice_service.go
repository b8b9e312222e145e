package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"finbook/internal/billing"
	"finbook/internal/domain"
	"finbook/internal/pdf"
	"finbook/internal/port"
)

// LineItemRequest is the DTO for a line item within an invoice payload. An ID
// refers to an existing row; Destroy marks it for deletion while keeping it
// in the request so totals exclude it.
type LineItemRequest struct {
	ID              *int64  `json:"id"`
	Description     string  `json:"description" binding:"required"`
	HSNSACCode      string  `json:"hsn_sac_code"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Rate            float64 `json:"rate"`
	GSTRate         float64 `json:"gst_rate"`
	ShowDescription bool    `json:"show_description"`
	// SortOrder is a pointer so an explicit 0 is distinguishable from an
	// omitted one, which falls back to request order.
	SortOrder *int `json:"sort_order"`
	Destroy   bool `json:"_destroy"`
}

// InvoiceInput is the DTO for creating and updating invoices.
type InvoiceInput struct {
	ClientID        uuid.UUID           `json:"client_id" binding:"required"`
	Number          string              `json:"number"`
	InvoiceDate     *time.Time          `json:"invoice_date"`
	DueDate         *time.Time          `json:"due_date"`
	Currency        string              `json:"currency"`
	DiscountAmount  float64             `json:"discount_amount"`
	DiscountType    domain.DiscountType `json:"discount_type"`
	ExtraCharges    float64             `json:"extra_charges"`
	TaxType         domain.TaxType      `json:"tax_type"`
	PlaceOfSupply   string              `json:"place_of_supply"`
	CessRate        float64             `json:"cess_rate"`
	IsReverseCharge bool                `json:"is_reverse_charge"`
	Notes           string              `json:"notes"`
	Terms           string              `json:"terms"`
	CustomFields    json.RawMessage     `json:"custom_fields"`
	LineItems       []LineItemRequest   `json:"line_items" binding:"required,min=1,dive"`
}

// SendInvoiceInput is the DTO for emailing an invoice.
type SendInvoiceInput struct {
	To      string   `json:"to" binding:"required,email"`
	Cc      []string `json:"cc" binding:"omitempty,dive,email"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// InvoiceService manages the invoice lifecycle.
type InvoiceService interface {
	Create(ctx context.Context, businessID, userID uuid.UUID, input InvoiceInput, idempotencyKey string) (*domain.Invoice, error)
	Get(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, businessID uuid.UUID, filters port.InvoiceFilters) ([]domain.Invoice, int, error)
	Update(ctx context.Context, businessID, invoiceID uuid.UUID, input InvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, businessID, invoiceID uuid.UUID) error
	SetStatus(ctx context.Context, businessID, invoiceID uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error)
	Send(ctx context.Context, businessID, invoiceID uuid.UUID, input SendInvoiceInput) error
	RenderPDF(ctx context.Context, businessID, invoiceID uuid.UUID) ([]byte, string, error)
	// NextNumber previews the number the next created invoice would get
	// without consuming it.
	NextNumber(ctx context.Context, businessID uuid.UUID) (string, error)
}

type invoiceService struct {
	invoiceRepo     port.InvoiceRepository
	clientRepo      port.ClientRepository
	businessRepo    port.BusinessRepository
	fxRepo          port.ExchangeRateRepository
	idempotencyRepo port.IdempotencyRepository
	emailSender     port.EmailSender
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	businessRepo port.BusinessRepository,
	fxRepo port.ExchangeRateRepository,
	idempotencyRepo port.IdempotencyRepository,
	emailSender port.EmailSender,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:     invoiceRepo,
		clientRepo:      clientRepo,
		businessRepo:    businessRepo,
		fxRepo:          fxRepo,
		idempotencyRepo: idempotencyRepo,
		emailSender:     emailSender,
	}
}

func validateInvoiceInput(input *InvoiceInput) error {
	if input.Currency == "" {
		input.Currency = domain.BaseCurrency
	}
	if !domain.AllowedCurrencies[input.Currency] {
		return domain.ErrUnsupportedCurrency
	}
	if input.TaxType == "" {
		input.TaxType = domain.TaxTypeGSTIndia
	}
	if input.TaxType != domain.TaxTypeGSTIndia && input.TaxType != domain.TaxTypeNone {
		return fmt.Errorf("%w: unknown tax type %q", domain.ErrValidation, input.TaxType)
	}
	if input.DiscountType == "" {
		input.DiscountType = domain.DiscountFixed
	}
	if input.DiscountType != domain.DiscountFixed && input.DiscountType != domain.DiscountPercentage {
		return fmt.Errorf("%w: unknown discount type %q", domain.ErrValidation, input.DiscountType)
	}
	if input.DiscountAmount < 0 {
		return fmt.Errorf("%w: discount must not be negative", domain.ErrValidation)
	}
	if input.InvoiceDate == nil {
		return fmt.Errorf("%w: invoice_date is required", domain.ErrValidation)
	}
	if input.DueDate == nil {
		return fmt.Errorf("%w: due_date is required", domain.ErrValidation)
	}

	live := 0
	for i, item := range input.LineItems {
		if item.Destroy {
			continue
		}
		live++
		if item.Quantity < 0 {
			return fmt.Errorf("%w: line item %d has negative quantity", domain.ErrValidation, i+1)
		}
		if item.Rate < 0 {
			return fmt.Errorf("%w: line item %d has negative rate", domain.ErrValidation, i+1)
		}
		if input.TaxType == domain.TaxTypeGSTIndia && !domain.AllowedGSTRates[item.GSTRate] {
			return fmt.Errorf("%w: line item %d has GST rate %g, must be one of 0, 5, 12, 18, 28", domain.ErrValidation, i+1, item.GSTRate)
		}
	}
	if live == 0 {
		return fmt.Errorf("%w: invoice needs at least one line item", domain.ErrValidation)
	}
	return nil
}

// compute derives totals and the GST split for the invoice, fetching the
// exchange rate for non-INR currencies. A missing rate degrades to no
// conversion rather than failing the save.
func (s *invoiceService) compute(ctx context.Context, business *domain.Business, client *domain.Client, inv *domain.Invoice, input *InvoiceInput) error {
	buyerState := input.PlaceOfSupply
	if buyerState == "" {
		buyerState = client.StateCode
	}
	if gstType, ok := billing.ResolveGSTType(business.StateCode, buyerState); ok {
		inv.GSTType = gstType
	} else if inv.GSTType == "" {
		inv.GSTType = domain.GSTTypeCGSTSGST
	}
	inv.PlaceOfSupply = buyerState

	inv.ExchangeRate = nil
	inv.ExchangeRateDate = nil
	if input.Currency != domain.BaseCurrency {
		at := time.Now().UTC()
		if input.InvoiceDate != nil {
			at = *input.InvoiceDate
		}
		rate, err := s.fxRepo.Latest(ctx, input.Currency, domain.BaseCurrency, at)
		switch {
		case err == nil:
			inv.ExchangeRate = &rate.Rate
			inv.ExchangeRateDate = &rate.RateDate
		case errors.Is(err, domain.ErrRateUnavailable):
			log.Printf("invoice: no %s/%s rate at %s, storing unconverted", input.Currency, domain.BaseCurrency, at.Format("2006-01-02"))
		default:
			return fmt.Errorf("invoice: fetching exchange rate: %w", err)
		}
	}

	items := make([]billing.LineItemInput, len(input.LineItems))
	for i, li := range input.LineItems {
		items[i] = billing.LineItemInput{
			Quantity: li.Quantity,
			Rate:     li.Rate,
			GSTRate:  li.GSTRate,
			Destroy:  li.Destroy,
		}
	}
	calc := billing.Calculate(billing.CalculationInput{
		Items:        items,
		Discount:     billing.DiscountSpec{Amount: input.DiscountAmount, Type: input.DiscountType},
		ExtraCharges: input.ExtraCharges,
		Tax: billing.TaxConfig{
			TaxType:  input.TaxType,
			GSTType:  inv.GSTType,
			CessRate: input.CessRate,
		},
		Currency:     input.Currency,
		ExchangeRate: inv.ExchangeRate,
	})

	inv.Currency = input.Currency
	inv.DiscountAmount = input.DiscountAmount
	inv.DiscountType = input.DiscountType
	inv.ExtraCharges = input.ExtraCharges
	inv.TaxType = input.TaxType
	inv.CessRate = input.CessRate
	inv.IsReverseCharge = input.IsReverseCharge
	inv.Subtotal = calc.Subtotal
	inv.Discount = calc.Discount
	inv.TaxableAmount = calc.TaxableAmount
	inv.CGSTAmount = calc.CGSTAmount
	inv.SGSTAmount = calc.SGSTAmount
	inv.IGSTAmount = calc.IGSTAmount
	inv.CessAmount = calc.CessAmount
	inv.TotalTax = calc.TotalTax
	inv.Total = calc.Total
	inv.TotalInINR = calc.TotalInINR
	return nil
}

func (s *invoiceService) Create(ctx context.Context, businessID, userID uuid.UUID, input InvoiceInput, idempotencyKey string) (*domain.Invoice, error) {
	if err := validateInvoiceInput(&input); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("invoice.Create: %w", err)
	}
	client, err := s.clientRepo.GetByID(ctx, businessID, input.ClientID)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ID:           uuid.New(),
		BusinessID:   businessID,
		ClientID:     client.ID,
		Status:       domain.InvoiceStatusDraft,
		InvoiceDate:  input.InvoiceDate,
		DueDate:      input.DueDate,
		Notes:        input.Notes,
		Terms:        input.Terms,
		CustomFields: input.CustomFields,
		CreatedBy:    userID,
	}

	// Replay the original resource when the client retries with the same key.
	keyRecorded := false
	if idempotencyKey != "" {
		rec, created, err := s.idempotencyRepo.Insert(ctx, &domain.IdempotencyRecord{
			BusinessID:   businessID,
			Key:          idempotencyKey,
			ResourceType: "invoice",
			ResourceID:   inv.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("invoice.Create: %w", err)
		}
		if !created {
			return s.invoiceRepo.GetByID(ctx, businessID, rec.ResourceID)
		}
		keyRecorded = true
	}

	// The key must not outlive a failed save, or every retry replays an
	// invoice that was never inserted.
	releaseKey := func() {
		if !keyRecorded {
			return
		}
		if err := s.idempotencyRepo.Delete(ctx, businessID, idempotencyKey); err != nil {
			log.Printf("invoice: releasing idempotency key %q after failed create: %v", idempotencyKey, err)
		}
	}

	if err := s.compute(ctx, business, client, inv, &input); err != nil {
		releaseKey()
		return nil, err
	}

	inv.Number = input.Number
	if inv.Number == "" {
		at := time.Now().UTC()
		if input.InvoiceDate != nil {
			at = *input.InvoiceDate
		}
		inv.Number, err = s.invoiceRepo.NextNumber(ctx, businessID, at)
		if err != nil {
			releaseKey()
			return nil, err
		}
	}

	items := buildLineItems(input.LineItems)
	if err := s.invoiceRepo.Create(ctx, inv, items); err != nil {
		releaseKey()
		return nil, err
	}
	return inv, nil
}

func buildLineItems(reqs []LineItemRequest) []domain.InvoiceLineItem {
	var items []domain.InvoiceLineItem
	for i, li := range reqs {
		if li.Destroy {
			continue
		}
		sortOrder := i
		if li.SortOrder != nil {
			sortOrder = *li.SortOrder
		}
		items = append(items, domain.InvoiceLineItem{
			Description:     li.Description,
			HSNSACCode:      li.HSNSACCode,
			Quantity:        li.Quantity,
			Unit:            li.Unit,
			Rate:            li.Rate,
			GSTRate:         li.GSTRate,
			ShowDescription: li.ShowDescription,
			SortOrder:       sortOrder,
		})
	}
	return items
}

func (s *invoiceService) Get(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
}

func (s *invoiceService) List(ctx context.Context, businessID uuid.UUID, filters port.InvoiceFilters) ([]domain.Invoice, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	return s.invoiceRepo.List(ctx, businessID, filters)
}

func (s *invoiceService) Update(ctx context.Context, businessID, invoiceID uuid.UUID, input InvoiceInput) (*domain.Invoice, error) {
	if err := validateInvoiceInput(&input); err != nil {
		return nil, err
	}

	inv, err := s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return nil, domain.ErrInvoiceNotDraft
	}

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("invoice.Update: %w", err)
	}
	client, err := s.clientRepo.GetByID(ctx, businessID, input.ClientID)
	if err != nil {
		return nil, err
	}

	inv.ClientID = client.ID
	inv.InvoiceDate = input.InvoiceDate
	inv.DueDate = input.DueDate
	inv.Notes = input.Notes
	inv.Terms = input.Terms
	inv.CustomFields = input.CustomFields
	if input.Number != "" {
		inv.Number = input.Number
	}

	if err := s.compute(ctx, business, client, inv, &input); err != nil {
		return nil, err
	}

	changes := make([]port.LineItemChange, 0, len(input.LineItems))
	for i, li := range input.LineItems {
		if li.ID == nil && li.Destroy {
			// Destroyed before it ever hit the server; nothing to do.
			continue
		}
		sortOrder := i
		if li.SortOrder != nil {
			sortOrder = *li.SortOrder
		}
		changes = append(changes, port.LineItemChange{
			ID:      li.ID,
			Destroy: li.Destroy,
			Item: domain.InvoiceLineItem{
				Description:     li.Description,
				HSNSACCode:      li.HSNSACCode,
				Quantity:        li.Quantity,
				Unit:            li.Unit,
				Rate:            li.Rate,
				GSTRate:         li.GSTRate,
				ShowDescription: li.ShowDescription,
				SortOrder:       sortOrder,
			},
		})
	}

	if err := s.invoiceRepo.Update(ctx, inv, changes); err != nil {
		return nil, err
	}
	return s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
}

func (s *invoiceService) Delete(ctx context.Context, businessID, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return domain.ErrInvoiceNotDraft
	}
	return s.invoiceRepo.Delete(ctx, businessID, invoiceID)
}

// SetStatus moves an invoice between lifecycle states. Drafts go out via
// Send; this handles the manual paid and void transitions.
func (s *invoiceService) SetStatus(ctx context.Context, businessID, invoiceID uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	switch status {
	case domain.InvoiceStatusPaid, domain.InvoiceStatusVoid:
	default:
		return nil, fmt.Errorf("%w: status must be paid or void", domain.ErrValidation)
	}

	inv, err := s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Status = status
	if err := s.invoiceRepo.Update(ctx, inv, nil); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) Send(ctx context.Context, businessID, invoiceID uuid.UUID, input SendInvoiceInput) error {
	pdfBytes, fileName, err := s.RenderPDF(ctx, businessID, invoiceID)
	if err != nil {
		return err
	}
	inv, err := s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return err
	}

	subject := input.Subject
	if subject == "" {
		subject = fmt.Sprintf("Invoice %s", inv.Number)
	}
	body := input.Body
	if body == "" {
		body = fmt.Sprintf("Please find attached invoice %s for %.2f %s.", inv.Number, inv.Total, inv.Currency)
	}

	if err := s.emailSender.SendInvoiceEmail(ctx, port.InvoiceEmail{
		To:       input.To,
		Cc:       input.Cc,
		Subject:  subject,
		Body:     body,
		FileName: fileName,
		PDF:      pdfBytes,
	}); err != nil {
		return fmt.Errorf("invoice.Send: %w", err)
	}

	return s.invoiceRepo.MarkSent(ctx, businessID, invoiceID, time.Now().UTC())
}

func (s *invoiceService) RenderPDF(ctx context.Context, businessID, invoiceID uuid.UUID) ([]byte, string, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, "", fmt.Errorf("invoice.RenderPDF: %w", err)
	}
	client, err := s.clientRepo.GetByID(ctx, businessID, inv.ClientID)
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err := pdf.RenderInvoice(business, client, inv)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, fmt.Sprintf("%s.pdf", inv.Number), nil
}

func (s *invoiceService) NextNumber(ctx context.Context, businessID uuid.UUID) (string, error) {
	return s.invoiceRepo.PeekNumber(ctx, businessID, time.Now().UTC())
}
