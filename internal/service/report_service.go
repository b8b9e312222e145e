package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"finbook/internal/domain"
	"finbook/internal/port"
	"finbook/internal/report"
)

// DashboardSummary aggregates the headline numbers for the home screen.
// Money fields are in INR.
type DashboardSummary struct {
	DraftCount       int     `json:"draft_count"`
	SentCount        int     `json:"sent_count"`
	PaidCount        int     `json:"paid_count"`
	OutstandingTotal float64 `json:"outstanding_total"`
	PaidTotal        float64 `json:"paid_total"`
	OverdueCount     int     `json:"overdue_count"`
}

// ReportService produces exports and dashboard aggregates.
type ReportService interface {
	// WriteInvoiceRegister streams the invoice register workbook for a date
	// range.
	WriteInvoiceRegister(ctx context.Context, businessID uuid.UUID, from, to *time.Time, w io.Writer) error
	Dashboard(ctx context.Context, businessID uuid.UUID) (*DashboardSummary, error)
}

type reportService struct {
	invoiceRepo  port.InvoiceRepository
	clientRepo   port.ClientRepository
	businessRepo port.BusinessRepository
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	businessRepo port.BusinessRepository,
) ReportService {
	return &reportService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		businessRepo: businessRepo,
	}
}

func (s *reportService) WriteInvoiceRegister(ctx context.Context, businessID uuid.UUID, from, to *time.Time, w io.Writer) error {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
	}

	clients := map[uuid.UUID]domain.Client{}
	var rows []report.RegisterRow

	filters := port.InvoiceFilters{DateFrom: from, DateTo: to, Limit: 500}
	for {
		invoices, _, err := s.invoiceRepo.List(ctx, businessID, filters)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			client, ok := clients[inv.ClientID]
			if !ok {
				c, err := s.clientRepo.GetByID(ctx, businessID, inv.ClientID)
				if err != nil {
					return err
				}
				client = *c
				clients[inv.ClientID] = client
			}
			rows = append(rows, report.RegisterRow{Invoice: inv, Client: client})
		}
		if len(invoices) < filters.Limit {
			break
		}
		filters.Offset += filters.Limit
	}

	return report.WriteInvoiceRegister(w, business, rows)
}

func (s *reportService) Dashboard(ctx context.Context, businessID uuid.UUID) (*DashboardSummary, error) {
	summary := &DashboardSummary{}
	now := time.Now().UTC()

	filters := port.InvoiceFilters{Limit: 500}
	for {
		invoices, _, err := s.invoiceRepo.List(ctx, businessID, filters)
		if err != nil {
			return nil, err
		}
		for i := range invoices {
			inv := &invoices[i]
			switch inv.Status {
			case domain.InvoiceStatusDraft:
				summary.DraftCount++
			case domain.InvoiceStatusSent:
				summary.SentCount++
				summary.OutstandingTotal += inv.TotalInINR
				if inv.DueDate != nil && inv.DueDate.Before(now) {
					summary.OverdueCount++
				}
			case domain.InvoiceStatusPaid:
				summary.PaidCount++
				summary.PaidTotal += inv.TotalInINR
			}
		}
		if len(invoices) < filters.Limit {
			break
		}
		filters.Offset += filters.Limit
	}
	return summary, nil
}
