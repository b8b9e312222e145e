package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceInsert = `INSERT INTO invoices (
	id, business_id, client_id, number, status, invoice_date, due_date,
	currency, exchange_rate, exchange_rate_date, discount_amount,
	discount_type, extra_charges, tax_type, place_of_supply, gst_type,
	cess_rate, is_reverse_charge, notes, terms, custom_fields,
	subtotal, discount, taxable_amount, cgst_amount, sgst_amount,
	igst_amount, cess_amount, total_tax, total, total_in_inr,
	recurring_invoice_id, sent_at, created_by, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11,
	$12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21,
	$22, $23, $24, $25, $26,
	$27, $28, $29, $30, $31,
	$32, $33, $34, $35, $36
)`

func invoiceArgs(inv *domain.Invoice) []interface{} {
	return []interface{}{
		inv.ID, inv.BusinessID, inv.ClientID, inv.Number, inv.Status,
		inv.InvoiceDate, inv.DueDate, inv.Currency, inv.ExchangeRate,
		inv.ExchangeRateDate, inv.DiscountAmount, inv.DiscountType,
		inv.ExtraCharges, inv.TaxType, inv.PlaceOfSupply, inv.GSTType,
		inv.CessRate, inv.IsReverseCharge, inv.Notes, inv.Terms,
		inv.CustomFields, inv.Subtotal, inv.Discount, inv.TaxableAmount,
		inv.CGSTAmount, inv.SGSTAmount, inv.IGSTAmount, inv.CessAmount,
		inv.TotalTax, inv.Total, inv.TotalInINR, inv.RecurringInvoiceID,
		inv.SentAt, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceLineItem) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, invoiceInsert, invoiceArgs(inv)...); err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "number") {
			return domain.ErrInvoiceNumberTaken
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}

	for i := range items {
		if err := insertLineItem(ctx, tx, inv.ID, &items[i], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Create commit: %w", err)
	}
	inv.LineItems = items
	return nil
}

func insertLineItem(ctx context.Context, tx *sqlx.Tx, invoiceID uuid.UUID, item *domain.InvoiceLineItem, now time.Time) error {
	item.InvoiceID = invoiceID
	item.CreatedAt = now
	item.UpdatedAt = now

	err := tx.QueryRowContext(ctx, `
		INSERT INTO invoice_line_items (
			invoice_id, description, hsn_sac_code, quantity, unit, rate,
			gst_rate, show_description, sort_order, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		item.InvoiceID, item.Description, item.HSNSACCode, item.Quantity,
		item.Unit, item.Rate, item.GSTRate, item.ShowDescription,
		item.SortOrder, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo insert line item: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE id = $1 AND business_id = $2", invoiceID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}

	err = r.db.SelectContext(ctx, &inv.LineItems, `
		SELECT * FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY sort_order, id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetByID line items: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, businessID uuid.UUID, f port.InvoiceFilters) ([]domain.Invoice, int, error) {
	conditions := []string{"business_id = $1"}
	args := []interface{}{businessID}

	if f.ClientID != nil {
		args = append(args, *f.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		conditions = append(conditions, fmt.Sprintf("invoice_date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		conditions = append(conditions, fmt.Sprintf("invoice_date <= $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	args = append(args, f.Offset, f.Limit)
	query := fmt.Sprintf(`
		SELECT * FROM invoices %s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d`, where, len(args)-1, len(args))

	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice, changes []port.LineItemChange) error {
	now := time.Now().UTC()
	inv.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE invoices SET
		client_id = $3, number = $4, status = $5, invoice_date = $6,
		due_date = $7, currency = $8, exchange_rate = $9,
		exchange_rate_date = $10, discount_amount = $11, discount_type = $12,
		extra_charges = $13, tax_type = $14, place_of_supply = $15,
		gst_type = $16, cess_rate = $17, is_reverse_charge = $18,
		notes = $19, terms = $20, custom_fields = $21,
		subtotal = $22, discount = $23, taxable_amount = $24,
		cgst_amount = $25, sgst_amount = $26, igst_amount = $27,
		cess_amount = $28, total_tax = $29, total = $30, total_in_inr = $31,
		updated_at = $32
	WHERE id = $1 AND business_id = $2`

	res, err := tx.ExecContext(ctx, query,
		inv.ID, inv.BusinessID, inv.ClientID, inv.Number, inv.Status,
		inv.InvoiceDate, inv.DueDate, inv.Currency, inv.ExchangeRate,
		inv.ExchangeRateDate, inv.DiscountAmount, inv.DiscountType,
		inv.ExtraCharges, inv.TaxType, inv.PlaceOfSupply, inv.GSTType,
		inv.CessRate, inv.IsReverseCharge, inv.Notes, inv.Terms,
		inv.CustomFields, inv.Subtotal, inv.Discount, inv.TaxableAmount,
		inv.CGSTAmount, inv.SGSTAmount, inv.IGSTAmount, inv.CessAmount,
		inv.TotalTax, inv.Total, inv.TotalInINR, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	// Line-item diffing: id + _destroy → delete, id → update, no id → insert.
	for i := range changes {
		ch := &changes[i]
		switch {
		case ch.ID != nil && ch.Destroy:
			_, err = tx.ExecContext(ctx,
				"DELETE FROM invoice_line_items WHERE id = $1 AND invoice_id = $2",
				*ch.ID, inv.ID)
			if err != nil {
				return fmt.Errorf("invoiceRepo.Update delete line item: %w", err)
			}
		case ch.ID != nil:
			_, err = tx.ExecContext(ctx, `
				UPDATE invoice_line_items SET
					description = $3, hsn_sac_code = $4, quantity = $5,
					unit = $6, rate = $7, gst_rate = $8,
					show_description = $9, sort_order = $10, updated_at = $11
				WHERE id = $1 AND invoice_id = $2`,
				*ch.ID, inv.ID, ch.Item.Description, ch.Item.HSNSACCode,
				ch.Item.Quantity, ch.Item.Unit, ch.Item.Rate, ch.Item.GSTRate,
				ch.Item.ShowDescription, ch.Item.SortOrder, now)
			if err != nil {
				return fmt.Errorf("invoiceRepo.Update line item: %w", err)
			}
		default:
			if err := insertLineItem(ctx, tx, inv.ID, &ch.Item, now); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Update commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, businessID, invoiceID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND business_id = $2", invoiceID, businessID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) MarkSent(ctx context.Context, businessID, invoiceID uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET status = $3, sent_at = $4, updated_at = $4
		WHERE id = $1 AND business_id = $2`,
		invoiceID, businessID, domain.InvoiceStatusSent, at.UTC())
	if err != nil {
		return fmt.Errorf("invoiceRepo.MarkSent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) SetRecurringLink(ctx context.Context, businessID, invoiceID, recurringID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET recurring_invoice_id = $3, updated_at = $4
		WHERE id = $1 AND business_id = $2`,
		invoiceID, businessID, recurringID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("invoiceRepo.SetRecurringLink: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextNumber increments a per-business, per-fiscal-year counter. Indian
// fiscal years run April to March: INV-2026-27-0042.
func (r *invoiceRepo) NextNumber(ctx context.Context, businessID uuid.UUID, at time.Time) (string, error) {
	fy := fiscalYearLabel(at)

	var next int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO invoice_counters (business_id, fiscal_year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (business_id, fiscal_year)
		DO UPDATE SET last_value = invoice_counters.last_value + 1
		RETURNING last_value`, businessID, fy).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("invoiceRepo.NextNumber: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", fy, next), nil
}

// PeekNumber reads the counter without advancing it.
func (r *invoiceRepo) PeekNumber(ctx context.Context, businessID uuid.UUID, at time.Time) (string, error) {
	fy := fiscalYearLabel(at)

	var last int
	err := r.db.GetContext(ctx, &last, `
		SELECT COALESCE((
			SELECT last_value FROM invoice_counters
			WHERE business_id = $1 AND fiscal_year = $2
		), 0)`, businessID, fy)
	if err != nil {
		return "", fmt.Errorf("invoiceRepo.PeekNumber: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", fy, last+1), nil
}

func (r *invoiceRepo) ByClientExists(ctx context.Context, businessID, clientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM invoices WHERE business_id = $1 AND client_id = $2)",
		businessID, clientID)
	if err != nil {
		return false, fmt.Errorf("invoiceRepo.ByClientExists: %w", err)
	}
	return exists, nil
}

func fiscalYearLabel(at time.Time) string {
	y := at.Year()
	if at.Month() < time.April {
		y--
	}
	return fmt.Sprintf("%d-%02d", y, (y+1)%100)
}
