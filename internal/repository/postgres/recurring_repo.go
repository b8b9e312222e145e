package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type recurringRepo struct {
	db *sqlx.DB
}

// NewRecurringRepo creates a new PostgreSQL-backed RecurringRepository.
func NewRecurringRepo(db *sqlx.DB) port.RecurringRepository {
	return &recurringRepo{db: db}
}

func (r *recurringRepo) Create(ctx context.Context, rec *domain.RecurringInvoice) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `INSERT INTO recurring_invoices (
		id, business_id, client_id, name, frequency, start_date, end_type,
		end_date, next_run_at, status, currency, payment_terms_days,
		auto_send, send_to_email, send_cc_emails, send_email_subject,
		send_email_body, template_data, occurrence_count, last_run_at,
		created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23
	)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.BusinessID, rec.ClientID, rec.Name, rec.Frequency,
		rec.StartDate, rec.EndType, rec.EndDate, rec.NextRunAt, rec.Status,
		rec.Currency, rec.PaymentTermsDays, rec.AutoSend, rec.SendToEmail,
		rec.SendCcEmails, rec.SendEmailSubject, rec.SendEmailBody,
		rec.TemplateData, rec.OccurrenceCount, rec.LastRunAt,
		rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("recurringRepo.Create: %w", err)
	}
	return nil
}

func (r *recurringRepo) GetByID(ctx context.Context, businessID, recurringID uuid.UUID) (*domain.RecurringInvoice, error) {
	var rec domain.RecurringInvoice
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM recurring_invoices WHERE id = $1 AND business_id = $2",
		recurringID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("recurringRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *recurringRepo) List(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.RecurringInvoice, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM recurring_invoices WHERE business_id = $1", businessID); err != nil {
		return nil, 0, fmt.Errorf("recurringRepo.List count: %w", err)
	}

	var recs []domain.RecurringInvoice
	err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM recurring_invoices
		WHERE business_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, businessID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("recurringRepo.List: %w", err)
	}
	return recs, total, nil
}

func (r *recurringRepo) Update(ctx context.Context, rec *domain.RecurringInvoice) error {
	rec.UpdatedAt = time.Now().UTC()

	query := `UPDATE recurring_invoices SET
		client_id = $3, name = $4, frequency = $5, start_date = $6,
		end_type = $7, end_date = $8, next_run_at = $9, status = $10,
		currency = $11, payment_terms_days = $12, auto_send = $13,
		send_to_email = $14, send_cc_emails = $15, send_email_subject = $16,
		send_email_body = $17, template_data = $18, updated_at = $19
	WHERE id = $1 AND business_id = $2`

	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.BusinessID, rec.ClientID, rec.Name, rec.Frequency,
		rec.StartDate, rec.EndType, rec.EndDate, rec.NextRunAt, rec.Status,
		rec.Currency, rec.PaymentTermsDays, rec.AutoSend, rec.SendToEmail,
		rec.SendCcEmails, rec.SendEmailSubject, rec.SendEmailBody,
		rec.TemplateData, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("recurringRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *recurringRepo) UpdateStatus(ctx context.Context, businessID, recurringID uuid.UUID, status domain.RecurringStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_invoices SET status = $3, updated_at = $4
		WHERE id = $1 AND business_id = $2`,
		recurringID, businessID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recurringRepo.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *recurringRepo) Delete(ctx context.Context, businessID, recurringID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM recurring_invoices WHERE id = $1 AND business_id = $2",
		recurringID, businessID)
	if err != nil {
		return fmt.Errorf("recurringRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// claimLease is how long a claim on a due schedule is honored. A sweep that
// dies mid-run leaves its rows reclaimable after the lease expires.
const claimLease = 15 * time.Minute

// ClaimDue stamps claimed_at on due rows inside a single statement so
// concurrent sweeps never double-run the same schedule. The claim is cleared
// by AdvanceRun, or expires after claimLease.
func (r *recurringRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.RecurringInvoice, error) {
	var recs []domain.RecurringInvoice
	err := r.db.SelectContext(ctx, &recs, `
		UPDATE recurring_invoices SET
			claimed_at = $2,
			updated_at = $2
		WHERE id IN (
			SELECT id FROM recurring_invoices
			WHERE status = $1 AND next_run_at <= $2
			  AND (claimed_at IS NULL OR claimed_at < $3)
			ORDER BY next_run_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		domain.RecurringStatusActive, now.UTC(), now.UTC().Add(-claimLease), limit)
	if err != nil {
		return nil, fmt.Errorf("recurringRepo.ClaimDue: %w", err)
	}
	return recs, nil
}

func (r *recurringRepo) AdvanceRun(ctx context.Context, recurringID uuid.UUID, lastRun, nextRun time.Time, status domain.RecurringStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_invoices SET
			last_run_at = $2,
			next_run_at = $3,
			status = $4,
			occurrence_count = occurrence_count + 1,
			claimed_at = NULL,
			updated_at = $5
		WHERE id = $1`,
		recurringID, lastRun.UTC(), nextRun.UTC(), status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recurringRepo.AdvanceRun: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
