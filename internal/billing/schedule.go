package billing

import (
	"time"

	"finbook/internal/domain"
)

// RecurringSettings is the UI-editable recurring configuration before it is
// merged into a persisted schedule.
type RecurringSettings struct {
	IsRecurring      bool             `json:"is_recurring"`
	Frequency        domain.Frequency `json:"frequency"`
	StartDate        time.Time        `json:"start_date"`
	EndType          domain.EndType   `json:"end_type"`
	EndDate          *time.Time       `json:"end_date"`
	AutoSend         bool             `json:"auto_send"`
	SendToEmail      string           `json:"send_to_email"`
	SendCcEmails     string           `json:"send_cc_emails"`
	SendEmailSubject string           `json:"send_email_subject"`
	SendEmailBody    string           `json:"send_email_body"`
}

// TemplateLineItem is an invoice line item stripped of server identity and
// per-invoice tax state, as stored in a schedule's template.
type TemplateLineItem struct {
	Description     string  `json:"description"`
	HSNSACCode      string  `json:"hsn_sac_code"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Rate            float64 `json:"rate"`
	GSTRate         float64 `json:"gst_rate"`
	ShowDescription bool    `json:"show_description"`
}

// InvoiceTemplate is the invoice-shaped payload a schedule stamps out on
// each occurrence.
type InvoiceTemplate struct {
	LineItems []TemplateLineItem `json:"line_items"`
	Notes     string             `json:"notes"`
	Terms     string             `json:"terms"`
	Currency  string             `json:"currency"`
	TaxType   domain.TaxType     `json:"tax_type"`
	GSTType   domain.GSTType     `json:"gst_type"`
	CessRate  float64            `json:"cess_rate"`
}

// ValidateSettings checks the local invariants of a recurring configuration.
// Violations are returned as a field-keyed map; an empty map means valid.
// No network or storage is consulted.
func ValidateSettings(s RecurringSettings) map[string]string {
	errs := map[string]string{}
	if !s.IsRecurring {
		return errs
	}
	if !domain.ValidFrequencies[s.Frequency] {
		errs["frequency"] = "frequency must be one of weekly, biweekly, monthly, quarterly, yearly"
	}
	if s.StartDate.IsZero() {
		errs["start_date"] = "start date is required"
	}
	switch s.EndType {
	case domain.EndTypeNever:
	case domain.EndTypeOnDate:
		if s.EndDate == nil {
			errs["end_date"] = "end date is required when ending on a date"
		} else if !s.StartDate.IsZero() && s.EndDate.Before(s.StartDate) {
			errs["end_date"] = "end date must not be before start date"
		}
	default:
		errs["end_type"] = "end type must be never or end_on_date"
	}
	if s.AutoSend && s.SendToEmail == "" {
		errs["send_to_email"] = "destination email is required when auto-send is enabled"
	}
	return errs
}

// NextRun advances a schedule one period past the given occurrence date.
func NextRun(freq domain.Frequency, after time.Time) time.Time {
	switch freq {
	case domain.FrequencyWeekly:
		return after.AddDate(0, 0, 7)
	case domain.FrequencyBiweekly:
		return after.AddDate(0, 0, 14)
	case domain.FrequencyMonthly:
		return after.AddDate(0, 1, 0)
	case domain.FrequencyQuarterly:
		return after.AddDate(0, 3, 0)
	case domain.FrequencyYearly:
		return after.AddDate(1, 0, 0)
	default:
		return after.AddDate(0, 1, 0)
	}
}

// Ended reports whether a schedule has no further occurrences at the given
// point in time.
func Ended(endType domain.EndType, endDate *time.Time, next time.Time) bool {
	if endType != domain.EndTypeOnDate || endDate == nil {
		return false
	}
	return next.After(*endDate)
}

// MergeSettings applies UI-editable settings onto a schedule record,
// returning the fields a create or update payload carries. The schedule's
// next run starts at the start date for new schedules; callers keep the
// already-advanced NextRunAt when editing an active one.
func MergeSettings(rec *domain.RecurringInvoice, s RecurringSettings) {
	rec.Frequency = s.Frequency
	rec.StartDate = s.StartDate
	rec.EndType = s.EndType
	rec.EndDate = s.EndDate
	rec.AutoSend = s.AutoSend
	rec.SendToEmail = s.SendToEmail
	rec.SendCcEmails = s.SendCcEmails
	rec.SendEmailSubject = s.SendEmailSubject
	rec.SendEmailBody = s.SendEmailBody
	if rec.NextRunAt.IsZero() || rec.NextRunAt.Before(s.StartDate) {
		rec.NextRunAt = s.StartDate
	}
}
