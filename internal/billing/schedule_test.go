package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/billing"
	"finbook/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRun(t *testing.T) {
	start := date(2026, time.January, 31)

	cases := []struct {
		freq domain.Frequency
		want time.Time
	}{
		{domain.FrequencyWeekly, date(2026, time.February, 7)},
		{domain.FrequencyBiweekly, date(2026, time.February, 14)},
		{domain.FrequencyMonthly, date(2026, time.March, 3)}, // Jan 31 + 1 month normalizes past Feb
		{domain.FrequencyQuarterly, date(2026, time.May, 1)},
		{domain.FrequencyYearly, date(2027, time.January, 31)},
	}
	for _, tc := range cases {
		t.Run(string(tc.freq), func(t *testing.T) {
			assert.Equal(t, tc.want, billing.NextRun(tc.freq, start))
		})
	}
}

func TestValidateSettings(t *testing.T) {
	valid := billing.RecurringSettings{
		IsRecurring: true,
		Frequency:   domain.FrequencyMonthly,
		StartDate:   date(2026, time.September, 1),
		EndType:     domain.EndTypeNever,
	}

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, billing.ValidateSettings(valid))
	})

	t.Run("not_recurring_skips_checks", func(t *testing.T) {
		assert.Empty(t, billing.ValidateSettings(billing.RecurringSettings{}))
	})

	t.Run("auto_send_requires_email", func(t *testing.T) {
		s := valid
		s.AutoSend = true
		errs := billing.ValidateSettings(s)
		require.Contains(t, errs, "send_to_email")

		s.SendToEmail = "billing@client.example"
		assert.Empty(t, billing.ValidateSettings(s))
	})

	t.Run("end_on_date_requires_end_date", func(t *testing.T) {
		s := valid
		s.EndType = domain.EndTypeOnDate
		errs := billing.ValidateSettings(s)
		assert.Contains(t, errs, "end_date")

		before := date(2026, time.August, 1)
		s.EndDate = &before
		errs = billing.ValidateSettings(s)
		assert.Contains(t, errs, "end_date")
	})

	t.Run("bad_frequency", func(t *testing.T) {
		s := valid
		s.Frequency = "daily"
		assert.Contains(t, billing.ValidateSettings(s), "frequency")
	})
}

func TestEnded(t *testing.T) {
	end := date(2026, time.December, 31)

	assert.False(t, billing.Ended(domain.EndTypeNever, nil, date(2099, time.January, 1)))
	assert.False(t, billing.Ended(domain.EndTypeOnDate, &end, date(2026, time.December, 31)))
	assert.True(t, billing.Ended(domain.EndTypeOnDate, &end, date(2027, time.January, 1)))
}

func TestMergeSettings(t *testing.T) {
	s := billing.RecurringSettings{
		IsRecurring:      true,
		Frequency:        domain.FrequencyWeekly,
		StartDate:        date(2026, time.September, 7),
		EndType:          domain.EndTypeNever,
		AutoSend:         true,
		SendToEmail:      "ap@client.example",
		SendEmailSubject: "Your weekly invoice",
	}

	t.Run("new_schedule_runs_from_start", func(t *testing.T) {
		var rec domain.RecurringInvoice
		billing.MergeSettings(&rec, s)
		assert.Equal(t, s.StartDate, rec.NextRunAt)
		assert.Equal(t, domain.FrequencyWeekly, rec.Frequency)
		assert.True(t, rec.AutoSend)
		assert.Equal(t, "ap@client.example", rec.SendToEmail)
	})

	t.Run("edit_keeps_advanced_next_run", func(t *testing.T) {
		rec := domain.RecurringInvoice{NextRunAt: date(2026, time.October, 5)}
		billing.MergeSettings(&rec, s)
		assert.Equal(t, date(2026, time.October, 5), rec.NextRunAt)
	})
}
