package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"finbook/internal/port"
)

// RecurringRunnerConfig holds settings for the recurring-invoice sweep.
type RecurringRunnerConfig struct {
	CronSpec   string
	RunOnStart bool
	BatchSize  int
}

// RecurringRunner sweeps due recurring schedules on a cron cadence and stamps
// out their invoice occurrences.
type RecurringRunner struct {
	recurringRepo    port.RecurringRepository
	recurringService RecurringService
	cfg              RecurringRunnerConfig
	cron             *cron.Cron
}

// NewRecurringRunner creates a new RecurringRunner.
func NewRecurringRunner(recurringRepo port.RecurringRepository, recurringService RecurringService, cfg RecurringRunnerConfig) *RecurringRunner {
	return &RecurringRunner{
		recurringRepo:    recurringRepo,
		recurringService: recurringService,
		cfg:              cfg,
		cron:             cron.New(),
	}
}

// Start schedules the sweep and returns. Stop blocks until a running sweep
// finishes.
func (r *RecurringRunner) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.cfg.CronSpec, func() { r.Sweep(ctx) }); err != nil {
		return err
	}
	r.cron.Start()
	log.Printf("recurringRunner: started (spec=%q, batch=%d)", r.cfg.CronSpec, r.cfg.BatchSize)

	if r.cfg.RunOnStart {
		go r.Sweep(ctx)
	}
	return nil
}

// Stop halts the cron scheduler and waits for in-flight sweeps.
func (r *RecurringRunner) Stop() {
	<-r.cron.Stop().Done()
	log.Printf("recurringRunner: stopped")
}

// Sweep claims and runs every schedule due now. Failures on one schedule do
// not stop the rest; the failed schedule stays due and the next sweep retries
// it.
func (r *RecurringRunner) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	for {
		due, err := r.recurringRepo.ClaimDue(ctx, now, r.cfg.BatchSize)
		if err != nil {
			log.Printf("recurringRunner: ClaimDue error: %v", err)
			return
		}
		if len(due) == 0 {
			return
		}

		failed := 0
		for i := range due {
			rec := due[i]
			if err := r.recurringService.RunOccurrence(ctx, &rec); err != nil {
				log.Printf("recurringRunner: %v", err)
				failed++
			}
		}

		// A failed schedule stays due; stop so this sweep does not spin
		// re-claiming it. The next sweep retries.
		if failed > 0 || len(due) < r.cfg.BatchSize {
			return
		}
	}
}
