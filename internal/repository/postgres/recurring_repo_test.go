package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"finbook/internal/repository/postgres"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestRecurringRepo_ClaimDue_PersistsClaim(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewRecurringRepo(db)

	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	recID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "business_id", "client_id", "name", "status", "next_run_at", "claimed_at"}).
		AddRow(recID.String(), uuid.New().String(), uuid.New().String(), "Monthly retainer", "active", now.Add(-time.Hour), now)

	// The claim has to be written in the same statement that picks the due
	// rows; a plain locking SELECT releases its locks on return and a second
	// sweep would pick up the same schedules.
	mock.ExpectQuery(`UPDATE recurring_invoices SET\s+claimed_at = \$2`).
		WithArgs("active", now, now.Add(-15*time.Minute), 10).
		WillReturnRows(rows)

	recs, err := repo.ClaimDue(context.Background(), now, 10)

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, recID, recs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringRepo_AdvanceRun_ReleasesClaim(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewRecurringRepo(db)

	recID := uuid.New()
	lastRun := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	nextRun := lastRun.AddDate(0, 1, 0)

	mock.ExpectExec(`UPDATE recurring_invoices SET[\s\S]+claimed_at = NULL`).
		WithArgs(recID.String(), lastRun, nextRun, "active", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdvanceRun(context.Background(), recID, lastRun, nextRun, "active")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
