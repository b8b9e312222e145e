package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/domain"
)

func TestTransactionWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTransactionWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteTransactions([]domain.BankTransaction{
		{
			TxnDate:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			Description:    "RENT APRIL",
			Reference:      "CHQ9",
			Amount:         12000,
			Direction:      domain.TxnDebit,
			Category:       "Rent",
			CategorySource: domain.CategorySourceAuto,
		},
	}))
	w.Flush()
	require.NoError(t, w.Error())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Description,Reference,Direction,Amount,Category,Category Source", lines[0])
	assert.Equal(t, "2026-04-02,RENT APRIL,CHQ9,debit,12000.00,Rent,auto", lines[1])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q1_Invoices_2026", SanitizeFilename("Q1 Invoices / 2026!"))
	assert.Equal(t, "a_b", SanitizeFilename("__a___b__"))
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("April Statement", "csv")
	assert.True(t, strings.HasPrefix(name, "April_Statement_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}
