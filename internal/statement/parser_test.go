package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/domain"
)

func TestParseCSV_DebitCreditColumns(t *testing.T) {
	csvData := `Date,Narration,Chq/Ref No,Debit,Credit,Balance
01/04/2026,NEFT CR RAZORPAY SETTLEMENT,NEFT123,,"15,000.00","15,000.00"
02/04/2026,RENT APRIL,CHQ9,12000.00,,3000.00
,,,,,
Closing Balance,,,,,"3,000.00"`

	txns, err := ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, "NEFT CR RAZORPAY SETTLEMENT", txns[0].Description)
	assert.Equal(t, "NEFT123", txns[0].Reference)
	assert.Equal(t, 15000.0, txns[0].Amount)
	assert.Equal(t, domain.TxnCredit, txns[0].Direction)

	assert.Equal(t, 12000.0, txns[1].Amount)
	assert.Equal(t, domain.TxnDebit, txns[1].Direction)
}

func TestParseCSV_SignedAmountColumn(t *testing.T) {
	csvData := `Transaction Date,Description,Amount
2026-04-01,UPI CR CLIENT PAYMENT,2500.50
2026-04-02,ELECTRICITY BILL,-1800`

	txns, err := ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, domain.TxnCredit, txns[0].Direction)
	assert.Equal(t, 2500.50, txns[0].Amount)
	assert.Equal(t, domain.TxnDebit, txns[1].Direction)
	assert.Equal(t, 1800.0, txns[1].Amount)
}

func TestParseCSV_PreambleBeforeHeader(t *testing.T) {
	csvData := `Account Statement
Account No: 1234567890

Date,Particulars,Debit,Credit
02-Jan-2026,SALARY PAYROLL,50000,`

	txns, err := ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "SALARY PAYROLL", txns[0].Description)
}

func TestParseCSV_NoHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("just,some,cells\n1,2,3\n"))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseCSV_NoRows(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Date,Description,Amount\n"))
	assert.Error(t, err)
}

func TestCategorizer_Defaults(t *testing.T) {
	c, err := NewCategorizer(nil)
	require.NoError(t, err)

	cases := []struct {
		description string
		want        string
	}{
		{"NEFT CR RAZORPAY SETTLEMENT", "Sales"},
		{"RENT APRIL OFFICE", "Rent"},
		{"SALARY PAYROLL MAR", "Salaries"},
		{"AIRTEL BROADBAND", "Utilities"},
		{"EMI HDFC LOAN", "Loan & Interest"},
		{"SOMETHING OPAQUE", Uncategorized},
	}
	for _, tc := range cases {
		got, _ := c.Categorize(tc.description)
		assert.Equal(t, tc.want, got, tc.description)
	}
}

func TestCategorizer_BusinessRulesWin(t *testing.T) {
	rules := []domain.CategoryRule{
		{Keyword: "razorpay", Category: "Marketplace Income"},
	}
	c, err := NewCategorizer(rules)
	require.NoError(t, err)

	got, matched := c.Categorize("NEFT CR RAZORPAY SETTLEMENT")
	assert.True(t, matched)
	assert.Equal(t, "Marketplace Income", got)
}
