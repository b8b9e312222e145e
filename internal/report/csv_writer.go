// Package report produces downloadable exports: a CSV of categorized bank
// transactions and an XLSX invoice register.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"finbook/internal/domain"
)

// BOM is the UTF-8 byte order mark, prepended for Excel compatibility on
// Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var transactionColumns = []string{
	"Date",
	"Description",
	"Reference",
	"Direction",
	"Amount",
	"Category",
	"Category Source",
}

// TransactionWriter wraps csv.Writer for exporting bank transactions.
type TransactionWriter struct {
	csv *csv.Writer
}

// NewTransactionWriter creates a TransactionWriter that writes CSV to w.
func NewTransactionWriter(w io.Writer) *TransactionWriter {
	return &TransactionWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *TransactionWriter) WriteHeader() error {
	return w.csv.Write(transactionColumns)
}

// WriteTransactions converts a batch of transactions to CSV rows and writes
// them.
func (w *TransactionWriter) WriteTransactions(txns []domain.BankTransaction) error {
	for i := range txns {
		if err := w.csv.Write(transactionToRow(&txns[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *TransactionWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *TransactionWriter) Error() error {
	return w.csv.Error()
}

func transactionToRow(txn *domain.BankTransaction) []string {
	return []string{
		txn.TxnDate.Format("2006-01-02"),
		txn.Description,
		txn.Reference,
		string(txn.Direction),
		formatMoney(txn.Amount),
		txn.Category,
		string(txn.CategorySource),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
