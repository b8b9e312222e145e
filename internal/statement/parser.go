package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"finbook/internal/domain"
)

// ParsedTransaction is one row lifted out of a statement CSV before it is
// attached to a business and statement.
type ParsedTransaction struct {
	Date        time.Time
	Description string
	Reference   string
	Amount      float64
	Direction   domain.TxnDirection
}

// ErrNoHeader is returned when the CSV has no recognizable header row.
var ErrNoHeader = errors.New("statement: no recognizable header row")

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02 Jan 2006",
	"02-Jan-2006",
}

// columnIndexes locates the columns we care about in a bank's header row.
// Banks disagree on naming, so matching is fuzzy and case-insensitive.
type columnIndexes struct {
	date        int
	description int
	reference   int
	debit       int
	credit      int
	amount      int
}

func matchHeader(header []string) (columnIndexes, bool) {
	idx := columnIndexes{date: -1, description: -1, reference: -1, debit: -1, credit: -1, amount: -1}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch {
		case idx.date == -1 && strings.Contains(name, "date") && !strings.Contains(name, "value"):
			idx.date = i
		case idx.description == -1 && (strings.Contains(name, "narration") || strings.Contains(name, "description") || strings.Contains(name, "particulars") || strings.Contains(name, "remarks")):
			idx.description = i
		case idx.reference == -1 && (strings.Contains(name, "ref") || strings.Contains(name, "cheque") || strings.Contains(name, "chq")):
			idx.reference = i
		case idx.debit == -1 && (strings.Contains(name, "debit") || strings.Contains(name, "withdrawal") || name == "dr"):
			idx.debit = i
		case idx.credit == -1 && (strings.Contains(name, "credit") || strings.Contains(name, "deposit") || name == "cr"):
			idx.credit = i
		case idx.amount == -1 && strings.Contains(name, "amount"):
			idx.amount = i
		}
	}
	ok := idx.date >= 0 && idx.description >= 0 &&
		((idx.debit >= 0 && idx.credit >= 0) || idx.amount >= 0)
	return idx, ok
}

// ParseCSV reads a bank statement export. Rows that cannot be parsed (running
// balance footers, blank separators) are skipped rather than failing the whole
// file; a file with no parsable rows is an error.
func ParseCSV(r io.Reader) ([]ParsedTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		idx       columnIndexes
		headerSet bool
		txns      []ParsedTransaction
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("statement.ParseCSV: %w", err)
		}

		if !headerSet {
			if found, ok := matchHeader(record); ok {
				idx = found
				headerSet = true
			}
			continue
		}

		txn, ok := parseRow(record, idx)
		if !ok {
			continue
		}
		txns = append(txns, txn)
	}

	if !headerSet {
		return nil, ErrNoHeader
	}
	if len(txns) == 0 {
		return nil, errors.New("statement: no transactions found")
	}
	return txns, nil
}

func parseRow(record []string, idx columnIndexes) (ParsedTransaction, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, ok := parseDate(field(idx.date))
	if !ok {
		return ParsedTransaction{}, false
	}

	txn := ParsedTransaction{
		Date:        date,
		Description: field(idx.description),
		Reference:   field(idx.reference),
	}

	if idx.debit >= 0 && idx.credit >= 0 {
		if debit, ok := parseAmount(field(idx.debit)); ok && debit != 0 {
			txn.Amount = debit
			txn.Direction = domain.TxnDebit
			return txn, true
		}
		if credit, ok := parseAmount(field(idx.credit)); ok && credit != 0 {
			txn.Amount = credit
			txn.Direction = domain.TxnCredit
			return txn, true
		}
		return ParsedTransaction{}, false
	}

	amount, ok := parseAmount(field(idx.amount))
	if !ok || amount == 0 {
		return ParsedTransaction{}, false
	}
	if amount < 0 {
		txn.Amount = -amount
		txn.Direction = domain.TxnDebit
	} else {
		txn.Amount = amount
		txn.Direction = domain.TxnCredit
	}
	return txn, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
