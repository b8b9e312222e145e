// Command seedstates writes the GST state-code reference table as a SQL seed
// file. The codes are statutory (census codes reused by GSTIN), so the list is
// embedded rather than read from a source file.
// Usage: go run ./cmd/seedstates
// Output: db/seeds/state_codes.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
)

type stateEntry struct {
	code string
	name string
}

var states = []stateEntry{
	{"01", "Jammu and Kashmir"},
	{"02", "Himachal Pradesh"},
	{"03", "Punjab"},
	{"04", "Chandigarh"},
	{"05", "Uttarakhand"},
	{"06", "Haryana"},
	{"07", "Delhi"},
	{"08", "Rajasthan"},
	{"09", "Uttar Pradesh"},
	{"10", "Bihar"},
	{"11", "Sikkim"},
	{"12", "Arunachal Pradesh"},
	{"13", "Nagaland"},
	{"14", "Manipur"},
	{"15", "Mizoram"},
	{"16", "Tripura"},
	{"17", "Meghalaya"},
	{"18", "Assam"},
	{"19", "West Bengal"},
	{"20", "Jharkhand"},
	{"21", "Odisha"},
	{"22", "Chhattisgarh"},
	{"23", "Madhya Pradesh"},
	{"24", "Gujarat"},
	{"26", "Dadra and Nagar Haveli and Daman and Diu"},
	{"27", "Maharashtra"},
	{"29", "Karnataka"},
	{"30", "Goa"},
	{"31", "Lakshadweep"},
	{"32", "Kerala"},
	{"33", "Tamil Nadu"},
	{"34", "Puducherry"},
	{"35", "Andaman and Nicobar Islands"},
	{"36", "Telangana"},
	{"37", "Andhra Pradesh"},
	{"38", "Ladakh"},
	{"97", "Other Territory"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outPath := "db/seeds/state_codes.sql"

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	var b strings.Builder
	b.WriteString("-- GST state-code seed data.\n")
	fmt.Fprintf(&b, "-- %d entries. Run: make seed-states\n", len(states))
	b.WriteString("BEGIN;\n\n")
	b.WriteString("INSERT INTO state_codes (code, name) VALUES\n")
	for i, s := range states {
		sep := ","
		if i == len(states)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "('%s', '%s')%s\n", s.code, strings.ReplaceAll(s.name, "'", "''"), sep)
	}
	b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;\n\nCOMMIT;\n")

	if _, err := out.WriteString(b.String()); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	log.Printf("wrote %d state codes to %s", len(states), outPath)
	return nil
}
