package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"finbook/internal/domain"
)

const registerSheet = "Invoice Register"

var registerColumns = []string{
	"Invoice No",
	"Status",
	"Invoice Date",
	"Due Date",
	"Client",
	"Client GSTIN",
	"Place of Supply",
	"GST Type",
	"Subtotal",
	"Discount",
	"Taxable Amount",
	"CGST",
	"SGST",
	"IGST",
	"Cess",
	"Total Tax",
	"Total",
	"Currency",
	"Total (INR)",
}

// RegisterRow pairs an invoice with the resolved client name for the export.
type RegisterRow struct {
	Invoice domain.Invoice
	Client  domain.Client
}

// WriteInvoiceRegister renders the invoice register workbook to w.
func WriteInvoiceRegister(w io.Writer, business *domain.Business, rows []RegisterRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet, err := f.NewSheet(registerSheet)
	if err != nil {
		return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
	}
	f.SetActiveSheet(sheet)
	f.DeleteSheet("Sheet1")

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
	}

	if err := f.SetCellValue(registerSheet, "A1", business.Name); err != nil {
		return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
	}
	_ = f.SetCellStyle(registerSheet, "A1", "A1", bold)

	for i, col := range registerColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(registerSheet, cell, col); err != nil {
			return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
		}
		_ = f.SetCellStyle(registerSheet, cell, cell, bold)
	}

	for i, row := range rows {
		values := registerRowValues(&row)
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+4)
			if err := f.SetCellValue(registerSheet, cell, v); err != nil {
				return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report.WriteInvoiceRegister: %w", err)
	}
	return nil
}

func registerRowValues(row *RegisterRow) []interface{} {
	inv := &row.Invoice
	return []interface{}{
		inv.Number,
		string(inv.Status),
		formatDate(inv.InvoiceDate),
		formatDate(inv.DueDate),
		row.Client.Name,
		row.Client.GSTIN,
		inv.PlaceOfSupply,
		string(inv.GSTType),
		inv.Subtotal,
		inv.Discount,
		inv.TaxableAmount,
		inv.CGSTAmount,
		inv.SGSTAmount,
		inv.IGSTAmount,
		inv.CessAmount,
		inv.TotalTax,
		inv.Total,
		inv.Currency,
		inv.TotalInINR,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
