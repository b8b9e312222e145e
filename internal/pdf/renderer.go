// Package pdf renders invoices to PDF for download and email delivery.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"finbook/internal/domain"
)

const dateLayout = "02 Jan 2006"

// RenderInvoice draws an A4 tax invoice and returns the PDF bytes.
func RenderInvoice(business *domain.Business, client *domain.Client, inv *domain.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	drawHeader(pdf, business, inv)
	drawParties(pdf, business, client, inv)
	drawLineItems(pdf, inv)
	drawTotals(pdf, inv)
	drawFooter(pdf, inv)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf.RenderInvoice: %w", err)
	}
	return buf.Bytes(), nil
}

func drawHeader(pdf *gofpdf.Fpdf, business *domain.Business, inv *domain.Invoice) {
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 10, business.Name)

	pdf.SetFont("Arial", "B", 14)
	title := "TAX INVOICE"
	if inv.TaxType == domain.TaxTypeNone {
		title = "INVOICE"
	}
	pdf.CellFormat(70, 10, title, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	if business.GSTIN != "" {
		pdf.Cell(120, 5, "GSTIN: "+business.GSTIN)
	}
	pdf.CellFormat(70, 5, "No: "+inv.Number, "", 1, "R", false, 0, "")

	pdf.Cell(120, 5, business.Address)
	pdf.CellFormat(70, 5, "Date: "+formatDate(inv.InvoiceDate), "", 1, "R", false, 0, "")

	pdf.Cell(120, 5, "")
	pdf.CellFormat(70, 5, "Due: "+formatDate(inv.DueDate), "", 1, "R", false, 0, "")
	pdf.Ln(6)
}

func drawParties(pdf *gofpdf.Fpdf, business *domain.Business, client *domain.Client, inv *domain.Invoice) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(190, 6, "Bill To", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(190, 5, client.Name, "", 1, "L", false, 0, "")
	if client.GSTIN != "" {
		pdf.CellFormat(190, 5, "GSTIN: "+client.GSTIN, "", 1, "L", false, 0, "")
	}
	if client.Address != "" {
		pdf.CellFormat(190, 5, client.Address, "", 1, "L", false, 0, "")
	}
	if inv.PlaceOfSupply != "" {
		pdf.CellFormat(190, 5, "Place of Supply: "+inv.PlaceOfSupply, "", 1, "L", false, 0, "")
	}
	if inv.IsReverseCharge {
		pdf.CellFormat(190, 5, "Tax payable on reverse charge", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func drawLineItems(pdf *gofpdf.Fpdf, inv *domain.Invoice) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(22, 7, "HSN/SAC", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(15, 7, "GST%", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, item := range inv.LineItems {
		amount := item.Quantity * item.Rate
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 7, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 7, item.HSNSACCode, "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 7, formatQty(item.Quantity, item.Unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, formatMoney(item.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%g", item.GSTRate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, formatMoney(amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}

func drawTotals(pdf *gofpdf.Fpdf, inv *domain.Invoice) {
	row := func(label string, value float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 9)
		pdf.CellFormat(130, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, formatMoney(value), "", 1, "R", false, 0, "")
	}

	row("Subtotal", inv.Subtotal, false)
	if inv.Discount > 0 {
		row("Discount", -inv.Discount, false)
	}
	if inv.ExtraCharges != 0 {
		row("Extra Charges", inv.ExtraCharges, false)
	}
	if inv.TaxType == domain.TaxTypeGSTIndia {
		if inv.GSTType == domain.GSTTypeIGST {
			row("IGST", inv.IGSTAmount, false)
		} else {
			row("CGST", inv.CGSTAmount, false)
			row("SGST", inv.SGSTAmount, false)
		}
		if inv.CessAmount > 0 {
			row("Cess", inv.CessAmount, false)
		}
	}
	row(fmt.Sprintf("Total (%s)", inv.Currency), inv.Total, true)
	if inv.Currency != domain.BaseCurrency {
		row("Total (INR)", inv.TotalInINR, false)
	}
}

func drawFooter(pdf *gofpdf.Fpdf, inv *domain.Invoice) {
	pdf.Ln(6)
	if inv.Notes != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(190, 5, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(190, 5, inv.Notes, "", "L", false)
		pdf.Ln(2)
	}
	if inv.Terms != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(190, 5, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(190, 5, inv.Terms, "", "L", false)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatQty(q float64, unit string) string {
	s := fmt.Sprintf("%g", q)
	if unit != "" {
		s += " " + unit
	}
	return s
}
