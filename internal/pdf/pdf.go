// Package pdf renders a finalized or rehydrated invoice into a paginated
// A4 document.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"invoicebay/backend/internal/domain"
)

// currencyPrefix is the single fixed display currency.
const currencyPrefix = "INR "

const dueDays = 30

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 50, "L"},
	{"MRP", 23, "R"},
	{"Discount %", 20, "R"},
	{"Price", 23, "R"},
	{"Quantity", 16, "R"},
	{"Tax", 22, "R"},
	{"Amount", 26, "R"},
}

// FileName is the download name for a rendered invoice.
func FileName(invoiceID string) string {
	return fmt.Sprintf("Invoice_%s.pdf", invoiceID)
}

// Render produces the invoice document. Inputs are never mutated. A logo
// path that does not resolve to a readable file is skipped silently and the
// header falls back to text only.
func Render(record domain.InvoiceRecord, lines []domain.LineItem, settings domain.CompanySettings) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	renderHeader(doc, settings)

	doc.Ln(6)
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")
	doc.Ln(4)

	renderMetadata(doc, record)
	doc.Ln(4)
	renderBilledTo(doc, record)
	doc.Ln(4)
	renderItemTable(doc, record, lines)

	doc.Ln(10)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(0, 6, "Terms & Conditions", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, settings.InvoiceTerms, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", record.InvoiceID, err)
	}
	return buf.Bytes(), nil
}

func renderHeader(doc *gofpdf.Fpdf, settings domain.CompanySettings) {
	textX := 15.0
	if settings.CompanyLogoPath != "" {
		if _, err := os.Stat(settings.CompanyLogoPath); err == nil {
			doc.ImageOptions(settings.CompanyLogoPath, 15, 15, 40, 20, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			textX = 62
		}
	}

	doc.SetX(textX)
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 6, settings.CompanyName, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetX(textX)
	doc.MultiCell(0, 5, settings.CompanyAddress, "", "L", false)
	for _, line := range []string{
		"Phone: " + settings.CompanyPhone,
		"Email: " + settings.CompanyEmail,
		"Website: " + settings.CompanyWebsite,
	} {
		doc.SetX(textX)
		doc.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
}

func renderMetadata(doc *gofpdf.Fpdf, record domain.InvoiceRecord) {
	rows := [][2]string{
		{"Invoice #:", record.InvoiceID},
		{"Date:", record.Date},
		{"Due Date:", dueDate(record.Date)},
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(38, 6, row[0], "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
}

// dueDate adds 30 calendar days to the date portion of the stored
// timestamp string.
func dueDate(date string) string {
	day := date
	if len(date) >= 10 {
		day = date[:10]
	}
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		return ""
	}
	return parsed.AddDate(0, 0, dueDays).Format("2006-01-02")
}

func renderBilledTo(doc *gofpdf.Fpdf, record domain.InvoiceRecord) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(0, 6, "Billed To:", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for _, line := range []string{record.CustomerName, record.CustomerEmail, record.CustomerPhone} {
		doc.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	doc.MultiCell(0, 5, record.CustomerAddress, "", "L", false)
}

func renderItemTable(doc *gofpdf.Fpdf, record domain.InvoiceRecord, lines []domain.LineItem) {
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(128, 128, 128)
	doc.SetTextColor(250, 250, 250)
	for _, col := range columns {
		doc.CellFormat(col.width, 8, col.title, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	doc.SetFillColor(245, 245, 220)
	for _, line := range lines {
		cells := []string{
			line.ProductName,
			money(line.MRP),
			fmt.Sprintf("%.1f%%", line.DiscountPercent),
			money(line.UnitPrice),
			fmt.Sprintf("%d", line.Quantity),
			money(line.TaxAmount),
			money(line.Amount),
		}
		for i, cell := range cells {
			doc.CellFormat(columns[i].width, 7, cell, "1", 0, columns[i].align, true, 0, "")
		}
		doc.Ln(-1)
	}

	totals := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal:", record.Subtotal, false},
		{"Tax Total:", record.Tax, false},
		{"Total:", record.Total, true},
	}
	labelOffset := columns[0].width + columns[1].width + columns[2].width + columns[3].width + columns[4].width
	for _, row := range totals {
		style := ""
		if row.bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 10)
		doc.CellFormat(labelOffset, 7, "", "", 0, "L", false, 0, "")
		doc.CellFormat(columns[5].width, 7, row.label, "T", 0, "R", false, 0, "")
		doc.CellFormat(columns[6].width, 7, money(row.value), "T", 1, "R", false, 0, "")
	}
}

func money(v float64) string {
	return fmt.Sprintf("%s%.2f", currencyPrefix, v)
}
