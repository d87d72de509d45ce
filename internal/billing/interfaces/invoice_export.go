package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	billingapp "rentroll-cloud/internal/billing/application"
	billing "rentroll-cloud/internal/billing/domain"
)

// BuildInvoicePDF renders a printable invoice receipt.
func BuildInvoicePDF(inv *billing.Invoice, readings billingapp.EditReadings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rent Invoice")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", inv.InvoiceID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Contract: %s", inv.RRID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Due: %s", inv.DueDate.Format("2006-01-02")))
	pdf.Ln(5)
	status := "Pending"
	if inv.IsPaid {
		status = "Paid"
		if !inv.PaymentDate.IsZero() {
			status = "Paid " + inv.PaymentDate.Format("2006-01-02")
		}
	}
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", inv.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Meter previous: %.1f", readings.Previous))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Meter current: %.1f", readings.Current))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Usage (kWh): %.1f", inv.ElectricityNum))
	if readings.Unverified {
		pdf.Ln(5)
		pdf.Cell(0, 6, "Note: previous reading could not be verified")
	}
	pdf.Ln(8)

	// Charges table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	lines := []struct {
		label  string
		amount float64
	}{
		{"Rent", inv.Price},
		{"Water", inv.WaterPrice},
		{"Internet", inv.InternetPrice},
		{"General", inv.GeneralPrice},
		{"Electricity", inv.ElectricityPrice},
	}
	for _, line := range lines {
		pdf.CellFormat(80, 6, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.0f", line.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, fmt.Sprintf("%.0f", billing.Total(*inv)), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteInvoicesCSV writes an invoice list as CSV.
func WriteInvoicesCSV(w io.Writer, list []billing.Invoice) error {
	cw := csv.NewWriter(w)
	header := []string{
		"invoice_id", "rr_id", "price", "water_price", "internet_price",
		"general_price", "electricity_price", "electricity_num", "total",
		"due_date", "is_paid", "payment_date", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, inv := range list {
		paymentDate := ""
		if !inv.PaymentDate.IsZero() {
			paymentDate = inv.PaymentDate.Format("2006-01-02")
		}
		record := []string{
			inv.InvoiceID,
			inv.RRID,
			formatAmount(inv.Price),
			formatAmount(inv.WaterPrice),
			formatAmount(inv.InternetPrice),
			formatAmount(inv.GeneralPrice),
			formatAmount(inv.ElectricityPrice),
			strconv.FormatFloat(inv.ElectricityNum, 'f', -1, 64),
			formatAmount(billing.Total(inv)),
			inv.DueDate.Format("2006-01-02"),
			strconv.FormatBool(inv.IsPaid),
			paymentDate,
			inv.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
