package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/timeutil"
)

// BuildReceiptPDF renders an A5 payment receipt for printing at the counter.
func BuildReceiptPDF(payment *models.Payment, customer *models.Customer, operatorName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, operatorName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	row("Receipt No.", payment.ReceiptNumber)
	row("Date", timeutil.FormatIST(payment.PaidAt, timeutil.DisplayLayout))
	row("Customer", customer.Name)
	if customer.Phone != "" {
		row("Phone", customer.Phone)
	}
	if payment.BillMonth != "" {
		row("Bill Month", payment.BillMonth)
	}
	row("Method", string(payment.Method))
	if payment.Notes != "" {
		row("Notes", payment.Notes)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, fmt.Sprintf("Amount Paid: Rs. %.2f", payment.AmountPaid), "T", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 8, fmt.Sprintf("Outstanding Balance: Rs. %.2f", customer.CurrentOutstanding), "", 1, "L", false, 0, "")
	if customer.CreditBalance > 0 {
		pdf.CellFormat(0, 8, fmt.Sprintf("Credit Balance: Rs. %.2f", customer.CreditBalance), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "This is a computer generated receipt.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
