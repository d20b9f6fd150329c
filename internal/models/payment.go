package models

import "time"

// PaymentMethod is how a payment was collected.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentOnline       PaymentMethod = "online"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentOnline, PaymentBankTransfer, PaymentCheque:
		return true
	}
	return false
}

// MaxPaymentAmount is the per-transaction ceiling in rupees.
const MaxPaymentAmount = 100000.0

// Payment is a collected payment. It is immutable once created; only an
// admin delete exists, which re-runs reconciliation for the customer.
type Payment struct {
	ID            int           `json:"id"`
	CustomerID    int           `json:"customer_id"`
	CustomerName  string        `json:"customer_name,omitempty"`
	BillID        *int          `json:"bill_id"`
	BillMonth     string        `json:"bill_month,omitempty"`
	AmountPaid    float64       `json:"amount_paid"`
	Method        PaymentMethod `json:"payment_method"`
	PaidAt        time.Time     `json:"paid_at"`
	CollectedBy   int           `json:"collected_by"`
	ReceiptNumber string        `json:"receipt_number"`
	Notes         string        `json:"notes"`
	// GatewayPaymentID ties an online payment to its gateway capture; one
	// capture can be booked at most once. Empty for offline methods.
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type CollectPaymentRequest struct {
	CustomerID int           `json:"customer_id"`
	BillID     *int          `json:"bill_id"`
	AmountPaid float64       `json:"amount_paid"`
	Method     PaymentMethod `json:"payment_method"`
	PaidAt     *time.Time    `json:"paid_at"`
	Notes      string        `json:"notes"`
	// CollectedBy comes from the authenticated session, not the body.
	CollectedBy int `json:"-"`
	// GatewayPaymentID is set by the gateway integration, never by API callers.
	GatewayPaymentID string `json:"-"`
}
