package models

import "time"

// BillStatus is derived from linked payments by the reconciler.
type BillStatus string

const (
	BillGenerated BillStatus = "generated"
	BillPartial   BillStatus = "partial"
	BillPaid      BillStatus = "paid"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillGenerated, BillPartial, BillPaid:
		return true
	}
	return false
}

// BillLineItem is one active subscription's charge inside a monthly bill.
type BillLineItem struct {
	VCNumber    string  `json:"vc_number"`
	PackageID   int     `json:"package_id"`
	PackageName string  `json:"package_name"`
	Amount      float64 `json:"amount"`
}

// MonthlyBill is a point-in-time snapshot of one customer's charges for one
// calendar month. TotalAmount is never recomputed after creation; only
// Status and UpdatedAt may change, and only through the reconciler.
type MonthlyBill struct {
	ID           int            `json:"id"`
	CustomerID   int            `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	Month        string         `json:"month"` // YYYY-MM
	VCBreakdown  []BillLineItem `json:"vc_breakdown"`
	TotalAmount  float64        `json:"total_amount"`
	BillDueDate  time.Time      `json:"bill_due_date"`
	Status       BillStatus     `json:"status"`
	GeneratedBy  int            `json:"generated_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type GenerateBillsRequest struct {
	Month       string `json:"month"`
	CustomerIDs []int  `json:"customer_ids"` // empty means all customers
	DueDays     int    `json:"due_days"`     // default 15
	GeneratedBy int    `json:"-"`
}

// GenerateBillsResult reports a best-effort bulk run: per-customer failures
// do not abort the batch and are listed for manual retry.
type GenerateBillsResult struct {
	GeneratedCustomerIDs []int                 `json:"generated_customer_ids"`
	Failed               []BillGenerationError `json:"failed"`
	Summary              BillRunSummary        `json:"summary"`
}

type BillGenerationError struct {
	CustomerID   int    `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Error        string `json:"error"`
}

type BillRunSummary struct {
	Month          string  `json:"month"`
	TotalCustomers int     `json:"total_customers"`
	BillsGenerated int     `json:"bills_generated"`
	TotalAmount    float64 `json:"total_amount"`
}
