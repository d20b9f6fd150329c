package models

import "time"

type Customer struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone"`
	Area                string    `json:"area"`
	Address             string    `json:"address"`
	CollectorUserID     int       `json:"collector_user_id"`
	PackageAmount       float64   `json:"package_amount"`
	PreviousOutstanding float64   `json:"previous_outstanding"`
	CurrentOutstanding  float64   `json:"current_outstanding"`
	CreditBalance       float64   `json:"credit_balance"`
	BillDueDay          int       `json:"bill_due_day"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Area            string `json:"area"`
	Address         string `json:"address"`
	CollectorUserID int    `json:"collector_user_id"`
	BillDueDay      int    `json:"bill_due_day"`
}

// UpdateCustomerRequest updates identity fields only. The outstanding and
// credit fields are owned by the reconciler and cannot be set through the API.
type UpdateCustomerRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Area            string `json:"area"`
	Address         string `json:"address"`
	CollectorUserID int    `json:"collector_user_id"`
	BillDueDay      int    `json:"bill_due_day"`
	IsActive        *bool  `json:"is_active"`
}
