package services

import (
	"context"
	"fmt"

	"cabletv-backend/internal/metrics"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

// ReconcileService derives bill statuses and customer outstanding balances
// from the full bill/payment history. It is invoked after every bill
// creation and every payment, and is safe to re-run at any time: a second
// consecutive run computes the same values and performs no write.
type ReconcileService struct {
	customers store.CustomerStore
	bills     store.BillStore
	payments  store.PaymentStore
}

func NewReconcileService(customers store.CustomerStore, bills store.BillStore, payments store.PaymentStore) *ReconcileService {
	return &ReconcileService{customers: customers, bills: bills, payments: payments}
}

// ReconcileBillStatus recomputes one bill's status from its linked payments.
// Unlinked payments never affect a specific bill's status; they only feed the
// customer-level outstanding calculation.
func (s *ReconcileService) ReconcileBillStatus(ctx context.Context, billID int) error {
	bill, err := s.bills.Get(ctx, billID)
	if err != nil {
		return fmt.Errorf("load bill %d: %w", billID, err)
	}

	linked, err := s.payments.ListByBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("load payments for bill %d: %w", billID, err)
	}

	totalPaid := 0.0
	for _, p := range linked {
		totalPaid += p.AmountPaid
	}

	var status models.BillStatus
	switch {
	case totalPaid >= bill.TotalAmount:
		status = models.BillPaid
	case totalPaid > 0:
		status = models.BillPartial
	default:
		status = models.BillGenerated
	}

	// Write only on change so repeated reconciliation stays idempotent.
	if status == bill.Status {
		return nil
	}
	return s.bills.UpdateStatus(ctx, billID, status)
}

// ReconcileCustomerOutstanding recomputes a customer's live balance:
//
//	outstanding = max(0, sum of all bill totals - sum of all payments)
//
// Every bill counts its full amount and every payment counts exactly once,
// whether linked or not, so a payment that flips a bill to paid cannot be
// double counted against the balance. Payments beyond the billed total
// surface as credit.
//
// Concurrent payments against the same customer race on this write with
// last-writer-wins semantics; the next reconciliation run self-heals.
func (s *ReconcileService) ReconcileCustomerOutstanding(ctx context.Context, customerID int) error {
	bills, err := s.bills.ListByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load bills for customer %d: %w", customerID, err)
	}
	payments, err := s.payments.ListByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load payments for customer %d: %w", customerID, err)
	}

	totalBilled := 0.0
	for _, b := range bills {
		totalBilled += b.TotalAmount
	}
	totalPayments := 0.0
	for _, p := range payments {
		totalPayments += p.AmountPaid
	}

	outstanding := totalBilled - totalPayments
	credit := 0.0
	if outstanding < 0 {
		credit = -outstanding
		outstanding = 0
	}

	customer, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load customer %d: %w", customerID, err)
	}
	if customer.CurrentOutstanding == outstanding && customer.CreditBalance == credit {
		return nil
	}

	metrics.ReconciliationRunsTotal.Inc()
	return s.customers.SetOutstanding(ctx, customerID, outstanding, credit)
}

// ReconcileCustomer refreshes every bill status for the customer and then
// the outstanding balance, so both views agree after any write.
func (s *ReconcileService) ReconcileCustomer(ctx context.Context, customerID int) error {
	bills, err := s.bills.ListByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load bills for customer %d: %w", customerID, err)
	}
	for _, b := range bills {
		if err := s.ReconcileBillStatus(ctx, b.ID); err != nil {
			return err
		}
	}
	return s.ReconcileCustomerOutstanding(ctx, customerID)
}
