package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"cabletv-backend/internal/metrics"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
	"cabletv-backend/internal/timeutil"
)

// PaymentService records collected payments. The payment row is the source
// of truth: once persisted it is never edited, and reconciliation failures
// after the write are logged rather than rolled back.
type PaymentService struct {
	customers  store.CustomerStore
	bills      store.BillStore
	payments   store.PaymentStore
	reconciler *ReconcileService
}

func NewPaymentService(customers store.CustomerStore, bills store.BillStore, payments store.PaymentStore, reconciler *ReconcileService) *PaymentService {
	return &PaymentService{customers: customers, bills: bills, payments: payments, reconciler: reconciler}
}

// CollectPayment validates, persists and then reconciles. Every bill of the
// customer is re-reconciled, not just the linked one, because a payment can
// retroactively settle older unpaid bills.
func (s *PaymentService) CollectPayment(ctx context.Context, req models.CollectPaymentRequest) (*models.Payment, error) {
	if req.AmountPaid <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.AmountPaid > models.MaxPaymentAmount {
		return nil, ErrAmountTooLarge
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("invalid payment method %q", req.Method)
	}

	customer, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer %d: %w", req.CustomerID, err)
	}

	billMonth := ""
	if req.BillID != nil {
		bill, err := s.bills.Get(ctx, *req.BillID)
		if err != nil {
			return nil, fmt.Errorf("load bill %d: %w", *req.BillID, err)
		}
		if bill.CustomerID != req.CustomerID {
			return nil, ErrBillCustomerMismatch
		}
		// Linked payments are capped at the bill's remaining linked balance
		// so the outstanding arithmetic cannot double count. Overpayment is
		// still possible as an unlinked payment, where it becomes credit.
		linked, err := s.payments.ListByBill(ctx, *req.BillID)
		if err != nil {
			return nil, fmt.Errorf("load payments for bill %d: %w", *req.BillID, err)
		}
		alreadyPaid := 0.0
		for _, p := range linked {
			alreadyPaid += p.AmountPaid
		}
		if alreadyPaid+req.AmountPaid > bill.TotalAmount {
			return nil, fmt.Errorf("bill %d has ₹%.2f remaining: %w", *req.BillID, bill.TotalAmount-alreadyPaid, ErrOverpayment)
		}
		billMonth = bill.Month
	}

	paidAt := timeutil.Now()
	if req.PaidAt != nil {
		paidAt = timeutil.ToIST(*req.PaidAt)
	}

	payment := &models.Payment{
		CustomerID:    req.CustomerID,
		CustomerName:  customer.Name,
		BillID:        req.BillID,
		BillMonth:     billMonth,
		AmountPaid:    req.AmountPaid,
		Method:        req.Method,
		PaidAt:        paidAt,
		CollectedBy:   req.CollectedBy,
		ReceiptNumber: generateReceiptNumber(),
		Notes:         req.Notes,

		GatewayPaymentID: req.GatewayPaymentID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("persist payment: %w", err)
	}
	metrics.PaymentsCollectedTotal.WithLabelValues(string(req.Method)).Inc()

	// Best-effort side effects. The payment already stands; reconciliation
	// is idempotent and a later run self-heals.
	if err := s.reconciler.ReconcileCustomer(ctx, req.CustomerID); err != nil {
		log.Printf("[Payments] WARN reconcile after payment %s for customer %d: %v",
			payment.ReceiptNumber, req.CustomerID, err)
	}

	return payment, nil
}

// DeletePayment is the only administrative mutation on payments. The
// customer is re-reconciled afterwards so balances reflect the removal.
func (s *PaymentService) DeletePayment(ctx context.Context, id int) error {
	payment, err := s.payments.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.reconciler.ReconcileCustomer(ctx, payment.CustomerID); err != nil {
		log.Printf("[Payments] WARN reconcile after deleting payment %d for customer %d: %v",
			id, payment.CustomerID, err)
	}
	return nil
}

func (s *PaymentService) Get(ctx context.Context, id int) (*models.Payment, error) {
	return s.payments.Get(ctx, id)
}

// FindByGatewayPaymentID returns the payment booked for a gateway capture,
// or store.ErrNotFound when the capture has not been recorded.
func (s *PaymentService) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	return s.payments.GetByGatewayPaymentID(ctx, gatewayPaymentID)
}

func (s *PaymentService) List(ctx context.Context) ([]*models.Payment, error) {
	return s.payments.List(ctx)
}

func (s *PaymentService) ListByCustomer(ctx context.Context, customerID int) ([]*models.Payment, error) {
	return s.payments.ListByCustomer(ctx, customerID)
}

// generateReceiptNumber builds a display identifier unique enough to avoid
// collision; it is not a primary key. Uniqueness is still enforced by the
// store as a backstop.
func generateReceiptNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("RCPT-%s-%s", timeutil.Now().Format("20060102150405"), suffix)
}
