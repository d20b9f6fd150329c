package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/models"
)

func TestReconcileBillStatusFromLinkedPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	require.NoError(t, env.reconciler.ReconcileBillStatus(ctx, bill.ID))
	assert.Equal(t, models.BillGenerated, env.getBill(t, bill.ID).Status)

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 200, Method: models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillPartial, env.getBill(t, bill.ID).Status)

	_, err = env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 300, Method: models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillPaid, env.getBill(t, bill.ID).Status)
}

func TestReconcileIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 200, Method: models.PaymentCash,
	})
	require.NoError(t, err)

	first := env.getCustomer(t, customer.ID)
	firstBill := env.getBill(t, bill.ID)

	// Re-running without intervening writes changes nothing, including the
	// update timestamps (write-only-if-changed).
	require.NoError(t, env.reconciler.ReconcileCustomer(ctx, customer.ID))

	second := env.getCustomer(t, customer.ID)
	secondBill := env.getBill(t, bill.ID)
	assert.Equal(t, first.CurrentOutstanding, second.CurrentOutstanding)
	assert.Equal(t, first.CreditBalance, second.CreditBalance)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, firstBill.Status, secondBill.Status)
	assert.Equal(t, firstBill.UpdatedAt, secondBill.UpdatedAt)
}

func TestOutstandingNeverNegative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Ravi")

	// Payments with no bills at all: balance floors at zero, excess is credit.
	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: 250, Method: models.PaymentCash,
	})
	require.NoError(t, err)

	refreshed := env.getCustomer(t, customer.ID)
	assert.Equal(t, 0.0, refreshed.CurrentOutstanding)
	assert.Equal(t, 250.0, refreshed.CreditBalance)
}

func TestPaidBillPaymentsAreNotDoubleCounted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	march := env.billCustomer(t, customer, "2024-03")
	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &march.ID, AmountPaid: 500, Method: models.PaymentCash,
	})
	require.NoError(t, err)

	// April goes unpaid. The payment that settled March must not offset it.
	env.billCustomer(t, customer, "2024-04")

	refreshed := env.getCustomer(t, customer.ID)
	assert.Equal(t, 500.0, refreshed.CurrentOutstanding)
	assert.Equal(t, 0.0, refreshed.CreditBalance)
}

func TestPaymentRetroactivelySettlesOlderBills(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	march := env.billCustomer(t, customer, "2024-03")
	april := env.billCustomer(t, customer, "2024-04")
	require.Equal(t, 1000.0, env.getCustomer(t, customer.ID).CurrentOutstanding)

	// One payment linked to the older bill clears it; the customer-level
	// balance reflects both bills minus the payment.
	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &march.ID, AmountPaid: 500, Method: models.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillPaid, env.getBill(t, march.ID).Status)
	assert.Equal(t, models.BillGenerated, env.getBill(t, april.ID).Status)
	assert.Equal(t, 500.0, env.getCustomer(t, customer.ID).CurrentOutstanding)
}
