package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/models"
)

func (e *testEnv) billCustomer(t *testing.T, customer *models.Customer, month string) *models.MonthlyBill {
	t.Helper()
	_, err := e.billing.GenerateBills(context.Background(), models.GenerateBillsRequest{
		Month:       month,
		CustomerIDs: []int{customer.ID},
	})
	require.NoError(t, err)
	bills, err := e.billing.ListBillsByMonth(context.Background(), month)
	require.NoError(t, err)
	for _, b := range bills {
		if b.CustomerID == customer.ID {
			return b
		}
	}
	t.Fatalf("no bill generated for customer %d in %s", customer.ID, month)
	return nil
}

func TestCollectPaymentRejectsInvalidAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.seedCustomer(t, "Ravi")

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: 0, Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: -50, Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: models.MaxPaymentAmount + 1, Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	_, err = env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: 100, Method: "barter",
	})
	assert.Error(t, err)

	// No records slipped through.
	payments, err := env.payments.ListByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestLinkedPaymentSettlesBill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	payment, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID,
		BillID:     &bill.ID,
		AmountPaid: 500,
		Method:     models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, bill.Month, payment.BillMonth)

	assert.Equal(t, models.BillPaid, env.getBill(t, bill.ID).Status)

	refreshed := env.getCustomer(t, customer.ID)
	assert.Equal(t, 0.0, refreshed.CurrentOutstanding)
	assert.Equal(t, 0.0, refreshed.CreditBalance)
}

func TestUnlinkedPaymentReducesOutstandingNotBillStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID,
		AmountPaid: 200,
		Method:     models.PaymentCash,
	})
	require.NoError(t, err)

	// Bill status only considers linked payments.
	assert.Equal(t, models.BillGenerated, env.getBill(t, bill.ID).Status)
	assert.Equal(t, 300.0, env.getCustomer(t, customer.ID).CurrentOutstanding)
}

func TestPartialLinkedPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID,
		BillID:     &bill.ID,
		AmountPaid: 200,
		Method:     models.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillPartial, env.getBill(t, bill.ID).Status)
	assert.Equal(t, 300.0, env.getCustomer(t, customer.ID).CurrentOutstanding)
}

func TestLinkedPaymentCannotExceedBillBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 400, Method: models.PaymentCash,
	})
	require.NoError(t, err)

	// 400 already linked, only 100 remains on the bill.
	_, err = env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 200, Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrOverpayment)

	_, err = env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 100, Method: models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillPaid, env.getBill(t, bill.ID).Status)
}

func TestOverpaymentBecomesCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	env.billCustomer(t, customer, "2024-03")

	// Unlinked payment above the billed total: outstanding floors at zero
	// and the excess is tracked as credit.
	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: 700, Method: models.PaymentCash,
	})
	require.NoError(t, err)

	refreshed := env.getCustomer(t, customer.ID)
	assert.Equal(t, 0.0, refreshed.CurrentOutstanding)
	assert.Equal(t, 200.0, refreshed.CreditBalance)
}

func TestLinkedPaymentRejectsForeignBill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	owner := env.seedCustomer(t, "Owner")
	other := env.seedCustomer(t, "Other")
	env.seedActiveVC(t, "VC1001", owner, pkg)
	bill := env.billCustomer(t, owner, "2024-03")

	_, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: other.ID, BillID: &bill.ID, AmountPaid: 100, Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrBillCustomerMismatch)
}

func TestReceiptNumbersAreAssigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.seedCustomer(t, "Ravi")

	first, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: 100, Method: models.PaymentCash,
	})
	require.NoError(t, err)
	second, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, AmountPaid: 100, Method: models.PaymentOnline,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.ReceiptNumber, "RCPT-"))
	assert.NotEqual(t, first.ReceiptNumber, second.ReceiptNumber)
}

func TestDeletePaymentRestoresBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	bill := env.billCustomer(t, customer, "2024-03")

	payment, err := env.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID: customer.ID, BillID: &bill.ID, AmountPaid: 500, Method: models.PaymentCash,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, env.getCustomer(t, customer.ID).CurrentOutstanding)

	require.NoError(t, env.payments.DeletePayment(ctx, payment.ID))

	assert.Equal(t, models.BillGenerated, env.getBill(t, bill.ID).Status)
	assert.Equal(t, 500.0, env.getCustomer(t, customer.ID).CurrentOutstanding)
}
