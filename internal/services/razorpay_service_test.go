package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateGatewayCaptureIsBookedOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	env.billCustomer(t, customer, "2024-03")

	rz := NewRazorpayService("", "", "", env.backend.Settings, env.payments)

	first, err := rz.RecordCapturedPayment(ctx, customer.ID, nil, 250, "order_1", "pay_ABC")
	require.NoError(t, err)
	assert.Equal(t, "pay_ABC", first.GatewayPaymentID)
	assert.Equal(t, 250.0, env.getCustomer(t, customer.ID).CurrentOutstanding)

	// The verify callback and the capture webhook both deliver the same
	// capture; the second delivery returns the existing payment.
	second, err := rz.RecordCapturedPayment(ctx, customer.ID, nil, 250, "order_1", "pay_ABC")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReceiptNumber, second.ReceiptNumber)

	payments, err := env.payments.ListByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 250.0, env.getCustomer(t, customer.ID).CurrentOutstanding)

	// A different capture still books normally.
	_, err = rz.RecordCapturedPayment(ctx, customer.ID, nil, 250, "order_2", "pay_DEF")
	require.NoError(t, err)
	assert.Equal(t, 0.0, env.getCustomer(t, customer.ID).CurrentOutstanding)
}
