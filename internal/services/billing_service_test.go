package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/timeutil"
)

func TestGenerateBillsSingleSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi Kumar")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	result, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{
		Month:       "2024-03",
		DueDays:     15,
		GeneratedBy: 1,
	})
	require.NoError(t, err)

	require.Equal(t, []int{customer.ID}, result.GeneratedCustomerIDs)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 1, result.Summary.BillsGenerated)
	assert.Equal(t, 500.0, result.Summary.TotalAmount)

	bills, err := env.billing.ListBillsByMonth(ctx, "2024-03")
	require.NoError(t, err)
	require.Len(t, bills, 1)

	bill := bills[0]
	assert.Equal(t, 500.0, bill.TotalAmount)
	assert.Equal(t, models.BillGenerated, bill.Status)
	require.Len(t, bill.VCBreakdown, 1)
	assert.Equal(t, "VC1001", bill.VCBreakdown[0].VCNumber)

	// Due date lands dueDays into the following month.
	assert.Equal(t, "2024-04-16", bill.BillDueDate.In(timeutil.IST).Format(timeutil.DateLayout))

	// The new bill moves the customer's live balance.
	assert.Equal(t, 500.0, env.getCustomer(t, customer.ID).CurrentOutstanding)
}

func TestGenerateBillsSkipsCustomersWithoutActiveSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	billed := env.seedCustomer(t, "Billed")
	idle := env.seedCustomer(t, "Idle")
	env.seedActiveVC(t, "VC1001", billed, pkg)

	result, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)

	// Idle customer is neither generated nor failed, only counted.
	assert.Equal(t, []int{billed.ID}, result.GeneratedCustomerIDs)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 2, result.Summary.TotalCustomers)
	assert.Equal(t, 1, result.Summary.BillsGenerated)

	bills, err := env.billing.ListBillsByCustomer(ctx, idle.ID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestGenerateBillsMultipleSubscriptionsOneBill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	silver := env.seedPackage(t, "Silver", 300)
	gold := env.seedPackage(t, "Gold", 450)
	customer := env.seedCustomer(t, "Two Boxes")
	env.seedActiveVC(t, "VC1001", customer, silver)
	env.seedActiveVC(t, "VC1002", customer, gold)

	result, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Summary.BillsGenerated)

	bills, err := env.billing.ListBillsByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, 750.0, bills[0].TotalAmount)
	assert.Len(t, bills[0].VCBreakdown, 2)
}

func TestGenerateBillsRejectsSecondRunForSamePeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	_, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)

	_, err = env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	assert.ErrorIs(t, err, ErrPeriodAlreadyBilled)
}

func TestGenerateBillsRejectsMalformedPeriod(t *testing.T) {
	env := newTestEnv(t)

	for _, month := range []string{"", "2024", "03-2024", "2024-13", "2024-3"} {
		_, err := env.billing.GenerateBills(context.Background(), models.GenerateBillsRequest{Month: month})
		assert.Error(t, err, "month %q", month)
	}
}

func TestBillSnapshotSurvivesPriceChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	_, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)

	bills, err := env.billing.ListBillsByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	march := bills[0]

	// Move the VC to a pricier package and bill the next period. The March
	// bill must keep its original snapshot.
	repriced := env.seedPackage(t, "Gold", 800)
	err = env.subs.Assign(ctx, models.AssignSubscriptionsRequest{
		SubscriptionIDs: []int{1},
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		PackageID:       &repriced.ID,
		PackageName:     repriced.Name,
	}, 1)
	require.NoError(t, err)

	_, err = env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-04"})
	require.NoError(t, err)

	assert.Equal(t, 500.0, env.getBill(t, march.ID).TotalAmount)

	bills, err = env.billing.ListBillsByMonth(ctx, "2024-04")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, 800.0, bills[0].TotalAmount)
}

func TestGenerateBillsRecordsBalanceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	_, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)

	// March unpaid, bill April: previous outstanding snapshots the pre-bill
	// balance and the live balance accumulates.
	_, err = env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-04"})
	require.NoError(t, err)

	refreshed := env.getCustomer(t, customer.ID)
	assert.Equal(t, 500.0, refreshed.PreviousOutstanding)
	assert.Equal(t, 1000.0, refreshed.CurrentOutstanding)
	assert.Equal(t, 500.0, refreshed.PackageAmount)
}

func TestGenerateBillsForSelectedCustomers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	first := env.seedCustomer(t, "First")
	second := env.seedCustomer(t, "Second")
	env.seedActiveVC(t, "VC1001", first, pkg)
	env.seedActiveVC(t, "VC1002", second, pkg)

	result, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{
		Month:       "2024-03",
		CustomerIDs: []int{second.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{second.ID}, result.GeneratedCustomerIDs)

	bills, err := env.billing.ListBillsByCustomer(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestFailedBillInsertLeavesSnapshotUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	// A bill for the period already exists, as when this customer loses a
	// duplicate-generation race on the per-customer unique constraint.
	require.NoError(t, env.backend.Bills.Create(ctx, &models.MonthlyBill{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Month:        "2024-03",
		TotalAmount:  500,
		Status:       models.BillGenerated,
	}))

	dueDate, err := timeutil.DueDate("2024-03", DefaultDueDays)
	require.NoError(t, err)
	prices, err := env.packages.PriceMap(ctx)
	require.NoError(t, err)

	_, err = env.billing.generateForCustomer(ctx, customer, "2024-03", dueDate, 1, prices)
	require.Error(t, err)

	refreshed := env.getCustomer(t, customer.ID)
	assert.Equal(t, 0.0, refreshed.PackageAmount)
	assert.Equal(t, 0.0, refreshed.PreviousOutstanding)
}

func TestDeleteBillsForMonthReconcilesCustomers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	_, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)
	require.Equal(t, 500.0, env.getCustomer(t, customer.ID).CurrentOutstanding)

	deleted, err := env.billing.DeleteBillsForMonth(ctx, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.Equal(t, 0.0, env.getCustomer(t, customer.ID).CurrentOutstanding)

	// The period can be regenerated after the wipe.
	_, err = env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	assert.NoError(t, err)
}
