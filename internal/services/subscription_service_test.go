package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/models"
)

func TestProvisionCreatesAvailableVCs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	created, err := env.subs.Provision(ctx, models.ProvisionSubscriptionsRequest{
		VCNumbers: []string{"VC1001", "VC1002"},
		PackageID: &pkg.ID,
	}, 7)
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, sub := range created {
		assert.Equal(t, models.VCAvailable, sub.Status)
		assert.Nil(t, sub.CustomerID)
		require.Len(t, sub.StatusHistory, 1)
		assert.Equal(t, 7, sub.StatusHistory[0].ChangedBy)
	}

	// Duplicate VC numbers are rejected by the store.
	_, err = env.subs.Provision(ctx, models.ProvisionSubscriptionsRequest{
		VCNumbers: []string{"VC1001"},
	}, 7)
	assert.Error(t, err)
}

func TestAssignRejectsVCActiveElsewhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	first := env.seedCustomer(t, "First")
	second := env.seedCustomer(t, "Second")
	sub := env.seedActiveVC(t, "VC1001", first, pkg)

	err := env.subs.Assign(ctx, models.AssignSubscriptionsRequest{
		SubscriptionIDs: []int{sub.ID},
		CustomerID:      second.ID,
		CustomerName:    second.Name,
	}, 1)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	// Ownership is untouched by the rejected attempt.
	refreshed, err := env.subs.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.CustomerID)
	assert.Equal(t, first.ID, *refreshed.CustomerID)
}

func TestAssignIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	first := env.seedCustomer(t, "First")
	second := env.seedCustomer(t, "Second")

	taken := env.seedActiveVC(t, "VC1001", first, pkg)
	free, err := env.subs.Provision(ctx, models.ProvisionSubscriptionsRequest{
		VCNumbers: []string{"VC1002"},
		PackageID: &pkg.ID,
	}, 1)
	require.NoError(t, err)

	// One VC in the batch is taken; the free one must not be assigned either.
	err = env.subs.Assign(ctx, models.AssignSubscriptionsRequest{
		SubscriptionIDs: []int{taken.ID, free[0].ID},
		CustomerID:      second.ID,
		CustomerName:    second.Name,
	}, 1)
	require.ErrorIs(t, err, ErrAlreadyAssigned)

	untouched, err := env.subs.Get(ctx, free[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.VCAvailable, untouched.Status)
	assert.Nil(t, untouched.CustomerID)
}

func TestReassignClosesPreviousOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	first := env.seedCustomer(t, "First")
	second := env.seedCustomer(t, "Second")
	sub := env.seedActiveVC(t, "VC1001", first, pkg)

	err := env.subs.Reassign(ctx, models.AssignSubscriptionsRequest{
		SubscriptionIDs: []int{sub.ID},
		CustomerID:      second.ID,
		CustomerName:    second.Name,
		Reason:          "customer moved",
	}, 1)
	require.NoError(t, err)

	refreshed, err := env.subs.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.CustomerID)
	assert.Equal(t, second.ID, *refreshed.CustomerID)

	// Exactly one open entry; the first owner's span is closed, not erased.
	require.Len(t, refreshed.OwnershipHistory, 2)
	assert.NotNil(t, refreshed.OwnershipHistory[0].EndDate)
	assert.Equal(t, first.ID, refreshed.OwnershipHistory[0].CustomerID)
	assert.Nil(t, refreshed.OwnershipHistory[1].EndDate)
	assert.Equal(t, second.ID, refreshed.OwnershipHistory[1].CustomerID)
}

func TestUnassignReturnsVCToPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	sub := env.seedActiveVC(t, "VC1001", customer, pkg)

	err := env.subs.Unassign(ctx, models.UnassignSubscriptionsRequest{
		SubscriptionIDs: []int{sub.ID},
		Reason:          "disconnection request",
	}, 1)
	require.NoError(t, err)

	refreshed, err := env.subs.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VCAvailable, refreshed.Status)
	assert.Nil(t, refreshed.CustomerID)
	assert.Nil(t, refreshed.OpenOwnership())

	active, err := env.subs.GetActiveForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSetStatusAppendsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	sub := env.seedActiveVC(t, "VC1001", customer, pkg)

	err := env.subs.SetStatus(ctx, sub.ID, models.SetSubscriptionStatusRequest{
		Status: models.VCMaintenance,
		Reason: "signal fault",
	}, 3)
	require.NoError(t, err)

	refreshed, err := env.subs.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VCMaintenance, refreshed.Status)

	last := refreshed.StatusHistory[len(refreshed.StatusHistory)-1]
	assert.Equal(t, models.VCMaintenance, last.Status)
	assert.Equal(t, "signal fault", last.Reason)
	assert.Equal(t, 3, last.ChangedBy)

	// Ownership survives the status change.
	require.NotNil(t, refreshed.CustomerID)
	assert.Equal(t, customer.ID, *refreshed.CustomerID)
}

func TestSetStatusRejectsAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	sub := env.seedActiveVC(t, "VC1001", customer, pkg)

	// Releasing a VC must go through Unassign so ownership closes properly.
	err := env.subs.SetStatus(ctx, sub.ID, models.SetSubscriptionStatusRequest{
		Status: models.VCAvailable,
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	err = env.subs.SetStatus(ctx, sub.ID, models.SetSubscriptionStatusRequest{
		Status: "scrambled",
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestInactiveVCIsNotBilled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	sub := env.seedActiveVC(t, "VC1001", customer, pkg)

	require.NoError(t, env.subs.SetStatus(ctx, sub.ID, models.SetSubscriptionStatusRequest{
		Status: models.VCInactive,
		Reason: "seasonal pause",
	}, 1))

	result, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.BillsGenerated)
}

func TestValidateAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)
	_, err := env.subs.Provision(ctx, models.ProvisionSubscriptionsRequest{
		VCNumbers: []string{"VC1002"},
	}, 1)
	require.NoError(t, err)

	result, err := env.subs.ValidateAvailability(ctx, []string{"VC1001", "VC1002", "VC9999"})
	require.NoError(t, err)

	assert.Equal(t, []string{"VC1002"}, result.Available)
	assert.Equal(t, []string{"VC1001"}, result.Unavailable)
	assert.Equal(t, []string{"VC9999"}, result.NotFound)
	require.Len(t, result.Details, 3)
	assert.Equal(t, customer.Name, result.Details[0].CustomerName)
	assert.False(t, result.Details[2].Found)
}
