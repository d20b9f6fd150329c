package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
	"cabletv-backend/internal/store/memory"
)

// testEnv wires the full service stack onto the in-memory backend.
type testEnv struct {
	store   *memory.Store
	backend *store.Backend

	customers   *CustomerService
	subs        *SubscriptionService
	packages    *PackageService
	reconciler  *ReconcileService
	billing     *BillingService
	payments    *PaymentService
	settings    *SystemSettingService
	autoBilling *AutoBillingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := memory.New()
	backend := mem.Backend()

	customers := NewCustomerService(backend.Customers)
	subs := NewSubscriptionService(backend.Subscriptions, backend.Packages)
	packages := NewPackageService(backend.Packages)
	reconciler := NewReconcileService(backend.Customers, backend.Bills, backend.Payments)
	billing := NewBillingService(backend.Customers, backend.Bills, subs, packages, reconciler)
	payments := NewPaymentService(backend.Customers, backend.Bills, backend.Payments, reconciler)
	settings := NewSystemSettingService(backend.Settings)
	autoBilling := NewAutoBillingService(backend.Settings, billing)

	return &testEnv{
		store:       mem,
		backend:     backend,
		customers:   customers,
		subs:        subs,
		packages:    packages,
		reconciler:  reconciler,
		billing:     billing,
		payments:    payments,
		settings:    settings,
		autoBilling: autoBilling,
	}
}

func (e *testEnv) seedPackage(t *testing.T, name string, price float64) *models.Package {
	t.Helper()
	return e.store.AddPackage(&models.Package{Name: name, Price: price, IsActive: true})
}

func (e *testEnv) seedCustomer(t *testing.T, name string) *models.Customer {
	t.Helper()
	customer, err := e.customers.Create(context.Background(), models.CreateCustomerRequest{Name: name})
	require.NoError(t, err)
	return customer
}

// seedActiveVC provisions one VC and assigns it to the customer on the given
// package.
func (e *testEnv) seedActiveVC(t *testing.T, vcNumber string, customer *models.Customer, pkg *models.Package) *models.Subscription {
	t.Helper()
	ctx := context.Background()

	created, err := e.subs.Provision(ctx, models.ProvisionSubscriptionsRequest{
		VCNumbers: []string{vcNumber},
		PackageID: &pkg.ID,
	}, 1)
	require.NoError(t, err)
	require.Len(t, created, 1)

	err = e.subs.Assign(ctx, models.AssignSubscriptionsRequest{
		SubscriptionIDs: []int{created[0].ID},
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		PackageID:       &pkg.ID,
		PackageName:     pkg.Name,
	}, 1)
	require.NoError(t, err)

	sub, err := e.subs.Get(ctx, created[0].ID)
	require.NoError(t, err)
	return sub
}

func (e *testEnv) getCustomer(t *testing.T, id int) *models.Customer {
	t.Helper()
	customer, err := e.customers.Get(context.Background(), id)
	require.NoError(t, err)
	return customer
}

func (e *testEnv) getBill(t *testing.T, id int) *models.MonthlyBill {
	t.Helper()
	bill, err := e.billing.GetBill(context.Background(), id)
	require.NoError(t, err)
	return bill
}
