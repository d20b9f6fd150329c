// Package store defines the backend capability interfaces the billing core
// consumes. The implementation is selected once at startup (postgres or
// in-memory fixture); there is no runtime switching between data sources.
package store

import (
	"context"
	"errors"

	"cabletv-backend/internal/models"
)

// ErrNotFound is returned by all stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

type CustomerStore interface {
	Get(ctx context.Context, id int) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	// UpdateIdentity writes the admin-editable fields only.
	UpdateIdentity(ctx context.Context, c *models.Customer) error
	// SetOutstanding writes the reconciler-owned balance fields.
	SetOutstanding(ctx context.Context, id int, current, credit float64) error
	// SetBillingSnapshot records the carried-over balance and cached monthly
	// charge at bill-generation time.
	SetBillingSnapshot(ctx context.Context, id int, packageAmount, previousOutstanding float64) error
}

type SubscriptionStore interface {
	Get(ctx context.Context, id int) (*models.Subscription, error)
	GetByIDs(ctx context.Context, ids []int) ([]*models.Subscription, error)
	GetByVCNumbers(ctx context.Context, vcNumbers []string) ([]*models.Subscription, error)
	List(ctx context.Context) ([]*models.Subscription, error)
	ListActiveByCustomer(ctx context.Context, customerID int) ([]*models.Subscription, error)
	Create(ctx context.Context, s *models.Subscription) error
	// UpdateBatch persists the given subscriptions atomically: either every
	// row is written or none is. Assign/unassign depend on this to keep
	// ownership chains consistent across a multi-VC operation.
	UpdateBatch(ctx context.Context, subs []*models.Subscription) error
}

type PackageStore interface {
	Get(ctx context.Context, id int) (*models.Package, error)
	List(ctx context.Context) ([]*models.Package, error)
}

type BillStore interface {
	Get(ctx context.Context, id int) (*models.MonthlyBill, error)
	ListByCustomer(ctx context.Context, customerID int) ([]*models.MonthlyBill, error)
	ListByMonth(ctx context.Context, month string) ([]*models.MonthlyBill, error)
	CountByMonth(ctx context.Context, month string) (int, error)
	Create(ctx context.Context, b *models.MonthlyBill) error
	// UpdateStatus is the only mutation allowed on a persisted bill.
	UpdateStatus(ctx context.Context, id int, status models.BillStatus) error
	DeleteByMonth(ctx context.Context, month string) (int, error)
}

type PaymentStore interface {
	Get(ctx context.Context, id int) (*models.Payment, error)
	// GetByGatewayPaymentID looks up the payment booked for a gateway capture.
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
	ListByCustomer(ctx context.Context, customerID int) ([]*models.Payment, error)
	ListByBill(ctx context.Context, billID int) ([]*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Delete(ctx context.Context, id int) error
}

type SettingStore interface {
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	List(ctx context.Context) ([]*models.SystemSetting, error)
	Upsert(ctx context.Context, key, value, description string, userID int) error
}

type UserStore interface {
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Backend bundles every store a running server needs.
type Backend struct {
	Customers     CustomerStore
	Subscriptions SubscriptionStore
	Packages      PackageStore
	Bills         BillStore
	Payments      PaymentStore
	Settings      SettingStore
	Users         UserStore
}
