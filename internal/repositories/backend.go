// Package repositories implements the store interfaces on PostgreSQL via
// pgx. Each repository holds the shared pool and speaks raw SQL.
package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cabletv-backend/internal/store"
)

// NewBackend wires every repository onto one pool.
func NewBackend(pool *pgxpool.Pool) *store.Backend {
	return &store.Backend{
		Customers:     NewCustomerRepository(pool),
		Subscriptions: NewSubscriptionRepository(pool),
		Packages:      NewPackageRepository(pool),
		Bills:         NewBillRepository(pool),
		Payments:      NewPaymentRepository(pool),
		Settings:      NewSystemSettingRepository(pool),
		Users:         NewUserRepository(pool),
	}
}
