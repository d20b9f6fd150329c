package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

// SubscriptionRepository stores subscriptions in vc_inventory with the
// status and ownership histories embedded as JSONB columns, so a row is
// always read atomically with its full history.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, vc_number, status, customer_id, customer_name,
	package_id, package_name, status_history, ownership_history,
	created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var s models.Subscription
	var statusHistory, ownershipHistory []byte
	err := row.Scan(&s.ID, &s.VCNumber, &s.Status, &s.CustomerID,
		&s.CustomerName, &s.PackageID, &s.PackageName,
		&statusHistory, &ownershipHistory, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(statusHistory, &s.StatusHistory); err != nil {
		return nil, fmt.Errorf("failed to decode status history for %s: %w", s.VCNumber, err)
	}
	if err := json.Unmarshal(ownershipHistory, &s.OwnershipHistory); err != nil {
		return nil, fmt.Errorf("failed to decode ownership history for %s: %w", s.VCNumber, err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) queryMany(ctx context.Context, sql string, args ...interface{}) ([]*models.Subscription, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepository) Get(ctx context.Context, id int) (*models.Subscription, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+subscriptionColumns+" FROM vc_inventory WHERE id = $1", id)
	return scanSubscription(row)
}

func (r *SubscriptionRepository) GetByIDs(ctx context.Context, ids []int) ([]*models.Subscription, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryMany(ctx,
		"SELECT "+subscriptionColumns+" FROM vc_inventory WHERE id = ANY($1) ORDER BY vc_number", ids)
}

func (r *SubscriptionRepository) GetByVCNumbers(ctx context.Context, vcNumbers []string) ([]*models.Subscription, error) {
	if len(vcNumbers) == 0 {
		return nil, nil
	}
	return r.queryMany(ctx,
		"SELECT "+subscriptionColumns+" FROM vc_inventory WHERE vc_number = ANY($1) ORDER BY vc_number", vcNumbers)
}

func (r *SubscriptionRepository) List(ctx context.Context) ([]*models.Subscription, error) {
	return r.queryMany(ctx,
		"SELECT "+subscriptionColumns+" FROM vc_inventory ORDER BY vc_number")
}

func (r *SubscriptionRepository) ListActiveByCustomer(ctx context.Context, customerID int) ([]*models.Subscription, error) {
	return r.queryMany(ctx,
		"SELECT "+subscriptionColumns+" FROM vc_inventory WHERE customer_id = $1 AND status = 'active' ORDER BY vc_number",
		customerID)
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	statusHistory, err := json.Marshal(s.StatusHistory)
	if err != nil {
		return fmt.Errorf("failed to encode status history: %w", err)
	}
	ownershipHistory, err := json.Marshal(s.OwnershipHistory)
	if err != nil {
		return fmt.Errorf("failed to encode ownership history: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO vc_inventory (vc_number, status, customer_id, customer_name,
			package_id, package_name, status_history, ownership_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		s.VCNumber, s.Status, s.CustomerID, s.CustomerName,
		s.PackageID, s.PackageName, statusHistory, ownershipHistory,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription %s: %w", s.VCNumber, err)
	}
	return nil
}

// UpdateBatch writes all rows inside one transaction. Multi-VC assigns rely
// on the all-or-nothing behavior.
func (r *SubscriptionRepository) UpdateBatch(ctx context.Context, subs []*models.Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range subs {
		statusHistory, err := json.Marshal(s.StatusHistory)
		if err != nil {
			return fmt.Errorf("failed to encode status history: %w", err)
		}
		ownershipHistory, err := json.Marshal(s.OwnershipHistory)
		if err != nil {
			return fmt.Errorf("failed to encode ownership history: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE vc_inventory
			SET status = $1, customer_id = $2, customer_name = $3,
				package_id = $4, package_name = $5,
				status_history = $6, ownership_history = $7,
				updated_at = NOW()
			WHERE id = $8`,
			s.Status, s.CustomerID, s.CustomerName,
			s.PackageID, s.PackageName, statusHistory, ownershipHistory, s.ID)
		if err != nil {
			return fmt.Errorf("failed to update subscription %s: %w", s.VCNumber, err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscription batch: %w", err)
	}
	return nil
}
