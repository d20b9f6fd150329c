package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, name, phone, area, address, collector_user_id,
	package_amount, previous_outstanding, current_outstanding, credit_balance,
	bill_due_day, is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Area, &c.Address,
		&c.CollectorUserID, &c.PackageAmount, &c.PreviousOutstanding,
		&c.CurrentOutstanding, &c.CreditBalance, &c.BillDueDay, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	return scanCustomer(row)
}

func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+customerColumns+" FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, area, address, collector_user_id,
			package_amount, previous_outstanding, current_outstanding,
			credit_balance, bill_due_day, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Area, c.Address, c.CollectorUserID,
		c.PackageAmount, c.PreviousOutstanding, c.CurrentOutstanding,
		c.CreditBalance, c.BillDueDay, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) UpdateIdentity(ctx context.Context, c *models.Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET name = $1, phone = $2, area = $3, address = $4,
			collector_user_id = $5, bill_due_day = $6, is_active = $7,
			updated_at = NOW()
		WHERE id = $8`,
		c.Name, c.Phone, c.Area, c.Address, c.CollectorUserID,
		c.BillDueDay, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) SetOutstanding(ctx context.Context, id int, current, credit float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET current_outstanding = $1, credit_balance = $2, updated_at = NOW()
		WHERE id = $3`,
		current, credit, id)
	if err != nil {
		return fmt.Errorf("failed to set outstanding for customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) SetBillingSnapshot(ctx context.Context, id int, packageAmount, previousOutstanding float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET package_amount = $1, previous_outstanding = $2, updated_at = NOW()
		WHERE id = $3`,
		packageAmount, previousOutstanding, id)
	if err != nil {
		return fmt.Errorf("failed to set billing snapshot for customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
