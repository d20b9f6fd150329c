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

type BillRepository struct {
	db *pgxpool.Pool
}

func NewBillRepository(db *pgxpool.Pool) *BillRepository {
	return &BillRepository{db: db}
}

const billColumns = `b.id, b.customer_id, c.name, b.month, b.vc_breakdown,
	b.total_amount, b.bill_due_date, b.status, b.generated_by,
	b.created_at, b.updated_at`

func scanBill(row pgx.Row) (*models.MonthlyBill, error) {
	var b models.MonthlyBill
	var breakdown []byte
	err := row.Scan(&b.ID, &b.CustomerID, &b.CustomerName, &b.Month,
		&breakdown, &b.TotalAmount, &b.BillDueDate, &b.Status,
		&b.GeneratedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(breakdown, &b.VCBreakdown); err != nil {
		return nil, fmt.Errorf("failed to decode bill %d breakdown: %w", b.ID, err)
	}
	return &b, nil
}

func (r *BillRepository) queryMany(ctx context.Context, sql string, args ...interface{}) ([]*models.MonthlyBill, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.MonthlyBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *BillRepository) Get(ctx context.Context, id int) (*models.MonthlyBill, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+billColumns+` FROM bills b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1`, id)
	return scanBill(row)
}

func (r *BillRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.MonthlyBill, error) {
	return r.queryMany(ctx, `
		SELECT `+billColumns+` FROM bills b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.customer_id = $1
		ORDER BY b.month DESC`, customerID)
}

func (r *BillRepository) ListByMonth(ctx context.Context, month string) ([]*models.MonthlyBill, error) {
	return r.queryMany(ctx, `
		SELECT `+billColumns+` FROM bills b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.month = $1
		ORDER BY c.name`, month)
}

func (r *BillRepository) CountByMonth(ctx context.Context, month string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM bills WHERE month = $1", month).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bills for %s: %w", month, err)
	}
	return count, nil
}

func (r *BillRepository) Create(ctx context.Context, b *models.MonthlyBill) error {
	breakdown, err := json.Marshal(b.VCBreakdown)
	if err != nil {
		return fmt.Errorf("failed to encode bill breakdown: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO bills (customer_id, month, vc_breakdown, total_amount,
			bill_due_date, status, generated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		b.CustomerID, b.Month, breakdown, b.TotalAmount,
		b.BillDueDate, b.Status, b.GeneratedBy,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bill for customer %d month %s: %w",
			b.CustomerID, b.Month, err)
	}
	return nil
}

func (r *BillRepository) UpdateStatus(ctx context.Context, id int, status models.BillStatus) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE bills SET status = $1, updated_at = NOW() WHERE id = $2",
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update bill %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *BillRepository) DeleteByMonth(ctx context.Context, month string) (int, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM bills WHERE month = $1", month)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bills for %s: %w", month, err)
	}
	return int(tag.RowsAffected()), nil
}
