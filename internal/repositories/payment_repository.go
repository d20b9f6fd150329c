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

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `p.id, p.customer_id, c.name, p.bill_id,
	COALESCE(b.month, ''), p.amount_paid, p.payment_method, p.paid_at,
	p.collected_by, p.receipt_number, p.notes, p.gateway_payment_id, p.created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.CustomerID, &p.CustomerName, &p.BillID,
		&p.BillMonth, &p.AmountPaid, &p.Method, &p.PaidAt,
		&p.CollectedBy, &p.ReceiptNumber, &p.Notes, &p.GatewayPaymentID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) queryMany(ctx context.Context, sql string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const paymentJoins = `FROM payments p
	JOIN customers c ON c.id = p.customer_id
	LEFT JOIN bills b ON b.id = p.bill_id`

func (r *PaymentRepository) Get(ctx context.Context, id int) (*models.Payment, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+paymentColumns+" "+paymentJoins+" WHERE p.id = $1", id)
	return scanPayment(row)
}

func (r *PaymentRepository) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	if gatewayPaymentID == "" {
		return nil, store.ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		"SELECT "+paymentColumns+" "+paymentJoins+" WHERE p.gateway_payment_id = $1",
		gatewayPaymentID)
	return scanPayment(row)
}

func (r *PaymentRepository) List(ctx context.Context) ([]*models.Payment, error) {
	return r.queryMany(ctx,
		"SELECT "+paymentColumns+" "+paymentJoins+" ORDER BY p.paid_at DESC")
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.Payment, error) {
	return r.queryMany(ctx,
		"SELECT "+paymentColumns+" "+paymentJoins+" WHERE p.customer_id = $1 ORDER BY p.paid_at DESC",
		customerID)
}

func (r *PaymentRepository) ListByBill(ctx context.Context, billID int) ([]*models.Payment, error) {
	return r.queryMany(ctx,
		"SELECT "+paymentColumns+" "+paymentJoins+" WHERE p.bill_id = $1 ORDER BY p.paid_at",
		billID)
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (customer_id, bill_id, amount_paid, payment_method,
			paid_at, collected_by, receipt_number, notes, gateway_payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		p.CustomerID, p.BillID, p.AmountPaid, p.Method,
		p.PaidAt, p.CollectedBy, p.ReceiptNumber, p.Notes, p.GatewayPaymentID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete payment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
