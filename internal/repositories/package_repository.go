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

type PackageRepository struct {
	db *pgxpool.Pool
}

func NewPackageRepository(db *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Get(ctx context.Context, id int) (*models.Package, error) {
	var p models.Package
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price, is_active, features, created_at, updated_at
		FROM packages WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.IsActive, &p.Features, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get package %d: %w", id, err)
	}
	return &p, nil
}

func (r *PackageRepository) List(ctx context.Context) ([]*models.Package, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, is_active, features, created_at, updated_at
		FROM packages ORDER BY price`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*models.Package
	for rows.Next() {
		var p models.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.IsActive,
			&p.Features, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		packages = append(packages, &p)
	}
	return packages, rows.Err()
}
