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

type SystemSettingRepository struct {
	db *pgxpool.Pool
}

func NewSystemSettingRepository(db *pgxpool.Pool) *SystemSettingRepository {
	return &SystemSettingRepository{db: db}
}

func (r *SystemSettingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	var s models.SystemSetting
	err := r.db.QueryRow(ctx, `
		SELECT id, setting_key, setting_value, description, updated_at, updated_by_user_id
		FROM system_settings WHERE setting_key = $1`, key,
	).Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description,
		&s.UpdatedAt, &s.UpdatedByUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &s, nil
}

func (r *SystemSettingRepository) List(ctx context.Context) ([]*models.SystemSetting, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, setting_key, setting_value, description, updated_at, updated_by_user_id
		FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.SystemSetting
	for rows.Next() {
		var s models.SystemSetting
		if err := rows.Scan(&s.ID, &s.SettingKey, &s.SettingValue,
			&s.Description, &s.UpdatedAt, &s.UpdatedByUserID); err != nil {
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

func (r *SystemSettingRepository) Upsert(ctx context.Context, key, value, description string, userID int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO system_settings (setting_key, setting_value, description, updated_by_user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (setting_key) DO UPDATE
		SET setting_value = EXCLUDED.setting_value,
			description = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE system_settings.description END,
			updated_by_user_id = EXCLUDED.updated_by_user_id,
			updated_at = NOW()`,
		key, value, description, userID)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
