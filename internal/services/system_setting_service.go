package services

import (
	"context"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

type SystemSettingService struct {
	settings store.SettingStore
}

func NewSystemSettingService(settings store.SettingStore) *SystemSettingService {
	return &SystemSettingService{settings: settings}
}

func (s *SystemSettingService) GetSetting(ctx context.Context, key string) (*models.SystemSetting, error) {
	return s.settings.Get(ctx, key)
}

func (s *SystemSettingService) ListSettings(ctx context.Context) ([]*models.SystemSetting, error) {
	return s.settings.List(ctx)
}

func (s *SystemSettingService) UpdateSetting(ctx context.Context, key, value string, userID int) error {
	return s.settings.Upsert(ctx, key, value, "", userID)
}
