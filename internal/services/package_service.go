package services

import (
	"context"
	"encoding/json"

	"cabletv-backend/internal/cache"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

// PackageService is the read-only view of the channel package catalog.
// Catalog management happens in an external system; this side only prices
// subscriptions and lists packages for the UI.
type PackageService struct {
	packages store.PackageStore
}

func NewPackageService(packages store.PackageStore) *PackageService {
	return &PackageService{packages: packages}
}

func (s *PackageService) Get(ctx context.Context, id int) (*models.Package, error) {
	return s.packages.Get(ctx, id)
}

// List returns the catalog, served from the redis cache when available.
func (s *PackageService) List(ctx context.Context) ([]*models.Package, error) {
	if data, ok := cache.GetCachedPackages(ctx); ok {
		var packages []*models.Package
		if err := json.Unmarshal(data, &packages); err == nil {
			return packages, nil
		}
		// Corrupt cache entry: fall through to the store and rewrite it.
	}

	packages, err := s.packages.List(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(packages); err == nil {
		cache.CachePackages(ctx, data)
	}
	return packages, nil
}

// PriceMap loads the catalog once and indexes it by package ID for a
// billing run.
func (s *PackageService) PriceMap(ctx context.Context) (map[int]*models.Package, error) {
	packages, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]*models.Package, len(packages))
	for _, p := range packages {
		out[p.ID] = p
	}
	return out, nil
}
