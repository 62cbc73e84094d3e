// Package memory provides map-backed implementations of the storage ports.
// It is the default storage driver and the backend used by service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// AssetRepo is an in-memory ports.AssetRepository.
type AssetRepo struct {
	mu     sync.RWMutex
	assets map[common.Address]domain.AssetConfig
}

func NewAssetRepo() *AssetRepo {
	return &AssetRepo{assets: make(map[common.Address]domain.AssetConfig)}
}

func (r *AssetRepo) Upsert(ctx context.Context, cfg *domain.AssetConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *cfg
	now := time.Now().UTC()
	if existing, ok := r.assets[cfg.Asset]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.assets[cfg.Asset] = stored
	return nil
}

func (r *AssetRepo) Get(ctx context.Context, asset common.Address) (*domain.AssetConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.assets[asset]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (r *AssetRepo) Delete(ctx context.Context, asset common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, asset)
	return nil
}

func (r *AssetRepo) List(ctx context.Context) ([]domain.AssetConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AssetConfig, 0, len(r.assets))
	for _, cfg := range r.assets {
		out = append(out, cfg)
	}
	return out, nil
}
