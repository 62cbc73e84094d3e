package memory

import (
	"context"
	"math/big"
	"sync"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

type floorKey struct {
	merchant common.Address
	itemID   uint64
}

// MerchantRepo is an in-memory ports.MerchantRepository.
type MerchantRepo struct {
	mu      sync.RWMutex
	configs map[common.Address]domain.MerchantConfig
	floors  map[floorKey]*big.Int
}

func NewMerchantRepo() *MerchantRepo {
	return &MerchantRepo{
		configs: make(map[common.Address]domain.MerchantConfig),
		floors:  make(map[floorKey]*big.Int),
	}
}

func (r *MerchantRepo) Upsert(ctx context.Context, cfg *domain.MerchantConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *cfg
	stored.Recipients = append([]domain.PayoutRecipient(nil), cfg.Recipients...)
	now := time.Now().UTC()
	if existing, ok := r.configs[cfg.Merchant]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.configs[cfg.Merchant] = stored
	return nil
}

func (r *MerchantRepo) Get(ctx context.Context, merchant common.Address) (*domain.MerchantConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[merchant]
	if !ok {
		return nil, nil
	}
	out := cfg
	out.Recipients = append([]domain.PayoutRecipient(nil), cfg.Recipients...)
	return &out, nil
}

func (r *MerchantRepo) SetItemFloor(ctx context.Context, floor *domain.ItemFloor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floors[floorKey{floor.Merchant, floor.ItemID}] = new(big.Int).Set(floor.FloorUsd)
	return nil
}

func (r *MerchantRepo) GetItemFloor(ctx context.Context, merchant common.Address, itemID uint64) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.floors[floorKey{merchant, itemID}]; ok {
		return new(big.Int).Set(f), nil
	}
	return big.NewInt(0), nil
}
