package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository. Payout recipients are a
// small validated set that is always read whole, so they live in a JSONB
// column rather than a child table.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Upsert inserts or replaces a merchant's payout configuration.
func (r *MerchantRepo) Upsert(ctx context.Context, cfg *domain.MerchantConfig) error {
	recipients, err := json.Marshal(cfg.Recipients)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}

	query := `INSERT INTO merchants (merchant, payout_asset, recipients, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (merchant) DO UPDATE
		SET payout_asset = EXCLUDED.payout_asset, recipients = EXCLUDED.recipients, updated_at = NOW()`

	_, err = dbFrom(ctx, r.pool).Exec(ctx, query,
		cfg.Merchant.Bytes(), cfg.PayoutAsset.Bytes(), recipients,
		cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert merchant: %w", err)
	}
	return nil
}

// Get fetches a merchant's payout configuration, nil when unknown.
func (r *MerchantRepo) Get(ctx context.Context, merchant common.Address) (*domain.MerchantConfig, error) {
	query := `SELECT merchant, payout_asset, recipients, created_at, updated_at
		FROM merchants WHERE merchant = $1`

	var (
		cfg         domain.MerchantConfig
		merchantRaw []byte
		assetRaw    []byte
		recipients  []byte
	)
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, merchant.Bytes()).Scan(
		&merchantRaw, &assetRaw, &recipients, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	cfg.Merchant = common.BytesToAddress(merchantRaw)
	cfg.PayoutAsset = common.BytesToAddress(assetRaw)
	if err := json.Unmarshal(recipients, &cfg.Recipients); err != nil {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}
	return &cfg, nil
}

// SetItemFloor inserts or replaces a per-item USD price floor.
func (r *MerchantRepo) SetItemFloor(ctx context.Context, floor *domain.ItemFloor) error {
	query := `INSERT INTO item_floors (merchant, item_id, floor_usd)
		VALUES ($1, $2, $3)
		ON CONFLICT (merchant, item_id) DO UPDATE SET floor_usd = EXCLUDED.floor_usd`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		floor.Merchant.Bytes(), int64(floor.ItemID), floor.FloorUsd.String(),
	)
	if err != nil {
		return fmt.Errorf("set item floor: %w", err)
	}
	return nil
}

// GetItemFloor fetches a per-item floor, zero for an item never priced.
func (r *MerchantRepo) GetItemFloor(ctx context.Context, merchant common.Address, itemID uint64) (*big.Int, error) {
	query := `SELECT floor_usd FROM item_floors WHERE merchant = $1 AND item_id = $2`

	var raw string
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, merchant.Bytes(), int64(itemID)).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return big.NewInt(0), nil
		}
		return nil, fmt.Errorf("get item floor: %w", err)
	}
	floor, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("malformed floor value %q", raw)
	}
	return floor, nil
}
