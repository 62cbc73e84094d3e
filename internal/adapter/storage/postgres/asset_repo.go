package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// AssetRepo implements ports.AssetRepository.
type AssetRepo struct {
	pool Pool
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(pool Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

// Upsert inserts or replaces the pricing configuration for an asset.
func (r *AssetRepo) Upsert(ctx context.Context, cfg *domain.AssetConfig) error {
	query := `INSERT INTO assets (asset, feed, decimals, staleness_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (asset) DO UPDATE
		SET feed = EXCLUDED.feed, decimals = EXCLUDED.decimals,
			staleness_seconds = EXCLUDED.staleness_seconds, updated_at = NOW()`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		cfg.Asset.Bytes(), cfg.Feed.Bytes(), int16(cfg.Decimals),
		int64(cfg.Staleness/time.Second), cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

// Get fetches the configuration for an asset, nil when unconfigured.
func (r *AssetRepo) Get(ctx context.Context, asset common.Address) (*domain.AssetConfig, error) {
	query := `SELECT asset, feed, decimals, staleness_seconds, created_at, updated_at
		FROM assets WHERE asset = $1`

	cfg, err := scanAsset(dbFrom(ctx, r.pool).QueryRow(ctx, query, asset.Bytes()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return cfg, nil
}

// Delete removes the configuration for an asset.
func (r *AssetRepo) Delete(ctx context.Context, asset common.Address) error {
	_, err := dbFrom(ctx, r.pool).Exec(ctx, `DELETE FROM assets WHERE asset = $1`, asset.Bytes())
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// List fetches all configured assets.
func (r *AssetRepo) List(ctx context.Context) ([]domain.AssetConfig, error) {
	query := `SELECT asset, feed, decimals, staleness_seconds, created_at, updated_at
		FROM assets ORDER BY created_at`

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var configs []domain.AssetConfig
	for rows.Next() {
		cfg, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		configs = append(configs, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset rows: %w", err)
	}
	return configs, nil
}

func scanAsset(row pgx.Row) (*domain.AssetConfig, error) {
	var (
		cfg       domain.AssetConfig
		asset     []byte
		feed      []byte
		decimals  int16
		staleness int64
	)
	err := row.Scan(&asset, &feed, &decimals, &staleness, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cfg.Asset = common.BytesToAddress(asset)
	cfg.Feed = common.BytesToAddress(feed)
	cfg.Decimals = uint8(decimals)
	cfg.Staleness = time.Duration(staleness) * time.Second
	return &cfg, nil
}
