package postgres

import (
	"context"
	"errors"
	"fmt"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// PathRepo implements ports.PathRepository.
type PathRepo struct {
	pool Pool
}

// NewPathRepo creates a new PathRepo.
func NewPathRepo(pool Pool) *PathRepo {
	return &PathRepo{pool: pool}
}

// Put inserts or replaces the stored route for an asset and direction.
func (r *PathRepo) Put(ctx context.Context, direction ports.PathDirection, asset common.Address, path domain.SwapPath) error {
	query := `INSERT INTO swap_paths (direction, asset, path)
		VALUES ($1, $2, $3)
		ON CONFLICT (direction, asset) DO UPDATE SET path = EXCLUDED.path`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query, string(direction), asset.Bytes(), []byte(path))
	if err != nil {
		return fmt.Errorf("put swap path: %w", err)
	}
	return nil
}

// Get fetches the stored route, nil when none is configured.
func (r *PathRepo) Get(ctx context.Context, direction ports.PathDirection, asset common.Address) (domain.SwapPath, error) {
	query := `SELECT path FROM swap_paths WHERE direction = $1 AND asset = $2`

	var path []byte
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, string(direction), asset.Bytes()).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap path: %w", err)
	}
	return domain.SwapPath(path), nil
}

// Delete removes the stored route for an asset and direction.
func (r *PathRepo) Delete(ctx context.Context, direction ports.PathDirection, asset common.Address) error {
	query := `DELETE FROM swap_paths WHERE direction = $1 AND asset = $2`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query, string(direction), asset.Bytes())
	if err != nil {
		return fmt.Errorf("delete swap path: %w", err)
	}
	return nil
}
