package memory

import (
	"context"
	"sync"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
)

type pathKey struct {
	direction ports.PathDirection
	asset     common.Address
}

// PathRepo is an in-memory ports.PathRepository.
type PathRepo struct {
	mu    sync.RWMutex
	paths map[pathKey]domain.SwapPath
}

func NewPathRepo() *PathRepo {
	return &PathRepo{paths: make(map[pathKey]domain.SwapPath)}
}

func (r *PathRepo) Put(ctx context.Context, direction ports.PathDirection, asset common.Address, path domain.SwapPath) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[pathKey{direction, asset}] = path.Clone()
	return nil
}

func (r *PathRepo) Get(ctx context.Context, direction ports.PathDirection, asset common.Address) (domain.SwapPath, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.paths[pathKey{direction, asset}]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *PathRepo) Delete(ctx context.Context, direction ports.PathDirection, asset common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, pathKey{direction, asset})
	return nil
}
