package memory

import (
	"context"
	"math/big"
	"sync"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// QueryRepo is an in-memory ports.QueryRepository.
type QueryRepo struct {
	mu      sync.Mutex
	nonce   uint64
	records map[common.Hash]domain.QueryRecord
}

func NewQueryRepo() *QueryRepo {
	return &QueryRepo{records: make(map[common.Hash]domain.QueryRecord)}
}

func (r *QueryRepo) NextNonce(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonce++
	return r.nonce, nil
}

func (r *QueryRepo) Create(ctx context.Context, rec *domain.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *rec
	stored.Amount = new(big.Int).Set(rec.Amount)
	r.records[rec.Hash] = stored
	return nil
}

func (r *QueryRepo) Get(ctx context.Context, hash common.Hash) (*domain.QueryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[hash]
	if !ok {
		return nil, nil
	}
	out := rec
	out.Amount = new(big.Int).Set(rec.Amount)
	return &out, nil
}

func (r *QueryRepo) Delete(ctx context.Context, hash common.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, hash)
	return nil
}
