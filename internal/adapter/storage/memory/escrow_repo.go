package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// EscrowRepo is an in-memory ports.EscrowStateRepository. The nonce counter
// starts at 0 so the first allocation returns 1.
type EscrowRepo struct {
	mu     sync.Mutex
	nonce  uint64
	hashes map[common.Hash]uint64
}

func NewEscrowRepo() *EscrowRepo {
	return &EscrowRepo{hashes: make(map[common.Hash]uint64)}
}

func (r *EscrowRepo) NextNonce(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonce++
	return r.nonce, nil
}

func (r *EscrowRepo) PutHash(ctx context.Context, hash common.Hash, nonce uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes[hash] = nonce
	return nil
}

func (r *EscrowRepo) NonceForHash(ctx context.Context, hash common.Hash) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hashes[hash], nil
}

func (r *EscrowRepo) DeleteHash(ctx context.Context, hash common.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hashes, hash)
	return nil
}
