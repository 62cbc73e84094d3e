package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// SettlementCache is an in-memory ports.SettlementCache.
type SettlementCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewSettlementCache() *SettlementCache {
	return &SettlementCache{entries: make(map[string]cacheEntry)}
}

func (c *SettlementCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

func (c *SettlementCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// ConsumedHashStore is an in-memory ports.ConsumedHashStore.
type ConsumedHashStore struct {
	mu     sync.Mutex
	hashes map[common.Hash]time.Time
}

func NewConsumedHashStore() *ConsumedHashStore {
	return &ConsumedHashStore{hashes: make(map[common.Hash]time.Time)}
}

func (s *ConsumedHashStore) MarkConsumed(ctx context.Context, hash common.Hash, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.hashes[hash]; ok {
		if exp.IsZero() || time.Now().Before(exp) {
			return false, nil
		}
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.hashes[hash] = exp
	return true, nil
}

func (s *ConsumedHashStore) IsConsumed(ctx context.Context, hash common.Hash) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.hashes[hash]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && time.Now().After(exp) {
		delete(s.hashes, hash)
		return false, nil
	}
	return true, nil
}
