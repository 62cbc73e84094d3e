package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
)

// ConsumedHashStore implements ports.ConsumedHashStore using Redis SET NX.
// Settled and canceled binding hashes are tombstoned here so duplicate
// attempts fail fast without touching primary storage.
type ConsumedHashStore struct {
	client *goredis.Client
	prefix string
}

// NewConsumedHashStore creates a new Redis-backed consumed hash store.
func NewConsumedHashStore(client *goredis.Client) *ConsumedHashStore {
	return &ConsumedHashStore{
		client: client,
		prefix: "consumed:",
	}
}

// MarkConsumed atomically records a binding hash.
// Returns true if the hash was newly recorded, false if already consumed.
func (s *ConsumedHashStore) MarkConsumed(ctx context.Context, hash common.Hash, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+hash.Hex(), 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, hash was already consumed
			return false, nil
		}
		return false, fmt.Errorf("redis consumed mark: %w", err)
	}
	return result == "OK", nil
}

// IsConsumed reports whether a binding hash has been tombstoned.
func (s *ConsumedHashStore) IsConsumed(ctx context.Context, hash common.Hash) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+hash.Hex()).Result()
	if err != nil {
		return false, fmt.Errorf("redis consumed check: %w", err)
	}
	return n > 0, nil
}
