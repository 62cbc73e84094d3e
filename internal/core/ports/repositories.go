package ports

import (
	"context"
	"math/big"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// PathDirection distinguishes the two stored route kinds per asset.
type PathDirection string

const (
	// PathToReference routes an asset into the reference asset.
	PathToReference PathDirection = "TO_REFERENCE"
	// PathFromReference routes the reference asset into an asset.
	PathFromReference PathDirection = "FROM_REFERENCE"
)

// AssetRepository defines persistence for asset pricing configuration.
type AssetRepository interface {
	Upsert(ctx context.Context, cfg *domain.AssetConfig) error
	// Get returns nil without error for an unconfigured asset.
	Get(ctx context.Context, asset common.Address) (*domain.AssetConfig, error)
	Delete(ctx context.Context, asset common.Address) error
	List(ctx context.Context) ([]domain.AssetConfig, error)
}

// MerchantRepository defines persistence for merchant payout configuration.
type MerchantRepository interface {
	Upsert(ctx context.Context, cfg *domain.MerchantConfig) error
	// Get returns nil without error for an unknown merchant.
	Get(ctx context.Context, merchant common.Address) (*domain.MerchantConfig, error)
	SetItemFloor(ctx context.Context, floor *domain.ItemFloor) error
	// GetItemFloor returns a zero floor for an item that was never priced.
	GetItemFloor(ctx context.Context, merchant common.Address, itemID uint64) (*big.Int, error)
}

// PathRepository defines persistence for per-asset swap routes.
type PathRepository interface {
	Put(ctx context.Context, direction PathDirection, asset common.Address, path domain.SwapPath) error
	// Get returns nil without error when no route is stored.
	Get(ctx context.Context, direction PathDirection, asset common.Address) (domain.SwapPath, error)
	Delete(ctx context.Context, direction PathDirection, asset common.Address) error
}

// EscrowStateRepository holds the authorization state of the escrow: a strictly
// increasing nonce counter and the live binding hashes. A hash that is absent
// maps to nonce 0, meaning not authorized.
type EscrowStateRepository interface {
	// NextNonce allocates and returns the next nonce. The first allocated
	// nonce is 1; 0 is reserved for "not authorized".
	NextNonce(ctx context.Context) (uint64, error)
	PutHash(ctx context.Context, hash common.Hash, nonce uint64) error
	NonceForHash(ctx context.Context, hash common.Hash) (uint64, error)
	DeleteHash(ctx context.Context, hash common.Hash) error
}

// QueryRepository holds pending query payment records, keyed by binding hash.
type QueryRepository interface {
	// NextNonce allocates the next submission nonce, starting at 1.
	NextNonce(ctx context.Context) (uint64, error)
	Create(ctx context.Context, rec *domain.QueryRecord) error
	// Get returns nil without error when no record exists for the hash.
	Get(ctx context.Context, hash common.Hash) (*domain.QueryRecord, error)
	Delete(ctx context.Context, hash common.Hash) error
}

// JournalRepository defines persistence for the settlement journal.
type JournalRepository interface {
	Create(ctx context.Context, rec *domain.SettlementRecord) error
	GetByID(ctx context.Context, id string) (*domain.SettlementRecord, error)
	List(ctx context.Context, params JournalListParams) ([]domain.SettlementRecord, int64, error)
	GetStats(ctx context.Context, merchant common.Address, periodStart *int64) (*SettlementStats, error)
}

// JournalListParams holds filter + pagination for listing journal entries.
type JournalListParams struct {
	Merchant *common.Address
	Payer    *common.Address
	Type     *domain.SettlementType
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// SettlementStats holds aggregated journal statistics.
type SettlementStats struct {
	TotalSettlements int64
	Immediate        int64
	EscrowSettled    int64
	QueriesFulfilled int64
	QueriesCanceled  int64
	TotalUsdValue    *big.Int
}

// SettlementCache is the Redis-layer settlement result cache (fast path for
// repeated journal lookups).
type SettlementCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ConsumedHashStore records binding hashes that have been settled or canceled,
// so late duplicate attempts fail fast before touching primary storage.
type ConsumedHashStore interface {
	// MarkConsumed atomically records the hash. Returns true if the hash was
	// newly recorded, false if it was already consumed.
	MarkConsumed(ctx context.Context, hash common.Hash, ttl time.Duration) (bool, error)
	IsConsumed(ctx context.Context, hash common.Hash) (bool, error)
}

// DBTransactor runs fn atomically. Multi-step writes (escrow state plus
// journal) go through it so a partial failure never leaves a half-settled
// record behind.
type DBTransactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
