package memory

import (
	"context"
	"math/big"
	"testing"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

func TestAssetRepo_UpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepo()

	got, err := repo.Get(ctx, addr(1))
	require.NoError(t, err)
	assert.Nil(t, got)

	cfg := &domain.AssetConfig{Asset: addr(1), Feed: addr(2), Decimals: 6, Staleness: time.Hour}
	require.NoError(t, repo.Upsert(ctx, cfg))

	got, err = repo.Get(ctx, addr(1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, addr(2), got.Feed)
	assert.False(t, got.CreatedAt.IsZero())

	// update keeps CreatedAt
	created := got.CreatedAt
	cfg.Feed = addr(3)
	require.NoError(t, repo.Upsert(ctx, cfg))
	got, err = repo.Get(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, addr(3), got.Feed)
	assert.Equal(t, created, got.CreatedAt)

	require.NoError(t, repo.Delete(ctx, addr(1)))
	got, err = repo.Get(ctx, addr(1))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEscrowRepo_NonceMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := NewEscrowRepo()

	n1, err := repo.NextNonce(ctx)
	require.NoError(t, err)
	n2, err := repo.NextNonce(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n1)
	assert.Equal(t, uint64(2), n2)
}

func TestEscrowRepo_HashLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewEscrowRepo()
	h := common.HexToHash("0x01")

	n, err := repo.NonceForHash(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	require.NoError(t, repo.PutHash(ctx, h, 5))
	n, err = repo.NonceForHash(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	require.NoError(t, repo.DeleteHash(ctx, h))
	n, err = repo.NonceForHash(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestQueryRepo_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewQueryRepo()
	h := common.HexToHash("0x02")

	rec := &domain.QueryRecord{
		Hash:        h,
		Client:      addr(1),
		Asset:       addr(2),
		Amount:      big.NewInt(100),
		Nonce:       1,
		SubmittedAt: time.Now().UTC(),
		Timeout:     time.Hour,
	}
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.Get(ctx, h)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(100), got.Amount.Int64())

	// stored amount is independent of the caller's big.Int
	got.Amount.SetInt64(999)
	again, err := repo.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Amount.Int64())

	require.NoError(t, repo.Delete(ctx, h))
	got, err = repo.Get(ctx, h)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJournalRepo_ListAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepo()
	merchant := addr(9)

	for i, typ := range []domain.SettlementType{
		domain.SettlementImmediate,
		domain.SettlementEscrowSettle,
		domain.SettlementQueryFulfill,
	} {
		require.NoError(t, repo.Create(ctx, &domain.SettlementRecord{
			ID:        uuid.New(),
			Type:      typ,
			Recipient: merchant,
			UsdValue:  big.NewInt(int64(100 * (i + 1))),
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.SettlementRecord{
		ID:        uuid.New(),
		Type:      domain.SettlementImmediate,
		Recipient: addr(8),
		UsdValue:  big.NewInt(50),
		CreatedAt: time.Now().UTC(),
	}))

	list, total, err := repo.List(ctx, ports.JournalListParams{
		Merchant: &merchant,
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)
	// newest first
	assert.Equal(t, domain.SettlementQueryFulfill, list[0].Type)

	typ := domain.SettlementImmediate
	_, total, err = repo.List(ctx, ports.JournalListParams{
		Merchant: &merchant,
		Type:     &typ,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	stats, err := repo.GetStats(ctx, merchant, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSettlements)
	assert.Equal(t, int64(1), stats.Immediate)
	assert.Equal(t, int64(1), stats.EscrowSettled)
	assert.Equal(t, int64(1), stats.QueriesFulfilled)
	assert.Equal(t, int64(600), stats.TotalUsdValue.Int64())
}

func TestSettlementCache_TTL(t *testing.T) {
	ctx := context.Background()
	cache := NewSettlementCache()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Millisecond))
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	time.Sleep(5 * time.Millisecond)
	got, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConsumedHashStore_MarkOnce(t *testing.T) {
	ctx := context.Background()
	store := NewConsumedHashStore()
	h := common.HexToHash("0x03")

	ok, err := store.MarkConsumed(ctx, h, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.MarkConsumed(ctx, h, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	consumed, err := store.IsConsumed(ctx, h)
	require.NoError(t, err)
	assert.True(t, consumed)
}
