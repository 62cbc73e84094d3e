package integration

import (
	"math/big"
	"testing"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestDigest = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000dd")

func TestQuery_SubmitAndFulfill(t *testing.T) {
	eng := newEngine(t, time.Hour)
	ctx := t.Context()

	sub, err := eng.queries.SubmitQuery(ctx, ports.SubmitQueryRequest{
		Client:        payer,
		Asset:         token,
		Amount:        units(10),
		RequestDigest: requestDigest,
		CallbackURL:   "https://client.example.com/hook",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sub.Nonce)

	got, err := eng.queries.GetQuery(ctx, sub.Hash)
	require.NoError(t, err)
	assert.Equal(t, units(10), got.Amount)

	result := []byte(`{"answer":42}`)
	rec, err := eng.queries.FulfillQuery(ctx, ports.FulfillQueryRequest{
		Hash:       sub.Hash,
		Fulfiller:  fulfiller,
		GasCostUsd: units(1),
		Result:     result,
	})
	require.NoError(t, err)

	// $1 gas + $2 flat fee = $3 payout, 1.5 tokens at $2 each.
	assert.Equal(t, domain.SettlementQueryFulfill, rec.Type)
	assert.Equal(t, units(3), rec.UsdValue)
	wantPayout := new(big.Int).Mul(big.NewInt(15), big.NewInt(1e17))
	assert.Equal(t, wantPayout, rec.GrossAmount)

	// 8.5 tokens refund to the client.
	wantRefund := new(big.Int).Mul(big.NewInt(85), big.NewInt(1e17))
	assert.Equal(t, wantRefund, rec.RefundAmount)

	// The result was delivered.
	assert.Equal(t, domain.CallbackDelivered, rec.Callback)
	reqs := eng.invoker.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, sub.Hash, reqs[0].QueryHash)
	assert.Equal(t, result, reqs[0].Result)
	assert.Equal(t, "https://client.example.com/hook", reqs[0].URL)

	// The pending record is gone.
	_, err = eng.queries.GetQuery(ctx, sub.Hash)
	assertCode(t, err, "QRY_001")
}

func TestQuery_FulfillWithoutCallbackURL(t *testing.T) {
	eng := newEngine(t, time.Hour)
	ctx := t.Context()

	sub, err := eng.queries.SubmitQuery(ctx, ports.SubmitQueryRequest{
		Client:        payer,
		Asset:         token,
		Amount:        units(10),
		RequestDigest: requestDigest,
	})
	require.NoError(t, err)

	rec, err := eng.queries.FulfillQuery(ctx, ports.FulfillQueryRequest{
		Hash:       sub.Hash,
		Fulfiller:  fulfiller,
		GasCostUsd: units(1),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CallbackNone, rec.Callback)
	assert.Empty(t, eng.invoker.Requests())
}

func TestQuery_CallbackFailureStillSettles(t *testing.T) {
	eng := newEngine(t, time.Hour)
	ctx := t.Context()
	eng.invoker.fail = true
	eng.invoker.err = assert.AnError

	sub, err := eng.queries.SubmitQuery(ctx, ports.SubmitQueryRequest{
		Client:        payer,
		Asset:         token,
		Amount:        units(10),
		RequestDigest: requestDigest,
		CallbackURL:   "https://client.example.com/hook",
	})
	require.NoError(t, err)

	rec, err := eng.queries.FulfillQuery(ctx, ports.FulfillQueryRequest{
		Hash:       sub.Hash,
		Fulfiller:  fulfiller,
		GasCostUsd: units(1),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CallbackFailed, rec.Callback)
}

func TestQuery_CancelBeforeTimeout(t *testing.T) {
	eng := newEngine(t, time.Hour)
	ctx := t.Context()

	sub, err := eng.queries.SubmitQuery(ctx, ports.SubmitQueryRequest{
		Client:        payer,
		Asset:         token,
		Amount:        units(10),
		RequestDigest: requestDigest,
	})
	require.NoError(t, err)

	_, err = eng.queries.CancelExpiredQuery(ctx, sub.Hash)
	assertCode(t, err, "QRY_002")
}

func TestQuery_CancelExpired(t *testing.T) {
	eng := newEngine(t, 0) // every query is immediately cancellable
	ctx := t.Context()

	sub, err := eng.queries.SubmitQuery(ctx, ports.SubmitQueryRequest{
		Client:        payer,
		Asset:         token,
		Amount:        units(10),
		RequestDigest: requestDigest,
	})
	require.NoError(t, err)

	payerBefore := eng.ledger.Balance(token, payer)

	rec, err := eng.queries.CancelExpiredQuery(ctx, sub.Hash)
	require.NoError(t, err)
	assert.Equal(t, domain.SettlementQueryCancel, rec.Type)
	assert.Equal(t, units(10), rec.RefundAmount)

	refunded := new(big.Int).Sub(eng.ledger.Balance(token, payer), payerBefore)
	assert.Equal(t, units(10), refunded)

	// Cancel and fulfill are mutually exclusive; both now miss.
	_, err = eng.queries.CancelExpiredQuery(ctx, sub.Hash)
	assertCode(t, err, "QRY_001")
	_, err = eng.queries.FulfillQuery(ctx, ports.FulfillQueryRequest{
		Hash: sub.Hash, Fulfiller: fulfiller, GasCostUsd: units(1),
	})
	assertCode(t, err, "QRY_001")
}
