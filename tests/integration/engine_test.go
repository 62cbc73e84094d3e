package integration

import (
	"math/big"
	"testing"
	"time"

	"cross-asset-gateway/internal/adapter/storage/memory"
	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/internal/service"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainID uint64 = 31337

var (
	custody   = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	treasury  = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	refAsset  = common.HexToAddress("0x0000000000000000000000000000000000000009")
	token     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	usdc      = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	tokenFeed = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	usdcFeed  = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	payer     = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	merchant  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	recipA    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	recipB    = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	fulfiller = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

// units converts a whole-token count into the 18-decimal smallest unit.
func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// route builds a one-hop path between two assets with a 0.3% fee tier.
func route(from, to common.Address) domain.SwapPath {
	p := make([]byte, 0, 43)
	p = append(p, from.Bytes()...)
	p = append(p, 0x00, 0x0b, 0xb8)
	p = append(p, to.Bytes()...)
	return p
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// engine wires the full settlement stack over in-memory storage and fake
// chain collaborators. Token is priced at $2, the payout asset at $1; both
// carry 18 decimals.
type engine struct {
	ledger    *fakeTokenLedger
	invoker   *fakeInvoker
	journal   *memory.JournalRepo
	valuation ports.ValuationService
	routes    ports.RouteService
	escrow    ports.EscrowService
	payouts   ports.PayoutService
	payments  ports.PaymentService
	queries   ports.QueryService
	reporting ports.ReportingService
}

func newEngine(t *testing.T, queryTimeout time.Duration) *engine {
	t.Helper()
	ctx := t.Context()
	log := zerolog.Nop()

	ledger := newFakeTokenLedger(custody)
	ledger.Mint(token, payer, units(1_000_000))

	feeds := &fakeFeedProvider{feeds: map[common.Address]*fakeFeed{
		tokenFeed: {answer: big.NewInt(2_0000_0000), decimals: 8},
		usdcFeed:  {answer: big.NewInt(1_0000_0000), decimals: 8},
	}}
	prices := map[common.Address]*big.Int{
		token: units(2),
		usdc:  units(1),
	}

	assetRepo := memory.NewAssetRepo()
	pathRepo := memory.NewPathRepo()
	merchantRepo := memory.NewMerchantRepo()
	escrowRepo := memory.NewEscrowRepo()
	queryRepo := memory.NewQueryRepo()
	journal := memory.NewJournalRepo()
	cache := memory.NewSettlementCache()
	consumed := memory.NewConsumedHashStore()
	transactor := memory.NewTransactor()

	valuation := service.NewValuationService(assetRepo, feeds, log)
	routes := service.NewRouteService(pathRepo, refAsset, log)
	escrow := service.NewEscrowService(escrowRepo, consumed, chainID, log)
	payouts := service.NewPayoutService(merchantRepo, ledger, log)

	swapper := &fakeSwapExecutor{ledger: ledger, prices: prices}
	payments := service.NewPaymentService(
		valuation, routes, escrow, payouts, ledger, swapper,
		journal, cache, transactor,
		service.PaymentParams{
			Custody:        custody,
			Treasury:       treasury,
			ProtocolFeeBps: 100,
			SlippageBps:    50,
		},
		log,
	)

	invoker := &fakeInvoker{}
	queries := service.NewQueryService(
		valuation, ledger, queryRepo, journal, cache, transactor, invoker,
		service.QueryParams{
			Engine:          custody,
			Custody:         custody,
			Treasury:        treasury,
			ProtocolFeeBps:  100,
			FulfillerFeeUsd: units(2),
			Timeout:         queryTimeout,
			CallbackBudget:  5 * time.Second,
			ChainID:         chainID,
		},
		log,
	)

	reporting := service.NewReportingService(journal, cache, log)

	// Asset, route, and merchant configuration shared by every flow.
	_, err := valuation.SetAsset(ctx, ports.SetAssetRequest{Asset: token, Feed: tokenFeed, Decimals: 18, Staleness: time.Hour})
	require.NoError(t, err)
	_, err = valuation.SetAsset(ctx, ports.SetAssetRequest{Asset: usdc, Feed: usdcFeed, Decimals: 18, Staleness: time.Hour})
	require.NoError(t, err)

	require.NoError(t, routes.SetPathToReference(ctx, token, route(token, refAsset)))
	require.NoError(t, routes.SetPathFromReference(ctx, usdc, route(refAsset, usdc)))

	_, err = payouts.SetMerchantConfig(ctx, ports.SetMerchantConfigRequest{
		Merchant:    merchant,
		PayoutAsset: usdc,
		Recipients: []domain.PayoutRecipient{
			{Address: recipA, ShareBps: 7000},
			{Address: recipB, ShareBps: 3000},
		},
	})
	require.NoError(t, err)
	require.NoError(t, payouts.SetItemFloor(ctx, merchant, 7, units(100)))

	return &engine{
		ledger:    ledger,
		invoker:   invoker,
		journal:   journal,
		valuation: valuation,
		routes:    routes,
		escrow:    escrow,
		payouts:   payouts,
		payments:  payments,
		queries:   queries,
		reporting: reporting,
	}
}
