package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"cross-asset-gateway/internal/adapter/storage/memory"
	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/internal/core/ports/mocks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeTokens is a balance ledger standing in for the chain token adapter.
// Balances may go negative; tests assert on the resulting deltas.
type fakeTokens struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{balances: make(map[common.Address]map[common.Address]*big.Int)}
}

func (f *fakeTokens) balance(asset, account common.Address) *big.Int {
	if f.balances[asset] == nil {
		f.balances[asset] = make(map[common.Address]*big.Int)
	}
	if f.balances[asset][account] == nil {
		f.balances[asset][account] = big.NewInt(0)
	}
	return f.balances[asset][account]
}

func (f *fakeTokens) mint(asset, account common.Address, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance(asset, account).Add(f.balance(asset, account), big.NewInt(amount))
}

func (f *fakeTokens) balanceOf(asset, account common.Address) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance(asset, account).Int64()
}

func (f *fakeTokens) BalanceOf(ctx context.Context, asset, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.balance(asset, account)), nil
}

func (f *fakeTokens) TransferFrom(ctx context.Context, asset, from, to common.Address, amount *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance(asset, from).Sub(f.balance(asset, from), amount)
	f.balance(asset, to).Add(f.balance(asset, to), amount)
	return nil
}

func (f *fakeTokens) Transfer(ctx context.Context, asset, to common.Address, amount *big.Int) error {
	return f.TransferFrom(ctx, asset, custodyAddr, to, amount)
}

var (
	custodyAddr  = testAddr(0xA0)
	treasuryAddr = testAddr(0xA1)
	refAsset     = testAddr(0x09)
	srcAsset     = testAddr(0x01)
	payoutAsset  = testAddr(0x02)
	srcFeed      = testAddr(0x11)
	payoutFeed   = testAddr(0x12)
	payerAddr    = testAddr(0x20)
	merchantAddr = testAddr(0x30)
	recipAddr    = testAddr(0x31)
)

type orchestratorTestDeps struct {
	svc     *PaymentServiceImpl
	tokens  *fakeTokens
	swapper *mocks.MockSwapExecutor
	journal *memory.JournalRepo
	escrow  *EscrowServiceImpl
	payouts *PayoutServiceImpl
	ctrl    *gomock.Controller
}

// setupOrchestrator wires the orchestrator over real services, memory repos
// and a fake token ledger. Both assets are 6-decimal tokens priced at $1.
func setupOrchestrator(t *testing.T) *orchestratorTestDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	feed := mocks.NewMockPriceFeed(ctrl)
	feed.EXPECT().LatestRoundData(gomock.Any()).Return(freshRound(bigPow(1, 8)), nil).AnyTimes()
	feed.EXPECT().Decimals(gomock.Any()).Return(uint8(8), nil).AnyTimes()
	feeds := mocks.NewMockFeedProvider(ctrl)
	feeds.EXPECT().Feed(gomock.Any()).Return(feed).AnyTimes()

	assetRepo := memory.NewAssetRepo()
	for _, a := range []common.Address{srcAsset, payoutAsset} {
		feedAddr := srcFeed
		if a == payoutAsset {
			feedAddr = payoutFeed
		}
		require.NoError(t, assetRepo.Upsert(ctx, &domain.AssetConfig{
			Asset: a, Feed: feedAddr, Decimals: 6, Staleness: time.Hour,
		}))
	}

	tokens := newFakeTokens()
	valuation := NewValuationService(assetRepo, feeds, zerolog.Nop())
	routes := NewRouteService(memory.NewPathRepo(), refAsset, zerolog.Nop())
	escrow := NewEscrowService(memory.NewEscrowRepo(), memory.NewConsumedHashStore(), testChainID, zerolog.Nop())
	payouts := NewPayoutService(memory.NewMerchantRepo(), tokens, zerolog.Nop())
	journal := memory.NewJournalRepo()
	swapper := mocks.NewMockSwapExecutor(ctrl)

	require.NoError(t, routes.SetPathToReference(ctx, srcAsset, routePath(srcAsset, refAsset)))
	require.NoError(t, routes.SetPathFromReference(ctx, payoutAsset, routePath(refAsset, payoutAsset)))

	_, err := payouts.SetMerchantConfig(ctx, ports.SetMerchantConfigRequest{
		Merchant:    merchantAddr,
		PayoutAsset: payoutAsset,
		Recipients:  []domain.PayoutRecipient{{Address: recipAddr, ShareBps: 10000}},
	})
	require.NoError(t, err)

	svc := NewPaymentService(
		valuation, routes, escrow, payouts, tokens, swapper,
		journal, memory.NewSettlementCache(), memory.NewTransactor(),
		PaymentParams{
			Custody:        custodyAddr,
			Treasury:       treasuryAddr,
			FeeExemptAsset: refAsset,
			ProtocolFeeBps: 100, // 1%
		},
		zerolog.Nop(),
	)
	return &orchestratorTestDeps{
		svc:     svc,
		tokens:  tokens,
		swapper: swapper,
		journal: journal,
		escrow:  escrow,
		payouts: payouts,
		ctrl:    ctrl,
	}
}

func TestPaymentService_ProcessImmediatePayment_Success(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 100_000000)

	// 99 source units in after 1% fee, 1:1 swap out
	d.swapper.EXPECT().
		SwapExactInput(gomock.Any(), gomock.Any(), custodyAddr, gomock.Any(), big.NewInt(99_000000), big.NewInt(0)).
		DoAndReturn(func(ctx context.Context, path domain.SwapPath, recipient common.Address, deadline time.Time, amountIn, minOut *big.Int) (*big.Int, error) {
			d.tokens.mint(payoutAsset, custodyAddr, amountIn.Int64())
			d.tokens.mint(srcAsset, custodyAddr, -amountIn.Int64())
			return new(big.Int).Set(amountIn), nil
		})

	rec, err := d.svc.ProcessImmediatePayment(ctx, ports.ImmediatePaymentRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(100_000000),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SettlementImmediate, rec.Type)
	assert.Equal(t, int64(99_000000), rec.NetAmount.Int64())
	assert.Equal(t, int64(1_000000), rec.FeeAmount.Int64())
	assert.Zero(t, bigPow(99, 18).Cmp(rec.UsdValue))

	// recipient got the full swap output, treasury the source-asset fee
	assert.Equal(t, int64(99_000000), d.tokens.balanceOf(payoutAsset, recipAddr))
	assert.Equal(t, int64(1_000000), d.tokens.balanceOf(srcAsset, treasuryAddr))
	assert.Equal(t, int64(0), d.tokens.balanceOf(srcAsset, payerAddr))

	// journaled
	stored, err := d.journal.GetByID(ctx, rec.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestPaymentService_ProcessImmediatePayment_SameAssetNoSwap(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(payoutAsset, payerAddr, 10_000000)

	// payout asset in, payout asset out: the swapper is never touched
	rec, err := d.svc.ProcessImmediatePayment(ctx, ports.ImmediatePaymentRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    payoutAsset,
		Amount:   big.NewInt(10_000000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9_900000), rec.NetAmount.Int64())
	assert.Equal(t, int64(9_900000), d.tokens.balanceOf(payoutAsset, recipAddr))
}

func TestPaymentService_ProcessImmediatePayment_BelowFloor(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	// floor $200, payment worth ~$9.9 after fee
	require.NoError(t, d.payouts.SetItemFloor(ctx, merchantAddr, 1, bigPow(200, 18)))
	d.tokens.mint(payoutAsset, payerAddr, 10_000000)

	_, err := d.svc.ProcessImmediatePayment(ctx, ports.ImmediatePaymentRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    payoutAsset,
		Amount:   big.NewInt(10_000000),
	})
	assertAppError(t, err, "PAY_001")
}

func TestPaymentService_ProcessImmediatePayment_InvalidAmount(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()

	_, err := d.svc.ProcessImmediatePayment(context.Background(), ports.ImmediatePaymentRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		Asset:    srcAsset,
		Amount:   big.NewInt(0),
	})
	assertAppError(t, err, "PAY_003")
}

func TestPaymentService_ProcessImmediatePayment_UnknownMerchant(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()

	_, err := d.svc.ProcessImmediatePayment(context.Background(), ports.ImmediatePaymentRequest{
		Payer:    payerAddr,
		Merchant: testAddr(0x77),
		Asset:    srcAsset,
		Amount:   big.NewInt(1_000000),
	})
	assertAppError(t, err, "PAY_002")
}

func TestPaymentService_AuthorizeEscrow_Success(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 50_000000)

	auth, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(50_000000),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), auth.Nonce)
	assert.Equal(t, auth.Transaction.BindingHash(1, testChainID), auth.Hash)

	// funds held in custody, nothing distributed yet
	assert.Equal(t, int64(50_000000), d.tokens.balanceOf(srcAsset, custodyAddr))
	assert.Equal(t, int64(0), d.tokens.balanceOf(payoutAsset, recipAddr))

	nonce, err := d.escrow.NonceOf(ctx, auth.Hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestPaymentService_AuthorizeEscrow_BelowFloor(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	// escrow floor is checked on the source-asset valuation before any swap
	require.NoError(t, d.payouts.SetItemFloor(ctx, merchantAddr, 7, bigPow(100, 18)))
	d.tokens.mint(srcAsset, payerAddr, 50_000000)

	_, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   7,
		Asset:    srcAsset,
		Amount:   big.NewInt(50_000000), // $50 < $100 floor
	})
	assertAppError(t, err, "PAY_001")
}

func TestPaymentService_SettleEscrow_PartialWithRefund(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 100_000000)
	auth, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(100_000000),
	})
	require.NoError(t, err)

	d.swapper.EXPECT().
		SwapExactInput(gomock.Any(), gomock.Any(), custodyAddr, gomock.Any(), big.NewInt(60_000000), big.NewInt(0)).
		DoAndReturn(func(ctx context.Context, path domain.SwapPath, recipient common.Address, deadline time.Time, amountIn, minOut *big.Int) (*big.Int, error) {
			d.tokens.mint(payoutAsset, custodyAddr, amountIn.Int64())
			d.tokens.mint(srcAsset, custodyAddr, -amountIn.Int64())
			return new(big.Int).Set(amountIn), nil
		})

	// settle only $60 of the $100 escrow
	rec, err := d.svc.SettleEscrow(ctx, ports.EscrowSettleRequest{
		Hash:     auth.Hash,
		Payer:    payerAddr,
		Merchant: merchantAddr,
		Asset:    srcAsset,
		Amount:   auth.Transaction.Amount,
		MaxUsd:   bigPow(60, 18),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SettlementEscrowSettle, rec.Type)
	assert.Equal(t, int64(40_000000), rec.RefundAmount.Int64())
	assert.Zero(t, bigPow(60, 18).Cmp(rec.UsdValue))

	// payer refunded in the source asset, merchant paid net of the 1% fee
	assert.Equal(t, int64(40_000000), d.tokens.balanceOf(srcAsset, payerAddr))
	assert.Equal(t, int64(59_400000), d.tokens.balanceOf(payoutAsset, recipAddr))
	assert.Equal(t, int64(600000), d.tokens.balanceOf(payoutAsset, treasuryAddr))
}

func TestPaymentService_SettleEscrow_SwapFailureHoldsRefund(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 100_000000)
	auth, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(100_000000),
	})
	require.NoError(t, err)

	d.swapper.EXPECT().
		SwapExactInput(gomock.Any(), gomock.Any(), custodyAddr, gomock.Any(), big.NewInt(60_000000), big.NewInt(0)).
		Return(nil, errors.New("router reverted"))

	_, err = d.svc.SettleEscrow(ctx, ports.EscrowSettleRequest{
		Hash:     auth.Hash,
		Payer:    payerAddr,
		Merchant: merchantAddr,
		Asset:    srcAsset,
		Amount:   auth.Transaction.Amount,
		MaxUsd:   bigPow(60, 18),
	})
	require.Error(t, err)

	// the refund never left custody ahead of the failed swap
	assert.Equal(t, int64(0), d.tokens.balanceOf(srcAsset, payerAddr))
	assert.Equal(t, int64(100_000000), d.tokens.balanceOf(srcAsset, custodyAddr))
}

func TestPaymentService_SettleEscrow_FullNoRefund(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 100_000000)
	auth, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(100_000000),
	})
	require.NoError(t, err)

	d.swapper.EXPECT().
		SwapExactInput(gomock.Any(), gomock.Any(), custodyAddr, gomock.Any(), big.NewInt(100_000000), big.NewInt(0)).
		DoAndReturn(func(ctx context.Context, path domain.SwapPath, recipient common.Address, deadline time.Time, amountIn, minOut *big.Int) (*big.Int, error) {
			return new(big.Int).Set(amountIn), nil
		})

	rec, err := d.svc.SettleEscrow(ctx, ports.EscrowSettleRequest{
		Hash:     auth.Hash,
		Payer:    payerAddr,
		Merchant: merchantAddr,
		Asset:    srcAsset,
		Amount:   auth.Transaction.Amount,
		MaxUsd:   bigPow(500, 18), // cap above the escrow value
	})
	require.NoError(t, err)
	assert.Zero(t, rec.RefundAmount.Sign())
	assert.Equal(t, int64(0), d.tokens.balanceOf(srcAsset, payerAddr))
}

func TestPaymentService_SettleEscrow_ReplayFails(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 100_000000)
	auth, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(100_000000),
	})
	require.NoError(t, err)

	d.swapper.EXPECT().
		SwapExactInput(gomock.Any(), gomock.Any(), custodyAddr, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path domain.SwapPath, recipient common.Address, deadline time.Time, amountIn, minOut *big.Int) (*big.Int, error) {
			return new(big.Int).Set(amountIn), nil
		})

	req := ports.EscrowSettleRequest{
		Hash:     auth.Hash,
		Payer:    payerAddr,
		Merchant: merchantAddr,
		Asset:    srcAsset,
		Amount:   auth.Transaction.Amount,
		MaxUsd:   bigPow(500, 18),
	}
	_, err = d.svc.SettleEscrow(ctx, req)
	require.NoError(t, err)

	_, err = d.svc.SettleEscrow(ctx, req)
	assertAppError(t, err, "ESC_001")
}

func TestPaymentService_SettleEscrow_TamperedAmount(t *testing.T) {
	d := setupOrchestrator(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.tokens.mint(srcAsset, payerAddr, 100_000000)
	auth, err := d.svc.AuthorizeEscrow(ctx, ports.EscrowAuthorizeRequest{
		Payer:    payerAddr,
		Merchant: merchantAddr,
		ItemID:   1,
		Asset:    srcAsset,
		Amount:   big.NewInt(100_000000),
	})
	require.NoError(t, err)

	_, err = d.svc.SettleEscrow(ctx, ports.EscrowSettleRequest{
		Hash:     auth.Hash,
		Payer:    payerAddr,
		Merchant: merchantAddr,
		Asset:    srcAsset,
		Amount:   big.NewInt(999_000000),
		MaxUsd:   bigPow(500, 18),
	})
	assertAppError(t, err, "ESC_002")
}
