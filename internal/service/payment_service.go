package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	swapDeadline       = 5 * time.Minute
	settlementCacheTTL = 24 * time.Hour
)

// PaymentParams holds the chain-level settlement parameters.
type PaymentParams struct {
	// Custody receives pulled funds and is the swap recipient.
	Custody common.Address
	// Treasury receives protocol fees.
	Treasury common.Address
	// FeeExemptAsset pays no protocol fee.
	FeeExemptAsset common.Address
	// ProtocolFeeBps is the protocol fee in basis points.
	ProtocolFeeBps uint32
	// SlippageBps widens the tolerated shortfall of a swap against its
	// oracle-quoted output. 0 accepts any output.
	SlippageBps uint32
}

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	valuation   ports.ValuationService
	routes      ports.RouteService
	escrow      ports.EscrowService
	payouts     ports.PayoutService
	tokens      ports.TokenService
	swapper     ports.SwapExecutor
	journalRepo ports.JournalRepository
	cache       ports.SettlementCache
	transactor  ports.DBTransactor
	params      PaymentParams
	log         zerolog.Logger

	// mu serializes every externally invoked operation, so a token or
	// callback reentering mid-settlement observes completed state only.
	mu sync.Mutex
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	valuation ports.ValuationService,
	routes ports.RouteService,
	escrow ports.EscrowService,
	payouts ports.PayoutService,
	tokens ports.TokenService,
	swapper ports.SwapExecutor,
	journalRepo ports.JournalRepository,
	cache ports.SettlementCache,
	transactor ports.DBTransactor,
	params PaymentParams,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		valuation:   valuation,
		routes:      routes,
		escrow:      escrow,
		payouts:     payouts,
		tokens:      tokens,
		swapper:     swapper,
		journalRepo: journalRepo,
		cache:       cache,
		transactor:  transactor,
		params:      params,
		log:         log,
	}
}

// ProcessImmediatePayment converts and forwards a payment in one step. The
// price floor is enforced on the value actually received in the payout asset.
func (s *PaymentServiceImpl) ProcessImmediatePayment(ctx context.Context, req ports.ImmediatePaymentRequest) (*domain.SettlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	merchantCfg, err := s.payouts.GetMerchantConfig(ctx, req.Merchant)
	if err != nil {
		return nil, err
	}

	received, err := s.pullFunds(ctx, req.Asset, req.Payer, req.Amount)
	if err != nil {
		return nil, err
	}
	if received.Sign() == 0 {
		return nil, apperror.ErrZeroAmountReceived()
	}

	fee := s.protocolFee(req.Asset, received)
	swapIn := new(big.Int).Sub(received, fee)

	out, err := s.convert(ctx, req.Asset, merchantCfg.PayoutAsset, swapIn)
	if err != nil {
		return nil, err
	}

	outUsd, err := s.valuation.ValueOf(ctx, merchantCfg.PayoutAsset, out)
	if err != nil {
		return nil, err
	}
	if err := s.checkFloor(ctx, req.Merchant, req.ItemID, outUsd); err != nil {
		return nil, err
	}

	if err := s.payouts.Distribute(ctx, req.Merchant, merchantCfg.PayoutAsset, out); err != nil {
		return nil, err
	}
	if err := s.payFee(ctx, req.Asset, fee); err != nil {
		return nil, err
	}

	rec := &domain.SettlementRecord{
		ID:           uuid.New(),
		Type:         domain.SettlementImmediate,
		Payer:        req.Payer,
		Recipient:    req.Merchant,
		SourceAsset:  req.Asset,
		SourceAmount: received,
		PayoutAsset:  merchantCfg.PayoutAsset,
		GrossAmount:  out,
		FeeAmount:    fee,
		NetAmount:    out,
		RefundAmount: big.NewInt(0),
		UsdValue:     outUsd,
		Callback:     domain.CallbackNone,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.recordSettlement(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("settlement_id", rec.ID.String()).
		Str("payer", req.Payer.Hex()).
		Str("merchant", req.Merchant.Hex()).
		Str("usd_value", outUsd.String()).
		Msg("immediate payment settled")
	return rec, nil
}

// AuthorizeEscrow pulls funds into custody and records an authorization. The
// price floor is enforced on the source-asset valuation at authorization time.
func (s *PaymentServiceImpl) AuthorizeEscrow(ctx context.Context, req ports.EscrowAuthorizeRequest) (*ports.EscrowAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if _, err := s.payouts.GetMerchantConfig(ctx, req.Merchant); err != nil {
		return nil, err
	}

	received, err := s.pullFunds(ctx, req.Asset, req.Payer, req.Amount)
	if err != nil {
		return nil, err
	}
	if received.Sign() == 0 {
		return nil, apperror.ErrZeroAmountReceived()
	}

	usd, err := s.valuation.ValueOf(ctx, req.Asset, received)
	if err != nil {
		return nil, err
	}
	if err := s.checkFloor(ctx, req.Merchant, req.ItemID, usd); err != nil {
		return nil, err
	}

	tx := domain.EscrowTransaction{
		Asset:     req.Asset,
		Amount:    received,
		Payer:     req.Payer,
		Recipient: req.Merchant,
	}

	var (
		nonce uint64
		hash  common.Hash
	)
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		var innerErr error
		nonce, hash, innerErr = s.escrow.Authorize(ctx, tx)
		if innerErr != nil {
			return innerErr
		}
		rec := &domain.SettlementRecord{
			ID:           uuid.New(),
			Type:         domain.SettlementEscrowAuthorize,
			Payer:        req.Payer,
			Recipient:    req.Merchant,
			SourceAsset:  req.Asset,
			SourceAmount: received,
			PayoutAsset:  req.Asset,
			GrossAmount:  received,
			FeeAmount:    big.NewInt(0),
			NetAmount:    big.NewInt(0),
			RefundAmount: big.NewInt(0),
			UsdValue:     usd,
			BindingHash:  hash,
			Callback:     domain.CallbackNone,
			CreatedAt:    time.Now().UTC(),
		}
		return s.journalRepo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("hash", hash.Hex()).
		Uint64("nonce", nonce).
		Str("usd_value", usd.String()).
		Msg("escrow payment authorized")
	return &ports.EscrowAuthorization{Transaction: tx, Nonce: nonce, Hash: hash}, nil
}

// SettleEscrow consumes an authorization, converts at most MaxUsd worth of
// the escrowed amount into the merchant's payout asset, and refunds the
// remainder to the payer in the source asset.
func (s *PaymentServiceImpl) SettleEscrow(ctx context.Context, req ports.EscrowSettleRequest) (*domain.SettlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount == nil || req.Amount.Sign() <= 0 || req.MaxUsd == nil || req.MaxUsd.Sign() < 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	tx := domain.EscrowTransaction{
		Asset:     req.Asset,
		Amount:    req.Amount,
		Payer:     req.Payer,
		Recipient: req.Merchant,
	}
	if err := s.escrow.Settle(ctx, tx, req.Hash); err != nil {
		return nil, err
	}

	merchantCfg, err := s.payouts.GetMerchantConfig(ctx, req.Merchant)
	if err != nil {
		return nil, err
	}

	escrowUsd, err := s.valuation.ValueOf(ctx, req.Asset, req.Amount)
	if err != nil {
		return nil, err
	}

	// Convert only the capped portion; the rest goes back to the payer.
	spendUsd := new(big.Int).Set(escrowUsd)
	if spendUsd.Cmp(req.MaxUsd) > 0 {
		spendUsd.Set(req.MaxUsd)
	}
	spend, err := s.valuation.AmountFor(ctx, req.Asset, spendUsd)
	if err != nil {
		return nil, err
	}
	if spend.Cmp(req.Amount) > 0 {
		spend.Set(req.Amount)
	}

	// The refund goes out only after the conversion succeeds.
	out, err := s.convert(ctx, req.Asset, merchantCfg.PayoutAsset, spend)
	if err != nil {
		return nil, err
	}

	refund := new(big.Int).Sub(req.Amount, spend)
	if refund.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, req.Asset, req.Payer, refund); err != nil {
			return nil, apperror.ErrTransferFailed(fmt.Errorf("refund payer: %w", err))
		}
	}

	fee := s.protocolFee(merchantCfg.PayoutAsset, out)
	net := new(big.Int).Sub(out, fee)

	if err := s.payouts.Distribute(ctx, req.Merchant, merchantCfg.PayoutAsset, net); err != nil {
		return nil, err
	}
	if err := s.payFee(ctx, merchantCfg.PayoutAsset, fee); err != nil {
		return nil, err
	}

	rec := &domain.SettlementRecord{
		ID:           uuid.New(),
		Type:         domain.SettlementEscrowSettle,
		Payer:        req.Payer,
		Recipient:    req.Merchant,
		SourceAsset:  req.Asset,
		SourceAmount: req.Amount,
		PayoutAsset:  merchantCfg.PayoutAsset,
		GrossAmount:  out,
		FeeAmount:    fee,
		NetAmount:    net,
		RefundAmount: refund,
		UsdValue:     spendUsd,
		BindingHash:  req.Hash,
		Callback:     domain.CallbackNone,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.recordSettlement(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("settlement_id", rec.ID.String()).
		Str("hash", req.Hash.Hex()).
		Str("spend_usd", spendUsd.String()).
		Str("refund", refund.String()).
		Msg("escrow payment settled")
	return rec, nil
}

// pullFunds moves amount of asset from payer into custody and returns the
// measured balance delta, so fee-on-transfer tokens settle what arrived, not
// what was asked for.
func (s *PaymentServiceImpl) pullFunds(ctx context.Context, asset, payer common.Address, amount *big.Int) (*big.Int, error) {
	before, err := s.tokens.BalanceOf(ctx, asset, s.params.Custody)
	if err != nil {
		return nil, apperror.ErrTransferFailed(fmt.Errorf("custody balance: %w", err))
	}
	if err := s.tokens.TransferFrom(ctx, asset, payer, s.params.Custody, amount); err != nil {
		return nil, apperror.ErrTransferFailed(fmt.Errorf("pull funds: %w", err))
	}
	after, err := s.tokens.BalanceOf(ctx, asset, s.params.Custody)
	if err != nil {
		return nil, apperror.ErrTransferFailed(fmt.Errorf("custody balance: %w", err))
	}
	return new(big.Int).Sub(after, before), nil
}

// convert routes amountIn from source to target through the stored paths. A
// degenerate same-asset route moves nothing and returns amountIn unchanged.
func (s *PaymentServiceImpl) convert(ctx context.Context, source, target common.Address, amountIn *big.Int) (*big.Int, error) {
	if amountIn.Sign() == 0 {
		return big.NewInt(0), nil
	}
	route, err := s.routes.ComposeRoute(ctx, source, target)
	if err != nil {
		return nil, err
	}
	if route.IsSingleAsset() {
		return amountIn, nil
	}

	minOut, err := s.minAmountOut(ctx, source, target, amountIn)
	if err != nil {
		return nil, err
	}
	out, err := s.swapper.SwapExactInput(ctx, route, s.params.Custody, time.Now().Add(swapDeadline), amountIn, minOut)
	if err != nil {
		return nil, apperror.ErrSwapExecutionFailed(err)
	}
	return out, nil
}

// minAmountOut derives the swap's output floor from the oracle quote. With
// SlippageBps of 0 any output is accepted.
func (s *PaymentServiceImpl) minAmountOut(ctx context.Context, source, target common.Address, amountIn *big.Int) (*big.Int, error) {
	if s.params.SlippageBps == 0 {
		return big.NewInt(0), nil
	}
	usd, err := s.valuation.ValueOf(ctx, source, amountIn)
	if err != nil {
		return nil, err
	}
	expected, err := s.valuation.AmountFor(ctx, target, usd)
	if err != nil {
		return nil, err
	}
	minOut := new(big.Int).Mul(expected, big.NewInt(int64(domain.PercentDenominator-s.params.SlippageBps)))
	return minOut.Div(minOut, big.NewInt(int64(domain.PercentDenominator))), nil
}

func (s *PaymentServiceImpl) protocolFee(asset common.Address, amount *big.Int) *big.Int {
	if asset == s.params.FeeExemptAsset || s.params.ProtocolFeeBps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(s.params.ProtocolFeeBps)))
	return fee.Div(fee, big.NewInt(int64(domain.PercentDenominator)))
}

func (s *PaymentServiceImpl) payFee(ctx context.Context, asset common.Address, fee *big.Int) error {
	if fee.Sign() == 0 {
		return nil
	}
	if err := s.tokens.Transfer(ctx, asset, s.params.Treasury, fee); err != nil {
		return apperror.ErrTransferFailed(fmt.Errorf("fee to treasury: %w", err))
	}
	return nil
}

func (s *PaymentServiceImpl) checkFloor(ctx context.Context, merchant common.Address, itemID uint64, usd *big.Int) error {
	floor, err := s.payouts.GetItemFloor(ctx, merchant, itemID)
	if err != nil {
		return err
	}
	if usd.Cmp(floor) < 0 {
		s.log.Warn().
			Str("merchant", merchant.Hex()).
			Uint64("item_id", itemID).
			Str("usd_value", usd.String()).
			Str("floor_usd", floor.String()).
			Msg("payment below price floor")
		return apperror.ErrInsufficientPayment()
	}
	return nil
}

// recordSettlement persists the journal entry and caches it best-effort.
func (s *PaymentServiceImpl) recordSettlement(ctx context.Context, rec *domain.SettlementRecord) error {
	if err := s.journalRepo.Create(ctx, rec); err != nil {
		return apperror.ErrStorageError(fmt.Errorf("journal settlement: %w", err))
	}
	if data, err := json.Marshal(rec); err == nil {
		if err := s.cache.Set(ctx, rec.ID.String(), data, settlementCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("settlement_id", rec.ID.String()).Msg("settlement cache write failed")
		}
	}
	return nil
}
