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

// QueryParams holds the query lifecycle parameters.
type QueryParams struct {
	// Engine is the settlement engine's own identity, bound into every
	// query hash.
	Engine common.Address
	// Custody receives escrowed query payments.
	Custody common.Address
	// Treasury receives protocol fees.
	Treasury common.Address
	// FeeExemptAsset pays no protocol fee.
	FeeExemptAsset common.Address
	// ProtocolFeeBps is the protocol fee in basis points.
	ProtocolFeeBps uint32
	// FulfillerFeeUsd is the flat fulfillment fee in 18-decimal USD.
	FulfillerFeeUsd *big.Int
	// Timeout is how long a query stays pending before it can be canceled.
	Timeout time.Duration
	// CallbackBudget bounds the best-effort result delivery.
	CallbackBudget time.Duration
	// ChainID is bound into every query hash.
	ChainID uint64
}

// QueryServiceImpl implements ports.QueryService. Fulfillment and
// cancellation race for the same record; whichever deletes it first wins and
// the loser fails with a not-found error.
type QueryServiceImpl struct {
	valuation   ports.ValuationService
	tokens      ports.TokenService
	queryRepo   ports.QueryRepository
	journalRepo ports.JournalRepository
	cache       ports.SettlementCache
	transactor  ports.DBTransactor
	invoker     ports.CallbackInvoker
	params      QueryParams
	log         zerolog.Logger

	mu sync.Mutex
}

// NewQueryService creates a new QueryServiceImpl.
func NewQueryService(
	valuation ports.ValuationService,
	tokens ports.TokenService,
	queryRepo ports.QueryRepository,
	journalRepo ports.JournalRepository,
	cache ports.SettlementCache,
	transactor ports.DBTransactor,
	invoker ports.CallbackInvoker,
	params QueryParams,
	log zerolog.Logger,
) *QueryServiceImpl {
	return &QueryServiceImpl{
		valuation:   valuation,
		tokens:      tokens,
		queryRepo:   queryRepo,
		journalRepo: journalRepo,
		cache:       cache,
		transactor:  transactor,
		invoker:     invoker,
		params:      params,
		log:         log,
	}
}

// SubmitQuery escrows the payment and persists the pending record under its
// binding hash.
func (s *QueryServiceImpl) SubmitQuery(ctx context.Context, req ports.SubmitQueryRequest) (*ports.QuerySubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.RequestDigest == (common.Hash{}) {
		return nil, apperror.Validation("request digest cannot be zero")
	}

	// The payment asset must be priceable now, or fulfillment could never
	// compute a payout later.
	usd, err := s.valuation.ValueOf(ctx, req.Asset, req.Amount)
	if err != nil {
		return nil, err
	}

	received, err := s.pullFunds(ctx, req.Asset, req.Client, req.Amount)
	if err != nil {
		return nil, err
	}
	if received.Sign() == 0 {
		return nil, apperror.ErrZeroAmountReceived()
	}

	nonce, err := s.queryRepo.NextNonce(ctx)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("allocate query nonce: %w", err))
	}

	payment := domain.QueryPayment{
		Client:        req.Client,
		Asset:         req.Asset,
		Amount:        received,
		RequestDigest: req.RequestDigest,
	}
	hash := payment.BindingHash(s.params.ChainID, s.params.Engine, nonce)

	rec := &domain.QueryRecord{
		Hash:          hash,
		Client:        req.Client,
		Asset:         req.Asset,
		Amount:        received,
		RequestDigest: req.RequestDigest,
		Nonce:         nonce,
		CallbackURL:   req.CallbackURL,
		SubmittedAt:   time.Now().UTC(),
		Timeout:       s.params.Timeout,
	}
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.queryRepo.Create(ctx, rec); err != nil {
			return apperror.ErrStorageError(fmt.Errorf("create query record: %w", err))
		}
		return s.journalRepo.Create(ctx, &domain.SettlementRecord{
			ID:           uuid.New(),
			Type:         domain.SettlementQuerySubmit,
			Payer:        req.Client,
			Recipient:    s.params.Engine,
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
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("hash", hash.Hex()).
		Uint64("nonce", nonce).
		Str("client", req.Client.Hex()).
		Msg("query submitted")
	return &ports.QuerySubmission{Hash: hash, Nonce: nonce, Record: rec}, nil
}

func (s *QueryServiceImpl) GetQuery(ctx context.Context, hash common.Hash) (*domain.QueryRecord, error) {
	rec, err := s.queryRepo.Get(ctx, hash)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get query record: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrQueryNotFound()
	}
	return rec, nil
}

// CancelExpiredQuery refunds the full escrowed amount once the timeout has
// passed. The record is deleted before any funds move; a second cancel, or a
// concurrent fulfillment, finds nothing.
func (s *QueryServiceImpl) CancelExpiredQuery(ctx context.Context, hash common.Hash) (*domain.SettlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.queryRepo.Get(ctx, hash)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get query record: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrQueryNotFound()
	}
	if !rec.Expired(time.Now()) {
		return nil, apperror.ErrQueryTimeoutNotReached()
	}

	journal := &domain.SettlementRecord{
		ID:           uuid.New(),
		Type:         domain.SettlementQueryCancel,
		Payer:        rec.Client,
		Recipient:    rec.Client,
		SourceAsset:  rec.Asset,
		SourceAmount: rec.Amount,
		PayoutAsset:  rec.Asset,
		GrossAmount:  big.NewInt(0),
		FeeAmount:    big.NewInt(0),
		NetAmount:    big.NewInt(0),
		RefundAmount: rec.Amount,
		UsdValue:     big.NewInt(0),
		BindingHash:  hash,
		Callback:     domain.CallbackNone,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.queryRepo.Delete(ctx, hash); err != nil {
			return apperror.ErrStorageError(fmt.Errorf("delete query record: %w", err))
		}
		return s.journalRepo.Create(ctx, journal)
	})
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Transfer(ctx, rec.Asset, rec.Client, rec.Amount); err != nil {
		return nil, apperror.ErrTransferFailed(fmt.Errorf("refund query payment: %w", err))
	}

	s.log.Info().
		Str("hash", hash.Hex()).
		Str("client", rec.Client.Hex()).
		Str("refund", rec.Amount.String()).
		Msg("expired query canceled")
	return journal, nil
}

// FulfillQuery pays the fulfiller its measured cost plus the flat fee, capped
// at the escrowed amount, refunds the remainder to the client, and delivers
// the result best-effort.
func (s *QueryServiceImpl) FulfillQuery(ctx context.Context, req ports.FulfillQueryRequest) (*domain.SettlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.GasCostUsd == nil || req.GasCostUsd.Sign() < 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	rec, err := s.queryRepo.Get(ctx, req.Hash)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get query record: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrQueryNotFound()
	}

	payoutUsd := new(big.Int).Add(req.GasCostUsd, s.params.FulfillerFeeUsd)
	payout, err := s.valuation.AmountFor(ctx, rec.Asset, payoutUsd)
	if err != nil {
		return nil, err
	}
	if payout.Cmp(rec.Amount) > 0 {
		payout.Set(rec.Amount)
	}
	refund := new(big.Int).Sub(rec.Amount, payout)

	fee := s.protocolFee(rec.Asset, payout)
	net := new(big.Int).Sub(payout, fee)

	// Delete before any transfer so a reentrant call cannot fulfill twice.
	if err := s.queryRepo.Delete(ctx, req.Hash); err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("delete query record: %w", err))
	}

	if net.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, rec.Asset, req.Fulfiller, net); err != nil {
			return nil, apperror.ErrTransferFailed(fmt.Errorf("pay fulfiller: %w", err))
		}
	}
	if fee.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, rec.Asset, s.params.Treasury, fee); err != nil {
			return nil, apperror.ErrTransferFailed(fmt.Errorf("fee to treasury: %w", err))
		}
	}
	if refund.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, rec.Asset, rec.Client, refund); err != nil {
			return nil, apperror.ErrTransferFailed(fmt.Errorf("refund client: %w", err))
		}
	}

	callback := s.deliverResult(ctx, rec, req.Result)

	journal := &domain.SettlementRecord{
		ID:           uuid.New(),
		Type:         domain.SettlementQueryFulfill,
		Payer:        rec.Client,
		Recipient:    req.Fulfiller,
		SourceAsset:  rec.Asset,
		SourceAmount: rec.Amount,
		PayoutAsset:  rec.Asset,
		GrossAmount:  payout,
		FeeAmount:    fee,
		NetAmount:    net,
		RefundAmount: refund,
		UsdValue:     payoutUsd,
		BindingHash:  req.Hash,
		Callback:     callback,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.journalRepo.Create(ctx, journal); err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("journal fulfillment: %w", err))
	}
	if data, err := json.Marshal(journal); err == nil {
		if err := s.cache.Set(ctx, journal.ID.String(), data, settlementCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("settlement_id", journal.ID.String()).Msg("settlement cache write failed")
		}
	}

	s.log.Info().
		Str("hash", req.Hash.Hex()).
		Str("fulfiller", req.Fulfiller.Hex()).
		Str("payout_usd", payoutUsd.String()).
		Str("callback", string(callback)).
		Msg("query fulfilled")
	return journal, nil
}

// deliverResult invokes the client callback under the configured budget.
// Delivery failure is an outcome, not an error; the settlement stands.
func (s *QueryServiceImpl) deliverResult(ctx context.Context, rec *domain.QueryRecord, result []byte) domain.CallbackStatus {
	if rec.CallbackURL == "" {
		return domain.CallbackNone
	}

	cbCtx, cancel := context.WithTimeout(ctx, s.params.CallbackBudget)
	defer cancel()

	err := s.invoker.Invoke(cbCtx, ports.CallbackRequest{
		URL:           rec.CallbackURL,
		Client:        rec.Client,
		QueryHash:     rec.Hash,
		RequestDigest: rec.RequestDigest,
		Result:        result,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("hash", rec.Hash.Hex()).Str("url", rec.CallbackURL).Msg("result callback failed")
		return domain.CallbackFailed
	}
	return domain.CallbackDelivered
}

func (s *QueryServiceImpl) pullFunds(ctx context.Context, asset, payer common.Address, amount *big.Int) (*big.Int, error) {
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

func (s *QueryServiceImpl) protocolFee(asset common.Address, amount *big.Int) *big.Int {
	if asset == s.params.FeeExemptAsset || s.params.ProtocolFeeBps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(s.params.ProtocolFeeBps)))
	return fee.Div(fee, big.NewInt(int64(domain.PercentDenominator)))
}
