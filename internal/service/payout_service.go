package service

import (
	"context"
	"fmt"
	"math/big"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// PayoutServiceImpl implements ports.PayoutService.
type PayoutServiceImpl struct {
	merchantRepo ports.MerchantRepository
	tokens       ports.TokenService
	log          zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	merchantRepo ports.MerchantRepository,
	tokens ports.TokenService,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		merchantRepo: merchantRepo,
		tokens:       tokens,
		log:          log,
	}
}

// SetMerchantConfig validates the split and persists it.
func (s *PayoutServiceImpl) SetMerchantConfig(ctx context.Context, req ports.SetMerchantConfigRequest) (*domain.MerchantConfig, error) {
	if err := validateRecipients(req.Recipients); err != nil {
		return nil, err
	}

	cfg := &domain.MerchantConfig{
		Merchant:    req.Merchant,
		PayoutAsset: req.PayoutAsset,
		Recipients:  req.Recipients,
	}
	if err := s.merchantRepo.Upsert(ctx, cfg); err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("upsert merchant config: %w", err))
	}

	s.log.Info().
		Str("merchant", req.Merchant.Hex()).
		Str("payout_asset", req.PayoutAsset.Hex()).
		Int("recipients", len(req.Recipients)).
		Msg("merchant payout configured")
	return cfg, nil
}

func (s *PayoutServiceImpl) GetMerchantConfig(ctx context.Context, merchant common.Address) (*domain.MerchantConfig, error) {
	cfg, err := s.merchantRepo.Get(ctx, merchant)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get merchant config: %w", err))
	}
	if cfg == nil {
		return nil, apperror.ErrMerchantNotConfigured()
	}
	return cfg, nil
}

func (s *PayoutServiceImpl) SetItemFloor(ctx context.Context, merchant common.Address, itemID uint64, floorUsd *big.Int) error {
	if floorUsd == nil || floorUsd.Sign() < 0 {
		return apperror.ErrInvalidAmount()
	}
	floor := &domain.ItemFloor{Merchant: merchant, ItemID: itemID, FloorUsd: floorUsd}
	if err := s.merchantRepo.SetItemFloor(ctx, floor); err != nil {
		return apperror.ErrStorageError(fmt.Errorf("set item floor: %w", err))
	}
	s.log.Info().
		Str("merchant", merchant.Hex()).
		Uint64("item_id", itemID).
		Str("floor_usd", floorUsd.String()).
		Msg("item floor set")
	return nil
}

func (s *PayoutServiceImpl) GetItemFloor(ctx context.Context, merchant common.Address, itemID uint64) (*big.Int, error) {
	floor, err := s.merchantRepo.GetItemFloor(ctx, merchant, itemID)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get item floor: %w", err))
	}
	return floor, nil
}

// Distribute transfers amount of asset across the merchant's split. Each
// recipient receives the floor of its proportional share; the final recipient
// receives the remainder, so the transfers sum to exactly amount.
func (s *PayoutServiceImpl) Distribute(ctx context.Context, merchant common.Address, asset common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return apperror.ErrInvalidAmount()
	}
	if amount.Sign() == 0 {
		return nil
	}

	cfg, err := s.merchantRepo.Get(ctx, merchant)
	if err != nil {
		return apperror.ErrStorageError(fmt.Errorf("get merchant config: %w", err))
	}
	if cfg == nil {
		return apperror.ErrMerchantNotConfigured()
	}

	remaining := new(big.Int).Set(amount)
	for i, r := range cfg.Recipients {
		share := r.ShareOf(amount)
		if i == len(cfg.Recipients)-1 {
			share = new(big.Int).Set(remaining)
		}
		if share.Sign() == 0 {
			continue
		}
		if err := s.tokens.Transfer(ctx, asset, r.Address, share); err != nil {
			return apperror.ErrTransferFailed(fmt.Errorf("payout to %s: %w", r.Address.Hex(), err))
		}
		remaining.Sub(remaining, share)
	}

	s.log.Info().
		Str("merchant", merchant.Hex()).
		Str("asset", asset.Hex()).
		Str("amount", amount.String()).
		Int("recipients", len(cfg.Recipients)).
		Msg("payout distributed")
	return nil
}

// validateRecipients enforces the split rules shared by config writes and
// parallel-array admin input.
func validateRecipients(recipients []domain.PayoutRecipient) error {
	if len(recipients) == 0 {
		return apperror.ErrNoPayoutRecipients()
	}
	var sum uint64
	for _, r := range recipients {
		if r.Address == (common.Address{}) {
			return apperror.ErrPayoutAddressCannotBeZero()
		}
		if r.ShareBps == 0 {
			return apperror.ErrZeroPayoutPercentage()
		}
		sum += uint64(r.ShareBps)
	}
	if sum != uint64(domain.PercentDenominator) {
		return apperror.ErrInvalidPayoutPercentageSum()
	}
	return nil
}
