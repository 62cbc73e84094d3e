package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// maxValueBits bounds every conversion result. A value that does not fit is
// an error, never a silent truncation.
const maxValueBits = 256

// ValuationServiceImpl implements ports.ValuationService.
type ValuationServiceImpl struct {
	assetRepo ports.AssetRepository
	feeds     ports.FeedProvider
	log       zerolog.Logger
}

// NewValuationService creates a new ValuationServiceImpl.
func NewValuationService(
	assetRepo ports.AssetRepository,
	feeds ports.FeedProvider,
	log zerolog.Logger,
) *ValuationServiceImpl {
	return &ValuationServiceImpl{
		assetRepo: assetRepo,
		feeds:     feeds,
		log:       log,
	}
}

// SetAsset validates the feed by querying it once, requiring a complete
// round, then persists the config.
func (s *ValuationServiceImpl) SetAsset(ctx context.Context, req ports.SetAssetRequest) (*domain.AssetConfig, error) {
	if req.Feed == (common.Address{}) {
		return nil, apperror.ErrInvalidPriceFeed(fmt.Errorf("zero feed address"))
	}
	if req.Staleness <= 0 {
		return nil, apperror.Validation("staleness bound must be positive")
	}

	feed := s.feeds.Feed(req.Feed)
	if _, err := feed.Decimals(ctx); err != nil {
		return nil, apperror.ErrInvalidPriceFeed(fmt.Errorf("query feed decimals: %w", err))
	}
	round, err := feed.LatestRoundData(ctx)
	if err != nil {
		return nil, apperror.ErrInvalidPriceFeed(fmt.Errorf("query feed round: %w", err))
	}
	if !round.IsComplete() {
		s.log.Warn().Str("feed", req.Feed.Hex()).Msg("feed rejected at configuration, incomplete round")
		return nil, apperror.ErrInvalidPriceFeedData()
	}

	cfg := &domain.AssetConfig{
		Asset:     req.Asset,
		Feed:      req.Feed,
		Decimals:  req.Decimals,
		Staleness: req.Staleness,
	}
	if err := s.assetRepo.Upsert(ctx, cfg); err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("upsert asset: %w", err))
	}

	s.log.Info().
		Str("asset", req.Asset.Hex()).
		Str("feed", req.Feed.Hex()).
		Uint8("decimals", req.Decimals).
		Dur("staleness", req.Staleness).
		Msg("asset configured")
	return cfg, nil
}

// RemoveAsset drops the pricing config. Subsequent pricing calls fail closed.
func (s *ValuationServiceImpl) RemoveAsset(ctx context.Context, asset common.Address) error {
	if err := s.assetRepo.Delete(ctx, asset); err != nil {
		return apperror.ErrStorageError(fmt.Errorf("delete asset: %w", err))
	}
	s.log.Info().Str("asset", asset.Hex()).Msg("asset removed")
	return nil
}

func (s *ValuationServiceImpl) GetAsset(ctx context.Context, asset common.Address) (*domain.AssetConfig, error) {
	cfg, err := s.assetRepo.Get(ctx, asset)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get asset: %w", err))
	}
	if !cfg.IsConfigured() {
		return nil, apperror.ErrAssetNotFound()
	}
	return cfg, nil
}

func (s *ValuationServiceImpl) ListAssets(ctx context.Context) ([]domain.AssetConfig, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("list assets: %w", err))
	}
	return assets, nil
}

// PriceOf returns the validated 18-decimal USD price of one whole token.
func (s *ValuationServiceImpl) PriceOf(ctx context.Context, asset common.Address) (*big.Int, error) {
	price, _, err := s.validatedPrice(ctx, asset)
	return price, err
}

// ValueOf converts amount (smallest unit) into 18-decimal USD:
// usd = amount * price / 10^assetDecimals.
func (s *ValuationServiceImpl) ValueOf(ctx context.Context, asset common.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	price, cfg, err := s.validatedPrice(ctx, asset)
	if err != nil {
		return nil, err
	}

	usd := new(big.Int).Mul(amount, price)
	usd.Div(usd, pow10(int(cfg.Decimals)))
	if usd.BitLen() > maxValueBits {
		return nil, apperror.ErrValueOutOfRange()
	}
	return usd, nil
}

// AmountFor converts an 18-decimal USD value into a token amount (smallest
// unit, floor-rounded): amount = usd * 10^assetDecimals / price.
func (s *ValuationServiceImpl) AmountFor(ctx context.Context, asset common.Address, usd *big.Int) (*big.Int, error) {
	if usd == nil || usd.Sign() < 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	price, cfg, err := s.validatedPrice(ctx, asset)
	if err != nil {
		return nil, err
	}

	amount := new(big.Int).Mul(usd, pow10(int(cfg.Decimals)))
	amount.Div(amount, price)
	if amount.BitLen() > maxValueBits {
		return nil, apperror.ErrValueOutOfRange()
	}
	return amount, nil
}

// validatedPrice reads the latest round, enforces completeness and freshness,
// and rescales the answer to 18 decimals.
func (s *ValuationServiceImpl) validatedPrice(ctx context.Context, asset common.Address) (*big.Int, *domain.AssetConfig, error) {
	cfg, err := s.assetRepo.Get(ctx, asset)
	if err != nil {
		return nil, nil, apperror.ErrStorageError(fmt.Errorf("get asset: %w", err))
	}
	if !cfg.IsConfigured() {
		return nil, nil, apperror.ErrAssetNotFound()
	}

	feed := s.feeds.Feed(cfg.Feed)
	round, err := feed.LatestRoundData(ctx)
	if err != nil {
		return nil, nil, apperror.ErrInvalidPriceFeed(fmt.Errorf("latest round: %w", err))
	}
	if !round.IsComplete() {
		s.log.Warn().Str("asset", asset.Hex()).Str("feed", cfg.Feed.Hex()).Msg("incomplete oracle round")
		return nil, nil, apperror.ErrInvalidPriceFeedData()
	}
	if !round.IsFresh(time.Now(), cfg.Staleness) {
		s.log.Warn().
			Str("asset", asset.Hex()).
			Int64("updated_at", round.UpdatedAt).
			Dur("staleness", cfg.Staleness).
			Msg("stale oracle round")
		return nil, nil, apperror.ErrStalePriceFeedData()
	}

	feedDecimals, err := feed.Decimals(ctx)
	if err != nil {
		return nil, nil, apperror.ErrInvalidPriceFeed(fmt.Errorf("feed decimals: %w", err))
	}

	price := new(big.Int).Set(round.Answer)
	switch {
	case int(feedDecimals) < domain.UsdDecimals:
		price.Mul(price, pow10(domain.UsdDecimals-int(feedDecimals)))
	case int(feedDecimals) > domain.UsdDecimals:
		price.Div(price, pow10(int(feedDecimals)-domain.UsdDecimals))
	}
	if price.Sign() <= 0 {
		return nil, nil, apperror.ErrInvalidPriceFeedData()
	}
	if price.BitLen() > maxValueBits {
		return nil, nil, apperror.ErrValueOutOfRange()
	}
	return price, cfg, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
