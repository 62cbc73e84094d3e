package service

import (
	"context"
	"fmt"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// RouteServiceImpl implements ports.RouteService. All multi-asset routes go
// through the reference asset, so only one path per asset per direction is
// ever stored.
type RouteServiceImpl struct {
	pathRepo  ports.PathRepository
	reference common.Address
	log       zerolog.Logger
}

// NewRouteService creates a new RouteServiceImpl.
func NewRouteService(
	pathRepo ports.PathRepository,
	reference common.Address,
	log zerolog.Logger,
) *RouteServiceImpl {
	return &RouteServiceImpl{
		pathRepo:  pathRepo,
		reference: reference,
		log:       log,
	}
}

// SetPathToReference stores the route from asset into the reference asset.
func (s *RouteServiceImpl) SetPathToReference(ctx context.Context, asset common.Address, path domain.SwapPath) error {
	if !path.IsValid() {
		return apperror.ErrInvalidSwapPath()
	}
	if path.Origin() != asset {
		return apperror.Validation("path must originate in the configured asset")
	}
	if path.Destination() != s.reference {
		return apperror.ErrPathMustEndInReferenceAsset()
	}
	if err := s.pathRepo.Put(ctx, ports.PathToReference, asset, path); err != nil {
		return apperror.ErrStorageError(fmt.Errorf("put path: %w", err))
	}
	s.log.Info().Str("asset", asset.Hex()).Int("path_bytes", len(path)).Msg("to-reference path configured")
	return nil
}

// SetPathFromReference stores the route from the reference asset into asset.
func (s *RouteServiceImpl) SetPathFromReference(ctx context.Context, asset common.Address, path domain.SwapPath) error {
	if !path.IsValid() {
		return apperror.ErrInvalidSwapPath()
	}
	if path.Origin() != s.reference {
		return apperror.ErrPathMustStartInReferenceAsset()
	}
	if path.Destination() != asset {
		return apperror.Validation("path must terminate in the configured asset")
	}
	if err := s.pathRepo.Put(ctx, ports.PathFromReference, asset, path); err != nil {
		return apperror.ErrStorageError(fmt.Errorf("put path: %w", err))
	}
	s.log.Info().Str("asset", asset.Hex()).Int("path_bytes", len(path)).Msg("from-reference path configured")
	return nil
}

func (s *RouteServiceImpl) GetPath(ctx context.Context, direction ports.PathDirection, asset common.Address) (domain.SwapPath, error) {
	path, err := s.pathRepo.Get(ctx, direction, asset)
	if err != nil {
		return nil, apperror.ErrStorageError(fmt.Errorf("get path: %w", err))
	}
	if path == nil {
		return nil, apperror.ErrPathNotFound(string(direction))
	}
	return path, nil
}

// ComposeRoute joins the stored legs into a source-to-target path. Either leg
// degenerates to the bare reference asset when its endpoint is the reference
// asset itself.
func (s *RouteServiceImpl) ComposeRoute(ctx context.Context, source, target common.Address) (domain.SwapPath, error) {
	if source == target {
		return domain.SingleAssetPath(source), nil
	}

	inbound := domain.SingleAssetPath(s.reference)
	if source != s.reference {
		stored, err := s.pathRepo.Get(ctx, ports.PathToReference, source)
		if err != nil {
			return nil, apperror.ErrStorageError(fmt.Errorf("get to-reference path: %w", err))
		}
		if stored == nil {
			return nil, apperror.ErrPathNotFound("to-reference")
		}
		inbound = stored
	}

	outbound := domain.SingleAssetPath(s.reference)
	if target != s.reference {
		stored, err := s.pathRepo.Get(ctx, ports.PathFromReference, target)
		if err != nil {
			return nil, apperror.ErrStorageError(fmt.Errorf("get from-reference path: %w", err))
		}
		if stored == nil {
			return nil, apperror.ErrPathNotFound("from-reference")
		}
		outbound = stored
	}

	route, err := inbound.Connect(outbound)
	if err != nil {
		return nil, apperror.ErrPathsDoNotConnect()
	}
	return route, nil
}
