package handler

import (
	"time"

	"cross-asset-gateway/internal/adapter/http/dto"
	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"
	"cross-asset-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AssetHandler handles asset configuration and pricing endpoints.
type AssetHandler struct {
	valuationSvc ports.ValuationService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(valuationSvc ports.ValuationService) *AssetHandler {
	return &AssetHandler{valuationSvc: valuationSvc}
}

// SetAsset handles PUT /api/v1/assets.
func (h *AssetHandler) SetAsset(c *gin.Context) {
	var req dto.SetAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	cfg, err := h.valuationSvc.SetAsset(c.Request.Context(), ports.SetAssetRequest{
		Asset:     dto.ParseAddress(req.Asset),
		Feed:      dto.ParseAddress(req.Feed),
		Decimals:  req.Decimals,
		Staleness: time.Duration(req.StalenessSeconds) * time.Second,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAssetResponse(cfg))
}

// GetAsset handles GET /api/v1/assets/:address.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, ok := addressParam(c, "address")
	if !ok {
		return
	}

	cfg, err := h.valuationSvc.GetAsset(c.Request.Context(), asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAssetResponse(cfg))
}

// ListAssets handles GET /api/v1/assets.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	cfgs, err := h.valuationSvc.ListAssets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.AssetResponse, 0, len(cfgs))
	for i := range cfgs {
		out = append(out, toAssetResponse(&cfgs[i]))
	}
	response.OK(c, out)
}

// RemoveAsset handles DELETE /api/v1/assets/:address.
func (h *AssetHandler) RemoveAsset(c *gin.Context) {
	asset, ok := addressParam(c, "address")
	if !ok {
		return
	}

	if err := h.valuationSvc.RemoveAsset(c.Request.Context(), asset); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"asset": asset.Hex()})
}

// GetPrice handles GET /api/v1/assets/:address/price.
func (h *AssetHandler) GetPrice(c *gin.Context) {
	asset, ok := addressParam(c, "address")
	if !ok {
		return
	}

	price, err := h.valuationSvc.PriceOf(c.Request.Context(), asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PriceResponse{
		Asset:    asset.Hex(),
		PriceUsd: price.String(),
	})
}

func toAssetResponse(cfg *domain.AssetConfig) dto.AssetResponse {
	return dto.AssetResponse{
		Asset:            cfg.Asset.Hex(),
		Feed:             cfg.Feed.Hex(),
		Decimals:         cfg.Decimals,
		StalenessSeconds: int64(cfg.Staleness / time.Second),
		CreatedAt:        cfg.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        cfg.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
