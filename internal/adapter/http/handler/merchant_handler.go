package handler

import (
	"strconv"
	"time"

	"cross-asset-gateway/internal/adapter/http/dto"
	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"
	"cross-asset-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// MerchantHandler handles merchant payout configuration endpoints.
type MerchantHandler struct {
	payoutSvc ports.PayoutService
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(payoutSvc ports.PayoutService) *MerchantHandler {
	return &MerchantHandler{payoutSvc: payoutSvc}
}

// SetConfig handles PUT /api/v1/merchants.
func (h *MerchantHandler) SetConfig(c *gin.Context) {
	var req dto.SetMerchantConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if len(req.Addresses) != len(req.SharesBps) {
		response.Error(c, apperror.ErrPayoutArrayLengthMismatch())
		return
	}

	recipients := make([]domain.PayoutRecipient, 0, len(req.Addresses))
	for i := range req.Addresses {
		recipients = append(recipients, domain.PayoutRecipient{
			Address:  dto.ParseAddress(req.Addresses[i]),
			ShareBps: req.SharesBps[i],
		})
	}

	cfg, err := h.payoutSvc.SetMerchantConfig(c.Request.Context(), ports.SetMerchantConfigRequest{
		Merchant:    dto.ParseAddress(req.Merchant),
		PayoutAsset: dto.ParseAddress(req.PayoutAsset),
		Recipients:  recipients,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toMerchantConfigResponse(cfg))
}

// GetConfig handles GET /api/v1/merchants/:address.
func (h *MerchantHandler) GetConfig(c *gin.Context) {
	merchant, ok := addressParam(c, "address")
	if !ok {
		return
	}

	cfg, err := h.payoutSvc.GetMerchantConfig(c.Request.Context(), merchant)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toMerchantConfigResponse(cfg))
}

// SetItemFloor handles PUT /api/v1/merchants/:address/floors.
func (h *MerchantHandler) SetItemFloor(c *gin.Context) {
	merchant, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var req dto.SetItemFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	floor, parsed := dto.ParseAmount(req.FloorUsd)
	if !parsed {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	if err := h.payoutSvc.SetItemFloor(c.Request.Context(), merchant, req.ItemID, floor); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ItemFloorResponse{
		Merchant: merchant.Hex(),
		ItemID:   req.ItemID,
		FloorUsd: floor.String(),
	})
}

// GetItemFloor handles GET /api/v1/merchants/:address/floors/:item_id.
func (h *MerchantHandler) GetItemFloor(c *gin.Context) {
	merchant, ok := addressParam(c, "address")
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid item_id"))
		return
	}

	floor, err := h.payoutSvc.GetItemFloor(c.Request.Context(), merchant, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ItemFloorResponse{
		Merchant: merchant.Hex(),
		ItemID:   itemID,
		FloorUsd: floor.String(),
	})
}

func toMerchantConfigResponse(cfg *domain.MerchantConfig) dto.MerchantConfigResponse {
	recipients := make([]dto.RecipientResponse, 0, len(cfg.Recipients))
	for _, r := range cfg.Recipients {
		recipients = append(recipients, dto.RecipientResponse{
			Address:  r.Address.Hex(),
			ShareBps: r.ShareBps,
		})
	}
	return dto.MerchantConfigResponse{
		Merchant:    cfg.Merchant.Hex(),
		PayoutAsset: cfg.PayoutAsset.Hex(),
		Recipients:  recipients,
		CreatedAt:   cfg.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   cfg.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
