package handler

import (
	"strconv"
	"time"

	"cross-asset-gateway/internal/adapter/http/dto"
	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"
	"cross-asset-gateway/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// ReportingHandler handles settlement journal endpoints.
type ReportingHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingSvc ports.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingSvc: reportingSvc}
}

// GetSettlement handles GET /api/v1/settlements/:id.
func (h *ReportingHandler) GetSettlement(c *gin.Context) {
	rec, err := h.reportingSvc.GetSettlement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(rec))
}

// ListSettlements handles GET /api/v1/settlements with optional filters:
// merchant, payer, type, from, to, page, page_size.
func (h *ReportingHandler) ListSettlements(c *gin.Context) {
	params := ports.JournalListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
	}

	if raw := c.Query("merchant"); raw != "" {
		if !dto.ValidAddress(raw) {
			response.Error(c, apperror.Validation("invalid merchant address"))
			return
		}
		addr := dto.ParseAddress(raw)
		params.Merchant = &addr
	}
	if raw := c.Query("payer"); raw != "" {
		if !dto.ValidAddress(raw) {
			response.Error(c, apperror.Validation("invalid payer address"))
			return
		}
		addr := dto.ParseAddress(raw)
		params.Payer = &addr
	}
	if raw := c.Query("type"); raw != "" {
		t := domain.SettlementType(raw)
		params.Type = &t
	}
	if raw := c.Query("from"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("from must be a unix timestamp"))
			return
		}
		params.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("to must be a unix timestamp"))
			return
		}
		params.To = &ts
	}

	recs, total, err := h.reportingSvc.ListSettlements(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.SettlementResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toSettlementResponse(&recs[i]))
	}

	response.OK(c, dto.ListSettlementsResponse{
		Settlements: out,
		Total:       total,
		Page:        params.Page,
		PageSize:    len(out),
	})
}

// GetStats handles GET /api/v1/stats?merchant=0x..&period=day|week|month|all.
func (h *ReportingHandler) GetStats(c *gin.Context) {
	raw := c.Query("merchant")
	if !dto.ValidAddress(raw) {
		response.Error(c, apperror.Validation("invalid merchant address"))
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), dto.ParseAddress(raw), c.DefaultQuery("period", "all"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalSettlements: stats.TotalSettlements,
		Immediate:        stats.Immediate,
		EscrowSettled:    stats.EscrowSettled,
		QueriesFulfilled: stats.QueriesFulfilled,
		QueriesCanceled:  stats.QueriesCanceled,
		TotalUsdValue:    stats.TotalUsdValue.String(),
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func toSettlementResponse(rec *domain.SettlementRecord) dto.SettlementResponse {
	out := dto.SettlementResponse{
		ID:          rec.ID.String(),
		Type:        string(rec.Type),
		Payer:       rec.Payer.Hex(),
		Recipient:   rec.Recipient.Hex(),
		SourceAsset: rec.SourceAsset.Hex(),
		PayoutAsset: rec.PayoutAsset.Hex(),
		Callback:    string(rec.Callback),
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rec.SourceAmount != nil {
		out.SourceAmount = rec.SourceAmount.String()
	}
	if rec.GrossAmount != nil {
		out.GrossAmount = rec.GrossAmount.String()
	}
	if rec.FeeAmount != nil {
		out.FeeAmount = rec.FeeAmount.String()
	}
	if rec.NetAmount != nil {
		out.NetAmount = rec.NetAmount.String()
	}
	if rec.RefundAmount != nil {
		out.RefundAmount = rec.RefundAmount.String()
	}
	if rec.UsdValue != nil {
		out.UsdValue = rec.UsdValue.String()
	}
	if rec.BindingHash != (common.Hash{}) {
		out.BindingHash = rec.BindingHash.Hex()
	}
	return out
}
