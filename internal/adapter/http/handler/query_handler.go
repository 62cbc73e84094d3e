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

// QueryHandler handles the query payment lifecycle.
type QueryHandler struct {
	querySvc ports.QueryService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(querySvc ports.QueryService) *QueryHandler {
	return &QueryHandler{querySvc: querySvc}
}

// Submit handles POST /api/v1/queries.
func (h *QueryHandler) Submit(c *gin.Context) {
	var req dto.SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, ok := dto.ParseAmount(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	sub, err := h.querySvc.SubmitQuery(c.Request.Context(), ports.SubmitQueryRequest{
		Client:        dto.ParseAddress(req.Client),
		Asset:         dto.ParseAddress(req.Asset),
		Amount:        amount,
		RequestDigest: dto.ParseHash(req.RequestDigest),
		CallbackURL:   req.CallbackURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.QuerySubmissionResponse{
		Hash:   sub.Hash.Hex(),
		Nonce:  sub.Nonce,
		Record: toQueryRecordResponse(sub.Record),
	})
}

// Get handles GET /api/v1/queries/:hash.
func (h *QueryHandler) Get(c *gin.Context) {
	hash, ok := hashParam(c, "hash")
	if !ok {
		return
	}

	rec, err := h.querySvc.GetQuery(c.Request.Context(), hash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toQueryRecordResponse(rec))
}

// Cancel handles POST /api/v1/queries/:hash/cancel.
func (h *QueryHandler) Cancel(c *gin.Context) {
	hash, ok := hashParam(c, "hash")
	if !ok {
		return
	}

	rec, err := h.querySvc.CancelExpiredQuery(c.Request.Context(), hash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(rec))
}

// Fulfill handles POST /api/v1/queries/:hash/fulfill.
func (h *QueryHandler) Fulfill(c *gin.Context) {
	hash, ok := hashParam(c, "hash")
	if !ok {
		return
	}

	var req dto.FulfillQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	gasCost, ok := dto.ParseAmount(req.GasCostUsd)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	rec, err := h.querySvc.FulfillQuery(c.Request.Context(), ports.FulfillQueryRequest{
		Hash:       hash,
		Fulfiller:  dto.ParseAddress(req.Fulfiller),
		GasCostUsd: gasCost,
		Result:     dto.ParseHexBytes(req.Result),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(rec))
}

func toQueryRecordResponse(rec *domain.QueryRecord) dto.QueryRecordResponse {
	return dto.QueryRecordResponse{
		Hash:           rec.Hash.Hex(),
		Client:         rec.Client.Hex(),
		Asset:          rec.Asset.Hex(),
		Amount:         rec.Amount.String(),
		RequestDigest:  rec.RequestDigest.Hex(),
		Nonce:          rec.Nonce,
		CallbackURL:    rec.CallbackURL,
		SubmittedAt:    rec.SubmittedAt.UTC().Format(time.RFC3339),
		TimeoutSeconds: int64(rec.Timeout / time.Second),
	}
}
