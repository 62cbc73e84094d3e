package handler

import (
	"cross-asset-gateway/internal/adapter/http/dto"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"
	"cross-asset-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles the settlement flows.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
	escrowSvc  ports.EscrowService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService, escrowSvc ports.EscrowService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, escrowSvc: escrowSvc}
}

// ProcessImmediate handles POST /api/v1/payments.
func (h *PaymentHandler) ProcessImmediate(c *gin.Context) {
	var req dto.ImmediatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, ok := dto.ParseAmount(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	rec, err := h.paymentSvc.ProcessImmediatePayment(c.Request.Context(), ports.ImmediatePaymentRequest{
		Payer:    dto.ParseAddress(req.Payer),
		Merchant: dto.ParseAddress(req.Merchant),
		ItemID:   req.ItemID,
		Asset:    dto.ParseAddress(req.Asset),
		Amount:   amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toSettlementResponse(rec))
}

// AuthorizeEscrow handles POST /api/v1/payments/escrow.
func (h *PaymentHandler) AuthorizeEscrow(c *gin.Context) {
	var req dto.EscrowAuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, ok := dto.ParseAmount(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	auth, err := h.paymentSvc.AuthorizeEscrow(c.Request.Context(), ports.EscrowAuthorizeRequest{
		Payer:    dto.ParseAddress(req.Payer),
		Merchant: dto.ParseAddress(req.Merchant),
		ItemID:   req.ItemID,
		Asset:    dto.ParseAddress(req.Asset),
		Amount:   amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.EscrowAuthorizationResponse{
		Nonce:    auth.Nonce,
		Hash:     auth.Hash.Hex(),
		Payer:    auth.Transaction.Payer.Hex(),
		Merchant: auth.Transaction.Recipient.Hex(),
		Asset:    auth.Transaction.Asset.Hex(),
		Amount:   auth.Transaction.Amount.String(),
	})
}

// SettleEscrow handles POST /api/v1/payments/escrow/settle.
func (h *PaymentHandler) SettleEscrow(c *gin.Context) {
	var req dto.EscrowSettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, ok := dto.ParseAmount(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}
	maxUsd, ok := dto.ParseAmount(req.MaxUsd)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	rec, err := h.paymentSvc.SettleEscrow(c.Request.Context(), ports.EscrowSettleRequest{
		Hash:     dto.ParseHash(req.Hash),
		Payer:    dto.ParseAddress(req.Payer),
		Merchant: dto.ParseAddress(req.Merchant),
		Asset:    dto.ParseAddress(req.Asset),
		Amount:   amount,
		MaxUsd:   maxUsd,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(rec))
}

// GetEscrowNonce handles GET /api/v1/payments/escrow/:hash. A zero nonce
// means the hash holds no live authorization.
func (h *PaymentHandler) GetEscrowNonce(c *gin.Context) {
	hash, ok := hashParam(c, "hash")
	if !ok {
		return
	}

	nonce, err := h.escrowSvc.NonceOf(c.Request.Context(), hash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.EscrowNonceResponse{
		Hash:  hash.Hex(),
		Nonce: nonce,
	})
}
