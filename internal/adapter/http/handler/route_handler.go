package handler

import (
	"cross-asset-gateway/internal/adapter/http/dto"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"
	"cross-asset-gateway/pkg/response"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

// RouteHandler handles swap route configuration endpoints.
type RouteHandler struct {
	routeSvc ports.RouteService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routeSvc ports.RouteService) *RouteHandler {
	return &RouteHandler{routeSvc: routeSvc}
}

// SetPathToReference handles PUT /api/v1/paths/to-reference.
func (h *RouteHandler) SetPathToReference(c *gin.Context) {
	var req dto.SetPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	asset := dto.ParseAddress(req.Asset)
	if err := h.routeSvc.SetPathToReference(c.Request.Context(), asset, dto.ParseHexBytes(req.Path)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PathResponse{
		Direction: string(ports.PathToReference),
		Asset:     asset.Hex(),
		Path:      req.Path,
	})
}

// SetPathFromReference handles PUT /api/v1/paths/from-reference.
func (h *RouteHandler) SetPathFromReference(c *gin.Context) {
	var req dto.SetPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	asset := dto.ParseAddress(req.Asset)
	if err := h.routeSvc.SetPathFromReference(c.Request.Context(), asset, dto.ParseHexBytes(req.Path)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PathResponse{
		Direction: string(ports.PathFromReference),
		Asset:     asset.Hex(),
		Path:      req.Path,
	})
}

// GetPath handles GET /api/v1/paths/:direction/:address.
func (h *RouteHandler) GetPath(c *gin.Context) {
	var direction ports.PathDirection
	switch c.Param("direction") {
	case "to-reference":
		direction = ports.PathToReference
	case "from-reference":
		direction = ports.PathFromReference
	default:
		response.Error(c, apperror.Validation("direction must be to-reference or from-reference"))
		return
	}

	asset, ok := addressParam(c, "address")
	if !ok {
		return
	}

	path, err := h.routeSvc.GetPath(c.Request.Context(), direction, asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PathResponse{
		Direction: string(direction),
		Asset:     asset.Hex(),
		Path:      hexutil.Encode(path),
	})
}

// ComposeRoute handles GET /api/v1/routes?source=0x..&target=0x..
func (h *RouteHandler) ComposeRoute(c *gin.Context) {
	source := c.Query("source")
	target := c.Query("target")
	if !dto.ValidAddress(source) || !dto.ValidAddress(target) {
		response.Error(c, apperror.Validation("source and target must be hex addresses"))
		return
	}

	path, err := h.routeSvc.ComposeRoute(c.Request.Context(), dto.ParseAddress(source), dto.ParseAddress(target))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PathResponse{Path: hexutil.Encode(path)})
}
