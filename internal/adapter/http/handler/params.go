package handler

import (
	"cross-asset-gateway/internal/adapter/http/dto"
	"cross-asset-gateway/pkg/apperror"
	"cross-asset-gateway/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// addressParam reads and validates a hex address URL parameter. On failure it
// writes the error response and reports false.
func addressParam(c *gin.Context, name string) (common.Address, bool) {
	raw := c.Param(name)
	if !dto.ValidAddress(raw) {
		response.Error(c, apperror.Validation("invalid "+name+" address"))
		return common.Address{}, false
	}
	return dto.ParseAddress(raw), true
}

// hashParam reads and validates a hex hash URL parameter.
func hashParam(c *gin.Context, name string) (common.Hash, bool) {
	raw := c.Param(name)
	if !dto.ValidHash(raw) {
		response.Error(c, apperror.Validation("invalid "+name+" hash"))
		return common.Hash{}, false
	}
	return dto.ParseHash(raw), true
}
