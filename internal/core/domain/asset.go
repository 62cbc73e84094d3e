package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// UsdDecimals is the fixed-point precision of the common USD unit. All price
// floors and valuations are expressed in 18-decimal USD.
const UsdDecimals = 18

// AssetConfig holds the pricing configuration for a payment asset.
type AssetConfig struct {
	// Asset is the token contract address this config belongs to.
	Asset common.Address `json:"asset"`
	// Feed is the price oracle answering in USD. A zero feed address means
	// the asset is not configured; lookups fail closed.
	Feed common.Address `json:"feed"`
	// Decimals is the token's own precision.
	Decimals uint8 `json:"decimals"`
	// Staleness is the maximum tolerated age of the latest oracle round.
	Staleness time.Duration `json:"staleness"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsConfigured reports whether the asset has a usable valuation source.
func (c *AssetConfig) IsConfigured() bool {
	return c != nil && c.Feed != (common.Address{})
}

// RoundData is a single oracle reading, mirroring the aggregator interface
// latestRoundData tuple.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       int64 // Unix seconds
	UpdatedAt       int64 // Unix seconds
	AnsweredInRound *big.Int
}

// IsComplete reports whether the reading describes a finished round with a
// positive answer. Incomplete or non-positive rounds must never be priced.
func (r RoundData) IsComplete() bool {
	if r.Answer == nil || r.Answer.Sign() <= 0 {
		return false
	}
	if r.StartedAt == 0 {
		return false
	}
	if r.RoundID == nil || r.AnsweredInRound == nil {
		return false
	}
	return r.AnsweredInRound.Cmp(r.RoundID) >= 0
}

// IsFresh reports whether the reading is within the staleness bound at the
// given instant.
func (r RoundData) IsFresh(now time.Time, staleness time.Duration) bool {
	return !now.After(time.Unix(r.UpdatedAt, 0).Add(staleness))
}
