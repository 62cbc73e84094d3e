package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PercentDenominator is the fixed-point scale for payout shares, expressed
// in basis points. The shares of a valid config sum to exactly this value.
const PercentDenominator uint32 = 10_000

// PayoutRecipient is one leg of a merchant's payout split.
type PayoutRecipient struct {
	Address  common.Address `json:"address"`
	ShareBps uint32         `json:"share_bps"`
}

// MerchantConfig holds a merchant's settlement preferences: the asset payouts
// are delivered in and the weighted recipient list they are split across.
type MerchantConfig struct {
	Merchant    common.Address    `json:"merchant"`
	PayoutAsset common.Address    `json:"payout_asset"`
	Recipients  []PayoutRecipient `json:"recipients"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ShareOf returns the floor-rounded portion of total owed to one recipient.
func (r PayoutRecipient) ShareOf(total *big.Int) *big.Int {
	out := new(big.Int).Mul(total, big.NewInt(int64(r.ShareBps)))
	return out.Div(out, big.NewInt(int64(PercentDenominator)))
}

// ItemFloor is the minimum USD value (18-decimal fixed point) a payment for
// one of the merchant's items must clear.
type ItemFloor struct {
	Merchant common.Address `json:"merchant"`
	ItemID   uint64         `json:"item_id"`
	FloorUsd *big.Int       `json:"floor_usd"`
}
