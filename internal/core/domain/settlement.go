package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// SettlementType identifies which operation produced a journal entry.
type SettlementType string

const (
	SettlementImmediate       SettlementType = "IMMEDIATE"
	SettlementEscrowAuthorize SettlementType = "ESCROW_AUTHORIZE"
	SettlementEscrowSettle    SettlementType = "ESCROW_SETTLE"
	SettlementQuerySubmit     SettlementType = "QUERY_SUBMIT"
	SettlementQueryCancel     SettlementType = "QUERY_CANCEL"
	SettlementQueryFulfill    SettlementType = "QUERY_FULFILL"
)

// CallbackStatus records the outcome of a best-effort client callback.
type CallbackStatus string

const (
	CallbackNone      CallbackStatus = "NONE"
	CallbackDelivered CallbackStatus = "DELIVERED"
	CallbackFailed    CallbackStatus = "FAILED"
)

// SettlementRecord is one entry in the settlement journal. Amounts are in the
// smallest unit of their asset; UsdValue is 18-decimal fixed point.
type SettlementRecord struct {
	ID           uuid.UUID      `json:"id"`
	Type         SettlementType `json:"type"`
	Payer        common.Address `json:"payer"`
	Recipient    common.Address `json:"recipient"`
	SourceAsset  common.Address `json:"source_asset"`
	SourceAmount *big.Int       `json:"source_amount"`
	PayoutAsset  common.Address `json:"payout_asset"`
	GrossAmount  *big.Int       `json:"gross_amount"`
	FeeAmount    *big.Int       `json:"fee_amount"`
	NetAmount    *big.Int       `json:"net_amount"`
	RefundAmount *big.Int       `json:"refund_amount"`
	UsdValue     *big.Int       `json:"usd_value"`
	BindingHash  common.Hash    `json:"binding_hash"`
	Callback     CallbackStatus `json:"callback"`
	CreatedAt    time.Time      `json:"created_at"`
}
