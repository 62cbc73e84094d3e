package ports

import (
	"context"
	"math/big"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// ValuationService prices assets through their configured oracle feeds.
// All USD values are 18-decimal fixed point.
type ValuationService interface {
	SetAsset(ctx context.Context, req SetAssetRequest) (*domain.AssetConfig, error)
	RemoveAsset(ctx context.Context, asset common.Address) error
	GetAsset(ctx context.Context, asset common.Address) (*domain.AssetConfig, error)
	ListAssets(ctx context.Context) ([]domain.AssetConfig, error)
	// PriceOf returns the validated 18-decimal USD price of one whole token.
	PriceOf(ctx context.Context, asset common.Address) (*big.Int, error)
	// ValueOf converts a token amount (smallest unit) into USD.
	ValueOf(ctx context.Context, asset common.Address, amount *big.Int) (*big.Int, error)
	// AmountFor converts a USD value into a token amount (smallest unit).
	AmountFor(ctx context.Context, asset common.Address, usd *big.Int) (*big.Int, error)
}

// SetAssetRequest holds validated input for asset configuration.
type SetAssetRequest struct {
	Asset     common.Address
	Feed      common.Address
	Decimals  uint8
	Staleness time.Duration
}

// RouteService manages stored swap routes and composes end-to-end paths.
type RouteService interface {
	// SetPathToReference stores the route from asset into the reference asset.
	SetPathToReference(ctx context.Context, asset common.Address, path domain.SwapPath) error
	// SetPathFromReference stores the route from the reference asset into asset.
	SetPathFromReference(ctx context.Context, asset common.Address, path domain.SwapPath) error
	GetPath(ctx context.Context, direction PathDirection, asset common.Address) (domain.SwapPath, error)
	// ComposeRoute joins the stored legs into a source-to-target path. For a
	// same-asset pair it returns the degenerate single-asset path.
	ComposeRoute(ctx context.Context, source, target common.Address) (domain.SwapPath, error)
}

// EscrowService manages authorization state for funds held in custody.
type EscrowService interface {
	// Authorize allocates a nonce and persists the binding hash.
	Authorize(ctx context.Context, tx domain.EscrowTransaction) (uint64, common.Hash, error)
	// Settle verifies the presented transaction against the stored hash and
	// consumes the authorization. A second settle on the same hash fails.
	Settle(ctx context.Context, tx domain.EscrowTransaction, hash common.Hash) error
	// NonceOf returns the stored nonce for a hash, 0 if not authorized.
	NonceOf(ctx context.Context, hash common.Hash) (uint64, error)
}

// PayoutService manages merchant payout configuration and distributes
// settled funds across the configured split.
type PayoutService interface {
	SetMerchantConfig(ctx context.Context, req SetMerchantConfigRequest) (*domain.MerchantConfig, error)
	GetMerchantConfig(ctx context.Context, merchant common.Address) (*domain.MerchantConfig, error)
	SetItemFloor(ctx context.Context, merchant common.Address, itemID uint64, floorUsd *big.Int) error
	GetItemFloor(ctx context.Context, merchant common.Address, itemID uint64) (*big.Int, error)
	// Distribute transfers amount of asset to the merchant's recipients by
	// share. The last recipient absorbs rounding dust so the sum is exact.
	Distribute(ctx context.Context, merchant common.Address, asset common.Address, amount *big.Int) error
}

// SetMerchantConfigRequest holds validated input for payout configuration.
type SetMerchantConfigRequest struct {
	Merchant    common.Address
	PayoutAsset common.Address
	Recipients  []domain.PayoutRecipient
}

// PaymentService defines the top-level settlement flows.
type PaymentService interface {
	ProcessImmediatePayment(ctx context.Context, req ImmediatePaymentRequest) (*domain.SettlementRecord, error)
	AuthorizeEscrow(ctx context.Context, req EscrowAuthorizeRequest) (*EscrowAuthorization, error)
	SettleEscrow(ctx context.Context, req EscrowSettleRequest) (*domain.SettlementRecord, error)
}

// ImmediatePaymentRequest holds validated input for the send flow.
type ImmediatePaymentRequest struct {
	Payer    common.Address
	Merchant common.Address
	ItemID   uint64
	Asset    common.Address
	Amount   *big.Int
}

// EscrowAuthorizeRequest holds validated input for escrow authorization.
type EscrowAuthorizeRequest struct {
	Payer    common.Address
	Merchant common.Address
	ItemID   uint64
	Asset    common.Address
	Amount   *big.Int
}

// EscrowAuthorization is the result of a successful authorization.
type EscrowAuthorization struct {
	Transaction domain.EscrowTransaction
	Nonce       uint64
	Hash        common.Hash
}

// EscrowSettleRequest holds validated input for escrow settlement. MaxUsd
// caps how much of the escrowed amount is converted; the rest is refunded to
// the payer in the source asset.
type EscrowSettleRequest struct {
	Hash     common.Hash
	Payer    common.Address
	Merchant common.Address
	Asset    common.Address
	Amount   *big.Int
	MaxUsd   *big.Int
}

// QueryService defines the query payment lifecycle.
type QueryService interface {
	SubmitQuery(ctx context.Context, req SubmitQueryRequest) (*QuerySubmission, error)
	GetQuery(ctx context.Context, hash common.Hash) (*domain.QueryRecord, error)
	// CancelExpiredQuery refunds the full escrowed amount once the timeout
	// has passed. Fails if the record is gone (already fulfilled or canceled).
	CancelExpiredQuery(ctx context.Context, hash common.Hash) (*domain.SettlementRecord, error)
	FulfillQuery(ctx context.Context, req FulfillQueryRequest) (*domain.SettlementRecord, error)
}

// SubmitQueryRequest holds validated input for query submission. CallbackURL
// is where the fulfillment result is delivered; empty skips delivery.
type SubmitQueryRequest struct {
	Client        common.Address
	Asset         common.Address
	Amount        *big.Int
	RequestDigest common.Hash
	CallbackURL   string
}

// QuerySubmission is the result of a successful submission.
type QuerySubmission struct {
	Hash   common.Hash
	Nonce  uint64
	Record *domain.QueryRecord
}

// FulfillQueryRequest holds validated input for query fulfillment. GasCostUsd
// is the fulfiller's measured execution cost in 18-decimal USD.
type FulfillQueryRequest struct {
	Hash       common.Hash
	Fulfiller  common.Address
	GasCostUsd *big.Int
	Result     []byte
}

// ReportingService defines journal/reporting business logic.
type ReportingService interface {
	GetSettlement(ctx context.Context, id string) (*domain.SettlementRecord, error)
	ListSettlements(ctx context.Context, params JournalListParams) ([]domain.SettlementRecord, int64, error)
	GetStats(ctx context.Context, merchant common.Address, period string) (*SettlementStats, error)
}

// SignatureService handles HMAC-SHA256 signing and verification for
// callback payloads.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}
