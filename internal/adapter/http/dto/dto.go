package dto

// Addresses and hashes travel as 0x-prefixed hex strings; token and USD
// amounts travel as decimal strings in the smallest unit (USD values are
// 18-decimal fixed point).

// ---- Asset configuration ----

// SetAssetRequest is the payload for configuring an asset's price feed.
type SetAssetRequest struct {
	Asset            string `json:"asset" binding:"required,eth_addr"`
	Feed             string `json:"feed" binding:"required,eth_addr"`
	Decimals         uint8  `json:"decimals" binding:"lte=36"`
	StalenessSeconds int64  `json:"staleness_seconds" binding:"required,gt=0"`
}

// AssetResponse mirrors a stored asset configuration.
type AssetResponse struct {
	Asset            string `json:"asset"`
	Feed             string `json:"feed"`
	Decimals         uint8  `json:"decimals"`
	StalenessSeconds int64  `json:"staleness_seconds"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// PriceResponse carries a validated oracle price for one whole token.
type PriceResponse struct {
	Asset    string `json:"asset"`
	PriceUsd string `json:"price_usd"`
}

// ---- Swap routes ----

// SetPathRequest is the payload for storing one leg of an asset's route.
type SetPathRequest struct {
	Asset string `json:"asset" binding:"required,eth_addr"`
	Path  string `json:"path" binding:"required,hex_bytes"`
}

// PathResponse mirrors a stored or composed swap path.
type PathResponse struct {
	Direction string `json:"direction,omitempty"`
	Asset     string `json:"asset,omitempty"`
	Path      string `json:"path"`
}

// ---- Merchant payout configuration ----

// SetMerchantConfigRequest carries the payout split as two parallel arrays,
// matching the wire shape of the settlement contracts this engine fronts.
type SetMerchantConfigRequest struct {
	Merchant    string   `json:"merchant" binding:"required,eth_addr"`
	PayoutAsset string   `json:"payout_asset" binding:"required,eth_addr"`
	Addresses   []string `json:"addresses" binding:"dive,eth_addr"`
	SharesBps   []uint32 `json:"shares_bps"`
}

// RecipientResponse is one leg of a payout split.
type RecipientResponse struct {
	Address  string `json:"address"`
	ShareBps uint32 `json:"share_bps"`
}

// MerchantConfigResponse mirrors a stored merchant configuration.
type MerchantConfigResponse struct {
	Merchant    string              `json:"merchant"`
	PayoutAsset string              `json:"payout_asset"`
	Recipients  []RecipientResponse `json:"recipients"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// SetItemFloorRequest sets the minimum USD value for one of the merchant's
// items. The merchant address comes from the URL.
type SetItemFloorRequest struct {
	ItemID   uint64 `json:"item_id"`
	FloorUsd string `json:"floor_usd" binding:"required,uint_string"`
}

// ItemFloorResponse mirrors a stored item floor.
type ItemFloorResponse struct {
	Merchant string `json:"merchant"`
	ItemID   uint64 `json:"item_id"`
	FloorUsd string `json:"floor_usd"`
}

// ---- Payments ----

// ImmediatePaymentRequest is the payload for the send flow.
type ImmediatePaymentRequest struct {
	Payer    string `json:"payer" binding:"required,eth_addr"`
	Merchant string `json:"merchant" binding:"required,eth_addr"`
	ItemID   uint64 `json:"item_id"`
	Asset    string `json:"asset" binding:"required,eth_addr"`
	Amount   string `json:"amount" binding:"required,uint_string"`
}

// EscrowAuthorizeRequest is the payload for escrow authorization.
type EscrowAuthorizeRequest struct {
	Payer    string `json:"payer" binding:"required,eth_addr"`
	Merchant string `json:"merchant" binding:"required,eth_addr"`
	ItemID   uint64 `json:"item_id"`
	Asset    string `json:"asset" binding:"required,eth_addr"`
	Amount   string `json:"amount" binding:"required,uint_string"`
}

// EscrowAuthorizationResponse returns the allocated nonce and binding hash.
type EscrowAuthorizationResponse struct {
	Nonce    uint64 `json:"nonce"`
	Hash     string `json:"hash"`
	Payer    string `json:"payer"`
	Merchant string `json:"merchant"`
	Asset    string `json:"asset"`
	Amount   string `json:"amount"`
}

// EscrowSettleRequest presents an authorized transaction for settlement.
// MaxUsd caps how much of the escrowed amount is converted; the rest is
// refunded to the payer in the source asset.
type EscrowSettleRequest struct {
	Hash     string `json:"hash" binding:"required,eth_hash"`
	Payer    string `json:"payer" binding:"required,eth_addr"`
	Merchant string `json:"merchant" binding:"required,eth_addr"`
	Asset    string `json:"asset" binding:"required,eth_addr"`
	Amount   string `json:"amount" binding:"required,uint_string"`
	MaxUsd   string `json:"max_usd" binding:"required,uint_string"`
}

// EscrowNonceResponse reports the live nonce for a binding hash, 0 when the
// hash holds no authorization.
type EscrowNonceResponse struct {
	Hash  string `json:"hash"`
	Nonce uint64 `json:"nonce"`
}

// ---- Query payments ----

// SubmitQueryRequest escrows a payment against a pending computation.
type SubmitQueryRequest struct {
	Client        string `json:"client" binding:"required,eth_addr"`
	Asset         string `json:"asset" binding:"required,eth_addr"`
	Amount        string `json:"amount" binding:"required,uint_string"`
	RequestDigest string `json:"request_digest" binding:"required,eth_hash"`
	CallbackURL   string `json:"callback_url" binding:"omitempty,callback_url"`
}

// QueryRecordResponse mirrors a pending query record.
type QueryRecordResponse struct {
	Hash           string `json:"hash"`
	Client         string `json:"client"`
	Asset          string `json:"asset"`
	Amount         string `json:"amount"`
	RequestDigest  string `json:"request_digest"`
	Nonce          uint64 `json:"nonce"`
	CallbackURL    string `json:"callback_url,omitempty"`
	SubmittedAt    string `json:"submitted_at"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

// QuerySubmissionResponse returns the binding hash the client needs for
// status polling and cancellation.
type QuerySubmissionResponse struct {
	Hash   string              `json:"hash"`
	Nonce  uint64              `json:"nonce"`
	Record QueryRecordResponse `json:"record"`
}

// FulfillQueryRequest settles a pending query. GasCostUsd is the fulfiller's
// measured execution cost in 18-decimal USD; Result is the raw computation
// output forwarded to the client callback.
type FulfillQueryRequest struct {
	Fulfiller  string `json:"fulfiller" binding:"required,eth_addr"`
	GasCostUsd string `json:"gas_cost_usd" binding:"required,uint_string"`
	Result     string `json:"result" binding:"omitempty,hex_bytes"`
}

// ---- Journal / reporting ----

// SettlementResponse mirrors one journal entry.
type SettlementResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Payer        string `json:"payer"`
	Recipient    string `json:"recipient"`
	SourceAsset  string `json:"source_asset"`
	SourceAmount string `json:"source_amount"`
	PayoutAsset  string `json:"payout_asset"`
	GrossAmount  string `json:"gross_amount"`
	FeeAmount    string `json:"fee_amount"`
	NetAmount    string `json:"net_amount"`
	RefundAmount string `json:"refund_amount,omitempty"`
	UsdValue     string `json:"usd_value"`
	BindingHash  string `json:"binding_hash"`
	Callback     string `json:"callback"`
	CreatedAt    string `json:"created_at"`
}

// ListSettlementsResponse is a paginated journal page.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
}

// StatsResponse carries aggregated journal statistics.
type StatsResponse struct {
	TotalSettlements int64  `json:"total_settlements"`
	Immediate        int64  `json:"immediate"`
	EscrowSettled    int64  `json:"escrow_settled"`
	QueriesFulfilled int64  `json:"queries_fulfilled"`
	QueriesCanceled  int64  `json:"queries_canceled"`
	TotalUsdValue    string `json:"total_usd_value"`
}
