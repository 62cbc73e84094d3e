package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Asset Valuation (VAL) ----

// ErrInvalidPriceFeed is returned when a feed cannot be queried at
// configuration time.
func ErrInvalidPriceFeed(err error) *AppError {
	return Wrap("VAL_001", "Invalid price feed", http.StatusBadRequest, err)
}

// ErrInvalidPriceFeedData is returned when a feed answers with a non-positive
// price or an incomplete round.
func ErrInvalidPriceFeedData() *AppError {
	return New("VAL_002", "Invalid price feed data", http.StatusBadGateway)
}

// ErrStalePriceFeedData is returned when the latest round is older than the
// asset's staleness bound. The caller may retry once the feed updates.
func ErrStalePriceFeedData() *AppError {
	return New("VAL_003", "Stale price feed data", http.StatusBadGateway)
}

// ErrAssetNotFound is returned for any pricing operation on an asset with no
// stored configuration.
func ErrAssetNotFound() *AppError {
	return New("VAL_004", "Asset not configured", http.StatusNotFound)
}

// ErrValueOutOfRange is returned when a fixed-point conversion exceeds the
// 256-bit numeric range instead of being truncated.
func ErrValueOutOfRange() *AppError {
	return New("VAL_005", "Conversion result out of numeric range", http.StatusUnprocessableEntity)
}

// ---- Swap Path Routing (PATH) ----

func ErrInvalidSwapPath() *AppError {
	return New("PATH_001", "Malformed swap path encoding", http.StatusBadRequest)
}

func ErrPathMustEndInReferenceAsset() *AppError {
	return New("PATH_002", "Source path must terminate in the reference asset", http.StatusBadRequest)
}

func ErrPathMustStartInReferenceAsset() *AppError {
	return New("PATH_003", "Target path must originate in the reference asset", http.StatusBadRequest)
}

func ErrPathsDoNotConnect() *AppError {
	return New("PATH_004", "Swap paths do not share a junction asset", http.StatusUnprocessableEntity)
}

func ErrPathNotFound(kind string) *AppError {
	return New("PATH_005", fmt.Sprintf("No %s path configured", kind), http.StatusNotFound)
}

// ---- Escrow Protocol (ESC) ----

// ErrTransactionNotAuthorized is returned when a settlement hash maps to no
// live authorization (never issued, already settled, or canceled).
func ErrTransactionNotAuthorized() *AppError {
	return New("ESC_001", "Transaction not authorized", http.StatusConflict)
}

// ErrTransactionHashMismatch is returned when the claimed hash does not match
// the hash recomputed from the presented transaction fields.
func ErrTransactionHashMismatch() *AppError {
	return New("ESC_002", "Transaction hash mismatch", http.StatusConflict)
}

// ErrZeroAmountReceived is returned when a custody pull delivered nothing.
func ErrZeroAmountReceived() *AppError {
	return New("ESC_003", "Zero amount received", http.StatusBadRequest)
}

// ---- Merchant Payout (PAYOUT) ----

func ErrNoPayoutRecipients() *AppError {
	return New("PAYOUT_001", "Payout config must name at least one recipient", http.StatusBadRequest)
}

func ErrPayoutArrayLengthMismatch() *AppError {
	return New("PAYOUT_002", "Payout recipients and percentages differ in length", http.StatusBadRequest)
}

func ErrZeroPayoutPercentage() *AppError {
	return New("PAYOUT_003", "Payout percentage must be non-zero", http.StatusBadRequest)
}

func ErrPayoutAddressCannotBeZero() *AppError {
	return New("PAYOUT_004", "Payout address cannot be the zero address", http.StatusBadRequest)
}

func ErrInvalidPayoutPercentageSum() *AppError {
	return New("PAYOUT_005", "Payout percentages must sum to exactly 100%", http.StatusBadRequest)
}

// ---- Payment Orchestration (PAY) ----

// ErrInsufficientPayment is returned when a payment values below the item's
// configured price floor.
func ErrInsufficientPayment() *AppError {
	return New("PAY_001", "Payment below item price floor", http.StatusPaymentRequired)
}

func ErrMerchantNotConfigured() *AppError {
	return New("PAY_002", "Merchant has no payout configuration", http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_003", "Invalid amount", http.StatusBadRequest)
}

// ---- Query Lifecycle (QRY) ----

// ErrQueryNotFound is returned when no pending record exists for a query
// hash: either it was never submitted or it was already fulfilled/canceled.
func ErrQueryNotFound() *AppError {
	return New("QRY_001", "Query payment not found", http.StatusNotFound)
}

func ErrQueryTimeoutNotReached() *AppError {
	return New("QRY_002", "Query cancellation window not yet open", http.StatusConflict)
}

// ---- Reporting (REP) ----

func ErrSettlementNotFound() *AppError {
	return New("REP_001", "Settlement record not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorageError(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

func ErrSwapExecutionFailed(err error) *AppError {
	return Wrap("SYS_002", "Swap execution failed", http.StatusBadGateway, err)
}

func ErrTransferFailed(err error) *AppError {
	return Wrap("SYS_003", "Token transfer failed", http.StatusBadGateway, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_003-style validation error.
func Validation(message string) *AppError {
	return New("PAY_003", message, http.StatusBadRequest)
}
