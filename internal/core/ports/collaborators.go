package ports

import (
	"context"
	"math/big"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// PriceFeed is one oracle aggregator answering prices in USD.
type PriceFeed interface {
	LatestRoundData(ctx context.Context) (domain.RoundData, error)
	Decimals(ctx context.Context) (uint8, error)
}

// FeedProvider resolves a feed client from its configured address.
type FeedProvider interface {
	Feed(address common.Address) PriceFeed
}

// TokenService moves token balances between accounts. Amounts are in the
// token's smallest unit.
type TokenService interface {
	BalanceOf(ctx context.Context, asset common.Address, account common.Address) (*big.Int, error)
	// TransferFrom pulls from a payer into custody using prior approval.
	TransferFrom(ctx context.Context, asset common.Address, from common.Address, to common.Address, amount *big.Int) error
	// Transfer pays out from custody.
	Transfer(ctx context.Context, asset common.Address, to common.Address, amount *big.Int) error
}

// SwapExecutor performs an exact-input multi-hop swap along an encoded path.
// It returns the amount of the destination asset received.
type SwapExecutor interface {
	SwapExactInput(ctx context.Context, path domain.SwapPath, recipient common.Address, deadline time.Time, amountIn *big.Int, minAmountOut *big.Int) (*big.Int, error)
}

// CallbackInvoker delivers a query result to the requesting client. The call
// is bounded by the context deadline; failure is reported, never propagated
// into the settlement that triggered it.
type CallbackInvoker interface {
	Invoke(ctx context.Context, req CallbackRequest) error
}

// CallbackRequest holds the payload of one result delivery.
type CallbackRequest struct {
	URL           string
	Client        common.Address
	QueryHash     common.Hash
	RequestDigest common.Hash
	Result        []byte
}
