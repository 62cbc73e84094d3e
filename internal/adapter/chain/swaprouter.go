package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

const swapRouterABIJSON = `[
	{"inputs":[{"components":[
		{"name":"path","type":"bytes"},
		{"name":"recipient","type":"address"},
		{"name":"deadline","type":"uint256"},
		{"name":"amountIn","type":"uint256"},
		{"name":"amountOutMinimum","type":"uint256"}
	],"name":"params","type":"tuple"}],
	"name":"exactInput","outputs":[{"name":"amountOut","type":"uint256"}],
	"stateMutability":"payable","type":"function"}
]`

var swapRouterABI = mustParseABI(swapRouterABIJSON)

type exactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// SwapRouter implements ports.SwapExecutor against an exact-input router
// contract. The expected output is read with a simulated call before the
// transaction is broadcast.
type SwapRouter struct {
	sender *txSender
	router common.Address
	log    zerolog.Logger
}

// NewSwapRouter creates a swap executor bound to the router contract.
func NewSwapRouter(client *ethclient.Client, router common.Address, privKeyHex string, chainID uint64, log zerolog.Logger) (*SwapRouter, error) {
	sender, err := newTxSender(client, privKeyHex, chainID)
	if err != nil {
		return nil, err
	}
	return &SwapRouter{sender: sender, router: router, log: log}, nil
}

// SwapExactInput swaps amountIn along the encoded path and returns the amount
// of the destination asset received.
func (s *SwapRouter) SwapExactInput(ctx context.Context, path domain.SwapPath, recipient common.Address, deadline time.Time, amountIn *big.Int, minAmountOut *big.Int) (*big.Int, error) {
	data, err := swapRouterABI.Pack("exactInput", exactInputParams{
		Path:             []byte(path),
		Recipient:        recipient,
		Deadline:         big.NewInt(deadline.Unix()),
		AmountIn:         amountIn,
		AmountOutMinimum: minAmountOut,
	})
	if err != nil {
		return nil, fmt.Errorf("pack exactInput: %w", err)
	}

	raw, err := s.sender.call(ctx, s.router, data)
	if err != nil {
		return nil, fmt.Errorf("simulate exactInput: %w", err)
	}
	out, err := swapRouterABI.Unpack("exactInput", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack exactInput: %w", err)
	}
	amountOut := out[0].(*big.Int)

	receipt, err := s.sender.send(ctx, s.router, data)
	if err != nil {
		return nil, fmt.Errorf("exactInput: %w", err)
	}

	s.log.Debug().
		Str("recipient", recipient.Hex()).
		Str("amount_in", amountIn.String()).
		Str("amount_out", amountOut.String()).
		Str("tx_hash", receipt.TxHash.Hex()).
		Msg("swap mined")
	return amountOut, nil
}
