package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

const erc20ABIJSON = `[
	{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

// TokenClient implements ports.TokenService against ERC-20 contracts, signing
// transfers with the operator key.
type TokenClient struct {
	sender *txSender
	log    zerolog.Logger
}

// NewTokenClient creates a token client for the operator account.
func NewTokenClient(client *ethclient.Client, privKeyHex string, chainID uint64, log zerolog.Logger) (*TokenClient, error) {
	sender, err := newTxSender(client, privKeyHex, chainID)
	if err != nil {
		return nil, err
	}
	return &TokenClient{sender: sender, log: log}, nil
}

// BalanceOf reads an account's token balance.
func (t *TokenClient) BalanceOf(ctx context.Context, asset common.Address, account common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	raw, err := t.sender.call(ctx, asset, data)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	out, err := erc20ABI.Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	return out[0].(*big.Int), nil
}

// TransferFrom pulls tokens from an approved account.
func (t *TokenClient) TransferFrom(ctx context.Context, asset common.Address, from common.Address, to common.Address, amount *big.Int) error {
	data, err := erc20ABI.Pack("transferFrom", from, to, amount)
	if err != nil {
		return fmt.Errorf("pack transferFrom: %w", err)
	}

	receipt, err := t.sender.send(ctx, asset, data)
	if err != nil {
		return fmt.Errorf("transferFrom: %w", err)
	}

	t.log.Debug().
		Str("asset", asset.Hex()).
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Str("amount", amount.String()).
		Str("tx_hash", receipt.TxHash.Hex()).
		Msg("transferFrom mined")
	return nil
}

// Transfer pays tokens out of the operator account.
func (t *TokenClient) Transfer(ctx context.Context, asset common.Address, to common.Address, amount *big.Int) error {
	data, err := erc20ABI.Pack("transfer", to, amount)
	if err != nil {
		return fmt.Errorf("pack transfer: %w", err)
	}

	receipt, err := t.sender.send(ctx, asset, data)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	t.log.Debug().
		Str("asset", asset.Hex()).
		Str("to", to.Hex()).
		Str("amount", amount.String()).
		Str("tx_hash", receipt.TxHash.Hex()).
		Msg("transfer mined")
	return nil
}
