package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"cross-asset-gateway/config"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Dial connects to the chain RPC endpoint and verifies the chain ID matches
// the configured one.
func Dial(ctx context.Context, cfg config.ChainConfig, log zerolog.Logger) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("ethereum rpc dial: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fetching chain id: %w", err)
	}
	if chainID.Uint64() != cfg.ChainID {
		client.Close()
		return nil, fmt.Errorf("chain id mismatch: endpoint reports %d, configured %d", chainID.Uint64(), cfg.ChainID)
	}

	log.Info().
		Str("rpc_url", cfg.RPCURL).
		Uint64("chain_id", cfg.ChainID).
		Msg("Chain RPC connection established")

	return client, nil
}

func callMsg(to common.Address, data []byte) ethereum.CallMsg {
	return ethereum.CallMsg{To: &to, Data: data}
}

// txSender signs and broadcasts contract calls from the operator account.
type txSender struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

func newTxSender(client *ethclient.Client, privKeyHex string, chainID uint64) (*txSender, error) {
	key, err := crypto.HexToECDSA(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid operator key: %w", err)
	}
	return &txSender{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).SetUint64(chainID),
	}, nil
}

// call performs a read-only contract call.
func (s *txSender) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return s.client.CallContract(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data}, nil)
}

// send broadcasts a contract call as a transaction and waits for it to mine.
func (s *txSender) send(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	gasLimit, err := s.client.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, s.client, signed)
	if err != nil {
		return nil, fmt.Errorf("wait mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("tx %s reverted", signed.Hash().Hex())
	}
	return receipt, nil
}
