package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EscrowTransaction describes funds held in custody pending settlement.
// The transaction itself is never persisted; only its binding hash is.
type EscrowTransaction struct {
	Asset     common.Address `json:"asset"`
	Amount    *big.Int       `json:"amount"`
	Payer     common.Address `json:"payer"`
	Recipient common.Address `json:"recipient"`
}

// BindingHash commits to the transaction fields, the authorization nonce and
// the chain identifier. Binding the nonce inside the hash makes the hash a
// verifiable commitment: a settlement attempt presenting different fields is
// rejected even if it guesses a live nonce.
func (t EscrowTransaction) BindingHash(nonce uint64, chainID uint64) common.Hash {
	return crypto.Keccak256Hash(
		t.Payer.Bytes(),
		t.Recipient.Bytes(),
		t.Asset.Bytes(),
		common.LeftPadBytes(t.Amount.Bytes(), 32),
		common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32),
		common.LeftPadBytes(new(big.Int).SetUint64(chainID).Bytes(), 32),
	)
}
