package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// QueryPayment is a payment escrowed against a pending off-system computation.
type QueryPayment struct {
	Client        common.Address `json:"client"`
	Asset         common.Address `json:"asset"`
	Amount        *big.Int       `json:"amount"`
	RequestDigest common.Hash    `json:"request_digest"`
}

// BindingHash keys the pending query record. The submission nonce and the
// engine's own identity are bound in so records from different deployments or
// resubmissions of the same request never collide.
func (q QueryPayment) BindingHash(chainID uint64, engine common.Address, nonce uint64) common.Hash {
	return crypto.Keccak256Hash(
		common.LeftPadBytes(new(big.Int).SetUint64(chainID).Bytes(), 32),
		engine.Bytes(),
		common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32),
		q.RequestDigest.Bytes(),
		q.Client.Bytes(),
		q.Asset.Bytes(),
		common.LeftPadBytes(q.Amount.Bytes(), 32),
	)
}

// QueryRecord is the persisted pending state of a submitted query. The record
// is deleted on fulfillment or cancellation; deletion is what makes the two
// transitions mutually exclusive.
type QueryRecord struct {
	Hash          common.Hash    `json:"hash"`
	Client        common.Address `json:"client"`
	Asset         common.Address `json:"asset"`
	Amount        *big.Int       `json:"amount"`
	RequestDigest common.Hash    `json:"request_digest"`
	Nonce         uint64         `json:"nonce"`
	CallbackURL   string         `json:"callback_url"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	Timeout       time.Duration  `json:"timeout"`
}

// Expired reports whether the cancellation window is open at the given
// instant. The boundary itself is cancellable.
func (r QueryRecord) Expired(now time.Time) bool {
	return !now.Before(r.SubmittedAt.Add(r.Timeout))
}
