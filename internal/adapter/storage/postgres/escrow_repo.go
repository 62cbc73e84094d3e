package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// EscrowRepo implements ports.EscrowStateRepository. Nonces come from a
// database sequence, so they are strictly increasing even across restarts
// and concurrent authorizations.
type EscrowRepo struct {
	pool Pool
}

// NewEscrowRepo creates a new EscrowRepo.
func NewEscrowRepo(pool Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

// NextNonce allocates the next authorization nonce, starting at 1.
func (r *EscrowRepo) NextNonce(ctx context.Context) (uint64, error) {
	var nonce int64
	err := dbFrom(ctx, r.pool).QueryRow(ctx, `SELECT nextval('escrow_nonce_seq')`).Scan(&nonce)
	if err != nil {
		return 0, fmt.Errorf("allocate escrow nonce: %w", err)
	}
	return uint64(nonce), nil
}

// PutHash records a live authorization under its binding hash.
func (r *EscrowRepo) PutHash(ctx context.Context, hash common.Hash, nonce uint64) error {
	query := `INSERT INTO escrow_hashes (hash, nonce) VALUES ($1, $2)`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query, hash.Bytes(), int64(nonce))
	if err != nil {
		return fmt.Errorf("put escrow hash: %w", err)
	}
	return nil
}

// NonceForHash fetches the nonce bound to a hash, 0 when not authorized.
func (r *EscrowRepo) NonceForHash(ctx context.Context, hash common.Hash) (uint64, error) {
	var nonce int64
	err := dbFrom(ctx, r.pool).QueryRow(ctx, `SELECT nonce FROM escrow_hashes WHERE hash = $1`, hash.Bytes()).Scan(&nonce)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get escrow nonce: %w", err)
	}
	return uint64(nonce), nil
}

// DeleteHash removes a settled or voided authorization.
func (r *EscrowRepo) DeleteHash(ctx context.Context, hash common.Hash) error {
	_, err := dbFrom(ctx, r.pool).Exec(ctx, `DELETE FROM escrow_hashes WHERE hash = $1`, hash.Bytes())
	if err != nil {
		return fmt.Errorf("delete escrow hash: %w", err)
	}
	return nil
}
