package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cross-asset-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// QueryRepo implements ports.QueryRepository.
type QueryRepo struct {
	pool Pool
}

// NewQueryRepo creates a new QueryRepo.
func NewQueryRepo(pool Pool) *QueryRepo {
	return &QueryRepo{pool: pool}
}

// NextNonce allocates the next submission nonce, starting at 1.
func (r *QueryRepo) NextNonce(ctx context.Context) (uint64, error) {
	var nonce int64
	err := dbFrom(ctx, r.pool).QueryRow(ctx, `SELECT nextval('query_nonce_seq')`).Scan(&nonce)
	if err != nil {
		return 0, fmt.Errorf("allocate query nonce: %w", err)
	}
	return uint64(nonce), nil
}

// Create inserts a pending query record.
func (r *QueryRepo) Create(ctx context.Context, rec *domain.QueryRecord) error {
	query := `INSERT INTO queries (hash, client, asset, amount, request_digest, nonce, callback_url, submitted_at, timeout_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		rec.Hash.Bytes(), rec.Client.Bytes(), rec.Asset.Bytes(),
		rec.Amount.String(), rec.RequestDigest.Bytes(), int64(rec.Nonce),
		rec.CallbackURL, rec.SubmittedAt, int64(rec.Timeout/time.Second),
	)
	if err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}

// Get fetches a pending record by binding hash, nil when none exists.
func (r *QueryRepo) Get(ctx context.Context, hash common.Hash) (*domain.QueryRecord, error) {
	query := `SELECT hash, client, asset, amount, request_digest, nonce, callback_url, submitted_at, timeout_seconds
		FROM queries WHERE hash = $1`

	var (
		rec     domain.QueryRecord
		hashRaw []byte
		client  []byte
		asset   []byte
		amount  string
		digest  []byte
		nonce   int64
		timeout int64
	)
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, hash.Bytes()).Scan(
		&hashRaw, &client, &asset, &amount, &digest, &nonce,
		&rec.CallbackURL, &rec.SubmittedAt, &timeout,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get query record: %w", err)
	}
	rec.Hash = common.BytesToHash(hashRaw)
	rec.Client = common.BytesToAddress(client)
	rec.Asset = common.BytesToAddress(asset)
	rec.RequestDigest = common.BytesToHash(digest)
	rec.Nonce = uint64(nonce)
	rec.Timeout = time.Duration(timeout) * time.Second
	rec.Amount, _ = new(big.Int).SetString(amount, 10)
	if rec.Amount == nil {
		return nil, fmt.Errorf("malformed query amount %q", amount)
	}
	return &rec, nil
}

// Delete removes a pending record. Fulfillment and cancellation both go
// through here first, which is what makes them mutually exclusive.
func (r *QueryRepo) Delete(ctx context.Context, hash common.Hash) error {
	_, err := dbFrom(ctx, r.pool).Exec(ctx, `DELETE FROM queries WHERE hash = $1`, hash.Bytes())
	if err != nil {
		return fmt.Errorf("delete query record: %w", err)
	}
	return nil
}
