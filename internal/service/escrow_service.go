package service

import (
	"context"
	"fmt"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

const consumedHashTTL = 7 * 24 * time.Hour

// EscrowServiceImpl implements ports.EscrowService. A stored nonce of 0 means
// not authorized; live authorizations carry the nonce that was folded into
// their binding hash.
type EscrowServiceImpl struct {
	escrowRepo ports.EscrowStateRepository
	consumed   ports.ConsumedHashStore
	chainID    uint64
	log        zerolog.Logger
}

// NewEscrowService creates a new EscrowServiceImpl.
func NewEscrowService(
	escrowRepo ports.EscrowStateRepository,
	consumed ports.ConsumedHashStore,
	chainID uint64,
	log zerolog.Logger,
) *EscrowServiceImpl {
	return &EscrowServiceImpl{
		escrowRepo: escrowRepo,
		consumed:   consumed,
		chainID:    chainID,
		log:        log,
	}
}

// Authorize allocates the next nonce and persists the binding hash.
func (s *EscrowServiceImpl) Authorize(ctx context.Context, tx domain.EscrowTransaction) (uint64, common.Hash, error) {
	nonce, err := s.escrowRepo.NextNonce(ctx)
	if err != nil {
		return 0, common.Hash{}, apperror.ErrStorageError(fmt.Errorf("allocate nonce: %w", err))
	}

	hash := tx.BindingHash(nonce, s.chainID)
	if err := s.escrowRepo.PutHash(ctx, hash, nonce); err != nil {
		return 0, common.Hash{}, apperror.ErrStorageError(fmt.Errorf("put hash: %w", err))
	}

	s.log.Info().
		Str("hash", hash.Hex()).
		Uint64("nonce", nonce).
		Str("payer", tx.Payer.Hex()).
		Str("asset", tx.Asset.Hex()).
		Msg("escrow authorized")
	return nonce, hash, nil
}

// Settle verifies the presented transaction against the stored authorization
// and consumes it. The authorization is gone before any funds move, so a
// nested call observing the same hash fails.
func (s *EscrowServiceImpl) Settle(ctx context.Context, tx domain.EscrowTransaction, hash common.Hash) error {
	// Fast path: already-consumed hashes fail without a primary storage read.
	if done, err := s.consumed.IsConsumed(ctx, hash); err != nil {
		s.log.Warn().Err(err).Str("hash", hash.Hex()).Msg("consumed-hash check failed, falling through to primary storage")
	} else if done {
		return apperror.ErrTransactionNotAuthorized()
	}

	nonce, err := s.escrowRepo.NonceForHash(ctx, hash)
	if err != nil {
		return apperror.ErrStorageError(fmt.Errorf("read hash: %w", err))
	}
	if nonce == 0 {
		return apperror.ErrTransactionNotAuthorized()
	}

	if tx.BindingHash(nonce, s.chainID) != hash {
		s.log.Warn().
			Str("hash", hash.Hex()).
			Uint64("nonce", nonce).
			Str("payer", tx.Payer.Hex()).
			Msg("settlement fields do not match authorization")
		return apperror.ErrTransactionHashMismatch()
	}

	if err := s.escrowRepo.DeleteHash(ctx, hash); err != nil {
		return apperror.ErrStorageError(fmt.Errorf("consume hash: %w", err))
	}

	// Best-effort tombstone; primary storage already rejects replays.
	if _, err := s.consumed.MarkConsumed(ctx, hash, consumedHashTTL); err != nil {
		s.log.Warn().Err(err).Str("hash", hash.Hex()).Msg("failed to tombstone consumed hash")
	}

	s.log.Info().Str("hash", hash.Hex()).Uint64("nonce", nonce).Msg("escrow settled")
	return nil
}

// NonceOf returns the stored nonce for a hash, 0 if not authorized.
func (s *EscrowServiceImpl) NonceOf(ctx context.Context, hash common.Hash) (uint64, error) {
	nonce, err := s.escrowRepo.NonceForHash(ctx, hash)
	if err != nil {
		return 0, apperror.ErrStorageError(fmt.Errorf("read hash: %w", err))
	}
	return nonce, nil
}
