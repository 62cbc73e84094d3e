package service

import (
	"context"
	"encoding/json"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	journalRepo ports.JournalRepository
	cache       ports.SettlementCache
	log         zerolog.Logger
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	journalRepo ports.JournalRepository,
	cache ports.SettlementCache,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		journalRepo: journalRepo,
		cache:       cache,
		log:         log,
	}
}

// GetSettlement returns one journal entry, reading through the cache.
func (s *reportingService) GetSettlement(ctx context.Context, id string) (*domain.SettlementRecord, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("settlement_id", id).Msg("settlement cache read failed, falling through to journal")
	}
	if cached != nil {
		var rec domain.SettlementRecord
		if err := json.Unmarshal(cached, &rec); err == nil {
			return &rec, nil
		}
	}

	rec, err := s.journalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrStorageError(err)
	}
	if rec == nil {
		return nil, apperror.ErrSettlementNotFound()
	}
	return rec, nil
}

// ListSettlements returns a paginated slice of journal entries.
func (s *reportingService) ListSettlements(ctx context.Context, params ports.JournalListParams) ([]domain.SettlementRecord, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	recs, total, err := s.journalRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrStorageError(err)
	}
	return recs, total, nil
}

// GetStats returns aggregated settlement stats for the merchant.
func (s *reportingService) GetStats(ctx context.Context, merchant common.Address, period string) (*ports.SettlementStats, error) {
	var periodStart *int64

	switch period {
	case "day":
		t := time.Now().AddDate(0, 0, -1).Unix()
		periodStart = &t
	case "week":
		t := time.Now().AddDate(0, 0, -7).Unix()
		periodStart = &t
	case "month":
		t := time.Now().AddDate(0, -1, 0).Unix()
		periodStart = &t
	case "all", "":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be day, week, month, or all")
	}

	stats, err := s.journalRepo.GetStats(ctx, merchant, periodStart)
	if err != nil {
		return nil, apperror.ErrStorageError(err)
	}
	return stats, nil
}
