package memory

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
)

// JournalRepo is an in-memory ports.JournalRepository.
type JournalRepo struct {
	mu      sync.RWMutex
	records []domain.SettlementRecord
}

func NewJournalRepo() *JournalRepo {
	return &JournalRepo{}
}

func (r *JournalRepo) Create(ctx context.Context, rec *domain.SettlementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *JournalRepo) GetByID(ctx context.Context, id string) (*domain.SettlementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.records {
		if r.records[i].ID.String() == id {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *JournalRepo) List(ctx context.Context, params ports.JournalListParams) ([]domain.SettlementRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.SettlementRecord
	for _, rec := range r.records {
		if params.Merchant != nil && rec.Recipient != *params.Merchant {
			continue
		}
		if params.Payer != nil && rec.Payer != *params.Payer {
			continue
		}
		if params.Type != nil && rec.Type != *params.Type {
			continue
		}
		if params.From != nil && rec.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && rec.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start < 0 || start >= len(result) {
		return []domain.SettlementRecord{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *JournalRepo) GetStats(ctx context.Context, merchant common.Address, periodStart *int64) (*ports.SettlementStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.SettlementStats{TotalUsdValue: big.NewInt(0)}
	for _, rec := range r.records {
		if rec.Recipient != merchant {
			continue
		}
		if periodStart != nil && rec.CreatedAt.Unix() < *periodStart {
			continue
		}
		stats.TotalSettlements++
		switch rec.Type {
		case domain.SettlementImmediate:
			stats.Immediate++
		case domain.SettlementEscrowSettle:
			stats.EscrowSettled++
		case domain.SettlementQueryFulfill:
			stats.QueriesFulfilled++
		case domain.SettlementQueryCancel:
			stats.QueriesCanceled++
		}
		if rec.UsdValue != nil {
			stats.TotalUsdValue.Add(stats.TotalUsdValue, rec.UsdValue)
		}
	}
	return stats, nil
}
