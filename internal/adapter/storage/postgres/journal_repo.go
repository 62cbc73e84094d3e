package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// JournalRepo implements ports.JournalRepository. Amounts are stored as
// decimal strings so values beyond int64 survive the round trip.
type JournalRepo struct {
	pool Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

const journalColumns = `id, type, payer, recipient, source_asset, source_amount,
	payout_asset, gross_amount, fee_amount, net_amount, refund_amount, usd_value,
	binding_hash, callback, created_at`

// Create inserts a settlement journal entry.
func (r *JournalRepo) Create(ctx context.Context, rec *domain.SettlementRecord) error {
	query := `INSERT INTO settlements (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, query,
		rec.ID, string(rec.Type), rec.Payer.Bytes(), rec.Recipient.Bytes(),
		rec.SourceAsset.Bytes(), encodeAmount(rec.SourceAmount),
		rec.PayoutAsset.Bytes(), encodeAmount(rec.GrossAmount),
		encodeAmount(rec.FeeAmount), encodeAmount(rec.NetAmount),
		encodeAmount(rec.RefundAmount), encodeAmount(rec.UsdValue),
		rec.BindingHash.Bytes(), string(rec.Callback), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// GetByID fetches a journal entry by UUID, nil when absent.
func (r *JournalRepo) GetByID(ctx context.Context, id string) (*domain.SettlementRecord, error) {
	query := `SELECT ` + journalColumns + ` FROM settlements WHERE id = $1`

	rec, err := scanSettlement(dbFrom(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement by id: %w", err)
	}
	return rec, nil
}

// List fetches journal entries with filtering and pagination, newest first.
func (r *JournalRepo) List(ctx context.Context, params ports.JournalListParams) ([]domain.SettlementRecord, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Merchant != nil {
		conditions = append(conditions, fmt.Sprintf("recipient = $%d", argIdx))
		args = append(args, params.Merchant.Bytes())
		argIdx++
	}
	if params.Payer != nil {
		conditions = append(conditions, fmt.Sprintf("payer = $%d", argIdx))
		args = append(args, params.Payer.Bytes())
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, string(*params.Type))
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	var where string
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM settlements %s", where)
	var total int64
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count settlements: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM settlements %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		journalColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := dbFrom(ctx, r.pool).Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var recs []domain.SettlementRecord
	for rows.Next() {
		rec, err := scanSettlement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan settlement row: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate settlement rows: %w", err)
	}
	return recs, total, nil
}

// GetStats retrieves aggregated settlement statistics for a merchant.
func (r *JournalRepo) GetStats(ctx context.Context, merchant common.Address, periodStart *int64) (*ports.SettlementStats, error) {
	args := []any{merchant.Bytes()}
	condition := "recipient = $1"
	if periodStart != nil {
		condition += " AND created_at >= to_timestamp($2)"
		args = append(args, *periodStart)
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE type = 'IMMEDIATE') AS immediate,
		COUNT(*) FILTER (WHERE type = 'ESCROW_SETTLE') AS escrow_settled,
		COUNT(*) FILTER (WHERE type = 'QUERY_FULFILL') AS queries_fulfilled,
		COUNT(*) FILTER (WHERE type = 'QUERY_CANCEL') AS queries_canceled,
		COALESCE(SUM(usd_value::numeric), 0)::text AS total_usd
		FROM settlements WHERE %s`, condition)

	stats := &ports.SettlementStats{}
	var totalUsd string
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&stats.TotalSettlements, &stats.Immediate, &stats.EscrowSettled,
		&stats.QueriesFulfilled, &stats.QueriesCanceled, &totalUsd,
	)
	if err != nil {
		return nil, fmt.Errorf("get settlement stats: %w", err)
	}
	stats.TotalUsdValue, _ = new(big.Int).SetString(totalUsd, 10)
	if stats.TotalUsdValue == nil {
		return nil, fmt.Errorf("malformed usd total %q", totalUsd)
	}
	return stats, nil
}

func scanSettlement(row pgx.Row) (*domain.SettlementRecord, error) {
	var (
		rec          domain.SettlementRecord
		recType      string
		payer        []byte
		recipient    []byte
		sourceAsset  []byte
		sourceAmount *string
		payoutAsset  []byte
		grossAmount  *string
		feeAmount    *string
		netAmount    *string
		refundAmount *string
		usdValue     *string
		bindingHash  []byte
		callback     string
	)
	err := row.Scan(
		&rec.ID, &recType, &payer, &recipient, &sourceAsset, &sourceAmount,
		&payoutAsset, &grossAmount, &feeAmount, &netAmount, &refundAmount,
		&usdValue, &bindingHash, &callback, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Type = domain.SettlementType(recType)
	rec.Payer = common.BytesToAddress(payer)
	rec.Recipient = common.BytesToAddress(recipient)
	rec.SourceAsset = common.BytesToAddress(sourceAsset)
	rec.PayoutAsset = common.BytesToAddress(payoutAsset)
	rec.BindingHash = common.BytesToHash(bindingHash)
	rec.Callback = domain.CallbackStatus(callback)
	rec.SourceAmount = decodeAmount(sourceAmount)
	rec.GrossAmount = decodeAmount(grossAmount)
	rec.FeeAmount = decodeAmount(feeAmount)
	rec.NetAmount = decodeAmount(netAmount)
	rec.RefundAmount = decodeAmount(refundAmount)
	rec.UsdValue = decodeAmount(usdValue)
	return &rec, nil
}

func encodeAmount(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func decodeAmount(s *string) *big.Int {
	if s == nil {
		return nil
	}
	v, _ := new(big.Int).SetString(*s, 10)
	return v
}
