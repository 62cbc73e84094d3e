package postgres

import (
	"context"
	"math/big"
	"testing"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettlement() *domain.SettlementRecord {
	return &domain.SettlementRecord{
		ID:           uuid.New(),
		Type:         domain.SettlementImmediate,
		Payer:        testAddr(4),
		Recipient:    testAddr(9),
		SourceAsset:  testAddr(1),
		SourceAmount: big.NewInt(1000),
		PayoutAsset:  testAddr(2),
		GrossAmount:  big.NewInt(990),
		FeeAmount:    big.NewInt(10),
		NetAmount:    big.NewInt(980),
		RefundAmount: nil,
		UsdValue:     big.NewInt(100),
		BindingHash:  common.Hash{},
		Callback:     domain.CallbackNone,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func settlementColumns() []string {
	return []string{"id", "type", "payer", "recipient", "source_asset", "source_amount",
		"payout_asset", "gross_amount", "fee_amount", "net_amount", "refund_amount",
		"usd_value", "binding_hash", "callback", "created_at"}
}

func settlementRow(rec *domain.SettlementRecord) *pgxmock.Rows {
	return pgxmock.NewRows(settlementColumns()).AddRow(
		rec.ID, string(rec.Type), rec.Payer.Bytes(), rec.Recipient.Bytes(),
		rec.SourceAsset.Bytes(), encodeAmount(rec.SourceAmount),
		rec.PayoutAsset.Bytes(), encodeAmount(rec.GrossAmount),
		encodeAmount(rec.FeeAmount), encodeAmount(rec.NetAmount),
		encodeAmount(rec.RefundAmount), encodeAmount(rec.UsdValue),
		rec.BindingHash.Bytes(), string(rec.Callback), rec.CreatedAt,
	)
}

func TestJournalRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	rec := newTestSettlement()

	mock.ExpectExec("INSERT INTO settlements").
		WithArgs(rec.ID, string(rec.Type), rec.Payer.Bytes(), rec.Recipient.Bytes(),
			rec.SourceAsset.Bytes(), encodeAmount(rec.SourceAmount),
			rec.PayoutAsset.Bytes(), encodeAmount(rec.GrossAmount),
			encodeAmount(rec.FeeAmount), encodeAmount(rec.NetAmount),
			encodeAmount(rec.RefundAmount), encodeAmount(rec.UsdValue),
			rec.BindingHash.Bytes(), string(rec.Callback), rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	rec := newTestSettlement()

	mock.ExpectQuery("SELECT .+ FROM settlements WHERE id").
		WithArgs(rec.ID.String()).
		WillReturnRows(settlementRow(rec))

	result, err := repo.GetByID(context.Background(), rec.ID.String())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, rec.ID, result.ID)
	assert.Equal(t, rec.Type, result.Type)
	assert.Equal(t, rec.SourceAmount, result.SourceAmount)
	assert.Nil(t, result.RefundAmount)
	assert.Equal(t, rec.UsdValue, result.UsdValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM settlements WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(settlementColumns()))

	result, err := repo.GetByID(context.Background(), uuid.New().String())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_List_FiltersByMerchant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	rec := newTestSettlement()
	merchant := rec.Recipient

	mock.ExpectQuery("SELECT COUNT.+ FROM settlements WHERE recipient").
		WithArgs(merchant.Bytes()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM settlements WHERE recipient .+ ORDER BY created_at DESC").
		WithArgs(merchant.Bytes(), 20, 0).
		WillReturnRows(settlementRow(rec))

	recs, total, err := repo.List(context.Background(), ports.JournalListParams{
		Merchant: &merchant,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	merchant := testAddr(9)

	mock.ExpectQuery("SELECT .+ FROM settlements WHERE recipient").
		WithArgs(merchant.Bytes()).
		WillReturnRows(pgxmock.NewRows(
			[]string{"total", "immediate", "escrow_settled", "queries_fulfilled", "queries_canceled", "total_usd"},
		).AddRow(int64(5), int64(3), int64(1), int64(1), int64(0), "350"))

	stats, err := repo.GetStats(context.Background(), merchant, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalSettlements)
	assert.Equal(t, int64(3), stats.Immediate)
	assert.Equal(t, int64(350), stats.TotalUsdValue.Int64())
	assert.NoError(t, mock.ExpectationsWereMet())
}
