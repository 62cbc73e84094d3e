package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

func TestAssetConfig_IsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  *AssetConfig
		want bool
	}{
		{"nil config", nil, false},
		{"zero feed", &AssetConfig{Asset: addr(1)}, false},
		{"configured", &AssetConfig{Asset: addr(1), Feed: addr(2)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsConfigured())
		})
	}
}

func TestRoundData_IsComplete(t *testing.T) {
	base := RoundData{
		RoundID:         big.NewInt(10),
		Answer:          big.NewInt(2000),
		StartedAt:       1_700_000_000,
		UpdatedAt:       1_700_000_000,
		AnsweredInRound: big.NewInt(10),
	}

	tests := []struct {
		name   string
		mutate func(*RoundData)
		want   bool
	}{
		{"complete round", func(r *RoundData) {}, true},
		{"nil answer", func(r *RoundData) { r.Answer = nil }, false},
		{"zero answer", func(r *RoundData) { r.Answer = big.NewInt(0) }, false},
		{"negative answer", func(r *RoundData) { r.Answer = big.NewInt(-1) }, false},
		{"unstarted round", func(r *RoundData) { r.StartedAt = 0 }, false},
		{"carried-over answer", func(r *RoundData) { r.AnsweredInRound = big.NewInt(9) }, false},
		{"later answer round", func(r *RoundData) { r.AnsweredInRound = big.NewInt(11) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			assert.Equal(t, tt.want, r.IsComplete())
		})
	}
}

func TestRoundData_IsFresh(t *testing.T) {
	now := time.Unix(1_700_000_100, 0)
	r := RoundData{UpdatedAt: 1_700_000_000}

	assert.True(t, r.IsFresh(now, 2*time.Minute))
	assert.True(t, r.IsFresh(now, 100*time.Second))
	assert.False(t, r.IsFresh(now, 99*time.Second))
}

func TestSwapPath_IsValid(t *testing.T) {
	tests := []struct {
		name string
		size int
		want bool
	}{
		{"empty", 0, false},
		{"short", 19, false},
		{"single asset", 20, true},
		{"one hop", 43, true},
		{"two hops", 66, true},
		{"torn hop", 44, false},
		{"missing fee tier", 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SwapPath(make([]byte, tt.size)).IsValid())
		})
	}
}

func TestSwapPath_Endpoints(t *testing.T) {
	p := hopPath(addr(1), addr(2), addr(3))

	assert.Equal(t, addr(1), p.Origin())
	assert.Equal(t, addr(3), p.Destination())
	assert.False(t, p.IsSingleAsset())

	single := SingleAssetPath(addr(7))
	assert.True(t, single.IsValid())
	assert.True(t, single.IsSingleAsset())
	assert.Equal(t, addr(7), single.Origin())
	assert.Equal(t, addr(7), single.Destination())
}

func TestSwapPath_Connect(t *testing.T) {
	in := hopPath(addr(1), addr(2))
	out := hopPath(addr(2), addr(3))

	joined, err := in.Connect(out)
	require.NoError(t, err)
	assert.True(t, joined.IsValid())
	assert.Equal(t, addr(1), joined.Origin())
	assert.Equal(t, addr(3), joined.Destination())
	// junction asset appears once
	assert.Len(t, joined, 66)
}

func TestSwapPath_Connect_Disjoint(t *testing.T) {
	in := hopPath(addr(1), addr(2))
	out := hopPath(addr(9), addr(3))

	_, err := in.Connect(out)
	assert.ErrorIs(t, err, ErrPathsDisjoint)
}

func TestSwapPath_Connect_SingleAssetEnds(t *testing.T) {
	in := SingleAssetPath(addr(2))
	out := hopPath(addr(2), addr(3))

	joined, err := in.Connect(out)
	require.NoError(t, err)
	assert.Equal(t, out, joined)

	joined, err = hopPath(addr(1), addr(2)).Connect(SingleAssetPath(addr(2)))
	require.NoError(t, err)
	assert.Equal(t, hopPath(addr(1), addr(2)), joined)
}

func TestSwapPath_Clone(t *testing.T) {
	p := hopPath(addr(1), addr(2))
	cp := p.Clone()
	cp[0] = 0xFF
	assert.Equal(t, addr(1), p.Origin())
}

func TestEscrowTransaction_BindingHash(t *testing.T) {
	tx := EscrowTransaction{
		Asset:     addr(1),
		Amount:    big.NewInt(1_000_000),
		Payer:     addr(2),
		Recipient: addr(3),
	}

	h := tx.BindingHash(1, 8453)
	assert.NotEqual(t, common.Hash{}, h)
	assert.Equal(t, h, tx.BindingHash(1, 8453))

	// every bound field perturbs the hash
	assert.NotEqual(t, h, tx.BindingHash(2, 8453))
	assert.NotEqual(t, h, tx.BindingHash(1, 1))

	altered := tx
	altered.Amount = big.NewInt(1_000_001)
	assert.NotEqual(t, h, altered.BindingHash(1, 8453))

	altered = tx
	altered.Recipient = addr(4)
	assert.NotEqual(t, h, altered.BindingHash(1, 8453))
}

func TestPayoutRecipient_ShareOf(t *testing.T) {
	tests := []struct {
		name  string
		bps   uint32
		total int64
		want  int64
	}{
		{"full share", PercentDenominator, 1000, 1000},
		{"half share", 5000, 1000, 500},
		{"floor rounding", 3333, 100, 33},
		{"tiny total", 5000, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PayoutRecipient{Address: addr(1), ShareBps: tt.bps}
			got := r.ShareOf(big.NewInt(tt.total))
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestQueryPayment_BindingHash(t *testing.T) {
	q := QueryPayment{
		Client:        addr(5),
		Asset:         addr(1),
		Amount:        big.NewInt(500),
		RequestDigest: common.HexToHash("0xabc123"),
	}

	h := q.BindingHash(8453, addr(9), 7)
	assert.Equal(t, h, q.BindingHash(8453, addr(9), 7))
	assert.NotEqual(t, h, q.BindingHash(8453, addr(9), 8))
	assert.NotEqual(t, h, q.BindingHash(1, addr(9), 7))
	assert.NotEqual(t, h, q.BindingHash(8453, addr(8), 7))

	altered := q
	altered.RequestDigest = common.HexToHash("0xdef456")
	assert.NotEqual(t, h, altered.BindingHash(8453, addr(9), 7))
}

func TestQueryRecord_Expired(t *testing.T) {
	submitted := time.Unix(1_700_000_000, 0)
	r := QueryRecord{SubmittedAt: submitted, Timeout: time.Hour}

	assert.False(t, r.Expired(submitted))
	assert.False(t, r.Expired(submitted.Add(time.Hour-time.Second)))
	assert.True(t, r.Expired(submitted.Add(time.Hour)))
	assert.True(t, r.Expired(submitted.Add(2*time.Hour)))
}

func TestSettlementType_Constants(t *testing.T) {
	assert.Equal(t, SettlementType("IMMEDIATE"), SettlementImmediate)
	assert.Equal(t, SettlementType("ESCROW_AUTHORIZE"), SettlementEscrowAuthorize)
	assert.Equal(t, SettlementType("ESCROW_SETTLE"), SettlementEscrowSettle)
	assert.Equal(t, SettlementType("QUERY_SUBMIT"), SettlementQuerySubmit)
	assert.Equal(t, SettlementType("QUERY_CANCEL"), SettlementQueryCancel)
	assert.Equal(t, SettlementType("QUERY_FULFILL"), SettlementQueryFulfill)
}

func TestCallbackStatus_Constants(t *testing.T) {
	assert.Equal(t, CallbackStatus("NONE"), CallbackNone)
	assert.Equal(t, CallbackStatus("DELIVERED"), CallbackDelivered)
	assert.Equal(t, CallbackStatus("FAILED"), CallbackFailed)
}

// hopPath builds a path joining the given assets with zeroed fee tiers.
func hopPath(assets ...common.Address) SwapPath {
	p := SwapPath(assets[0].Bytes())
	for _, a := range assets[1:] {
		p = append(p, 0, 0, 0)
		p = append(p, a.Bytes()...)
	}
	return p
}
