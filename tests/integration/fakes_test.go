package integration

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
)

// fakeTokenLedger implements ports.TokenService over an in-memory balance
// sheet. Transfer always debits the custody account, mirroring how the real
// client signs with the operator key.
type fakeTokenLedger struct {
	mu       sync.Mutex
	custody  common.Address
	balances map[common.Address]map[common.Address]*big.Int
}

func newFakeTokenLedger(custody common.Address) *fakeTokenLedger {
	return &fakeTokenLedger{
		custody:  custody,
		balances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (l *fakeTokenLedger) balance(asset, account common.Address) *big.Int {
	accounts, ok := l.balances[asset]
	if !ok {
		return big.NewInt(0)
	}
	bal, ok := accounts[account]
	if !ok {
		return big.NewInt(0)
	}
	return bal
}

func (l *fakeTokenLedger) adjust(asset, account common.Address, delta *big.Int) {
	accounts, ok := l.balances[asset]
	if !ok {
		accounts = make(map[common.Address]*big.Int)
		l.balances[asset] = accounts
	}
	bal, ok := accounts[account]
	if !ok {
		bal = big.NewInt(0)
		accounts[account] = bal
	}
	bal.Add(bal, delta)
}

// Balance reads an account balance for assertions.
func (l *fakeTokenLedger) Balance(asset, account common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance(asset, account))
}

// Mint credits an account out of thin air, for swap outputs and test setup.
func (l *fakeTokenLedger) Mint(asset, account common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.adjust(asset, account, amount)
}

func (l *fakeTokenLedger) BalanceOf(_ context.Context, asset common.Address, account common.Address) (*big.Int, error) {
	return l.Balance(asset, account), nil
}

func (l *fakeTokenLedger) TransferFrom(_ context.Context, asset common.Address, from common.Address, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.adjust(asset, from, new(big.Int).Neg(amount))
	l.adjust(asset, to, amount)
	return nil
}

func (l *fakeTokenLedger) Transfer(_ context.Context, asset common.Address, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.adjust(asset, l.custody, new(big.Int).Neg(amount))
	l.adjust(asset, to, amount)
	return nil
}

// fakeFeed implements ports.PriceFeed with a fixed answer.
type fakeFeed struct {
	answer   *big.Int
	decimals uint8
}

func (f *fakeFeed) LatestRoundData(context.Context) (domain.RoundData, error) {
	now := time.Now().Unix()
	return domain.RoundData{
		RoundID:         big.NewInt(1),
		Answer:          new(big.Int).Set(f.answer),
		StartedAt:       now,
		UpdatedAt:       now,
		AnsweredInRound: big.NewInt(1),
	}, nil
}

func (f *fakeFeed) Decimals(context.Context) (uint8, error) {
	return f.decimals, nil
}

// fakeFeedProvider implements ports.FeedProvider over a static feed map.
type fakeFeedProvider struct {
	feeds map[common.Address]*fakeFeed
}

func (p *fakeFeedProvider) Feed(address common.Address) ports.PriceFeed {
	return p.feeds[address]
}

// fakeSwapExecutor implements ports.SwapExecutor, converting at the oracle
// rate of the path's endpoint assets and crediting the swap output on the
// ledger. Prices are 18-decimal USD per whole token; all test tokens carry
// 18 decimals so amounts convert 1:1 through USD.
type fakeSwapExecutor struct {
	ledger *fakeTokenLedger
	prices map[common.Address]*big.Int
}

func (s *fakeSwapExecutor) SwapExactInput(_ context.Context, path domain.SwapPath, recipient common.Address, _ time.Time, amountIn *big.Int, minAmountOut *big.Int) (*big.Int, error) {
	source := path.Origin()
	target := path.Destination()

	out := new(big.Int).Mul(amountIn, s.prices[source])
	out.Div(out, s.prices[target])
	if minAmountOut != nil && out.Cmp(minAmountOut) < 0 {
		return nil, fmt.Errorf("swap output %s below minimum %s", out, minAmountOut)
	}

	s.ledger.Mint(source, s.ledger.custody, new(big.Int).Neg(amountIn))
	s.ledger.Mint(target, recipient, out)
	return out, nil
}

// fakeInvoker implements ports.CallbackInvoker, recording every delivery.
type fakeInvoker struct {
	mu       sync.Mutex
	requests []ports.CallbackRequest
	fail     bool
	err      error
}

func (i *fakeInvoker) Invoke(_ context.Context, req ports.CallbackRequest) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.requests = append(i.requests, req)
	if i.fail {
		return i.err
	}
	return nil
}

func (i *fakeInvoker) Requests() []ports.CallbackRequest {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]ports.CallbackRequest, len(i.requests))
	copy(out, i.requests)
	return out
}
