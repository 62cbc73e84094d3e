package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"cross-asset-gateway/internal/core/domain"
	"cross-asset-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const aggregatorABIJSON = `[
	{"inputs":[],"name":"latestRoundData","outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}
	],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var aggregatorABI = mustParseABI(aggregatorABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// FeedProvider implements ports.FeedProvider over a chain RPC client.
type FeedProvider struct {
	client *ethclient.Client
}

// NewFeedProvider creates a feed provider bound to the RPC client.
func NewFeedProvider(client *ethclient.Client) *FeedProvider {
	return &FeedProvider{client: client}
}

// Feed returns a client for the aggregator at the given address.
func (p *FeedProvider) Feed(address common.Address) ports.PriceFeed {
	return &aggregatorFeed{client: p.client, address: address}
}

// aggregatorFeed reads one oracle aggregator contract.
type aggregatorFeed struct {
	client  *ethclient.Client
	address common.Address
}

// LatestRoundData fetches the most recent oracle round.
func (f *aggregatorFeed) LatestRoundData(ctx context.Context) (domain.RoundData, error) {
	data, err := aggregatorABI.Pack("latestRoundData")
	if err != nil {
		return domain.RoundData{}, fmt.Errorf("pack latestRoundData: %w", err)
	}

	raw, err := f.client.CallContract(ctx, callMsg(f.address, data), nil)
	if err != nil {
		return domain.RoundData{}, fmt.Errorf("call latestRoundData: %w", err)
	}

	out, err := aggregatorABI.Unpack("latestRoundData", raw)
	if err != nil {
		return domain.RoundData{}, fmt.Errorf("unpack latestRoundData: %w", err)
	}
	if len(out) != 5 {
		return domain.RoundData{}, fmt.Errorf("latestRoundData returned %d values", len(out))
	}

	round := domain.RoundData{
		RoundID:         out[0].(*big.Int),
		Answer:          out[1].(*big.Int),
		AnsweredInRound: out[4].(*big.Int),
	}
	round.StartedAt = out[2].(*big.Int).Int64()
	round.UpdatedAt = out[3].(*big.Int).Int64()
	return round, nil
}

// Decimals fetches the feed's answer precision.
func (f *aggregatorFeed) Decimals(ctx context.Context) (uint8, error) {
	data, err := aggregatorABI.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}

	raw, err := f.client.CallContract(ctx, callMsg(f.address, data), nil)
	if err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}

	out, err := aggregatorABI.Unpack("decimals", raw)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	return out[0].(uint8), nil
}
