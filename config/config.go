package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Fees     FeesConfig     `mapstructure:"fees"`
	Swap     SwapConfig     `mapstructure:"swap"`
	Query    QueryConfig    `mapstructure:"query"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type StorageConfig struct {
	// Driver selects the repository backend: memory or postgres.
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type ChainConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ChainID         uint64 `mapstructure:"chain_id"`
	OperatorKey     string `mapstructure:"operator_key"` // hex private key of the custody account
	CustodyAddress  string `mapstructure:"custody_address"`
	TreasuryAddress string `mapstructure:"treasury_address"`
	ReferenceAsset  string `mapstructure:"reference_asset"`
	FeeExemptAsset  string `mapstructure:"fee_exempt_asset"`
	SwapRouter      string `mapstructure:"swap_router"`
}

// Custody returns the custody account address.
func (c ChainConfig) Custody() common.Address { return common.HexToAddress(c.CustodyAddress) }

// Treasury returns the protocol fee treasury address.
func (c ChainConfig) Treasury() common.Address { return common.HexToAddress(c.TreasuryAddress) }

// Reference returns the reference asset all swap routes pass through.
func (c ChainConfig) Reference() common.Address { return common.HexToAddress(c.ReferenceAsset) }

// FeeExempt returns the asset exempt from protocol fees.
func (c ChainConfig) FeeExempt() common.Address { return common.HexToAddress(c.FeeExemptAsset) }

// Router returns the swap router contract address.
func (c ChainConfig) Router() common.Address { return common.HexToAddress(c.SwapRouter) }

type FeesConfig struct {
	// ProtocolFeePercent is a decimal percentage, e.g. "1.5" for 1.5%.
	ProtocolFeePercent string `mapstructure:"protocol_fee_percent"`
	// FulfillerFeeUsd is a decimal USD amount, e.g. "2.00".
	FulfillerFeeUsd string `mapstructure:"fulfiller_fee_usd"`
}

// ProtocolFeeBps converts the configured percentage to basis points.
func (f FeesConfig) ProtocolFeeBps() (uint32, error) {
	pct, err := decimal.NewFromString(f.ProtocolFeePercent)
	if err != nil {
		return 0, fmt.Errorf("parsing protocol fee percent: %w", err)
	}
	bps := pct.Mul(decimal.NewFromInt(100))
	if !bps.IsInteger() {
		return 0, fmt.Errorf("protocol fee %s is finer than a basis point", f.ProtocolFeePercent)
	}
	if bps.IsNegative() || bps.GreaterThan(decimal.NewFromInt(10_000)) {
		return 0, fmt.Errorf("protocol fee %s out of range", f.ProtocolFeePercent)
	}
	return uint32(bps.IntPart()), nil
}

// FulfillerFee converts the configured USD amount to 18-decimal fixed point.
func (f FeesConfig) FulfillerFee() (*big.Int, error) {
	usd, err := decimal.NewFromString(f.FulfillerFeeUsd)
	if err != nil {
		return nil, fmt.Errorf("parsing fulfiller fee: %w", err)
	}
	scaled := usd.Shift(18)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("fulfiller fee %s is finer than 18 decimals", f.FulfillerFeeUsd)
	}
	if scaled.IsNegative() {
		return nil, fmt.Errorf("fulfiller fee %s is negative", f.FulfillerFeeUsd)
	}
	return scaled.BigInt(), nil
}

type SwapConfig struct {
	// SlippageBps bounds swap output below the oracle quote; 0 disables the
	// minimum-output check.
	SlippageBps uint32 `mapstructure:"slippage_bps"`
}

// Slippage validates and returns the configured slippage allowance.
func (s SwapConfig) Slippage() (uint32, error) {
	if s.SlippageBps > 10_000 {
		return 0, fmt.Errorf("slippage %d bps out of range", s.SlippageBps)
	}
	return s.SlippageBps, nil
}

type QueryConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	CallbackTimeout time.Duration `mapstructure:"callback_timeout"`
	CallbackSecret  string        `mapstructure:"callback_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CAG_ (Cross-Asset Gateway).
// Nested keys use underscore: CAG_DATABASE_HOST, CAG_CHAIN_RPC_URL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "cross_asset_gateway")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.chain_id", 1)
	v.SetDefault("chain.operator_key", "")
	v.SetDefault("chain.custody_address", "")
	v.SetDefault("chain.treasury_address", "")
	v.SetDefault("chain.reference_asset", "")
	v.SetDefault("chain.fee_exempt_asset", "")
	v.SetDefault("chain.swap_router", "")
	v.SetDefault("fees.protocol_fee_percent", "1.0")
	v.SetDefault("fees.fulfiller_fee_usd", "2.00")
	v.SetDefault("swap.slippage_bps", 50)
	v.SetDefault("query.timeout", "1h")
	v.SetDefault("query.callback_timeout", "10s")
	v.SetDefault("query.callback_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CAG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
