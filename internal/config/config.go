// Package config defines the top-level configuration for arbwatch and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Venue kinds understood by the wiring layer. Each kind maps to one
// PriceSource implementation; selection happens once at startup.
const (
	VenueKindUniV2Router = "univ2_router"
	VenueKindBinance     = "binance_book_ticker"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBWATCH_* environment
// variables.
type Config struct {
	Chain    ChainConfig    `toml:"chain"`
	Pair     PairConfig     `toml:"pair"`
	Venues   []VenueConfig  `toml:"venues"`
	Trade    TradeConfig    `toml:"trade"`
	Scan     ScanConfig     `toml:"scan"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// ChainConfig holds the EVM RPC endpoint shared by all on-chain venues.
type ChainConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID int    `toml:"chain_id"`
}

// TokenConfig describes one side of the watched pair.
type TokenConfig struct {
	Symbol   string `toml:"symbol"`
	Address  string `toml:"address"`
	Decimals int    `toml:"decimals"`
}

// PairConfig holds the watched token pair.
type PairConfig struct {
	Base  TokenConfig `toml:"base"`
	Quote TokenConfig `toml:"quote"`
}

// VenueConfig describes one price venue. Router is used by univ2_router
// venues; Symbol and MaxAge by binance_book_ticker venues.
type VenueConfig struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	Router string   `toml:"router"`
	Symbol string   `toml:"symbol"`
	WSHost string   `toml:"ws_host"`
	MaxAge duration `toml:"max_age"`
}

// TradeConfig holds the hypothetical trade used to price a spread.
type TradeConfig struct {
	Amount             float64 `toml:"amount"`
	FeeEstimateUSD     float64 `toml:"fee_estimate_usd"`
	MinProfitThreshold float64 `toml:"min_profit_threshold_usd"`
}

// ScanConfig holds the polling loop parameters.
type ScanConfig struct {
	Interval      duration `toml:"interval"`
	FetchTimeout  duration `toml:"fetch_timeout"`
	ShutdownGrace duration `toml:"shutdown_grace"`
	ArchiveEvery  int      `toml:"archive_every"`
	ArchivePrefix string   `toml:"archive_prefix"`
}

// RedisConfig holds Redis connection parameters for the quote cache and
// signal bus.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters for the opportunity
// history store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for tick archives.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "15s", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "15s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. These
// match the values in config.example.toml: WETH/USDC on Polygon, sampled
// every 15 seconds across two V2-style routers.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:  "https://polygon-rpc.com",
			ChainID: 137,
		},
		Pair: PairConfig{
			Base: TokenConfig{
				Symbol:   "WETH",
				Address:  "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619",
				Decimals: 18,
			},
			Quote: TokenConfig{
				Symbol:   "USDC",
				Address:  "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
				Decimals: 6,
			},
		},
		Venues: []VenueConfig{
			{
				Name:   "quickswap",
				Kind:   VenueKindUniV2Router,
				Router: "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff",
			},
			{
				Name:   "sushiswap",
				Kind:   VenueKindUniV2Router,
				Router: "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506",
			},
		},
		Trade: TradeConfig{
			Amount:             1.0,
			FeeEstimateUSD:     2.0,
			MinProfitThreshold: 5.0,
		},
		Scan: ScanConfig{
			Interval:      duration{15 * time.Second},
			FetchTimeout:  duration{5 * time.Second},
			ShutdownGrace: duration{10 * time.Second},
			ArchiveEvery:  240,
			ArchivePrefix: "ticks",
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "arbwatch",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  5,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbwatch-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity"},
		},
		Mode:     "watch",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode. In "watch" mode
// only the log and notify sinks run; "full" additionally wires every enabled
// persistence sink.
var validModes = map[string]bool{
	"watch": true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validVenueKinds enumerates the venue kinds the wiring layer can build.
var validVenueKinds = map[string]bool{
	VenueKindUniV2Router: true,
	VenueKindBinance:     true,
}

// Validate checks Config for invalid or missing values and returns a combined
// error describing every problem found. It must pass before the scan loop
// starts; nothing here is recoverable at runtime.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: watch, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Pair
	if c.Pair.Base.Symbol == "" {
		errs = append(errs, "pair: base.symbol must not be empty")
	}
	if c.Pair.Quote.Symbol == "" {
		errs = append(errs, "pair: quote.symbol must not be empty")
	}
	if c.Pair.Base.Decimals < 0 || c.Pair.Quote.Decimals < 0 {
		errs = append(errs, "pair: token decimals must not be negative")
	}

	// Venues
	if len(c.Venues) < 2 {
		errs = append(errs, fmt.Sprintf("venues: at least 2 venues are required, got %d", len(c.Venues)))
	}
	seen := make(map[string]bool, len(c.Venues))
	needsChain := false
	for i, v := range c.Venues {
		if v.Name == "" {
			errs = append(errs, fmt.Sprintf("venues[%d]: name must not be empty", i))
			continue
		}
		if seen[v.Name] {
			errs = append(errs, fmt.Sprintf("venues[%d]: duplicate venue name %q", i, v.Name))
		}
		seen[v.Name] = true

		switch v.Kind {
		case VenueKindUniV2Router:
			needsChain = true
			if !common.IsHexAddress(v.Router) {
				errs = append(errs, fmt.Sprintf("venues[%d] (%s): router %q is not a valid address", i, v.Name, v.Router))
			}
		case VenueKindBinance:
			if v.Symbol == "" {
				errs = append(errs, fmt.Sprintf("venues[%d] (%s): symbol is required for %s", i, v.Name, v.Kind))
			}
		default:
			if !validVenueKinds[v.Kind] {
				errs = append(errs, fmt.Sprintf("venues[%d] (%s): unknown kind %q", i, v.Name, v.Kind))
			}
		}
	}
	if needsChain {
		if c.Chain.RPCURL == "" {
			errs = append(errs, "chain: rpc_url is required when an on-chain venue is configured")
		}
		if !common.IsHexAddress(c.Pair.Base.Address) {
			errs = append(errs, fmt.Sprintf("pair: base.address %q is not a valid address", c.Pair.Base.Address))
		}
		if !common.IsHexAddress(c.Pair.Quote.Address) {
			errs = append(errs, fmt.Sprintf("pair: quote.address %q is not a valid address", c.Pair.Quote.Address))
		}
	}

	// Trade
	if c.Trade.Amount <= 0 {
		errs = append(errs, "trade: amount must be > 0")
	}
	if c.Trade.FeeEstimateUSD < 0 {
		errs = append(errs, "trade: fee_estimate_usd must be >= 0")
	}

	// Scan
	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0")
	}
	if c.Scan.FetchTimeout.Duration <= 0 {
		errs = append(errs, "scan: fetch_timeout must be > 0")
	}
	if c.Scan.FetchTimeout.Duration > c.Scan.Interval.Duration {
		errs = append(errs, "scan: fetch_timeout must not exceed interval")
	}
	if c.Scan.ShutdownGrace.Duration <= 0 {
		errs = append(errs, "scan: shutdown_grace must be > 0")
	}

	// Persistence sections only matter in full mode.
	if strings.ToLower(c.Mode) == "full" {
		if c.Redis.Enabled {
			if c.Redis.Addr == "" {
				errs = append(errs, "redis: addr must not be empty when enabled")
			}
			if c.Redis.PoolSize < 1 {
				errs = append(errs, "redis: pool_size must be >= 1")
			}
		}
		if c.Postgres.Enabled {
			if strings.TrimSpace(c.Postgres.DSN) == "" {
				if c.Postgres.Host == "" {
					errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
				}
				if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
					errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
				}
				if c.Postgres.Database == "" {
					errs = append(errs, "postgres: database must not be empty")
				}
			}
			if c.Postgres.PoolMaxConns < 1 {
				errs = append(errs, "postgres: pool_max_conns must be >= 1")
			}
			if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
				errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
			}
		}
		if c.S3.Enabled {
			if c.S3.Bucket == "" {
				errs = append(errs, "s3: bucket must not be empty when enabled")
			}
			if c.S3.Region == "" {
				errs = append(errs, "s3: region must not be empty when enabled")
			}
			if c.Scan.ArchiveEvery < 1 {
				errs = append(errs, "scan: archive_every must be >= 1 when the s3 archive is enabled")
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
