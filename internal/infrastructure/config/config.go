package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Providers   ProvidersConfig   `yaml:"providers" mapstructure:"providers"`
	Resolver    ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Valuation   ValuationConfig   `yaml:"valuation" mapstructure:"valuation"`
	Portfolio   PortfolioConfig   `yaml:"portfolio" mapstructure:"portfolio"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Auth        AuthConfig        `yaml:"auth" mapstructure:"auth"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// CacheConfig contains the report store configuration
type CacheConfig struct {
	Backend string        `yaml:"backend" mapstructure:"backend"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Prefix  string        `yaml:"prefix" mapstructure:"prefix"`
	Redis   RedisConfig   `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// ProvidersConfig contains the quote source clients configuration
type ProvidersConfig struct {
	RequestTimeout time.Duration           `yaml:"request_timeout" mapstructure:"request_timeout"`
	UserAgent      string                  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit      OutboundLimitConfig     `yaml:"rate_limit" mapstructure:"rate_limit"`
	Sources        map[string]SourceConfig `yaml:"sources" mapstructure:"sources"`
}

// OutboundLimitConfig bounds the request rate towards each provider
type OutboundLimitConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int     `yaml:"capacity" mapstructure:"capacity"`
	RefillRate float64 `yaml:"refill_rate" mapstructure:"refill_rate"`
}

// SourceConfig contains one provider's settings
type SourceConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RetryConfig configures a bounded fixed-delay retry
type RetryConfig struct {
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	MinTimeout    time.Duration `yaml:"min_timeout" mapstructure:"min_timeout"`
	RetryUnusable bool          `yaml:"retry_unusable" mapstructure:"retry_unusable"`
}

// StepConfig is one step of a fallback chain
type StepConfig struct {
	Provider string       `yaml:"provider" mapstructure:"provider"`
	Arg      string       `yaml:"arg" mapstructure:"arg"`
	Retry    *RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ResolverConfig contains the fallback chain resolver configuration
type ResolverConfig struct {
	// DedupTTL bounds how long a memoized source call is reused; 0 keeps it for
	// the process lifetime and is only valid without a refresh interval
	DedupTTL time.Duration           `yaml:"dedup_ttl" mapstructure:"dedup_ttl"`
	Chains   map[string][]StepConfig `yaml:"chains" mapstructure:"chains"`
}

// ValuationConfig contains the aggregator configuration
type ValuationConfig struct {
	Numerator       string        `yaml:"numerator" mapstructure:"numerator"`
	BaseAsset       string        `yaml:"base_asset" mapstructure:"base_asset"`
	Concurrency     int           `yaml:"concurrency" mapstructure:"concurrency"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	Retry           RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// AssetConfig describes one holding of the portfolio
type AssetConfig struct {
	Symbol   string             `yaml:"symbol" mapstructure:"symbol"`
	Decimals int                `yaml:"decimals" mapstructure:"decimals"`
	Balances map[string]float64 `yaml:"balances" mapstructure:"balances"`
}

// PortfolioConfig contains the holdings and the monthly expenses
type PortfolioConfig struct {
	Assets          []AssetConfig `yaml:"assets" mapstructure:"assets"`
	MonthlyExpenses float64       `yaml:"monthly_expenses" mapstructure:"monthly_expenses"`
}

// RateLimitConfig contains inbound rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int     `yaml:"capacity" mapstructure:"capacity"`
	RefillRate float64 `yaml:"refill_rate" mapstructure:"refill_rate"`
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	Enabled     bool     `yaml:"enabled" mapstructure:"enabled"`
	APIKey      string   `yaml:"api_key" mapstructure:"api_key"`
	HeaderName  string   `yaml:"header_name" mapstructure:"header_name"`
	UnauthPaths []string `yaml:"unauth_paths" mapstructure:"unauth_paths"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DevelopmentConfig contiene configuraciones para desarrollo y testing
type DevelopmentConfig struct {
	MockMode  bool `yaml:"mock_mode" mapstructure:"mock_mode"`
	DebugMode bool `yaml:"debug_mode" mapstructure:"debug_mode"`
}

// Provider names
const (
	ProviderBitpay        = "bitpay"
	ProviderShapeshift    = "shapeshift"
	ProviderCoinMarketCap = "coinmarketcap"
	ProviderLiqui         = "liqui"
	ProviderPoloniex      = "poloniex"
	ProviderBittrex       = "bittrex"
	ProviderAEX           = "aex"
)

// KnownProviders lists every provider the registry can build
var KnownProviders = []string{
	ProviderBitpay,
	ProviderShapeshift,
	ProviderCoinMarketCap,
	ProviderLiqui,
	ProviderPoloniex,
	ProviderBittrex,
	ProviderAEX,
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     10 * time.Minute,
			Prefix:  "valuation:",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Providers: ProvidersConfig{
			RequestTimeout: 10 * time.Second,
			UserAgent:      "crypto-valuation-service/1.0",
			RateLimit: OutboundLimitConfig{
				Enabled:    true,
				Capacity:   5,
				RefillRate: 2,
			},
			Sources: map[string]SourceConfig{
				ProviderBitpay:        {BaseURL: "https://bitpay.com/api"},
				ProviderShapeshift:    {BaseURL: "https://shapeshift.io"},
				ProviderCoinMarketCap: {BaseURL: "https://api.coinmarketcap.com/v1"},
				ProviderLiqui:         {BaseURL: "https://api.liqui.io/api/3"},
				ProviderPoloniex:      {BaseURL: "https://poloniex.com"},
				ProviderBittrex:       {BaseURL: "https://bittrex.com/api/v1.1"},
				ProviderAEX:           {BaseURL: "https://api.aex.com"},
			},
		},
		Resolver: ResolverConfig{
			DedupTTL: 2 * time.Minute,
			Chains:   DefaultChains(),
		},
		Valuation: ValuationConfig{
			Numerator:       "usdollar",
			BaseAsset:       "bitcoin",
			Concurrency:     8,
			Timeout:         2 * time.Minute,
			RefreshInterval: 5 * time.Minute,
			Retry: RetryConfig{
				MaxAttempts: 3,
				MinTimeout:  time.Second,
			},
		},
		Portfolio: PortfolioConfig{
			Assets: []AssetConfig{
				{Symbol: "bitcoin", Decimals: 2, Balances: map[string]float64{}},
			},
			MonthlyExpenses: 0,
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   100,
			RefillRate: 10,
		},
		Auth: AuthConfig{
			Enabled:     false,
			HeaderName:  "X-API-Key",
			UnauthPaths: []string{"/health", "/ready", "/metrics", "/swagger/"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultChains returns the per-asset fallback chains
func DefaultChains() map[string][]StepConfig {
	liquiRetry := func() *RetryConfig {
		return &RetryConfig{MaxAttempts: 3, MinTimeout: time.Second, RetryUnusable: true}
	}

	return map[string][]StepConfig{
		"bitcoin": {
			{Provider: ProviderBitpay, Arg: "usd"},
		},
		"bitcoincash": {
			{Provider: ProviderShapeshift, Arg: "bch_btc"},
			{Provider: ProviderLiqui, Arg: "bcc_btc", Retry: liquiRetry()},
			{Provider: ProviderCoinMarketCap, Arg: "bitcoin-cash"},
		},
		"bitcoingold": {
			{Provider: ProviderCoinMarketCap, Arg: "bitcoin-gold"},
		},
		"cardano": {
			{Provider: ProviderBittrex, Arg: "BTC-ADA"},
		},
		"zcash": {
			{Provider: ProviderShapeshift, Arg: "zec_btc"},
			{Provider: ProviderCoinMarketCap, Arg: "zcash"},
		},
		"quantum": {
			{Provider: ProviderLiqui, Arg: "qrl_btc", Retry: liquiRetry()},
		},
		"ethereum": {
			{Provider: ProviderShapeshift, Arg: "eth_btc"},
			{Provider: ProviderPoloniex, Arg: "BTC_ETH"},
			{Provider: ProviderLiqui, Arg: "eth_btc", Retry: liquiRetry()},
		},
		"ardor": {
			{Provider: ProviderBittrex, Arg: "BTC-ARDR"},
			{Provider: ProviderAEX, Arg: "ardr"},
			{Provider: ProviderPoloniex, Arg: "BTC_ARDR"},
			{Provider: ProviderCoinMarketCap, Arg: "ardor"},
		},
	}
}
