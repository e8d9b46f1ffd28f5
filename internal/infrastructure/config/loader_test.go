package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
cache:
  backend: redis
  redis:
    addr: redis:6379
providers:
  request_timeout: 4s
  sources:
    liqui:
      base_url: http://liqui.local/api/3
resolver:
  dedup_ttl: 1m
  chains:
    bitcoin:
      - provider: bitpay
        arg: usd
    ethereum:
      - provider: poloniex
        arg: BTC_ETH
      - provider: liqui
        arg: eth_btc
        retry:
          max_attempts: 2
          min_timeout: 500ms
          retry_unusable: true
portfolio:
  monthly_expenses: 2500
  assets:
    - symbol: bitcoin
      decimals: 2
      balances:
        segwit: 1.25
        legacy: 0.75
    - symbol: ethereum
      decimals: 2
      balances:
        amount: 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_LoadExplicitFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	loader := NewLoader().WithConfigFile(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, path, loader.ConfigFileUsed())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 4*time.Second, cfg.Providers.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Resolver.DedupTTL)

	// Defaults that the file doesn't override survive
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "usdollar", cfg.Valuation.Numerator)
	assert.Equal(t, "https://bitpay.com/api", cfg.Providers.Sources[ProviderBitpay].BaseURL)
	assert.Equal(t, "http://liqui.local/api/3", cfg.Providers.Sources[ProviderLiqui].BaseURL)

	eth := cfg.Resolver.Chains["ethereum"]
	require.Len(t, eth, 2)
	assert.Equal(t, "BTC_ETH", eth[0].Arg)
	require.NotNil(t, eth[1].Retry)
	assert.Equal(t, 2, eth[1].Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, eth[1].Retry.MinTimeout)
	assert.True(t, eth[1].Retry.RetryUnusable)

	require.Len(t, cfg.Portfolio.Assets, 2)
	assert.Equal(t, 1.25, cfg.Portfolio.Assets[0].Balances["segwit"])
	assert.Equal(t, 2500.0, cfg.Portfolio.MonthlyExpenses)

	assert.NoError(t, NewValidator().Validate(cfg))
}

func TestLoader_MissingExplicitFileFails(t *testing.T) {
	_, err := NewLoader().WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	assert.Error(t, err)
}

func TestLoader_EnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	t.Setenv("PORT", "7070")
	t.Setenv("VALUATION_LOGGING_LEVEL", "warn")
	t.Setenv("MOCK_MODE", "true")
	t.Setenv("AEX_BASE_URL", "http://aex.local")
	t.Setenv("DEBUG_MODE", "")

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Development.MockMode)
	assert.Equal(t, "http://aex.local", cfg.Providers.Sources[ProviderAEX].BaseURL)
}

func TestLoader_DebugModeForcesDebugLevel(t *testing.T) {
	t.Setenv("DEBUG_MODE", "1")

	cfg, err := NewLoader().WithConfigFile(writeConfig(t, sampleConfig)).Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", GetEnvironment())

	t.Setenv("ENVIRONMENT", "Production")
	assert.Equal(t, "production", GetEnvironment())
}
