package providers

import (
	"context"
	"testing"
	"time"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_BuildsConfiguredProviders(t *testing.T) {
	cfg := config.GetDefaultConfig()

	registry, err := NewRegistry(cfg)

	require.NoError(t, err)
	assert.ElementsMatch(t, config.KnownProviders, registry.Names())

	source, ok := registry.Get(config.ProviderPoloniex)
	require.True(t, ok)
	_, isInvalidator := source.(interfaces.Invalidator)
	assert.True(t, isInvalidator)
	assert.Equal(t, config.ProviderPoloniex, source.Name())
}

func TestNewRegistry_MockMode(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Development.MockMode = true

	registry, err := NewRegistry(cfg)
	require.NoError(t, err)

	for _, name := range config.KnownProviders {
		source, ok := registry.Get(name)
		require.True(t, ok, name)
		_, isMock := source.(*MockSource)
		assert.True(t, isMock, name)
	}

	rate, err := registry[config.ProviderBitpay].FetchRate(context.Background(), "usd")
	require.NoError(t, err)
	assert.InDelta(t, 65000.0, rate.Value, 65000.0*0.021)
}

func TestNewRegistry_UnknownProvider(t *testing.T) {
	providers := config.ProvidersConfig{Sources: map[string]config.SourceConfig{"mtgox": {BaseURL: "https://mtgox.com"}}}

	_, err := newRegistryWithGetter(providers, config.ResolverConfig{DedupTTL: time.Minute}, testGetter())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestMockSource(t *testing.T) {
	m := NewMockSource("liqui", entities.DenominationBTC, map[string]float64{"eth_btc": 0.05})
	ctx := context.Background()

	rate, err := m.FetchRate(ctx, "eth_btc")
	require.NoError(t, err)
	assert.Equal(t, 0.05, rate.Value)
	assert.Equal(t, entities.DenominationBTC, rate.Denomination)

	_, err = m.FetchRate(ctx, "qrl_btc")
	assert.ErrorIs(t, err, entities.ErrParse)

	m.SetRate("qrl_btc", 0)
	rate, err = m.FetchRate(ctx, "qrl_btc")
	require.NoError(t, err)
	assert.False(t, entities.IsUsableQuote(rate.Value))
	assert.Equal(t, 3, m.Calls())
}

func TestNewDefaultMockSource_Unknown(t *testing.T) {
	_, err := NewDefaultMockSource("mtgox")
	assert.Error(t, err)
}
