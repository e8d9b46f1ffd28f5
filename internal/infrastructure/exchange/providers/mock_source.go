package providers

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/logging"
)

// MockSource implementa RateSource para testing y development.
// Retorna tasas falsas pero realistas para no depender de los proveedores reales.
type MockSource struct {
	name         string
	denomination entities.Denomination
	mu           sync.RWMutex
	rates        map[string]float64 // tasa base por arg
	variance     float64            // variación porcentual para simular volatilidad
	calls        int
}

// NewMockSource crea una fuente mock con tasas fijas
func NewMockSource(name string, denomination entities.Denomination, rates map[string]float64) *MockSource {
	copied := make(map[string]float64, len(rates))
	for k, v := range rates {
		copied[k] = v
	}
	return &MockSource{
		name:         name,
		denomination: denomination,
		rates:        copied,
	}
}

// mockRates son valores aproximados para cada proveedor conocido
var mockRates = map[string]struct {
	denomination entities.Denomination
	rates        map[string]float64
}{
	config.ProviderBitpay: {entities.DenominationUSD, map[string]float64{"usd": 65000.0}},
	config.ProviderShapeshift: {entities.DenominationBTC, map[string]float64{
		"bch_btc": 0.0075,
		"zec_btc": 0.00055,
		"eth_btc": 0.05,
	}},
	config.ProviderCoinMarketCap: {entities.DenominationUSD, map[string]float64{
		"bitcoin-cash": 480.0,
		"bitcoin-gold": 25.0,
		"zcash":        35.0,
		"ardor":        0.08,
	}},
	config.ProviderLiqui: {entities.DenominationBTC, map[string]float64{
		"bcc_btc": 0.0074,
		"qrl_btc": 0.0000081,
		"eth_btc": 0.049,
	}},
	config.ProviderPoloniex: {entities.DenominationBTC, map[string]float64{
		"BTC_ETH":  0.05,
		"BTC_ARDR": 0.0000012,
	}},
	config.ProviderBittrex: {entities.DenominationBTC, map[string]float64{
		"BTC-ADA":  0.0000072,
		"BTC-ARDR": 0.0000012,
	}},
	config.ProviderAEX: {entities.DenominationBTC, map[string]float64{"ardr": 0.0000012}},
}

// NewDefaultMockSource crea el mock de un proveedor conocido con tasas aproximadas
func NewDefaultMockSource(name string) (*MockSource, error) {
	defaults, ok := mockRates[name]
	if !ok {
		return nil, fmt.Errorf("no mock rates for provider: %s", name)
	}
	m := NewMockSource(name, defaults.denomination, defaults.rates)
	m.variance = 0.02 // ±2%
	return m, nil
}

func (m *MockSource) Name() string {
	return m.name
}

// FetchRate retorna una tasa falsa para el arg solicitado
func (m *MockSource) FetchRate(ctx context.Context, arg string) (*entities.Rate, error) {
	m.mu.Lock()
	m.calls++
	base, exists := m.rates[arg]
	variance := m.variance
	m.mu.Unlock()

	if !exists {
		return nil, &entities.ParseError{Provider: m.name, Field: arg, Err: fmt.Errorf("unsupported mock arg")}
	}

	value := base
	if variance > 0 {
		value = base * (1 + (rand.Float64()*2-1)*variance)
	}

	logging.Debug(ctx, "MockSource: generated mock rate", logging.Fields{
		logging.FieldSource:  m.name,
		logging.FieldStepArg: arg,
		logging.FieldPrice:   value,
		"base_rate":          base,
		"denomination":       string(m.denomination),
	})

	return entities.NewRate(value, m.denomination, "mock://"+m.name+"/"+arg), nil
}

// Invalidate no hace nada: el mock no memoiza
func (m *MockSource) Invalidate(string) {}

// InvalidateFailed no hace nada: el mock no memoiza
func (m *MockSource) InvalidateFailed(string) {}

// SetRate agrega o reemplaza una tasa base (útil para testing)
func (m *MockSource) SetRate(arg string, rate float64) {
	m.mu.Lock()
	m.rates[arg] = rate
	m.mu.Unlock()
}

// SetVariance configura la variación porcentual para volatilidad
func (m *MockSource) SetVariance(variance float64) {
	m.mu.Lock()
	m.variance = variance
	m.mu.Unlock()
}

// Calls retorna cuántas veces se llamó FetchRate
func (m *MockSource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
