package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
)

const DefaultBitpayCurrency = "usd"

// BitpaySource lee la tasa BTC→USD plana de BitPay
type BitpaySource struct {
	*pairSource
	baseURL string
	getter  Getter
}

// NewBitpaySource crea la fuente; arg es el código de moneda ("usd" si vacío)
func NewBitpaySource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *BitpaySource {
	s := &BitpaySource{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
	s.pairSource = newPairSource(config.ProviderBitpay, s.fetch, opts...)
	return s
}

// FetchRate normaliza el arg antes de pasar por el cache de llamadas
func (s *BitpaySource) FetchRate(ctx context.Context, arg string) (*entities.Rate, error) {
	return s.pairSource.FetchRate(ctx, bitpayCurrency(arg))
}

func (s *BitpaySource) Invalidate(arg string) {
	s.pairSource.Invalidate(bitpayCurrency(arg))
}

func (s *BitpaySource) InvalidateFailed(arg string) {
	s.pairSource.InvalidateFailed(bitpayCurrency(arg))
}

func (s *BitpaySource) fetch(ctx context.Context, currency string) (*entities.Rate, error) {
	source := fmt.Sprintf("%s/rates/%s", s.baseURL, url.PathEscape(currency))

	var resp bitpayResponse
	if err := s.getter.Get(ctx, s.name, source, &resp); err != nil {
		return nil, err
	}

	rate := resp.Rate
	if !rate.Set && resp.Data != nil {
		rate = resp.Data.Rate
	}
	if !rate.Set {
		return nil, missingField(s.name, "rate")
	}

	return entities.NewRate(rate.Value, entities.DenominationUSD, source), nil
}

func bitpayCurrency(arg string) string {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return DefaultBitpayCurrency
	}
	return arg
}
