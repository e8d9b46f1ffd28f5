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

// CoinMarketCapSource lee price_usd del ticker por moneda
type CoinMarketCapSource struct {
	*pairSource
	baseURL string
	getter  Getter
}

// NewCoinMarketCapSource crea la fuente; arg es el id de la moneda (bitcoin-cash, zcash, ...)
func NewCoinMarketCapSource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *CoinMarketCapSource {
	s := &CoinMarketCapSource{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
	s.pairSource = newPairSource(config.ProviderCoinMarketCap, s.fetch, opts...)
	return s
}

func (s *CoinMarketCapSource) fetch(ctx context.Context, currency string) (*entities.Rate, error) {
	source := fmt.Sprintf("%s/ticker/%s/", s.baseURL, url.PathEscape(currency))

	var resp []coinMarketCapTicker
	if err := s.getter.Get(ctx, s.name, source, &resp); err != nil {
		return nil, err
	}

	if len(resp) == 0 {
		return nil, missingField(s.name, "[0]")
	}
	if !resp[0].PriceUSD.Set {
		return nil, missingField(s.name, "[0].price_usd")
	}

	return entities.NewRate(resp[0].PriceUSD.Value, entities.DenominationUSD, source), nil
}
