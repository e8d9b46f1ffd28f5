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

// LiquiSource lee el precio de compra de un par (p.ej. eth_btc)
type LiquiSource struct {
	*pairSource
	baseURL string
	getter  Getter
}

// NewLiquiSource crea la fuente de Liqui
func NewLiquiSource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *LiquiSource {
	s := &LiquiSource{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
	s.pairSource = newPairSource(config.ProviderLiqui, s.fetch, opts...)
	return s
}

func (s *LiquiSource) fetch(ctx context.Context, pair string) (*entities.Rate, error) {
	source := fmt.Sprintf("%s/ticker/%s", s.baseURL, url.PathEscape(pair))

	var resp map[string]liquiTicker
	if err := s.getter.Get(ctx, s.name, source, &resp); err != nil {
		return nil, err
	}

	ticker, ok := resp[pair]
	if !ok {
		return nil, missingField(s.name, pair)
	}
	if !ticker.Buy.Set {
		return nil, missingField(s.name, pair+".buy")
	}

	return entities.NewRate(ticker.Buy.Value, entities.DenominationBTC, source), nil
}
