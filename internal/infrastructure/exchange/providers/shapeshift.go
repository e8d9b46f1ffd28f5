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

// ShapeshiftSource lee la tasa de un par (p.ej. bch_btc) expresada en BTC
type ShapeshiftSource struct {
	*pairSource
	baseURL string
	getter  Getter
}

// NewShapeshiftSource crea la fuente de ShapeShift
func NewShapeshiftSource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *ShapeshiftSource {
	s := &ShapeshiftSource{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
	s.pairSource = newPairSource(config.ProviderShapeshift, s.fetch, opts...)
	return s
}

func (s *ShapeshiftSource) fetch(ctx context.Context, pair string) (*entities.Rate, error) {
	source := fmt.Sprintf("%s/rate/%s", s.baseURL, url.PathEscape(pair))

	var resp shapeshiftResponse
	if err := s.getter.Get(ctx, s.name, source, &resp); err != nil {
		return nil, err
	}

	if resp.Error != "" {
		return nil, &entities.ParseError{Provider: s.name, Field: "rate", Err: fmt.Errorf("provider error: %s", resp.Error)}
	}
	if !resp.Rate.Set {
		return nil, missingField(s.name, "rate")
	}

	return entities.NewRate(resp.Rate.Value, entities.DenominationBTC, source), nil
}
