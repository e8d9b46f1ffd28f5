package providers

import (
	"context"
	"strings"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
)

// PoloniexSource usa el ticker completo de Poloniex; una sola descarga sirve a todos los pares
type PoloniexSource struct {
	*snapshotSource[map[string]poloniexTicker]
}

// NewPoloniexSource crea la fuente; arg es el par en formato BTC_ETH
func NewPoloniexSource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *PoloniexSource {
	name := config.ProviderPoloniex
	return &PoloniexSource{&snapshotSource[map[string]poloniexTicker]{
		name:         name,
		url:          strings.TrimRight(baseURL, "/") + "/public?command=returnTicker",
		denomination: entities.DenominationBTC,
		calls:        cache.NewCallCache[map[string]poloniexTicker](name, opts...),
		load: func(ctx context.Context, url string) (map[string]poloniexTicker, error) {
			var resp map[string]poloniexTicker
			if err := getter.Get(ctx, name, url, &resp); err != nil {
				return nil, err
			}
			return resp, nil
		},
		pick: func(snapshot map[string]poloniexTicker, pair string) (float64, error) {
			ticker, ok := snapshot[pair]
			if !ok {
				return 0, missingField(name, pair)
			}
			if !ticker.HighestBid.Set {
				return 0, missingField(name, pair+".highestBid")
			}
			return ticker.HighestBid.Value, nil
		},
	}}
}
