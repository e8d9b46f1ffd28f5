package providers

import (
	"context"
	"strings"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
)

// AEXSource usa el ticker de todos los mercados BTC de AEX
type AEXSource struct {
	*snapshotSource[map[string]aexTicker]
}

// NewAEXSource crea la fuente; arg es el símbolo de la moneda (ardr)
func NewAEXSource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *AEXSource {
	name := config.ProviderAEX
	return &AEXSource{&snapshotSource[map[string]aexTicker]{
		name:         name,
		url:          strings.TrimRight(baseURL, "/") + "/ticker.php?c=all&mk_type=btc",
		denomination: entities.DenominationBTC,
		calls:        cache.NewCallCache[map[string]aexTicker](name, opts...),
		load: func(ctx context.Context, url string) (map[string]aexTicker, error) {
			var resp map[string]aexTicker
			if err := getter.Get(ctx, name, url, &resp); err != nil {
				return nil, err
			}
			return resp, nil
		},
		pick: func(snapshot map[string]aexTicker, coin string) (float64, error) {
			ticker, ok := snapshot[coin]
			if !ok {
				return 0, missingField(name, coin)
			}
			if !ticker.Ticker.Buy.Set {
				return 0, missingField(name, coin+".ticker.buy")
			}
			return ticker.Ticker.Buy.Value, nil
		},
	}}
}
