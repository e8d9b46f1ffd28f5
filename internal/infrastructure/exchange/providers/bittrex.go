package providers

import (
	"context"
	"fmt"
	"strings"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
)

// BittrexSource usa el resumen de todos los mercados de Bittrex
type BittrexSource struct {
	*snapshotSource[*bittrexSummaries]
}

// NewBittrexSource crea la fuente; arg es el MarketName (BTC-ADA)
func NewBittrexSource(baseURL string, getter Getter, opts ...cache.CallCacheOption) *BittrexSource {
	name := config.ProviderBittrex
	return &BittrexSource{&snapshotSource[*bittrexSummaries]{
		name:         name,
		url:          strings.TrimRight(baseURL, "/") + "/public/getmarketsummaries",
		denomination: entities.DenominationBTC,
		calls:        cache.NewCallCache[*bittrexSummaries](name, opts...),
		load: func(ctx context.Context, url string) (*bittrexSummaries, error) {
			var resp bittrexSummaries
			if err := getter.Get(ctx, name, url, &resp); err != nil {
				return nil, err
			}
			if !resp.Success {
				return nil, &entities.ParseError{Provider: name, Field: "success", Err: fmt.Errorf("provider error: %s", resp.Message)}
			}
			return &resp, nil
		},
		pick: func(snapshot *bittrexSummaries, market string) (float64, error) {
			for _, summary := range snapshot.Result {
				if summary.MarketName != market {
					continue
				}
				if !summary.Bid.Set {
					return 0, missingField(name, market+".Bid")
				}
				return summary.Bid.Value, nil
			}
			return 0, missingField(name, market)
		},
	}}
}
