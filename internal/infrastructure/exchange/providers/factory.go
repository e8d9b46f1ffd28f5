package providers

import (
	"context"
	"fmt"
	"sort"

	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
)

// Registry agrupa las fuentes de cotización por nombre de proveedor
type Registry map[string]interfaces.RateSource

// Get retorna la fuente por nombre
func (r Registry) Get(name string) (interfaces.RateSource, bool) {
	source, ok := r[name]
	return source, ok
}

// Names retorna los proveedores registrados en orden alfabético
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type sourceConstructor func(baseURL string, getter Getter, opts ...cache.CallCacheOption) interfaces.RateSource

var constructors = map[string]sourceConstructor{
	config.ProviderBitpay: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewBitpaySource(u, g, o...)
	},
	config.ProviderShapeshift: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewShapeshiftSource(u, g, o...)
	},
	config.ProviderCoinMarketCap: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewCoinMarketCapSource(u, g, o...)
	},
	config.ProviderLiqui: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewLiquiSource(u, g, o...)
	},
	config.ProviderPoloniex: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewPoloniexSource(u, g, o...)
	},
	config.ProviderBittrex: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewBittrexSource(u, g, o...)
	},
	config.ProviderAEX: func(u string, g Getter, o ...cache.CallCacheOption) interfaces.RateSource {
		return NewAEXSource(u, g, o...)
	},
}

// NewRegistry construye cada proveedor configurado. En modo mock todos los
// proveedores conocidos se reemplazan por MockSource.
func NewRegistry(cfg *config.Config) (Registry, error) {
	if cfg.Development.MockMode {
		return newMockRegistry()
	}

	getter := NewJSONGetter(cfg.Providers)
	return newRegistryWithGetter(cfg.Providers, cfg.Resolver, getter)
}

func newRegistryWithGetter(providers config.ProvidersConfig, resolver config.ResolverConfig, getter Getter) (Registry, error) {
	registry := make(Registry, len(providers.Sources))
	opts := []cache.CallCacheOption{cache.WithTTL(resolver.DedupTTL)}

	for name, source := range providers.Sources {
		build, ok := constructors[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s", name)
		}
		registry[name] = build(source.BaseURL, getter, opts...)
	}

	logging.Info(context.Background(), "Quote sources registered", logging.Fields{
		"providers": registry.Names(),
		"dedup_ttl": resolver.DedupTTL.String(),
	})
	return registry, nil
}

func newMockRegistry() (Registry, error) {
	registry := make(Registry, len(config.KnownProviders))
	for _, name := range config.KnownProviders {
		source, err := NewDefaultMockSource(name)
		if err != nil {
			return nil, err
		}
		registry[name] = source
	}

	logging.Warn(context.Background(), "Using mock quote sources", logging.Fields{
		"providers": registry.Names(),
	})
	return registry, nil
}
