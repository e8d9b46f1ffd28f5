package resolver

import (
	"fmt"

	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/config"
)

// BuildChains resolves configured steps against the registered sources
func BuildChains(cfg map[string][]config.StepConfig, sources map[string]interfaces.RateSource) (map[string]Chain, error) {
	chains := make(map[string]Chain, len(cfg))

	for asset, steps := range cfg {
		chain := make(Chain, 0, len(steps))
		for i, sc := range steps {
			source, ok := sources[sc.Provider]
			if !ok {
				return nil, fmt.Errorf("chain %s step %d: provider %q is not registered", asset, i+1, sc.Provider)
			}

			step := Step{Source: source, Arg: sc.Arg}
			if sc.Retry != nil {
				p := PolicyFromConfig(*sc.Retry)
				step.Retry = &p
			}
			chain = append(chain, step)
		}
		chains[asset] = chain
	}

	return chains, nil
}

// NewFromConfig builds the resolver described by the configuration
func NewFromConfig(cfg *config.Config, sources map[string]interfaces.RateSource, opts ...Option) (*Resolver, error) {
	chains, err := BuildChains(cfg.Resolver.Chains, sources)
	if err != nil {
		return nil, err
	}
	return New(cfg.Valuation.Numerator, cfg.Valuation.BaseAsset, chains, opts...)
}
