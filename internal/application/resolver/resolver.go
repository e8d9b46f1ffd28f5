package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/metrics"
)

const (
	DefaultNumerator = "usdollar"
	DefaultBaseAsset = "bitcoin"
)

// Resolver evaluates fallback chains. BTC-denominated rates are converted
// with the quote of the base asset, itself resolved through its own chain.
type Resolver struct {
	numerator string
	baseAsset string
	chains    map[string]Chain
	logger    logging.ValuationLogger
	apiLogger logging.ExternalAPILogger
	now       func() time.Time
}

// Option configura un Resolver
type Option func(*Resolver)

// WithLogger replaces the global valuation logger
func WithLogger(logger logging.ValuationLogger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithClock injects the clock used to stamp quotes
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

var _ interfaces.PriceResolver = (*Resolver)(nil)

// New crea un resolver; la cadena del activo base es obligatoria
func New(numerator, baseAsset string, chains map[string]Chain, opts ...Option) (*Resolver, error) {
	numerator = normalize(numerator)
	baseAsset = normalize(baseAsset)
	if numerator == "" {
		return nil, errors.New("numerator cannot be empty")
	}

	normalized := make(map[string]Chain, len(chains))
	for asset, chain := range chains {
		if len(chain) == 0 {
			return nil, fmt.Errorf("chain for %s has no steps", asset)
		}
		for i, step := range chain {
			if step.Source == nil {
				return nil, fmt.Errorf("chain %s step %d has no source", asset, i+1)
			}
		}
		normalized[normalize(asset)] = chain
	}

	if _, ok := normalized[baseAsset]; !ok {
		return nil, fmt.Errorf("no chain defined for base asset %q", baseAsset)
	}

	r := &Resolver{
		numerator: numerator,
		baseAsset: baseAsset,
		chains:    normalized,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Valuation()
	}
	if r.apiLogger == nil {
		r.apiLogger = logging.ExternalAPI()
	}
	return r, nil
}

// Numerator returns the only supported numerator
func (r *Resolver) Numerator() string {
	return r.numerator
}

// BaseAsset returns the asset BTC-denominated rates are converted through
func (r *Resolver) BaseAsset() string {
	return r.baseAsset
}

// Resolve returns the price of one unit of denominator in numerator.
//   - numerator == denominator: identity quote, no network call
//   - unknown denominator: NoPriceQuote and nil error
//   - exhausted chain: last obtained quote (or NoPriceQuote) and *ResolutionExhaustedError
func (r *Resolver) Resolve(ctx context.Context, numerator, denominator string) (*entities.Quote, error) {
	numerator = normalize(numerator)
	denominator = normalize(denominator)

	if numerator == denominator {
		metrics.RecordResolution(denominator, entities.IdentitySource, "identity")
		return entities.IdentityQuote(), nil
	}

	if numerator != r.numerator {
		return nil, fmt.Errorf("%w: %q (supported: %q)", entities.ErrUnsupportedNumerator, numerator, r.numerator)
	}

	chain, ok := r.chains[denominator]
	if !ok {
		metrics.RecordResolution(denominator, "none", "unknown")
		r.logger.UnknownDenominator(ctx, numerator, denominator)
		return entities.NoPriceQuote(), nil
	}

	return r.resolveChain(ctx, denominator, chain)
}

// BaseQuote resolves the shared BTC→USD quote
func (r *Resolver) BaseQuote(ctx context.Context) (*entities.Quote, error) {
	return r.resolveChain(ctx, r.baseAsset, r.chains[r.baseAsset])
}

// Reset drops memoized calls of the asset's chain before an outer retry.
// The base chain only loses failed or unusable entries.
func (r *Resolver) Reset(asset string) {
	asset = normalize(asset)
	for _, step := range r.chains[asset] {
		if inv, ok := step.Source.(interfaces.Invalidator); ok {
			inv.Invalidate(step.Arg)
		}
	}
	if asset != r.baseAsset {
		r.invalidateBaseFailures()
	}
}

// Chains returns the introspection view of every chain
func (r *Resolver) Chains() map[string][]StepInfo {
	out := make(map[string][]StepInfo, len(r.chains))
	for asset, chain := range r.chains {
		infos := make([]StepInfo, len(chain))
		for i, step := range chain {
			infos[i] = step.Info()
		}
		out[asset] = infos
	}
	return out
}

// Assets returns the denominators with a chain, sorted
func (r *Resolver) Assets() []string {
	assets := make([]string, 0, len(r.chains))
	for asset := range r.chains {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

func (r *Resolver) resolveChain(ctx context.Context, asset string, chain Chain) (*entities.Quote, error) {
	var (
		last    *entities.Quote
		lastErr error
	)

	for i, step := range chain {
		quote, err := r.runStep(ctx, asset, step)
		if quote != nil {
			last = quote
		}

		if err == nil && quote.Usable() {
			metrics.RecordResolution(asset, step.ID(), "resolved")
			r.logger.AssetResolved(ctx, asset, quote)
			return quote, nil
		}

		reason := "unusable"
		switch {
		case err == nil:
			lastErr = fmt.Errorf("%s: %w", step.ID(), entities.ErrUnusablePrice)
		case errors.Is(err, entities.ErrUnusablePrice):
			lastErr = fmt.Errorf("%s: %w", step.ID(), err)
		default:
			reason = "error"
			lastErr = err
			r.logger.StepFailed(ctx, asset, step.Name(), step.Arg, err)
		}

		if ctx.Err() != nil {
			break
		}
		if i < len(chain)-1 {
			metrics.RecordFallbackAdvancement(asset, step.ID(), reason)
			r.logger.FallbackAdvanced(ctx, asset, step.ID(), quote)
		}
	}

	metrics.RecordResolution(asset, "exhausted", "unresolved")
	if last == nil {
		last = entities.NoPriceQuote()
	}
	return last, &entities.ResolutionExhaustedError{Asset: asset, Steps: len(chain), LastErr: lastErr}
}

func (r *Resolver) runStep(ctx context.Context, asset string, step Step) (*entities.Quote, error) {
	return DoQuote(ctx, step.policy(),
		func(ctx context.Context) (*entities.Quote, error) {
			return r.fetch(ctx, asset, step)
		},
		Hooks[*entities.Quote]{
			BeforeRetry: func(uint) {
				if inv, ok := step.Source.(interfaces.Invalidator); ok {
					inv.Invalidate(step.Arg)
				}
				if asset != r.baseAsset {
					r.invalidateBaseFailures()
				}
			},
			OnRetry: func(attempt uint, err error) {
				metrics.RecordExternalAPIRetry(step.Name(), int(attempt))
				r.apiLogger.RetryScheduled(ctx, step.Name(), step.Arg, attempt, err)
			},
		},
	)
}

func (r *Resolver) fetch(ctx context.Context, asset string, step Step) (*entities.Quote, error) {
	rate, err := step.Source.FetchRate(ctx, step.Arg)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, &entities.ParseError{Provider: step.Name(), Field: "rate"}
	}
	capturedAt := r.capturedAt(rate)

	switch {
	case rate.Denomination == entities.DenominationUSD:
		return entities.NewQuote(rate.Value, step.ID(), capturedAt), nil

	case rate.NeedsConversion():
		// un precio inutilizable no necesita conversión
		if !entities.IsUsableQuote(rate.Value) {
			return entities.NewQuote(rate.Value, step.ID(), capturedAt), nil
		}
		if asset == r.baseAsset {
			return nil, fmt.Errorf("%s: base asset %s cannot use a BTC-denominated rate", step.ID(), asset)
		}

		base, err := r.BaseQuote(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: btc conversion: %w", step.ID(), err)
		}
		// el precio convertido es tan viejo como el más viejo de sus dos insumos
		if baseAt := base.Time(); !baseAt.IsZero() && baseAt.Before(capturedAt) {
			capturedAt = baseAt
		}
		return entities.NewQuote(rate.Value*base.Price, step.ID(), capturedAt), nil

	default:
		return nil, &entities.ParseError{
			Provider: step.Name(),
			Field:    "denomination",
			Err:      fmt.Errorf("unsupported denomination %q", rate.Denomination),
		}
	}
}

// capturedAt is the time the provider answered; memoized rates keep it
func (r *Resolver) capturedAt(rate *entities.Rate) time.Time {
	if rate.FetchedAt.IsZero() {
		return r.now()
	}
	return rate.FetchedAt
}

func (r *Resolver) invalidateBaseFailures() {
	for _, step := range r.chains[r.baseAsset] {
		if inv, ok := step.Source.(interfaces.Invalidator); ok {
			inv.InvalidateFailed(step.Arg)
		}
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
