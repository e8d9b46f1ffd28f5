package providers

import (
	"context"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
)

// pairSource memoiza una llamada por arg (un par o un id de moneda)
type pairSource struct {
	name  string
	calls *cache.CallCache[*entities.Rate]
	fetch func(ctx context.Context, arg string) (*entities.Rate, error)
}

func newPairSource(name string, fetch func(context.Context, string) (*entities.Rate, error), opts ...cache.CallCacheOption) *pairSource {
	return &pairSource{
		name:  name,
		calls: cache.NewCallCache[*entities.Rate](name, opts...),
		fetch: fetch,
	}
}

func (s *pairSource) Name() string {
	return s.name
}

func (s *pairSource) FetchRate(ctx context.Context, arg string) (*entities.Rate, error) {
	return s.calls.Do(ctx, arg, func(ctx context.Context) (*entities.Rate, error) {
		return s.fetch(ctx, arg)
	})
}

func (s *pairSource) Invalidate(arg string) {
	s.calls.Invalidate(arg)
}

func (s *pairSource) InvalidateFailed(arg string) {
	s.calls.InvalidateIf(arg, func(rate *entities.Rate, err error) bool {
		return err != nil || rate == nil || !entities.IsUsableQuote(rate.Value)
	})
}

// snapshotSource memoiza un snapshot de todo el mercado; un mismo snapshot
// responde a todos los pares mientras siga guardado
type snapshotSource[S any] struct {
	name         string
	url          string
	denomination entities.Denomination
	calls        *cache.CallCache[S]
	load         func(ctx context.Context, url string) (S, error)
	pick         func(snapshot S, arg string) (float64, error)
}

func (s *snapshotSource[S]) Name() string {
	return s.name
}

func (s *snapshotSource[S]) FetchRate(ctx context.Context, arg string) (*entities.Rate, error) {
	snapshot, err := s.calls.Do(ctx, s.url, func(ctx context.Context) (S, error) {
		return s.load(ctx, s.url)
	})
	if err != nil {
		return nil, err
	}

	value, err := s.pick(snapshot, arg)
	if err != nil {
		return nil, err
	}
	return entities.NewRate(value, s.denomination, s.url), nil
}

// Invalidate descarta el snapshot completo; arg no importa
func (s *snapshotSource[S]) Invalidate(string) {
	s.calls.Invalidate(s.url)
}

func (s *snapshotSource[S]) InvalidateFailed(arg string) {
	s.calls.InvalidateIf(s.url, func(snapshot S, err error) bool {
		if err != nil {
			return true
		}
		value, pickErr := s.pick(snapshot, arg)
		return pickErr != nil || !entities.IsUsableQuote(value)
	})
}

// Len expone las entradas memoizadas (tests y métricas)
func (s *snapshotSource[S]) Len() int {
	return s.calls.Len()
}

func missingField(provider, field string) error {
	return &entities.ParseError{Provider: provider, Field: field}
}
