package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"crypto-valuation-service/internal/application/resolver"
	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultConcurrency = 8
	subscriberBuffer   = 1
	valuateFlightKey   = "valuate"
)

// AssetResolver is what the aggregator needs from the fallback chain resolver
type AssetResolver interface {
	interfaces.PriceResolver
	BaseQuote(ctx context.Context) (*entities.Quote, error)
	Reset(asset string)
	Numerator() string
}

// ReportStore keeps the latest report and the reports by id
type ReportStore interface {
	SaveReport(ctx context.Context, report *entities.Report) error
	LatestReport(ctx context.Context) (*entities.Report, error)
	ReportByID(ctx context.Context, id string) (*entities.Report, error)
}

// ValuationService implements interfaces.ValuationService
type ValuationService struct {
	resolver    AssetResolver
	store       ReportStore
	assets      []*entities.Asset
	expenses    entities.Expenses
	concurrency int
	timeout     time.Duration
	retry       resolver.Policy
	logger      logging.ValuationLogger
	now         func() time.Time

	runs singleflight.Group

	mu          sync.Mutex
	subscribers map[uint64]chan *entities.Report
	nextSubID   uint64
}

var _ interfaces.ValuationService = (*ValuationService)(nil)

// Option configura el servicio
type Option func(*ValuationService)

// WithConcurrency bounds the number of assets resolved at the same time
func WithConcurrency(n int) Option {
	return func(s *ValuationService) { s.concurrency = n }
}

// WithTimeout bounds a whole valuation pass; 0 disables it
func WithTimeout(d time.Duration) Option {
	return func(s *ValuationService) { s.timeout = d }
}

// WithRetry sets the per-asset outer retry policy
func WithRetry(p resolver.Policy) Option {
	return func(s *ValuationService) { s.retry = p }
}

// WithExpenses sets the monthly burn used for the runway
func WithExpenses(e entities.Expenses) Option {
	return func(s *ValuationService) { s.expenses = e }
}

func WithLogger(logger logging.ValuationLogger) Option {
	return func(s *ValuationService) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *ValuationService) { s.now = now }
}

// NewValuationService creates the aggregator over a resolver and a report store
func NewValuationService(res AssetResolver, store ReportStore, assets []*entities.Asset, opts ...Option) *ValuationService {
	s := &ValuationService{
		resolver:    res,
		store:       store,
		assets:      assets,
		concurrency: DefaultConcurrency,
		retry:       resolver.NoRetry(),
		now:         time.Now,
		subscribers: make(map[uint64]chan *entities.Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.logger == nil {
		s.logger = logging.Valuation()
	}
	return s
}

// NewValuationServiceFromConfig wires the valuation and portfolio sections
func NewValuationServiceFromConfig(cfg *config.Config, res AssetResolver, store ReportStore, opts ...Option) *ValuationService {
	base := []Option{
		WithConcurrency(cfg.Valuation.Concurrency),
		WithTimeout(cfg.Valuation.Timeout),
		WithRetry(resolver.PolicyFromConfig(cfg.Valuation.Retry)),
		WithExpenses(entities.Expenses{Monthly: cfg.Portfolio.MonthlyExpenses}),
	}
	return NewValuationService(res, store, AssetsFromConfig(cfg.Portfolio), append(base, opts...)...)
}

// AssetsFromConfig builds the holdings, symbols normalized to lower case
func AssetsFromConfig(cfg config.PortfolioConfig) []*entities.Asset {
	assets := make([]*entities.Asset, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		balances := make(map[string]float64, len(a.Balances))
		for category, amount := range a.Balances {
			balances[strings.ToLower(category)] = amount
		}
		assets = append(assets, entities.NewAsset(strings.ToLower(strings.TrimSpace(a.Symbol)), balances, a.Decimals))
	}
	return assets
}

// Valuate runs one resolution pass over every asset and stores the report.
// Concurrent calls share the same pass. The pass only stops on the service
// timeout: a caller that goes away gets ctx.Err() while the others keep waiting.
func (s *ValuationService) Valuate(ctx context.Context) (*entities.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pass := context.WithoutCancel(ctx)
	results := s.runs.DoChan(valuateFlightKey, func() (interface{}, error) {
		return s.valuate(pass)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		report, _ := res.Val.(*entities.Report)
		return report, res.Err
	}
}

func (s *ValuationService) valuate(ctx context.Context) (*entities.Report, error) {
	start := s.now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logging.Info(ctx, "Starting valuation pass", logging.Fields{
		logging.FieldAssetCount: len(s.assets),
		"concurrency":           s.concurrency,
	})

	rows := make([]entities.AssetValuation, len(s.assets))
	values := make([]decimal.Decimal, len(s.assets))

	// ninguna goroutine retorna error: Wait espera a todas
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, asset := range s.assets {
		g.Go(func() error {
			rows[i], values[i] = s.valuateAsset(ctx, asset)
			return nil
		})
	}
	_ = g.Wait()

	// una pasada cortada deja filas vacías: no reemplaza al último reporte
	if err := ctx.Err(); err != nil {
		metrics.RecordValuationRun("aborted", s.now().Sub(start).Seconds())
		logging.WarnWithError(ctx, "Valuation pass aborted, keeping previous report", err, logging.Fields{
			"elapsed": s.now().Sub(start).String(),
		})
		return nil, fmt.Errorf("valuation pass aborted: %w", err)
	}

	grandTotal := decimal.Zero
	for _, v := range values {
		grandTotal = grandTotal.Add(v)
	}
	for i := range rows {
		rows[i].WeightPercent = weightPercent(values[i], grandTotal)
	}

	report := &entities.Report{
		ID:          uuid.New().String(),
		Numerator:   s.resolver.Numerator(),
		GeneratedAt: start,
		Assets:      rows,
		Portfolio:   s.totals(ctx, grandTotal),
	}
	report.Duration = s.now().Sub(start)

	result := "success"
	if report.Unresolved() > 0 {
		result = "partial"
	}
	metrics.RecordValuationRun(result, report.Duration.Seconds())
	metrics.UpdatePortfolioTotal(report.Portfolio.GrandTotalUSD)
	s.logger.ReportGenerated(ctx, report)

	if err := s.store.SaveReport(ctx, report); err != nil {
		logging.ErrorWithError(ctx, "Failed to store valuation report", err, logging.Fields{
			logging.FieldReportID: report.ID,
		})
		s.publish(report)
		return report, fmt.Errorf("failed to store report %s: %w", report.ID, err)
	}

	s.publish(report)
	return report, nil
}

// valuateAsset nunca propaga un panic: la fila queda sin resolver
func (s *ValuationService) valuateAsset(ctx context.Context, asset *entities.Asset) (row entities.AssetValuation, value decimal.Decimal) {
	amount := asset.TotalAmount()
	row = entities.AssetValuation{
		Symbol:    asset.Symbol,
		Amount:    amount.InexactFloat64(),
		Decimals:  asset.Decimals,
		Timestamp: -1,
	}
	value = decimal.Zero

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic resolving %s: %v", asset.Symbol, r)
			logging.ErrorWithError(ctx, "Recovered panic during valuation", err, logging.Fields{
				logging.FieldAsset: asset.Symbol,
				"stack":            string(debug.Stack()),
			})
			row.Price, row.USDValue, row.Source = 0, 0, ""
			row.Resolved = false
			row.Error = err.Error()
			value = decimal.Zero
		}
	}()

	quote, err := s.resolve(ctx, asset.Symbol)
	if quote != nil {
		row.Source = quote.Source
		row.Timestamp = quote.Timestamp
	}

	switch {
	case err != nil:
		s.logger.AssetUnresolved(ctx, asset.Symbol, err)
		row.Error = err.Error()
	case !quote.Usable():
		row.Error = entities.ErrUnusablePrice.Error()
	default:
		row.Resolved = true
	}
	if !row.Resolved {
		row.Price = 0
		return row, value
	}

	price := decimal.NewFromFloat(quote.Price)
	value = amount.Mul(price)
	row.Price = quote.Price
	row.USDValue = value.InexactFloat64()
	metrics.UpdateAssetPrice(asset.Symbol, quote.Price)
	return row, value
}

// resolve envuelve la cadena en el reintento externo; cada reintento
// descarta las llamadas memoizadas de la cadena
func (s *ValuationService) resolve(ctx context.Context, symbol string) (*entities.Quote, error) {
	return resolver.DoQuote(ctx, s.retry,
		func(ctx context.Context) (*entities.Quote, error) {
			return s.resolver.Resolve(ctx, s.resolver.Numerator(), symbol)
		},
		resolver.Hooks[*entities.Quote]{
			BeforeRetry: func(uint) { s.resolver.Reset(symbol) },
			OnRetry: func(attempt uint, err error) {
				logging.Warn(ctx, "Retrying asset resolution", logging.Fields{
					logging.FieldAsset:   symbol,
					logging.FieldAttempt: attempt,
					logging.FieldError:   err.Error(),
				})
			},
		},
	)
}

func (s *ValuationService) totals(ctx context.Context, grandTotal decimal.Decimal) entities.PortfolioTotals {
	totals := entities.PortfolioTotals{GrandTotalUSD: grandTotal.Round(2).InexactFloat64()}

	base, err := s.resolver.BaseQuote(ctx)
	if err == nil && base.Usable() {
		totals.GrandTotalBTC = grandTotal.Div(decimal.NewFromFloat(base.Price)).Round(8).InexactFloat64()
	} else if err != nil {
		logging.WarnWithError(ctx, "BTC total unavailable", err, nil)
	}

	if s.expenses.Monthly > 0 {
		months := grandTotal.Div(decimal.NewFromFloat(s.expenses.Monthly)).InexactFloat64()
		totals.RunwayMonths = months
		totals.Runway = entities.NewRunway(months)
	}
	return totals
}

// weightPercent redondea la mitad hacia arriba. Los pesos no son negativos:
// el validador rechaza saldos < 0 y un precio usable es > 0. 0 si el total es 0
func weightPercent(value, grandTotal decimal.Decimal) float64 {
	if !grandTotal.IsPositive() {
		return 0
	}
	return value.Div(grandTotal).Mul(decimal.NewFromInt(100)).Add(decimal.NewFromFloat(0.5)).Floor().InexactFloat64()
}

// LatestReport implements a CACHE-ONLY read of the last stored report
func (s *ValuationService) LatestReport(ctx context.Context) (*entities.Report, error) {
	report, err := s.store.LatestReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("no valuation report available (cache-only mode): %w", err)
	}
	return report, nil
}

// Report returns a stored report by id
func (s *ValuationService) Report(ctx context.Context, id string) (*entities.Report, error) {
	return s.store.ReportByID(ctx, id)
}

// ResolveAsset resolves a single asset on demand
func (s *ValuationService) ResolveAsset(ctx context.Context, symbol string) (*entities.Quote, error) {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("asset symbol cannot be empty")
	}
	return s.resolve(ctx, symbol)
}

// StartRefreshLoop valuates right away and then on every tick until ctx is done.
// It blocks; run it in its own goroutine.
func (s *ValuationService) StartRefreshLoop(ctx context.Context, interval time.Duration) {
	logging.Info(ctx, "Starting background valuation refresh routine", logging.Fields{
		"interval": interval.String(),
	})

	s.refresh(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info(ctx, "Background valuation refresh stopped", nil)
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *ValuationService) refresh(ctx context.Context) {
	if _, err := s.Valuate(ctx); err != nil {
		logging.ErrorWithError(ctx, "Background valuation failed", err, nil)
		return
	}
	logging.Debug(ctx, "Background valuation completed", nil)
}

// Subscribe returns a channel receiving every new report. Slow subscribers
// lose reports instead of blocking the aggregator.
func (s *ValuationService) Subscribe() (<-chan *entities.Report, func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan *entities.Report, subscriberBuffer)
	s.subscribers[id] = ch
	metrics.UpdateStreamSubscribers(len(s.subscribers))
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			metrics.UpdateStreamSubscribers(len(s.subscribers))
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *ValuationService) publish(report *entities.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- report:
		default:
			metrics.RecordStreamDrop()
		}
	}
}
