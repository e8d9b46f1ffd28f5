package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/metrics"
	"crypto-valuation-service/internal/infrastructure/ratelimit"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultUserAgent      = "crypto-valuation-service/1.0"
	maxErrorBodyBytes     = 4 << 10
)

// Getter descarga y decodifica un documento JSON de un proveedor
type Getter interface {
	Get(ctx context.Context, provider, url string, out interface{}) error
}

// JSONGetter es el transporte HTTP común de todas las fuentes de cotización.
// No reintenta: un fallo se clasifica y se devuelve al llamador.
type JSONGetter struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	limiters   *ratelimit.RateLimiterCollection
}

// NewJSONGetter crea el getter a partir de la configuración de proveedores
func NewJSONGetter(cfg config.ProvidersConfig) *JSONGetter {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	g := &JSONGetter{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		timeout:   timeout,
		userAgent: userAgent,
	}

	if cfg.RateLimit.Enabled {
		g.limiters = ratelimit.NewRateLimiterCollection(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	}

	return g
}

// Get emite el GET y decodifica el cuerpo en out
func (g *JSONGetter) Get(ctx context.Context, provider, url string, out interface{}) error {
	if err := g.waitTurn(ctx, provider); err != nil {
		return &entities.TransportError{Provider: provider, URL: url, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return &entities.TransportError{Provider: provider, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)

	logging.ExternalAPI().RequestStarted(ctx, provider, url, http.MethodGet)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordExternalAPICall(provider, 0, elapsed.Seconds())
		logging.ExternalAPI().RequestFailed(ctx, provider, url, 0, err, durationMs(elapsed))
		return &entities.TransportError{Provider: provider, URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordExternalAPICall(provider, resp.StatusCode, elapsed.Seconds())

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		transportErr := &entities.TransportError{Provider: provider, URL: url, StatusCode: resp.StatusCode}
		logging.ExternalAPI().RequestFailed(ctx, provider, url, resp.StatusCode, transportErr, durationMs(elapsed))
		return transportErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// cuerpo cortado a mitad de lectura
			logging.ExternalAPI().RequestFailed(ctx, provider, url, resp.StatusCode, err, durationMs(elapsed))
			return &entities.TransportError{Provider: provider, URL: url, Err: err}
		}
		return &entities.ParseError{Provider: provider, Field: "body", Err: err}
	}

	logging.ExternalAPI().RequestCompleted(ctx, provider, url, resp.StatusCode, durationMs(elapsed))
	return nil
}

func (g *JSONGetter) waitTurn(ctx context.Context, provider string) error {
	if g.limiters == nil {
		return nil
	}

	start := time.Now()
	if err := g.limiters.Wait(ctx, provider); err != nil {
		return fmt.Errorf("outbound rate limit wait: %w", err)
	}
	metrics.RecordOutboundWait(provider, time.Since(start).Seconds())
	return nil
}

func durationMs(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
