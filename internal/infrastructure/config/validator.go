package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// MaxRetryAttempts is the hard ceiling for any retry policy
const MaxRetryAttempts = 10

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateProviders(config.Providers, config.Development.MockMode); err != nil {
		return fmt.Errorf("providers config validation failed: %w", err)
	}

	if err := v.validateResolver(config.Resolver, config.Valuation.BaseAsset); err != nil {
		return fmt.Errorf("resolver config validation failed: %w", err)
	}

	if err := v.validateValuation(config.Valuation); err != nil {
		return fmt.Errorf("valuation config validation failed: %w", err)
	}

	if err := v.validateFreshness(config.Resolver, config.Valuation); err != nil {
		return fmt.Errorf("resolver config validation failed: %w", err)
	}

	if err := v.validatePortfolio(config.Portfolio); err != nil {
		return fmt.Errorf("portfolio config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateAuth(config.Auth); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// validateServer valida la configuración del servidor
func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	if config.ReadTimeout < 0 || config.WriteTimeout < 0 {
		return fmt.Errorf("read/write timeouts cannot be negative")
	}

	return nil
}

// validateCache valida la configuración del report store
func (v *Validator) validateCache(config CacheConfig) error {
	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid cache backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if err := v.validateTTL(config.TTL); err != nil {
		return err
	}

	if config.Prefix == "" {
		return fmt.Errorf("cache prefix cannot be empty")
	}

	if strings.EqualFold(config.Backend, "redis") {
		return v.validateRedis(config.Redis)
	}

	return nil
}

// validateTTL valida el TTL del ultimo reporte
func (v *Validator) validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", ttl)
	}

	if ttl < time.Second {
		return fmt.Errorf("cache TTL too short: %v, min 1 second", ttl)
	}

	if ttl > 24*time.Hour {
		return fmt.Errorf("cache TTL too long: %v, max 24 hours", ttl)
	}

	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	return nil
}

// validateProviders valida timeouts, limites y URLs de los proveedores
func (v *Validator) validateProviders(config ProvidersConfig, mockMode bool) error {
	if config.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got: %v", config.RequestTimeout)
	}

	if config.RequestTimeout > time.Minute {
		return fmt.Errorf("request_timeout too long: %v, max 1 minute", config.RequestTimeout)
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Capacity <= 0 {
			return fmt.Errorf("providers rate_limit capacity must be positive when enabled, got: %d", config.RateLimit.Capacity)
		}
		if config.RateLimit.RefillRate <= 0 {
			return fmt.Errorf("providers rate_limit refill_rate must be positive when enabled, got: %v", config.RateLimit.RefillRate)
		}
	}

	for name, source := range config.Sources {
		if !isKnownProvider(name) {
			return fmt.Errorf("unknown provider: %s, must be one of: %v", name, KnownProviders)
		}
		if mockMode {
			continue
		}
		if err := v.validateURL(source.BaseURL, name+" base_url"); err != nil {
			return err
		}
	}

	return nil
}

// validateResolver valida que toda cadena sea finita y no vacía
func (v *Validator) validateResolver(config ResolverConfig, baseAsset string) error {
	if config.DedupTTL < 0 {
		return fmt.Errorf("dedup_ttl cannot be negative, got: %v", config.DedupTTL)
	}

	if len(config.Chains) == 0 {
		return fmt.Errorf("chains cannot be empty")
	}

	if _, ok := config.Chains[strings.ToLower(baseAsset)]; !ok {
		return fmt.Errorf("no chain defined for base asset %q", baseAsset)
	}

	for asset, steps := range config.Chains {
		if len(steps) == 0 {
			return fmt.Errorf("chain for %s has no steps", asset)
		}
		for i, step := range steps {
			if !isKnownProvider(step.Provider) {
				return fmt.Errorf("chain %s step %d: unknown provider %q", asset, i+1, step.Provider)
			}
			if step.Arg == "" && step.Provider != ProviderBitpay {
				return fmt.Errorf("chain %s step %d: arg cannot be empty for %s", asset, i+1, step.Provider)
			}
			if step.Retry != nil {
				if err := v.validateRetry(*step.Retry); err != nil {
					return fmt.Errorf("chain %s step %d: %w", asset, i+1, err)
				}
			}
		}
	}

	return nil
}

// validateFreshness exige que cada refresh periódico vea llamadas nuevas:
// una llamada memoizada debe vencer antes del próximo tick
func (v *Validator) validateFreshness(resolver ResolverConfig, valuation ValuationConfig) error {
	if valuation.RefreshInterval <= 0 {
		return nil
	}

	if resolver.DedupTTL == 0 {
		return fmt.Errorf("dedup_ttl 0 never expires and would freeze refresh_interval %v", valuation.RefreshInterval)
	}

	if resolver.DedupTTL >= valuation.RefreshInterval {
		return fmt.Errorf("dedup_ttl %v must be shorter than refresh_interval %v", resolver.DedupTTL, valuation.RefreshInterval)
	}

	return nil
}

// validateValuation valida el agregador
func (v *Validator) validateValuation(config ValuationConfig) error {
	if config.Numerator == "" {
		return fmt.Errorf("numerator cannot be empty")
	}

	if config.BaseAsset == "" {
		return fmt.Errorf("base_asset cannot be empty")
	}

	if config.Concurrency < 1 || config.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 1-64, got: %d", config.Concurrency)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", config.Timeout)
	}

	if config.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval cannot be negative, got: %v", config.RefreshInterval)
	}

	if config.RefreshInterval > 0 && config.RefreshInterval < 10*time.Second {
		return fmt.Errorf("refresh_interval too short: %v, min 10 seconds", config.RefreshInterval)
	}

	return v.validateRetry(config.Retry)
}

// validateRetry impone el techo de intentos
func (v *Validator) validateRetry(config RetryConfig) error {
	if config.MaxAttempts < 1 || config.MaxAttempts > MaxRetryAttempts {
		return fmt.Errorf("retry max_attempts must be between 1-%d, got: %d", MaxRetryAttempts, config.MaxAttempts)
	}

	if config.MinTimeout < 0 {
		return fmt.Errorf("retry min_timeout cannot be negative, got: %v", config.MinTimeout)
	}

	if config.MinTimeout > time.Minute {
		return fmt.Errorf("retry min_timeout too long: %v, max 1 minute", config.MinTimeout)
	}

	return nil
}

// validatePortfolio valida los activos configurados
func (v *Validator) validatePortfolio(config PortfolioConfig) error {
	if len(config.Assets) == 0 {
		return fmt.Errorf("assets cannot be empty")
	}

	seen := make(map[string]bool, len(config.Assets))
	for _, asset := range config.Assets {
		symbol := strings.ToLower(strings.TrimSpace(asset.Symbol))
		if symbol == "" {
			return fmt.Errorf("asset symbol cannot be empty")
		}
		if seen[symbol] {
			return fmt.Errorf("duplicated asset: %s", symbol)
		}
		seen[symbol] = true

		if asset.Decimals < 0 || asset.Decimals > 18 {
			return fmt.Errorf("asset %s decimals must be between 0-18, got: %d", symbol, asset.Decimals)
		}
		for category, amount := range asset.Balances {
			if amount < 0 {
				return fmt.Errorf("asset %s balance %s cannot be negative", symbol, category)
			}
		}
	}

	if config.MonthlyExpenses < 0 {
		return fmt.Errorf("monthly_expenses cannot be negative, got: %v", config.MonthlyExpenses)
	}

	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Capacity <= 0 {
		return fmt.Errorf("rate_limit capacity must be positive when enabled, got: %d", config.Capacity)
	}

	if config.RefillRate <= 0 {
		return fmt.Errorf("rate_limit refill_rate must be positive when enabled, got: %v", config.RefillRate)
	}

	if config.Capacity > 10000 {
		return fmt.Errorf("rate_limit capacity too high: %d, max 10000", config.Capacity)
	}

	if config.RefillRate > 1000 {
		return fmt.Errorf("rate_limit refill_rate too high: %v, max 1000", config.RefillRate)
	}

	return nil
}

// validateAuth valida la autenticación por API key
func (v *Validator) validateAuth(config AuthConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.APIKey == "" {
		return fmt.Errorf("api_key cannot be empty when auth is enabled")
	}

	if config.HeaderName == "" {
		return fmt.Errorf("header_name cannot be empty when auth is enabled")
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

func isKnownProvider(name string) bool {
	return contains(KnownProviders, name)
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
