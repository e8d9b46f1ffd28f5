package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override: VALUATION_SERVER_PORT
const EnvPrefix = "VALUATION"

// Loader handles configuration loading using Viper
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigFile forces a specific file instead of searching the default paths
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Load loads configuration from files and environment variables
func (l *Loader) Load() (*Config, error) {
	l.setupViper()

	if err := l.v.ReadInConfig(); err != nil {
		// Sin config.yaml se usan defaults y variables de entorno
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.overrideWithEnvVars(config)

	return config, nil
}

// ConfigFileUsed returns the file that was read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")

		l.v.AddConfigPath("./configs")
		l.v.AddConfigPath("../configs") // For when running from cmd/
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("/etc/crypto-valuation")
	}

	l.v.AutomaticEnv()
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.bindEnvVars()
}

// bindEnvVars maps plain environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":                 "PORT",
		"cache.backend":               "CACHE_BACKEND",
		"cache.ttl":                   "CACHE_TTL",
		"cache.redis.addr":            "REDIS_ADDR",
		"cache.redis.password":        "REDIS_PASSWORD",
		"cache.redis.db":              "REDIS_DB",
		"providers.request_timeout":   "PROVIDER_REQUEST_TIMEOUT",
		"resolver.dedup_ttl":          "DEDUP_TTL",
		"valuation.refresh_interval":  "REFRESH_INTERVAL",
		"valuation.concurrency":       "VALUATION_CONCURRENCY",
		"portfolio.monthly_expenses":  "MONTHLY_EXPENSES",
		"logging.level":               "LOG_LEVEL",
		"logging.format":              "LOG_FORMAT",
		"rate_limit.capacity":         "RATE_LIMIT_CAPACITY",
		"rate_limit.refill_rate":      "RATE_LIMIT_REFILL_RATE",
		"rate_limit.enabled":          "RATE_LIMIT_ENABLED",
		"auth.enabled":                "AUTH_ENABLED",
		"auth.api_key":                "API_KEY",
		"development.mock_mode":       "MOCK_MODE",
		"development.debug_mode":      "DEBUG_MODE",
	}

	for configKey, envVar := range envMappings {
		_ = l.v.BindEnv(configKey, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(configKey, ".", "_")), envVar)
	}
}

// overrideWithEnvVars maneja casos especiales de env vars
func (l *Loader) overrideWithEnvVars(config *Config) {
	// <PROVIDER>_BASE_URL apunta un proveedor a otro host (mocks, proxies)
	for _, name := range KnownProviders {
		if baseURL := os.Getenv(strings.ToUpper(name) + "_BASE_URL"); baseURL != "" {
			if config.Providers.Sources == nil {
				config.Providers.Sources = map[string]SourceConfig{}
			}
			source := config.Providers.Sources[name]
			source.BaseURL = baseURL
			config.Providers.Sources[name] = source
		}
	}

	if config.Development.DebugMode {
		config.Logging.Level = "debug"
	}
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}
