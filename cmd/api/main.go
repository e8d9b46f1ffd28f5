package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"crypto-valuation-service/internal/application/resolver"
	"crypto-valuation-service/internal/application/services"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/exchange/providers"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/metrics"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"
	"crypto-valuation-service/internal/infrastructure/web/handlers"
	"crypto-valuation-service/internal/infrastructure/web/server"

	"github.com/joho/godotenv"
)

const (
	serviceName = "crypto-valuation-service"
	version     = "1.0.0"
)

// @title Crypto Valuation Service API
// @version 1.0
// @description Resolves crypto asset prices through per-asset fallback chains and values a portfolio in USD and BTC.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// .env es opcional
	_ = godotenv.Load()

	cfg, err := config.NewLoader().Load()
	if err != nil {
		logging.ErrorWithError(context.Background(), "Failed to load configuration", err, nil)
		os.Exit(1)
	}

	if err := initLogging(cfg); err != nil {
		logging.ErrorWithError(context.Background(), "Failed to initialize logging", err, nil)
		os.Exit(1)
	}

	ctx := logging.WithRequestID(context.Background(), logging.GenerateRequestID())

	if err := config.NewValidator().Validate(cfg); err != nil {
		logging.ErrorWithError(ctx, "Invalid configuration", err, nil)
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logging.ErrorWithError(ctx, "Service stopped with error", err, nil)
		os.Exit(1)
	}
}

func initLogging(cfg *config.Config) error {
	loggerConfig := logging.NewConfig(serviceName, version, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format))
	return logging.InitializeGlobalLoggers(loggerConfig)
}

func run(ctx context.Context, cfg *config.Config) error {
	logging.Info(ctx, "Initializing service components", logging.Fields{
		"cache_backend": cfg.Cache.Backend,
		"mock_mode":     cfg.Development.MockMode,
		"assets":        len(cfg.Portfolio.Assets),
	})

	backend, err := cache.NewFactory().CreateCache(cfg.Cache)
	if err != nil {
		return err
	}
	reports := cache.NewReportCacheAdapter(backend, cfg.Cache.Prefix, cfg.Cache.TTL)
	defer reports.Close()

	registry, err := providers.NewRegistry(cfg)
	if err != nil {
		return err
	}

	res, err := resolver.NewFromConfig(cfg, registry)
	if err != nil {
		return err
	}

	logging.Info(ctx, "Fallback chains loaded", logging.Fields{
		"assets":     res.Assets(),
		"base_asset": res.BaseAsset(),
		"dedup_ttl":  cfg.Resolver.DedupTTL.String(),
	})

	valuation := services.NewValuationServiceFromConfig(cfg, res, reports)

	metrics.SetApplicationInfo(version, runtime.Version())

	var pinger handlers.Pinger
	if p, ok := backend.(handlers.Pinger); ok {
		pinger = p
	}

	router := server.NewRouter(server.Handlers{
		Health:    handlers.NewHealthHandler(valuation, pinger),
		Valuation: handlers.NewValuationHandler(valuation, res, portfolioSymbols(cfg)),
		Stream:    handlers.NewStreamHandler(valuation),
	}, cfg)
	srv := server.NewServer(router, cfg.Server)

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go valuation.StartRefreshLoop(refreshCtx, cfg.Valuation.RefreshInterval)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logging.Info(ctx, "Shutting down server", logging.Fields{"signal": sig.String()})
	}

	stopRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}

	logging.Info(ctx, "Server shutdown completed", nil)
	return nil
}

func portfolioSymbols(cfg *config.Config) []string {
	assets := services.AssetsFromConfig(cfg.Portfolio)
	symbols := make([]string, len(assets))
	for i, a := range assets {
		symbols[i] = a.Symbol
	}
	return symbols
}
