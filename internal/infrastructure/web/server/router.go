package server

import (
	"net/http"

	_ "crypto-valuation-service/docs"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/metrics"
	"crypto-valuation-service/internal/infrastructure/ratelimit"
	"crypto-valuation-service/internal/infrastructure/web/handlers"
	"crypto-valuation-service/internal/infrastructure/web/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Health    *handlers.HealthHandler
	Valuation *handlers.ValuationHandler
	Stream    *handlers.StreamHandler
}

// NewRouter builds the gorilla/mux router with the middleware chain:
// tracing → logging → metrics → rate limit → auth
func NewRouter(h Handlers, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	router.Use(
		middleware.RequestTracingMiddleware,
		middleware.LoggingMiddleware,
		metrics.HTTPMetricsMiddleware,
		ratelimit.NewRateLimitMiddleware(cfg.RateLimit).Handler,
		middleware.NewAuthMiddleware(cfg.Auth).Handler,
	)

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.Health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/valuation", h.Valuation.GetValuation).Methods(http.MethodGet)
	api.HandleFunc("/valuation/refresh", h.Valuation.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/valuation/assets/{symbol}", h.Valuation.GetAsset).Methods(http.MethodGet)
	api.HandleFunc("/valuation/reports/{id}", h.Valuation.GetReport).Methods(http.MethodGet)
	api.HandleFunc("/quotes/{symbol}", h.Valuation.GetQuote).Methods(http.MethodGet)
	api.HandleFunc("/chains", h.Valuation.GetChains).Methods(http.MethodGet)

	router.HandleFunc("/ws/valuation", h.Stream.Stream).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	router.Handle("/docs", http.RedirectHandler("/swagger/", http.StatusMovedPermanently))

	return router
}
