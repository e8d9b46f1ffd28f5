package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/logging"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer creates a new server instance
func NewServer(handler http.Handler, cfg config.ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		port: cfg.Port,
	}
}

// Start starts the HTTP server; it blocks until the server stops
func (s *Server) Start() error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
	})

	logging.Info(ctx, "Available endpoints", logging.Fields{
		"endpoints": []string{
			fmt.Sprintf("GET  http://localhost:%d/health", s.port),
			fmt.Sprintf("GET  http://localhost:%d/ready", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/valuation?assets=bitcoin,ethereum", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/valuation/assets/bitcoin", s.port),
			fmt.Sprintf("POST http://localhost:%d/api/v1/valuation/refresh", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/quotes/ethereum", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/chains", s.port),
			fmt.Sprintf("WS   ws://localhost:%d/ws/valuation", s.port),
			fmt.Sprintf("GET  http://localhost:%d/swagger/", s.port),
		},
	})

	return s.httpServer.ListenAndServe()
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}
