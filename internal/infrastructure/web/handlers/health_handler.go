package handlers

import (
	"context"
	"net/http"
	"time"

	"crypto-valuation-service/internal/application/dto"
	"crypto-valuation-service/internal/domain/entities"
)

// ReportReader is the read side of the report store
type ReportReader interface {
	LatestReport(ctx context.Context) (*entities.Report, error)
}

// Pinger lo implementan los backends que pueden verificar su conexión
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	reports ReportReader
	backend Pinger
}

// NewHealthHandler crea una nueva instancia del health handler; backend puede ser nil
func NewHealthHandler(reports ReportReader, backend Pinger) *HealthHandler {
	return &HealthHandler{
		reports: reports,
		backend: backend,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running. Does not check external dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running correctly"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(r.Context(), w, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  map[string]string{"service": "running"},
	})
}

// Ready godoc
// @Summary Readiness check
// @Description Ready once the report store answers and a first valuation report exists.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is ready to receive traffic"
// @Failure 503 {object} dto.HealthResponse "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services := map[string]string{}
	status, code := "ready", http.StatusOK

	if h.backend != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := h.backend.Ping(pingCtx)
		cancel()
		if err != nil {
			services["cache"] = "error: " + err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
		} else {
			services["cache"] = "ready"
		}
	}

	if _, err := h.reports.LatestReport(ctx); err != nil {
		services["report"] = "unavailable"
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		services["report"] = "available"
	}

	writeJSONResponse(ctx, w, code, dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}
