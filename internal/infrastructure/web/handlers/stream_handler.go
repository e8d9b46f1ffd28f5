package handlers

import (
	"context"
	"net/http"
	"time"

	"crypto-valuation-service/internal/application/dto"
	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/logging"

	"github.com/gorilla/websocket"
)

const (
	PingInterval    = 30 * time.Second
	WriteWait       = 10 * time.Second
	PongWait        = 60 * time.Second
	ReadBufferSize  = 1024
	WriteBufferSize = 4096
)

// ReportSubscriber entrega cada reporte nuevo
type ReportSubscriber interface {
	Subscribe() (<-chan *entities.Report, func())
	LatestReport(ctx context.Context) (*entities.Report, error)
}

// StreamHandler pushes valuation reports over a websocket
type StreamHandler struct {
	service  ReportSubscriber
	mapper   *dto.ValuationMapper
	upgrader websocket.Upgrader
}

// NewStreamHandler creates the websocket handler
func NewStreamHandler(service ReportSubscriber) *StreamHandler {
	return &StreamHandler{
		service: service,
		mapper:  dto.NewValuationMapper(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  ReadBufferSize,
			WriteBufferSize: WriteBufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Stream godoc
// @Summary Stream valuation reports
// @Description Websocket. Sends the latest report on connect, then every new one.
// @Tags valuation
// @Success 101 {object} dto.ValuationResponse
// @Router /ws/valuation [get]
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió al cliente
		logging.WarnWithError(ctx, "Websocket upgrade failed", err, nil)
		return
	}
	defer conn.Close()

	reports, cancel := h.service.Subscribe()
	defer cancel()

	logging.Info(ctx, "Valuation stream subscriber connected", logging.Fields{
		"remote_addr": conn.RemoteAddr().String(),
	})

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	if latest, err := h.service.LatestReport(ctx); err == nil {
		if err := h.send(conn, latest); err != nil {
			return
		}
	}

	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logging.Info(ctx, "Valuation stream subscriber disconnected", nil)
			return
		case report, ok := <-reports:
			if !ok {
				return
			}
			if err := h.send(conn, report); err != nil {
				logging.WarnWithError(ctx, "Failed to push valuation report", err, nil)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) send(conn *websocket.Conn, report *entities.Report) error {
	_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return conn.WriteJSON(h.mapper.ToValuationResponse(report, nil))
}

// readLoop descarta mensajes del cliente y detecta el cierre
func (h *StreamHandler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	_ = conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
