package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"crypto-valuation-service/internal/application/dto"
	"crypto-valuation-service/internal/application/resolver"
	"crypto-valuation-service/internal/domain/entities"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockValuationService es un mock de ValuationAPI
type MockValuationService struct {
	mock.Mock
	mu   sync.Mutex
	subs []chan *entities.Report
}

func (m *MockValuationService) Valuate(ctx context.Context) (*entities.Report, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*entities.Report)
	return report, args.Error(1)
}

func (m *MockValuationService) LatestReport(ctx context.Context) (*entities.Report, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*entities.Report)
	return report, args.Error(1)
}

func (m *MockValuationService) Report(ctx context.Context, id string) (*entities.Report, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*entities.Report)
	return report, args.Error(1)
}

func (m *MockValuationService) ResolveAsset(ctx context.Context, symbol string) (*entities.Quote, error) {
	args := m.Called(ctx, symbol)
	quote, _ := args.Get(0).(*entities.Quote)
	return quote, args.Error(1)
}

func (m *MockValuationService) Subscribe() (<-chan *entities.Report, func()) {
	ch := make(chan *entities.Report, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch, func() {}
}

func (m *MockValuationService) publish(report *entities.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		ch <- report
	}
}

func (m *MockValuationService) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type staticChains struct{}

func (staticChains) Chains() map[string][]resolver.StepInfo {
	return map[string][]resolver.StepInfo{
		"bitcoin":  {{ID: "bitpay(usd)", Provider: "bitpay", Arg: "usd", MaxAttempts: 1}},
		"ethereum": {{ID: "poloniex(BTC_ETH)", Provider: "poloniex", Arg: "BTC_ETH", MaxAttempts: 1}},
		"zcash":    {{ID: "coinmarketcap(zcash)", Provider: "coinmarketcap", Arg: "zcash", MaxAttempts: 1}},
	}
}
func (staticChains) Numerator() string { return "usdollar" }
func (staticChains) BaseAsset() string { return "bitcoin" }

func sampleReport() *entities.Report {
	return &entities.Report{
		ID:          "report-1",
		Numerator:   "usdollar",
		GeneratedAt: time.Now(),
		Assets: []entities.AssetValuation{
			{Symbol: "bitcoin", Price: 10000, Amount: 2, USDValue: 20000, WeightPercent: 100, Source: "bitpay(usd)", Decimals: 2, Resolved: true},
			{Symbol: "ethereum", Amount: 1, Timestamp: -1, Error: "exhausted"},
		},
		Portfolio: entities.PortfolioTotals{GrandTotalUSD: 20000, GrandTotalBTC: 2},
	}
}

func newHandler(svc *MockValuationService) *ValuationHandler {
	return NewValuationHandler(svc, staticChains{}, []string{"bitcoin", "ethereum"})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// ===== VALUATION =====

func TestGetValuation_ReturnsLatestReport(t *testing.T) {
	svc := new(MockValuationService)
	svc.On("LatestReport", mock.Anything).Return(sampleReport(), nil)

	rec := httptest.NewRecorder()
	newHandler(svc).GetValuation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/valuation", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode[dto.ValuationResponse](t, rec)
	assert.Equal(t, "report-1", resp.ID)
	assert.Len(t, resp.Assets, 2)
	assert.Equal(t, 1, resp.Unresolved)
	svc.AssertExpectations(t)
}

func TestGetValuation_FiltersAssets(t *testing.T) {
	svc := new(MockValuationService)
	svc.On("LatestReport", mock.Anything).Return(sampleReport(), nil)

	rec := httptest.NewRecorder()
	newHandler(svc).GetValuation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/valuation?assets=Ethereum", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.ValuationResponse](t, rec)
	require.Len(t, resp.Assets, 1)
	assert.Equal(t, "ethereum", resp.Assets[0].Symbol)
}

func TestGetValuation_InvalidFilter(t *testing.T) {
	svc := new(MockValuationService)

	rec := httptest.NewRecorder()
	newHandler(svc).GetValuation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/valuation?assets=dogecoin", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode[dto.ErrorResponse](t, rec).Error)
	svc.AssertNotCalled(t, "LatestReport", mock.Anything)
}

func TestGetValuation_NoReportYet(t *testing.T) {
	svc := new(MockValuationService)
	svc.On("LatestReport", mock.Anything).Return(nil, errors.New("report not found"))

	rec := httptest.NewRecorder()
	newHandler(svc).GetValuation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/valuation", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "REPORT_NOT_READY", decode[dto.ErrorResponse](t, rec).Error)
}

func TestGetAsset(t *testing.T) {
	tests := []struct {
		name       string
		symbol     string
		wantStatus int
	}{
		{name: "activo del reporte", symbol: "bitcoin", wantStatus: http.StatusOK},
		{name: "activo fuera del reporte", symbol: "cardano", wantStatus: http.StatusNotFound},
		{name: "símbolo inválido", symbol: "btc/usd", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockValuationService)
			svc.On("LatestReport", mock.Anything).Return(sampleReport(), nil)

			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/valuation/assets/x", nil), map[string]string{"symbol": tt.symbol})
			rec := httptest.NewRecorder()
			newHandler(svc).GetAsset(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				row := decode[dto.AssetData](t, rec)
				assert.Equal(t, 20000.0, row.USDValue)
				assert.Equal(t, "10000.00", row.PriceDisplay)
			}
		})
	}
}

func TestGetReport(t *testing.T) {
	svc := new(MockValuationService)
	svc.On("Report", mock.Anything, "report-1").Return(sampleReport(), nil)
	svc.On("Report", mock.Anything, "missing").Return(nil, errors.New("not found"))
	h := newHandler(svc)

	rec := httptest.NewRecorder()
	h.GetReport(rec, mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "report-1"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetReport(rec, mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "missing"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh(t *testing.T) {
	t.Run("reporte guardado", func(t *testing.T) {
		svc := new(MockValuationService)
		svc.On("Valuate", mock.Anything).Return(sampleReport(), nil)

		rec := httptest.NewRecorder()
		newHandler(svc).Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/valuation/refresh", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[dto.RefreshResponse](t, rec)
		assert.Equal(t, "report-1", resp.ID)
		assert.True(t, resp.Stored)
		assert.Equal(t, 1, resp.Unresolved)
	})

	t.Run("reporte sin guardar", func(t *testing.T) {
		svc := new(MockValuationService)
		svc.On("Valuate", mock.Anything).Return(sampleReport(), errors.New("redis down"))

		rec := httptest.NewRecorder()
		newHandler(svc).Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/valuation/refresh", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[dto.RefreshResponse](t, rec).Stored)
	})

	t.Run("sin reporte", func(t *testing.T) {
		svc := new(MockValuationService)
		svc.On("Valuate", mock.Anything).Return(nil, errors.New("boom"))

		rec := httptest.NewRecorder()
		newHandler(svc).Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/valuation/refresh", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// ===== QUOTES =====

func TestGetQuote(t *testing.T) {
	exhausted := &entities.ResolutionExhaustedError{Asset: "zcash", Steps: 1}

	tests := []struct {
		name       string
		symbol     string
		quote      *entities.Quote
		err        error
		wantCall   bool
		wantStatus int
	}{
		{name: "resuelto", symbol: "ethereum", quote: entities.NewQuote(500, "poloniex(BTC_ETH)", time.Now()), wantCall: true, wantStatus: http.StatusOK},
		{name: "cadena agotada", symbol: "zcash", quote: entities.NoPriceQuote(), err: exhausted, wantCall: true, wantStatus: http.StatusServiceUnavailable},
		{name: "sin cadena", symbol: "dogecoin", wantStatus: http.StatusNotFound},
		{name: "identidad", symbol: "usdollar", quote: entities.IdentityQuote(), wantCall: true, wantStatus: http.StatusOK},
		{name: "símbolo inválido", symbol: "a b", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockValuationService)
			if tt.wantCall {
				svc.On("ResolveAsset", mock.Anything, tt.symbol).Return(tt.quote, tt.err)
			}

			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/quotes/x", nil), map[string]string{"symbol": tt.symbol})
			rec := httptest.NewRecorder()
			newHandler(svc).GetQuote(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if !tt.wantCall {
				svc.AssertNotCalled(t, "ResolveAsset", mock.Anything, mock.Anything)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetChains(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(new(MockValuationService)).GetChains(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chains", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.ChainsResponse](t, rec)
	assert.Equal(t, "bitcoin", resp.BaseAsset)
	assert.Equal(t, "poloniex(BTC_ETH)", resp.Chains["ethereum"][0].ID)
}

// ===== HEALTH =====

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(new(MockValuationService), nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[dto.HealthResponse](t, rec).Status)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		reportErr  error
		pinger     Pinger
		wantStatus int
	}{
		{name: "listo", wantStatus: http.StatusOK},
		{name: "sin reporte", reportErr: errors.New("not found"), wantStatus: http.StatusServiceUnavailable},
		{name: "redis caído", pinger: fakePinger{err: errors.New("connection refused")}, wantStatus: http.StatusServiceUnavailable},
		{name: "redis sano", pinger: fakePinger{}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockValuationService)
			if tt.reportErr != nil {
				svc.On("LatestReport", mock.Anything).Return(nil, tt.reportErr)
			} else {
				svc.On("LatestReport", mock.Anything).Return(sampleReport(), nil)
			}

			rec := httptest.NewRecorder()
			NewHealthHandler(svc, tt.pinger).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

// ===== STREAM =====

func TestStream_SendsLatestThenNewReports(t *testing.T) {
	svc := new(MockValuationService)
	svc.On("LatestReport", mock.Anything).Return(sampleReport(), nil)

	server := httptest.NewServer(http.HandlerFunc(NewStreamHandler(svc).Stream))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first dto.ValuationResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "report-1", first.ID)

	require.Eventually(t, func() bool { return svc.subscribers() == 1 }, time.Second, 10*time.Millisecond)
	next := sampleReport()
	next.ID = "report-2"
	svc.publish(next)

	var second dto.ValuationResponse
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "report-2", second.ID)
}

func TestStream_RejectsPlainHTTP(t *testing.T) {
	svc := new(MockValuationService)

	rec := httptest.NewRecorder()
	NewStreamHandler(svc).Stream(rec, httptest.NewRequest(http.MethodGet, "/ws/valuation", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.subscribers())
}
