package handlers

import (
	"context"
	"errors"
	"net/http"

	"crypto-valuation-service/internal/application/dto"
	"crypto-valuation-service/internal/application/resolver"
	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/logging"

	"github.com/gorilla/mux"
)

// ValuationAPI is the service surface used by the HTTP handlers
type ValuationAPI interface {
	interfaces.ValuationService
	Report(ctx context.Context, id string) (*entities.Report, error)
}

// ChainInspector exposes the configured fallback chains
type ChainInspector interface {
	Chains() map[string][]resolver.StepInfo
	Numerator() string
	BaseAsset() string
}

// ValuationHandler handles valuation, quote and chain requests
type ValuationHandler struct {
	service   ValuationAPI
	chains    ChainInspector
	mapper    *dto.ValuationMapper
	portfolio []string
}

// NewValuationHandler creates a new instance of the valuation handler
func NewValuationHandler(service ValuationAPI, chains ChainInspector, portfolio []string) *ValuationHandler {
	return &ValuationHandler{
		service:   service,
		chains:    chains,
		mapper:    dto.NewValuationMapper(),
		portfolio: portfolio,
	}
}

// GetValuation godoc
// @Summary Latest valuation report
// @Description Returns the last computed report from the report store (cache-only). Optional assets filter.
// @Tags valuation
// @Produce json
// @Param assets query string false "Comma separated asset symbols" example(bitcoin,ethereum)
// @Success 200 {object} dto.ValuationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "No report computed yet"
// @Router /api/v1/valuation [get]
func (h *ValuationHandler) GetValuation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewGetValuationRequest(r.URL.Query().Get("assets"), h.portfolio)
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	report, err := h.service.LatestReport(ctx)
	if err != nil {
		logging.WarnWithError(ctx, "Latest valuation report not available", err, nil)
		writeErrorResponse(ctx, w, http.StatusServiceUnavailable, "REPORT_NOT_READY", "no valuation report computed yet")
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToValuationResponse(report, request.Assets))
}

// GetReport godoc
// @Summary Valuation report by id
// @Tags valuation
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} dto.ValuationResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/valuation/reports/{id} [get]
func (h *ValuationHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	report, err := h.service.Report(ctx, id)
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusNotFound, "REPORT_NOT_FOUND", "report "+id+" not found or expired")
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToValuationResponse(report, nil))
}

// GetAsset godoc
// @Summary Valuation row of one asset
// @Description Returns one row of the latest report (cache-only).
// @Tags valuation
// @Produce json
// @Param symbol path string true "Asset symbol" example(ethereum)
// @Success 200 {object} dto.AssetData
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/valuation/assets/{symbol} [get]
func (h *ValuationHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbol, err := dto.ParseSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	report, err := h.service.LatestReport(ctx)
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusServiceUnavailable, "REPORT_NOT_READY", "no valuation report computed yet")
		return
	}

	resp := h.mapper.ToValuationResponse(report, []string{symbol})
	if len(resp.Assets) == 0 {
		writeErrorResponse(ctx, w, http.StatusNotFound, "ASSET_NOT_FOUND", "asset not in portfolio: "+symbol)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, resp.Assets[0])
}

// Refresh godoc
// @Summary Run a valuation pass now
// @Description Resolves every asset, stores the report and notifies stream subscribers.
// @Tags valuation
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.RefreshResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/valuation/refresh [post]
func (h *ValuationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logging.Info(ctx, "On-demand valuation requested", nil)

	report, err := h.service.Valuate(ctx)
	if report == nil {
		logging.ErrorWithError(ctx, "Valuation pass failed", err, nil)
		writeErrorResponse(ctx, w, http.StatusInternalServerError, "VALUATION_FAILED", errorMessage(err))
		return
	}
	if err != nil {
		logging.WarnWithError(ctx, "Valuation computed but not stored", err, logging.Fields{
			logging.FieldReportID: report.ID,
		})
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToRefreshResponse(report, err == nil))
}

// GetQuote godoc
// @Summary Resolve the price of one asset now
// @Description Runs the asset's fallback chain. 503 when every step failed.
// @Tags quotes
// @Produce json
// @Param symbol path string true "Asset symbol" example(ardor)
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.QuoteResponse
// @Router /api/v1/quotes/{symbol} [get]
func (h *ValuationHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbol, err := dto.ParseSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	numerator := h.chains.Numerator()
	if _, ok := h.chains.Chains()[symbol]; !ok && symbol != numerator {
		writeErrorResponse(ctx, w, http.StatusNotFound, "UNKNOWN_ASSET", "no resolution chain for "+symbol)
		return
	}

	quote, err := h.service.ResolveAsset(ctx, symbol)
	resp := h.mapper.ToQuoteResponse(symbol, numerator, quote, err)

	switch {
	case errors.Is(err, entities.ErrUnsupportedNumerator):
		writeErrorResponse(ctx, w, http.StatusBadRequest, "UNSUPPORTED_NUMERATOR", err.Error())
	case err != nil || !resp.Usable:
		writeJSONResponse(ctx, w, http.StatusServiceUnavailable, resp)
	default:
		writeJSONResponse(ctx, w, http.StatusOK, resp)
	}
}

// GetChains godoc
// @Summary Configured fallback chains
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.ChainsResponse
// @Router /api/v1/chains [get]
func (h *ValuationHandler) GetChains(w http.ResponseWriter, r *http.Request) {
	resp := h.mapper.ToChainsResponse(h.chains.Numerator(), h.chains.BaseAsset(), h.chains.Chains())
	writeJSONResponse(r.Context(), w, http.StatusOK, resp)
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
