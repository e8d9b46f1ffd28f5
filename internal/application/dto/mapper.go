package dto

import (
	"crypto-valuation-service/internal/application/resolver"
	"crypto-valuation-service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// ValuationMapper maneja la conversión entre entidades del dominio y DTOs
type ValuationMapper struct{}

// NewValuationMapper crea una nueva instancia del mapper
func NewValuationMapper() *ValuationMapper {
	return &ValuationMapper{}
}

// ToValuationResponse convierte un reporte; assets vacío no filtra
func (m *ValuationMapper) ToValuationResponse(report *entities.Report, assets []string) *ValuationResponse {
	wanted := make(map[string]bool, len(assets))
	for _, a := range assets {
		wanted[a] = true
	}

	rows := make([]AssetData, 0, len(report.Assets))
	for _, row := range report.Assets {
		if len(wanted) > 0 && !wanted[row.Symbol] {
			continue
		}
		rows = append(rows, m.toAssetData(row))
	}

	p := report.Portfolio
	return &ValuationResponse{
		ID:          report.ID,
		Numerator:   report.Numerator,
		GeneratedAt: report.GeneratedAt,
		DurationMS:  report.Duration.Milliseconds(),
		Assets:      rows,
		Totals: TotalsData{
			TotalUSD:     p.GrandTotalUSD,
			TotalBTC:     p.GrandTotalBTC,
			RunwayMonths: p.RunwayMonths,
			Runway:       RunwayData{Years: p.Runway.Years, Months: p.Runway.Months, Days: p.Runway.Days},
		},
		Unresolved: report.Unresolved(),
	}
}

func (m *ValuationMapper) toAssetData(row entities.AssetValuation) AssetData {
	return AssetData{
		Symbol:        row.Symbol,
		Price:         row.Price,
		PriceDisplay:  decimal.NewFromFloat(row.Price).StringFixed(int32(row.Decimals)),
		Amount:        row.Amount,
		USDValue:      row.USDValue,
		WeightPercent: row.WeightPercent,
		Source:        row.Source,
		Time:          row.Timestamp,
		Resolved:      row.Resolved,
		Error:         row.Error,
	}
}

// ToQuoteResponse convierte una cotización resuelta bajo demanda
func (m *ValuationMapper) ToQuoteResponse(symbol, numerator string, quote *entities.Quote, err error) *QuoteResponse {
	if quote == nil {
		quote = entities.NoPriceQuote()
	}
	resp := &QuoteResponse{
		Symbol:    symbol,
		Numerator: numerator,
		Price:     quote.Price,
		Source:    quote.Source,
		Time:      quote.Timestamp,
		Usable:    err == nil && quote.Usable(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// ToChainsResponse convierte la vista de introspección del resolver
func (m *ValuationMapper) ToChainsResponse(numerator, baseAsset string, chains map[string][]resolver.StepInfo) *ChainsResponse {
	out := make(map[string][]ChainStep, len(chains))
	for asset, steps := range chains {
		mapped := make([]ChainStep, len(steps))
		for i, s := range steps {
			mapped[i] = ChainStep{
				ID:            s.ID,
				Provider:      s.Provider,
				Arg:           s.Arg,
				MaxAttempts:   s.MaxAttempts,
				RetryUnusable: s.RetryUnusable,
			}
		}
		out[asset] = mapped
	}
	return &ChainsResponse{Numerator: numerator, BaseAsset: baseAsset, Chains: out}
}

// ToRefreshResponse resume una pasada de valoración
func (m *ValuationMapper) ToRefreshResponse(report *entities.Report, stored bool) *RefreshResponse {
	return &RefreshResponse{
		ID:         report.ID,
		Unresolved: report.Unresolved(),
		DurationMS: report.Duration.Milliseconds(),
		Stored:     stored,
	}
}
