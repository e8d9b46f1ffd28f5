package entities

import "time"

// AssetValuation is one row of the valuation report
type AssetValuation struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Amount        float64 `json:"amount"`
	USDValue      float64 `json:"usd_value"`
	WeightPercent float64 `json:"weight_percent"`
	Source        string  `json:"source"`
	Timestamp     int64   `json:"timestamp"`
	Decimals      int     `json:"decimals"`
	Resolved      bool    `json:"resolved"`
	Error         string  `json:"error,omitempty"`
}

// PortfolioTotals aggregates all rows of a report
type PortfolioTotals struct {
	GrandTotalUSD float64 `json:"grand_total_usd"`
	GrandTotalBTC float64 `json:"grand_total_btc"`
	RunwayMonths  float64 `json:"runway_months"`
	Runway        Runway  `json:"runway"`
}

// Report is a point-in-time valuation snapshot
type Report struct {
	ID          string           `json:"id"`
	Numerator   string           `json:"numerator"`
	GeneratedAt time.Time        `json:"generated_at"`
	Duration    time.Duration    `json:"duration"`
	Assets      []AssetValuation `json:"assets"`
	Portfolio   PortfolioTotals  `json:"portfolio"`
}

// Asset returns the row for the given symbol
func (r *Report) Asset(symbol string) (AssetValuation, bool) {
	if r == nil {
		return AssetValuation{}, false
	}
	for _, row := range r.Assets {
		if row.Symbol == symbol {
			return row, true
		}
	}
	return AssetValuation{}, false
}

// Unresolved counts rows whose price could not be resolved
func (r *Report) Unresolved() int {
	count := 0
	for _, row := range r.Assets {
		if !row.Resolved {
			count++
		}
	}
	return count
}
