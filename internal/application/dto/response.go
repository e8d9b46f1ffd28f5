package dto

import "time"

// AssetData represents one row of the valuation report
// @Description Valuation of a single portfolio asset
type AssetData struct {
	Symbol        string  `json:"symbol" example:"bitcoin"`
	Price         float64 `json:"price" example:"10000"`
	PriceDisplay  string  `json:"price_display" example:"10000.00"` // price with the asset's configured decimals
	Amount        float64 `json:"amount" example:"2"`
	USDValue      float64 `json:"usd" example:"20000"`
	WeightPercent float64 `json:"weight" example:"100"`
	Source        string  `json:"source" example:"bitpay(usd)"`
	Time          int64   `json:"time" example:"1700000000000"` // ms since epoch, -1 when unresolved
	Resolved      bool    `json:"resolved"`
	Error         string  `json:"error,omitempty"`
}

// RunwayData is the runway broken into calendar units
type RunwayData struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// TotalsData represents the portfolio totals
// @Description Portfolio totals
type TotalsData struct {
	TotalUSD     float64    `json:"total_usd" example:"20000"`
	TotalBTC     float64    `json:"total_btc" example:"2"`
	RunwayMonths float64    `json:"runway_months" example:"20.5"`
	Runway       RunwayData `json:"runway"`
}

// ValuationResponse represents the response from /api/v1/valuation
// @Description Point-in-time valuation report
type ValuationResponse struct {
	ID          string      `json:"id" example:"5f1c0e9a-8d3b-4b8e-9a52-61d3f0a1c2b4"`
	Numerator   string      `json:"numerator" example:"usdollar"`
	GeneratedAt time.Time   `json:"generated_at"`
	DurationMS  int64       `json:"duration_ms"`
	Assets      []AssetData `json:"assets"`
	Totals      TotalsData  `json:"totals"`
	Unresolved  int         `json:"unresolved"`
}

// QuoteResponse represents the on-demand quote of one asset
// @Description Resolved price of one asset in the numerator currency
type QuoteResponse struct {
	Symbol    string  `json:"symbol" example:"ethereum"`
	Numerator string  `json:"numerator" example:"usdollar"`
	Price     float64 `json:"price" example:"500"`
	Source    string  `json:"source" example:"poloniex(BTC_ETH)"`
	Time      int64   `json:"time" example:"1700000000000"`
	Usable    bool    `json:"usable"`
	Error     string  `json:"error,omitempty"`
}

// ChainStep describes one step of a fallback chain
type ChainStep struct {
	ID            string `json:"id" example:"liqui(eth_btc)"`
	Provider      string `json:"provider" example:"liqui"`
	Arg           string `json:"arg" example:"eth_btc"`
	MaxAttempts   int    `json:"max_attempts" example:"3"`
	RetryUnusable bool   `json:"retry_unusable"`
}

// ChainsResponse lists the fallback chain of every asset
// @Description Configured fallback chains
type ChainsResponse struct {
	Numerator string                 `json:"numerator" example:"usdollar"`
	BaseAsset string                 `json:"base_asset" example:"bitcoin"`
	Chains    map[string][]ChainStep `json:"chains"`
}

// RefreshResponse is returned after an on-demand valuation pass
type RefreshResponse struct {
	ID         string `json:"id"`
	Unresolved int    `json:"unresolved"`
	DurationMS int64  `json:"duration_ms"`
	Stored     bool   `json:"stored"`
}

// ErrorResponse represents a standard error response for endpoints
// @Description Standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error" example:"INVALID_PARAMETER" validate:"required"`
	Message string `json:"message,omitempty" example:"asset not in portfolio"`
	Code    string `json:"code,omitempty" example:"400"`
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" validate:"required" enums:"healthy,degraded,unhealthy"`
	Timestamp time.Time         `json:"timestamp" example:"2023-12-01T10:30:00Z" validate:"required"`
	Services  map[string]string `json:"services,omitempty" example:"cache:healthy,report:available"`
}
