package entities

import "time"

// Denomination is the currency a raw provider rate is expressed in
type Denomination string

const (
	DenominationUSD Denomination = "USD"
	DenominationBTC Denomination = "BTC"
)

// Rate is the raw parsed payload of a quote source, before any BTC→USD conversion
type Rate struct {
	Value        float64      `json:"value"`
	Denomination Denomination `json:"denomination"`
	Source       string       `json:"source"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// NewRate creates a rate fetched now
func NewRate(value float64, denomination Denomination, source string) *Rate {
	return &Rate{
		Value:        value,
		Denomination: denomination,
		Source:       source,
		FetchedAt:    time.Now(),
	}
}

// NeedsConversion is true when the rate must be multiplied by the BTC→USD quote
func (r *Rate) NeedsConversion() bool {
	return r != nil && r.Denomination == DenominationBTC
}
