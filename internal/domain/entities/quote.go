package entities

import (
	"math"
	"time"
)

const (
	// IdentitySource identifica las cotizaciones de un activo contra sí mismo
	IdentitySource = "identity"
)

// Quote is the resolved price of one asset in the numerator currency.
// Quotes are never mutated once built; a new fetch creates a new Quote.
type Quote struct {
	Price     float64 `json:"price"`
	Source    string  `json:"source"`
	Timestamp int64   `json:"timestamp"` // milliseconds since epoch
}

// NewQuote builds a quote captured at the given instant
func NewQuote(price float64, source string, at time.Time) *Quote {
	return &Quote{
		Price:     price,
		Source:    source,
		Timestamp: at.UnixMilli(),
	}
}

// IdentityQuote is returned when numerator and denominator are the same asset
func IdentityQuote() *Quote {
	return &Quote{Price: 1, Source: IdentitySource, Timestamp: time.Now().UnixMilli()}
}

// NoPriceQuote is the "no price available" sentinel
func NoPriceQuote() *Quote {
	return &Quote{Price: 0, Source: "", Timestamp: -1}
}

// Usable reports whether the quote is good enough to stop a fallback chain
func (q *Quote) Usable() bool {
	return q != nil && IsUsableQuote(q.Price)
}

// Time returns the capture time, zero for sentinel quotes
func (q *Quote) Time() time.Time {
	if q == nil || q.Timestamp <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(q.Timestamp)
}

// IsUsableQuote is the only usability predicate shared by every chain:
// a price must be a finite number strictly greater than zero.
func IsUsableQuote(price float64) bool {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}
	return price > 0
}
