package entities

import "math"

// Runway is the months-of-expenses figure broken into calendar units
type Runway struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// NewRunway splits a fractional number of months into years, months and 30-day days
func NewRunway(months float64) Runway {
	if months <= 0 || math.IsNaN(months) || math.IsInf(months, 0) {
		return Runway{}
	}
	whole := math.Floor(months)
	return Runway{
		Years:  int(math.Floor(months / 12)),
		Months: int(math.Mod(whole, 12)),
		Days:   int(math.Floor(30 * (months - whole))),
	}
}
