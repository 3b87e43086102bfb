// ABOUTME: Risk tier classification shared by every displayed risk value
// ABOUTME: Fixed thresholds map a probability onto low, medium or high

package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier boundaries. A probability below MediumThreshold is low, below
// HighThreshold is medium, anything else is high.
const (
	MediumThreshold = 0.3
	HighThreshold   = 0.7
)

// Tier is a discrete risk severity. Higher values are more severe.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// Classification is the display form of a tier.
type Classification struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Style string `json:"style"`
}

var classifications = [...]Classification{
	TierLow:    {Tier: TierLow, Label: "low", Style: "green"},
	TierMedium: {Tier: TierMedium, Label: "medium", Style: "yellow"},
	TierHigh:   {Tier: TierHigh, Label: "high", Style: "red"},
}

// Clamp bounds p to [0,1]. NaN counts as 0.
func Clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Value returns the clamped probability, treating absent as 0.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return Clamp(*p)
}

// Classify maps a probability to its tier.
func Classify(p float64) Classification {
	p = Clamp(p)
	switch {
	case p < MediumThreshold:
		return classifications[TierLow]
	case p < HighThreshold:
		return classifications[TierMedium]
	default:
		return classifications[TierHigh]
	}
}

// Percent returns p as a percentage rounded to one decimal place.
func Percent(p float64) float64 {
	return decimal.NewFromFloat(Clamp(p)).Shift(2).Round(1).InexactFloat64()
}
