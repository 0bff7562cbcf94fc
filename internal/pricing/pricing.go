package pricing

import "math"

const (
	// Confidence is reported for every estimate. It is a fixed constant and is not
	// derived from model uncertainty.
	Confidence = 0.9

	rangeSpread = 0.10
	roundTo     = 100.0
)

// Range is a formatted estimate.
type Range struct {
	Price      float64 `json:"price"`
	PriceMin   float64 `json:"price_min"`
	PriceMax   float64 `json:"price_max"`
	Confidence float64 `json:"confidence"`
}

// RoundToHundred rounds to the nearest hundred, resolving ties to the even hundred.
func RoundToHundred(x float64) float64 {
	return math.RoundToEven(x/roundTo) * roundTo
}

// FormatRange turns a raw model output into a ±10% range rounded to hundreds.
func FormatRange(price float64) Range {
	return Range{
		Price:      RoundToHundred(price),
		PriceMin:   RoundToHundred(price * (1 - rangeSpread)),
		PriceMax:   RoundToHundred(price * (1 + rangeSpread)),
		Confidence: Confidence,
	}
}
