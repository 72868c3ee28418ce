package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// CeilQty rounds a quantity up to two decimal places so it never drops below
// the unrounded value.
func CeilQty(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundCeil(2).InexactFloat64()
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
