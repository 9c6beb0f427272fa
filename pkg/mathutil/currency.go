// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/str-forecast/pkg/constants"
)

// IsZero checks if a value is effectively zero (within one sen).
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// SafeDivide divides numerator by denominator, returning 0 when the
// denominator is not strictly positive.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator <= 0 || !IsFinite(denominator) {
		return 0
	}
	return numerator / denominator
}

// CalculatePercentage calculates what percentage value is of total.
// A non-positive total yields 0.
func CalculatePercentage(value, total float64) float64 {
	return SafeDivide(value, total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// InRange reports whether val lies within [min, max].
func InRange(val, min, max float64) bool {
	return IsFinite(val) && val >= min && val <= max
}
