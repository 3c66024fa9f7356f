package utils

import "math"

// Cents converts a decimal currency amount to cents, rounding half away from zero.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Decimal converts cents back to a decimal currency amount for display.
func Decimal(cents int64) float64 {
	return float64(cents) / 100
}
