package utils

import (
	"math"
)

type Formatter struct {
}

// FormatQuantity truncates quantity to the instrument step size, never
// rounding up past the affordable amount. Without a step size the quantity is
// kept at 8 decimals.
func (m *Formatter) FormatQuantity(stepSize float64, quantity float64) float64 {
	if stepSize <= 0 {
		return m.ToFixed(quantity, 8)
	}

	steps := math.Floor(quantity / stepSize)

	return m.ToFixed(steps*stepSize, 8)
}

func (m *Formatter) Round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func (m *Formatter) ToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(m.Round(num*output)) / output
}
