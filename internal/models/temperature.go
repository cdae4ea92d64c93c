package models

import (
	"errors"
	"math"
)

// Accepted target temperature range in Celsius.
const (
	MinTemperatureC = 5.0
	MaxTemperatureC = 36.0

	// DefaultTemperatureC is used when neither the caller nor the last status supplies a target.
	DefaultTemperatureC = 20.0
)

var ErrInvalidTemperature = errors.New("invalid temperature: must be between 5 and 36 °C")

// ValidTemperature reports whether c lies in the accepted range.
func ValidTemperature(c float64) bool {
	return !math.IsNaN(c) && c >= MinTemperatureC && c <= MaxTemperatureC
}

// ClampTemperature bounds c to the accepted range.
func ClampTemperature(c float64) float64 {
	return math.Max(MinTemperatureC, math.Min(MaxTemperatureC, c))
}

// RoundTemperature rounds to one decimal place.
func RoundTemperature(c float64) float64 {
	return math.Round(c*10) / 10
}
