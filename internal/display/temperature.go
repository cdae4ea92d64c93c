// Package display renders appliance state for humans and converts between the
// Celsius values the appliance speaks and the user's display unit.
package display

import (
	"fmt"
	"math"
	"strings"

	"fireplace_cli/internal/models"
)

// Unit is a temperature display unit.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// DefaultUnit is used when nothing else is configured.
const DefaultUnit = Fahrenheit

// ParseUnit accepts "C" or "F" in any case. Anything else reports false.
func ParseUnit(s string) (Unit, bool) {
	switch Unit(strings.ToUpper(strings.TrimSpace(s))) {
	case Celsius:
		return Celsius, true
	case Fahrenheit:
		return Fahrenheit, true
	default:
		return "", false
	}
}

func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }
func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

// FromCelsius converts c into u.
func FromCelsius(c float64, u Unit) float64 {
	if u == Fahrenheit {
		return CelsiusToFahrenheit(c)
	}
	return c
}

// FormatTemperature renders a Celsius value in u: whole degrees for Fahrenheit,
// one decimal for Celsius.
func FormatTemperature(c float64, u Unit) string {
	if u == Fahrenheit {
		return fmt.Sprintf("%d°F", int(math.Round(CelsiusToFahrenheit(c))))
	}
	return fmt.Sprintf("%.1f°C", c)
}

// Bounds returns the accepted input range in u.
func Bounds(u Unit) (lo, hi float64) {
	if u == Fahrenheit {
		return math.Round(CelsiusToFahrenheit(models.MinTemperatureC)), math.Round(CelsiusToFahrenheit(models.MaxTemperatureC))
	}
	return models.MinTemperatureC, models.MaxTemperatureC
}

// RangeMessage describes the accepted input range in u.
func RangeMessage(u Unit) string {
	lo, hi := Bounds(u)
	return fmt.Sprintf("Valid range: %.0f-%.0f°%s", lo, hi, unitOrDefault(u))
}

// ValidateAndConvert checks v against the range of u and returns it in Celsius,
// clamped to the appliance range and rounded to 0.1 °C. Fahrenheit input is
// validated in whole display degrees, so 97 °F is accepted and sent as 36.0 °C.
func ValidateAndConvert(v float64, u Unit) (float64, error) {
	lo, hi := Bounds(u)
	if math.IsNaN(v) || v < lo || v > hi {
		return 0, &RangeError{Value: v, Unit: unitOrDefault(u)}
	}
	c := v
	if u == Fahrenheit {
		c = FahrenheitToCelsius(v)
	}
	return models.RoundTemperature(models.ClampTemperature(c)), nil
}

// RangeError reports an input outside the accepted range. It matches
// models.ErrInvalidTemperature under errors.Is.
type RangeError struct {
	Value float64
	Unit  Unit
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid temperature %g°%s. %s", e.Value, e.Unit, RangeMessage(e.Unit))
}

func (e *RangeError) Unwrap() error { return models.ErrInvalidTemperature }

func unitOrDefault(u Unit) Unit {
	if u == Celsius {
		return Celsius
	}
	return Fahrenheit
}
