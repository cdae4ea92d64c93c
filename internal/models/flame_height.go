package models

import (
	"fmt"
	"math"
)

// FlameHeight is a discrete burner level, ordered from lowest to highest.
type FlameHeight int

const (
	FlameStep1 FlameHeight = iota + 1
	FlameStep2
	FlameStep3
	FlameStep4
	FlameStep5
	FlameStep6
	FlameStep7
	FlameStep8
	FlameStep9
	FlameStep10
	FlameStep11
	FlameStep12
)

// FlameNeutral is the level the burner is reset to before any other height is applied.
const FlameNeutral = FlameStep11

// FlameSteps lists every level in ascending order.
var FlameSteps = []FlameHeight{
	FlameStep1, FlameStep2, FlameStep3, FlameStep4, FlameStep5, FlameStep6,
	FlameStep7, FlameStep8, FlameStep9, FlameStep10, FlameStep11, FlameStep12,
}

func (h FlameHeight) String() string {
	return fmt.Sprintf("Step%d", int(h))
}

// Valid reports whether h is a known step.
func (h FlameHeight) Valid() bool {
	return h >= FlameStep1 && h <= FlameStep12
}

// FlameHeightForPercentage picks the nearest step for p in [0, 1]; p is clamped.
func FlameHeightForPercentage(p float64) FlameHeight {
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))
	idx := int(math.Round(p * float64(len(FlameSteps)-1)))
	return FlameSteps[idx]
}

// FlameHeightForTemperature maps the 5–36 °C range linearly onto the steps.
func FlameHeightForTemperature(c float64) FlameHeight {
	return FlameHeightForPercentage((c - MinTemperatureC) / (MaxTemperatureC - MinTemperatureC))
}
