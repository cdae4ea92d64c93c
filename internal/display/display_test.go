package display

import (
	"errors"
	"testing"

	"fireplace_cli/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	u, ok := ParseUnit(" c ")
	assert.True(t, ok)
	assert.Equal(t, Celsius, u)

	u, ok = ParseUnit("f")
	assert.True(t, ok)
	assert.Equal(t, Fahrenheit, u)

	_, ok = ParseUnit("K")
	assert.False(t, ok)
}

func TestConversions(t *testing.T) {
	assert.InDelta(t, 71.6, CelsiusToFahrenheit(22), 1e-9)
	assert.InDelta(t, 22.0, FahrenheitToCelsius(71.6), 1e-9)
	assert.Equal(t, 22.0, FromCelsius(22, Celsius))
	assert.InDelta(t, 32.0, FromCelsius(0, Fahrenheit), 1e-9)
}

func TestFormatTemperature(t *testing.T) {
	assert.Equal(t, "72°F", FormatTemperature(22, Fahrenheit))
	assert.Equal(t, "22.0°C", FormatTemperature(22, Celsius))
	assert.Equal(t, "21.5°C", FormatTemperature(21.54, Celsius))
}

func TestRangeMessage(t *testing.T) {
	assert.Equal(t, "Valid range: 41-97°F", RangeMessage(Fahrenheit))
	assert.Equal(t, "Valid range: 5-36°C", RangeMessage(Celsius))
}

func TestValidateAndConvert(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		u    Unit
		want float64
	}{
		{"celsius in range", 21.54, Celsius, 21.5},
		{"celsius lower bound", 5, Celsius, 5},
		{"celsius upper bound", 36, Celsius, 36},
		{"fahrenheit 72", 72, Fahrenheit, 22.2},
		{"fahrenheit lower bound", 41, Fahrenheit, 5},
		{"fahrenheit upper bound clamps", 97, Fahrenheit, 36},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateAndConvert(tc.v, tc.u)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestValidateAndConvert_OutOfRange(t *testing.T) {
	for _, tc := range []struct {
		v float64
		u Unit
	}{
		{4.9, Celsius},
		{36.1, Celsius},
		{40, Fahrenheit},
		{98, Fahrenheit},
	} {
		_, err := ValidateAndConvert(tc.v, tc.u)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInvalidTemperature))
		var re *RangeError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, tc.u, re.Unit)
		assert.Contains(t, err.Error(), RangeMessage(tc.u))
	}
}

func TestStatusCard(t *testing.T) {
	st := &models.ApplianceStatus{
		Mode:               models.ModeTemperature,
		CurrentTemperature: 19.5,
		TargetTemperature:  22,
		GuardFlameOn:       true,
	}
	out := StatusCard(st, true, Celsius)
	for _, want := range []string{"Fireplace Status", "Temperature", "19.5°C", "22.0°C", "Guard Flame:", "On", "Reachable:"} {
		assert.Contains(t, out, want)
	}

	out = StatusCard(nil, false, Fahrenheit)
	assert.Contains(t, out, "Unable to retrieve status")
	assert.Contains(t, out, "No")
}

func TestSummary(t *testing.T) {
	st := &models.ApplianceStatus{Mode: models.ModeEco, CurrentTemperature: 20, TargetTemperature: 22, GuardFlameOn: true}
	assert.Equal(t, "mode=Eco current=68°F target=72°F guard_flame=On", Summary(st, Fahrenheit))
	assert.Equal(t, "status unavailable", Summary(nil, Celsius))
}
