package protocol

import (
	"testing"

	"fireplace_cli/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryDecode_RoundTrip(t *testing.T) {
	d := DefaultDecoder()
	cases := []models.ApplianceStatus{
		{Mode: models.ModeOff, CurrentTemperature: 18.5, TargetTemperature: 20},
		{Mode: models.ModeManual, CurrentTemperature: 21, TargetTemperature: 22, GuardFlameOn: true},
		{Mode: models.ModeTemperature, CurrentTemperature: 19.9, TargetTemperature: 36, GuardFlameOn: true, AuxOn: true},
		{Mode: models.ModeEco, CurrentTemperature: 5, TargetTemperature: 5, GuardFlameOn: true},
		{Mode: models.ModeOff, GuardFlameOn: true, Igniting: true, CurrentTemperature: 12.3, TargetTemperature: 21.7},
		{Mode: models.ModeOff, ShuttingDown: true, CurrentTemperature: 25, TargetTemperature: 20},
	}
	for _, want := range cases {
		frame := FormatStatus(DefaultLayout, want, 0xC5)
		require.Len(t, frame, StatusPayloadLength+2)

		got, ok := d.TryDecode(frame)
		require.True(t, ok, "decode %+v", want)
		assert.Equal(t, want, got)
	}
}

func TestTryDecode_WrongLength(t *testing.T) {
	d := DefaultDecoder()
	frame := FormatStatus(DefaultLayout, models.ApplianceStatus{Mode: models.ModeEco}, 0xC5)

	for _, raw := range [][]byte{
		nil,
		{},
		{frameStart},
		{frameStart, frameEnd},
		frame[:len(frame)-1],
		append(append([]byte{}, frame...), '0'),
		Encode(RequestStatus()),
	} {
		assert.NotPanics(t, func() {
			_, ok := d.TryDecode(raw)
			assert.False(t, ok, "len=%d", len(raw))
		})
	}
}

func TestTryDecode_FailsClosedOnGarbage(t *testing.T) {
	d := DefaultDecoder()
	frame := FormatStatus(DefaultLayout, models.ApplianceStatus{Mode: models.ModeTemperature, TargetTemperature: 21}, 0xC5)

	bad := append([]byte{}, frame...)
	bad[1+DefaultLayout.CurrentTemperature.Offset] = 'x'
	_, ok := d.TryDecode(bad)
	assert.False(t, ok)

	bad = append([]byte{}, frame...)
	bad[1+DefaultLayout.Mode.Offset] = '9'
	_, ok = d.TryDecode(bad)
	assert.False(t, ok)
}

func TestTryDecode_LowFlameMeansOff(t *testing.T) {
	l := DefaultLayout
	frame := FormatStatus(l, models.ApplianceStatus{Mode: models.ModeManual, GuardFlameOn: true}, 0xC5)
	copy(frame[1+l.FlameLevel.Offset:], "7B")

	got, ok := DefaultDecoder().TryDecode(frame)
	require.True(t, ok)
	assert.Equal(t, models.ModeOff, got.Mode)
	assert.True(t, got.GuardFlameOn)
}

func TestNewDecoder_ValidatesLayout(t *testing.T) {
	_, err := NewDecoder(DefaultLayout)
	require.NoError(t, err)

	l := DefaultLayout
	l.TargetTemperature = Field{Offset: 104, Length: 4}
	_, err = NewDecoder(l)
	assert.ErrorIs(t, err, errLayoutOutOfRange)

	l = DefaultLayout
	l.AuxBit = 16
	_, err = NewDecoder(l)
	assert.ErrorIs(t, err, errLayoutOutOfRange)
}

func TestCustomLayout(t *testing.T) {
	l := DefaultLayout
	l.CurrentTemperature = Field{Offset: 40, Length: 4}
	l.TargetTemperature = Field{Offset: 44, Length: 4}
	d, err := NewDecoder(l)
	require.NoError(t, err)

	want := models.ApplianceStatus{Mode: models.ModeEco, CurrentTemperature: 23.4, TargetTemperature: 24, GuardFlameOn: true}
	got, ok := d.TryDecode(FormatStatus(l, want, 0xD0))
	require.True(t, ok)
	assert.Equal(t, want, got)

	// the default decoder reads zeros at the default offsets
	other, ok := DefaultDecoder().TryDecode(FormatStatus(l, want, 0xD0))
	require.True(t, ok)
	assert.Zero(t, other.CurrentTemperature)
}
