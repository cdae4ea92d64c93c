package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"fireplace_cli/internal/models"
)

// StatusPayloadLength is the size of a status payload once framing bytes are stripped.
const StatusPayloadLength = 106

// Field is a fixed-position hex field inside the status payload.
type Field struct {
	Offset int
	Length int
}

func (f Field) end() int { return f.Offset + f.Length }

// Layout describes where each status attribute lives in the payload. Offsets are
// firmware specific, so the layout is configurable and verified independently.
type Layout struct {
	FlameLevel         Field
	StatusBits         Field
	Mode               Field
	CurrentTemperature Field
	TargetTemperature  Field

	ShuttingDownBit uint
	GuardFlameBit   uint
	IgnitingBit     uint
	AuxBit          uint

	// OffFlameLevel is the highest flame level reported while the burner is off.
	OffFlameLevel uint64
}

// DefaultLayout matches the firmware this client was built against.
var DefaultLayout = Layout{
	FlameLevel:         Field{Offset: 14, Length: 2},
	StatusBits:         Field{Offset: 16, Length: 4},
	Mode:               Field{Offset: 24, Length: 1},
	CurrentTemperature: Field{Offset: 28, Length: 4},
	TargetTemperature:  Field{Offset: 32, Length: 4},
	ShuttingDownBit:    7,
	GuardFlameBit:      8,
	IgnitingBit:        11,
	AuxBit:             12,
	OffFlameLevel:      0x7B,
}

// Mode field values.
const (
	modeManual      = '0'
	modeTemperature = '1'
	modeEco         = '2'
)

var errLayoutOutOfRange = errors.New("layout field outside status payload")

// Validate checks that every field fits inside the payload and every bit fits its field.
func (l Layout) Validate() error {
	for name, f := range map[string]Field{
		"flame_level":         l.FlameLevel,
		"status_bits":         l.StatusBits,
		"mode":                l.Mode,
		"current_temperature": l.CurrentTemperature,
		"target_temperature":  l.TargetTemperature,
	} {
		if f.Offset < 0 || f.Length <= 0 || f.end() > StatusPayloadLength {
			return fmt.Errorf("%w: %s", errLayoutOutOfRange, name)
		}
	}
	if l.Mode.Length != 1 {
		return fmt.Errorf("%w: mode must be one character", errLayoutOutOfRange)
	}
	width := uint(l.StatusBits.Length * 4)
	for _, b := range []uint{l.ShuttingDownBit, l.GuardFlameBit, l.IgnitingBit, l.AuxBit} {
		if b >= width {
			return fmt.Errorf("%w: bit %d", errLayoutOutOfRange, b)
		}
	}
	return nil
}

// Decoder turns inbound chunks into status snapshots.
type Decoder struct {
	layout Layout
}

// NewDecoder returns a decoder for layout, or an error if the layout is inconsistent.
func NewDecoder(layout Layout) (*Decoder, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{layout: layout}, nil
}

// DefaultDecoder uses DefaultLayout.
func DefaultDecoder() *Decoder {
	return &Decoder{layout: DefaultLayout}
}

// TryDecode strips the leading and trailing framing byte from raw and parses the
// remainder. Anything that is not exactly one well-formed status payload yields false.
func (d *Decoder) TryDecode(raw []byte) (models.ApplianceStatus, bool) {
	if len(raw) != StatusPayloadLength+2 {
		return models.ApplianceStatus{}, false
	}
	return d.parse(string(raw[1 : len(raw)-1]))
}

func (d *Decoder) parse(payload string) (models.ApplianceStatus, bool) {
	l := d.layout
	flame, ok := hexField(payload, l.FlameLevel)
	if !ok {
		return models.ApplianceStatus{}, false
	}
	bits, ok := hexField(payload, l.StatusBits)
	if !ok {
		return models.ApplianceStatus{}, false
	}
	current, ok := hexField(payload, l.CurrentTemperature)
	if !ok {
		return models.ApplianceStatus{}, false
	}
	target, ok := hexField(payload, l.TargetTemperature)
	if !ok {
		return models.ApplianceStatus{}, false
	}

	var mode models.OperationMode
	switch payload[l.Mode.Offset] {
	case modeManual:
		mode = models.ModeManual
	case modeTemperature:
		mode = models.ModeTemperature
	case modeEco:
		mode = models.ModeEco
	default:
		return models.ApplianceStatus{}, false
	}

	st := models.ApplianceStatus{
		CurrentTemperature: float64(current) / 10,
		TargetTemperature:  float64(target) / 10,
		ShuttingDown:       bit(bits, l.ShuttingDownBit),
		GuardFlameOn:       bit(bits, l.GuardFlameBit),
		Igniting:           bit(bits, l.IgnitingBit),
		AuxOn:              bit(bits, l.AuxBit),
	}
	if flame <= l.OffFlameLevel || st.ShuttingDown {
		mode = models.ModeOff
	}
	st.Mode = mode
	return st, true
}

func hexField(payload string, f Field) (uint64, bool) {
	v, err := strconv.ParseUint(payload[f.Offset:f.end()], 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func bit(v uint64, i uint) bool {
	return (v>>i)&1 == 1
}

func deciDegrees(c float64) uint64 {
	if c <= 0 {
		return 0
	}
	return uint64(math.Round(c * 10))
}

// FormatStatus renders st as a framed status message using layout. flame is the raw
// flame level to report; it is forced to zero when st.Mode is Off and raised above
// OffFlameLevel otherwise, so the frame decodes back to st.Mode.
func FormatStatus(layout Layout, st models.ApplianceStatus, flame int) []byte {
	payload := make([]byte, StatusPayloadLength)
	for i := range payload {
		payload[i] = '0'
	}
	switch {
	case st.Mode == models.ModeOff:
		flame = 0
	case uint64(flame) <= layout.OffFlameLevel:
		flame = int(layout.OffFlameLevel) + 1
	}
	put := func(f Field, v uint64) {
		if f.Length < 16 {
			v &= 1<<(4*uint(f.Length)) - 1
		}
		copy(payload[f.Offset:f.end()], fmt.Sprintf("%0*X", f.Length, v))
	}
	put(layout.FlameLevel, uint64(flame))

	var bits uint64
	for _, b := range []struct {
		on  bool
		pos uint
	}{
		{st.ShuttingDown, layout.ShuttingDownBit},
		{st.GuardFlameOn, layout.GuardFlameBit},
		{st.Igniting, layout.IgnitingBit},
		{st.AuxOn, layout.AuxBit},
	} {
		if b.on {
			bits |= 1 << b.pos
		}
	}
	put(layout.StatusBits, bits)

	switch st.Mode {
	case models.ModeTemperature:
		payload[layout.Mode.Offset] = modeTemperature
	case models.ModeEco:
		payload[layout.Mode.Offset] = modeEco
	default:
		payload[layout.Mode.Offset] = modeManual
	}
	put(layout.CurrentTemperature, deciDegrees(st.CurrentTemperature))
	put(layout.TargetTemperature, deciDegrees(st.TargetTemperature))

	out := make([]byte, 0, StatusPayloadLength+2)
	out = append(out, frameStart)
	out = append(out, payload...)
	return append(out, frameEnd)
}
