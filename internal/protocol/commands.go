package protocol

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fireplace_cli/internal/models"
)

// Port is the appliance's well-known TCP port.
const Port = 2000

const (
	frameStart = 0x02
	frameEnd   = 0x03
)

// preamble is the session/address framing sent before every command body.
var preamble = []byte{frameStart, '3', '0', '3', '0', '3', '0', '3', '0', '8', '0'}

// Opcode identifies one of the appliance commands.
type Opcode int

const (
	OpIgnite Opcode = iota + 1
	OpGuardFlameOff
	OpStandby
	OpSetEcoMode
	OpSetManualMode
	OpSetTemperatureMode
	OpRequestStatus
	OpSetTemperatureValue
	OpSetFlameHeight
)

var opcodeNames = map[Opcode]string{
	OpIgnite:              "ignite",
	OpGuardFlameOff:       "guard_flame_off",
	OpStandby:             "standby",
	OpSetEcoMode:          "set_eco_mode",
	OpSetManualMode:       "set_manual_mode",
	OpSetTemperatureMode:  "set_temperature_mode",
	OpRequestStatus:       "request_status",
	OpSetTemperatureValue: "set_temperature_value",
	OpSetFlameHeight:      "set_flame_height",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// fixedBodies holds the ASCII bodies of parameterless commands.
var fixedBodies = map[Opcode]string{
	OpIgnite:             "1A",
	OpGuardFlameOff:      "10",
	OpStandby:            "1600",
	OpSetEcoMode:         "B301",
	OpSetManualMode:      "B0",
	OpSetTemperatureMode: "B201",
	OpRequestStatus:      "03",
}

// Body prefixes of parameterised commands.
const (
	temperatureValuePrefix = "B2FD0"
	flameHeightPrefix      = "16"
)

// flameCodes maps each step to its two-character level code.
var flameCodes = map[models.FlameHeight]string{
	models.FlameStep1:  "80",
	models.FlameStep2:  "8B",
	models.FlameStep3:  "97",
	models.FlameStep4:  "A2",
	models.FlameStep5:  "AE",
	models.FlameStep6:  "B9",
	models.FlameStep7:  "C5",
	models.FlameStep8:  "D0",
	models.FlameStep9:  "DC",
	models.FlameStep10: "E7",
	models.FlameStep11: "F3",
	models.FlameStep12: "FF",
}

// FlameCode is the raw burner level the appliance uses for h, as also reported in
// status frames. Unknown heights map to the neutral step.
func FlameCode(h models.FlameHeight) uint8 {
	code, ok := flameCodes[h]
	if !ok {
		code = flameCodes[models.FlameNeutral]
	}
	v, _ := strconv.ParseUint(code, 16, 8)
	return uint8(v)
}

// Command is one symbolic appliance command. Build it with the constructors below.
type Command struct {
	op          Opcode
	temperature float64
	height      models.FlameHeight
}

func Ignite() Command { return Command{op: OpIgnite} }
func GuardFlameOff() Command { return Command{op: OpGuardFlameOff} }
func Standby() Command { return Command{op: OpStandby} }
func SetEcoMode() Command { return Command{op: OpSetEcoMode} }
func SetManualMode() Command { return Command{op: OpSetManualMode} }
func SetTemperatureMode() Command { return Command{op: OpSetTemperatureMode} }
func RequestStatus() Command { return Command{op: OpRequestStatus} }

// SetTemperatureValue sets the target temperature. Callers clamp c to 5–36 °C first.
func SetTemperatureValue(c float64) Command {
	return Command{op: OpSetTemperatureValue, temperature: c}
}

// SetFlameHeight selects a burner level; unknown levels fall back to the neutral step.
func SetFlameHeight(h models.FlameHeight) Command {
	if !h.Valid() {
		h = models.FlameNeutral
	}
	return Command{op: OpSetFlameHeight, height: h}
}

func (c Command) Op() Opcode { return c.op }
func (c Command) Temperature() float64 { return c.temperature }
func (c Command) FlameHeight() models.FlameHeight { return c.height }

func (c Command) String() string {
	switch c.op {
	case OpSetTemperatureValue:
		return fmt.Sprintf("%s(%.1f)", c.op, c.temperature)
	case OpSetFlameHeight:
		return fmt.Sprintf("%s(%s)", c.op, c.height)
	default:
		return c.op.String()
	}
}

// temperatureBits encodes c as three upper-case hex digits of tenths of a degree.
func temperatureBits(c float64) string {
	deci := int(math.Round(c * 10))
	if deci < 0 {
		deci = 0
	}
	return fmt.Sprintf("%03X", deci&0xFFF)
}

func (c Command) body() string {
	switch c.op {
	case OpSetTemperatureValue:
		return temperatureValuePrefix + temperatureBits(c.temperature)
	case OpSetFlameHeight:
		return flameHeightPrefix + flameCodes[c.height]
	default:
		return fixedBodies[c.op]
	}
}

// Encode renders cmd as a wire frame: preamble, ASCII body, terminator.
func Encode(cmd Command) []byte {
	body := cmd.body()
	out := make([]byte, 0, len(preamble)+len(body)+1)
	out = append(out, preamble...)
	out = append(out, body...)
	return append(out, frameEnd)
}

// DecodeCommand parses one terminated command frame as produced by Encode.
func DecodeCommand(frame []byte) (Command, bool) {
	if !bytes.HasPrefix(frame, preamble) || len(frame) < len(preamble)+1 || frame[len(frame)-1] != frameEnd {
		return Command{}, false
	}
	body := string(frame[len(preamble) : len(frame)-1])
	for op, fixed := range fixedBodies {
		if body == fixed {
			return Command{op: op}, true
		}
	}
	if rest, ok := strings.CutPrefix(body, temperatureValuePrefix); ok && len(rest) == 3 {
		deci, err := strconv.ParseUint(rest, 16, 16)
		if err != nil {
			return Command{}, false
		}
		return SetTemperatureValue(float64(deci) / 10), true
	}
	if rest, ok := strings.CutPrefix(body, flameHeightPrefix); ok {
		for h, code := range flameCodes {
			if rest == code {
				return SetFlameHeight(h), true
			}
		}
	}
	return Command{}, false
}

// SplitCommands splits a byte stream into terminated frames and returns the unconsumed tail.
func SplitCommands(stream []byte) (frames [][]byte, rest []byte) {
	for {
		i := bytes.IndexByte(stream, frameEnd)
		if i < 0 {
			return frames, stream
		}
		frames = append(frames, stream[:i+1])
		stream = stream[i+1:]
	}
}

