package models

import (
	"errors"
	"fmt"
	"strings"
)

// OperationMode is the appliance's operating mode.
type OperationMode int

const (
	ModeOff OperationMode = iota + 1
	ModeManual
	ModeTemperature
	ModeEco
)

// ErrUnknownMode is returned when a mode name is not one of the four valid variants.
var ErrUnknownMode = errors.New("unknown mode: must be manual, eco, temperature or off")

func (m OperationMode) String() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModeManual:
		return "Manual"
	case ModeTemperature:
		return "Temperature"
	case ModeEco:
		return "Eco"
	default:
		return fmt.Sprintf("OperationMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the four known modes.
func (m OperationMode) Valid() bool {
	return m >= ModeOff && m <= ModeEco
}

// NeedsIgnition reports whether entering m requires a lit guard flame.
func (m OperationMode) NeedsIgnition() bool {
	switch m {
	case ModeManual, ModeTemperature, ModeEco:
		return true
	default:
		return false
	}
}

// ParseOperationMode accepts manual, eco, temperature (or temp) and off, case-insensitively.
func ParseOperationMode(s string) (OperationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return ModeManual, nil
	case "eco":
		return ModeEco, nil
	case "temperature", "temp":
		return ModeTemperature, nil
	case "off":
		return ModeOff, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m OperationMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(strings.ToLower(m.String())), nil
}

func (m *OperationMode) UnmarshalText(b []byte) error {
	v, err := ParseOperationMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
