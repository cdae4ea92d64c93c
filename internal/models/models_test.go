package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseOperationMode(t *testing.T) {
	cases := map[string]OperationMode{
		"manual":      ModeManual,
		"ECO":         ModeEco,
		"temperature": ModeTemperature,
		"temp":        ModeTemperature,
		" off ":       ModeOff,
	}
	for in, want := range cases {
		got, err := ParseOperationMode(in)
		if err != nil {
			t.Fatalf("ParseOperationMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseOperationMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseOperationMode("turbo"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestOperationMode_JSON(t *testing.T) {
	b, err := json.Marshal(ApplianceStatus{Mode: ModeEco})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ApplianceStatus
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Mode != ModeEco {
		t.Fatalf("got %v, want Eco", back.Mode)
	}
}

func TestFlameHeightForTemperature(t *testing.T) {
	if got := FlameHeightForTemperature(MinTemperatureC); got != FlameStep1 {
		t.Fatalf("5°C: got %v, want Step1", got)
	}
	if got := FlameHeightForTemperature(MaxTemperatureC); got != FlameStep12 {
		t.Fatalf("36°C: got %v, want Step12", got)
	}
	mid := FlameHeightForTemperature(20.5)
	if mid != FlameStep6 && mid != FlameStep7 {
		t.Fatalf("20.5°C: got %v, want a mid-range step", mid)
	}
	if got := FlameHeightForPercentage(1.7); got != FlameStep12 {
		t.Fatalf("clamp high: got %v", got)
	}
	if got := FlameHeightForPercentage(-0.3); got != FlameStep1 {
		t.Fatalf("clamp low: got %v", got)
	}
}

func TestTemperatureHelpers(t *testing.T) {
	if ValidTemperature(4.9) || ValidTemperature(36.1) {
		t.Fatalf("out-of-range temperature accepted")
	}
	if !ValidTemperature(5) || !ValidTemperature(36) {
		t.Fatalf("bounds rejected")
	}
	if got := ClampTemperature(40); got != MaxTemperatureC {
		t.Fatalf("clamp: got %v", got)
	}
	if got := RoundTemperature(21.26); got != 21.3 {
		t.Fatalf("round: got %v", got)
	}
}
