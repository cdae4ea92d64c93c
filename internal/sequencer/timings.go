package sequencer

import "time"

// Timings are the mandatory pauses between appliance commands. The firmware needs
// real spacing between writes; none of these are retries.
type Timings struct {
	// IgnitionSettle follows Ignite: physical ignition latency.
	IgnitionSettle time.Duration

	// ShutdownSettle follows GuardFlameOff: burner-off latency.
	ShutdownSettle time.Duration

	// StatusSettle follows RequestStatus before the cached status is read.
	StatusSettle time.Duration

	// ModeSettle separates a manual/eco mode switch from the flame adjustment.
	ModeSettle            time.Duration
	TemperatureModeSettle time.Duration

	// StepSettle follows a flame step or a temperature value.
	StepSettle time.Duration

	// FlameResetSettle follows the reset to the neutral flame step.
	FlameResetSettle time.Duration

	// OperationSettle is waited by the controller between sequencing and the final refresh.
	OperationSettle time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		IgnitionSettle:        40 * time.Second,
		ShutdownSettle:        30 * time.Second,
		StatusSettle:          2 * time.Second,
		ModeSettle:            2 * time.Second,
		TemperatureModeSettle: time.Second,
		StepSettle:            time.Second,
		FlameResetSettle:      10 * time.Second,
		OperationSettle:       5 * time.Second,
	}
}
