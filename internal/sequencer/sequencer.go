// Package sequencer drives the appliance from its current mode toward a desired one
// using paced multi-step command sequences.
package sequencer

import (
	"fmt"
	"time"

	"fireplace_cli/internal/clock"
	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/protocol"
	"fireplace_cli/internal/session"
)

// Device is the part of a session the sequencer needs.
type Device interface {
	Send(cmd protocol.Command) error
	Snapshot() session.Snapshot
	MarkIgniting()
	MarkShuttingDown()
}

// Target is a desired appliance state. A nil Temperature means "keep the appliance's
// target, or the default when none is known".
type Target struct {
	Mode        models.OperationMode
	Temperature *float64
}

// Sequencer issues commands strictly one after another on a single device.
type Sequencer struct {
	dev   Device
	clock clock.Clock
	t     Timings
	log   *logger.Logger
}

func New(dev Device, clk clock.Clock, t Timings, log *logger.Logger) *Sequencer {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Sequencer{dev: dev, clock: clk, t: t, log: logger.OrNop(log)}
}

// Refresh asks for a status frame and returns the snapshot after the settle delay.
// The returned status is the most recent one, not necessarily the reply to this request.
func (s *Sequencer) Refresh() (session.Snapshot, error) {
	if err := s.send(protocol.RequestStatus()); err != nil {
		return session.Snapshot{}, err
	}
	s.wait(s.t.StatusSettle)
	return s.dev.Snapshot(), nil
}

// Apply moves the appliance toward target. It reports false when the transition is
// not finished yet: an ignition is running, or was just started and the caller has to
// re-issue target once it settles.
func (s *Sequencer) Apply(target Target) (bool, error) {
	if !target.Mode.Valid() {
		return false, fmt.Errorf("apply %v: %w", target.Mode, models.ErrUnknownMode)
	}
	snap := s.dev.Snapshot()
	if snap.Igniting {
		s.log.Infow("transition_deferred", "reason", "igniting", "desired", target.Mode.String())
		return false, nil
	}

	if snap.SafetyUnknown && target.Mode.NeedsIgnition() {
		// the pending defensive guard-flame-off must land before anything is lit
		s.log.Infow("transition_deferred", "reason", "safety_unknown", "desired", target.Mode.String())
		return false, nil
	}

	current, guardFlame := effectiveState(snap)
	if target.Mode.NeedsIgnition() && current == models.ModeOff && !guardFlame {
		s.log.Infow("ignition_started", "desired", target.Mode.String())
		return false, s.ignite()
	}
	if target.Mode == current && !snap.SafetyUnknown {
		s.log.Debugw("transition_noop", "mode", current.String())
		return true, nil
	}

	temp := s.targetTemperature(target, snap)
	s.log.Infow("transition", "from", current.String(), "to", target.Mode.String(), "target_c", temp)

	var err error
	switch target.Mode {
	case models.ModeManual:
		err = s.manual(temp)
	case models.ModeEco:
		err = s.eco(temp)
	case models.ModeTemperature:
		err = s.temperature(temp, snap)
	case models.ModeOff:
		err = s.shutdown(snap)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetTemperature updates the target while already in temperature mode: the mode
// command is repeated and the value is sent only if it differs from the known target.
func (s *Sequencer) SetTemperature(c float64) (bool, error) {
	snap := s.dev.Snapshot()
	if snap.Igniting {
		s.log.Infow("transition_deferred", "reason", "igniting", "desired", models.ModeTemperature.String())
		return false, nil
	}
	if snap.SafetyUnknown {
		s.log.Infow("transition_deferred", "reason", "safety_unknown", "desired", models.ModeTemperature.String())
		return false, nil
	}
	if err := s.temperature(models.ClampTemperature(c), snap); err != nil {
		return false, err
	}
	return true, nil
}

// effectiveState is the mode the sequencer trusts. An unknown status, or one taken
// before a connection loss was resolved, counts as Off with the guard flame out.
// Apply only reaches it with an unresolved loss when shutting down.
func effectiveState(snap session.Snapshot) (models.OperationMode, bool) {
	if !snap.Known || snap.SafetyUnknown || !snap.Status.Mode.Valid() {
		return models.ModeOff, false
	}
	return snap.Status.Mode, snap.Status.GuardFlameOn
}

func (s *Sequencer) targetTemperature(target Target, snap session.Snapshot) float64 {
	switch {
	case target.Temperature != nil:
		return models.ClampTemperature(*target.Temperature)
	case snap.Known && !snap.SafetyUnknown:
		return models.ClampTemperature(snap.Status.TargetTemperature)
	default:
		return models.DefaultTemperatureC
	}
}

func (s *Sequencer) ignite() error {
	s.dev.MarkIgniting()
	if err := s.send(protocol.Ignite()); err != nil {
		return err
	}
	s.wait(s.t.IgnitionSettle)
	_, err := s.Refresh()
	return err
}

func (s *Sequencer) manual(temp float64) error {
	if err := s.send(protocol.SetManualMode()); err != nil {
		return err
	}
	s.wait(s.t.ModeSettle)
	return s.flameHeight(models.FlameHeightForTemperature(temp))
}

func (s *Sequencer) eco(temp float64) error {
	if err := s.flameHeight(models.FlameHeightForTemperature(temp)); err != nil {
		return err
	}
	s.wait(s.t.ModeSettle)
	return s.send(protocol.SetEcoMode())
}

func (s *Sequencer) temperature(temp float64, snap session.Snapshot) error {
	if err := s.send(protocol.SetTemperatureMode()); err != nil {
		return err
	}
	s.wait(s.t.TemperatureModeSettle)

	known := snap.Known && !snap.SafetyUnknown
	if known && models.RoundTemperature(snap.Status.TargetTemperature) == models.RoundTemperature(temp) {
		return nil
	}
	if err := s.send(protocol.SetTemperatureValue(temp)); err != nil {
		return err
	}
	s.wait(s.t.StepSettle)
	return nil
}

// flameHeight resets to the neutral step so stepping starts from a known position.
func (s *Sequencer) flameHeight(h models.FlameHeight) error {
	if err := s.send(protocol.SetFlameHeight(models.FlameNeutral)); err != nil {
		return err
	}
	s.wait(s.t.FlameResetSettle)
	if err := s.send(protocol.SetFlameHeight(h)); err != nil {
		return err
	}
	s.wait(s.t.StepSettle)
	return nil
}

func (s *Sequencer) shutdown(snap session.Snapshot) error {
	if snap.ShuttingDown {
		s.log.Debugw("shutdown_skipped", "reason", "already_shutting_down")
		return nil
	}
	s.dev.MarkShuttingDown()
	if err := s.send(protocol.GuardFlameOff()); err != nil {
		return err
	}
	s.wait(s.t.ShutdownSettle)
	return nil
}

func (s *Sequencer) send(cmd protocol.Command) error {
	if err := s.dev.Send(cmd); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func (s *Sequencer) wait(d time.Duration) {
	if d > 0 {
		s.clock.Sleep(d)
	}
}
