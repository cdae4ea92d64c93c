package service

import (
	"context"
	"fmt"
	"sync"

	"fireplace_cli/internal/clock"
	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/sequencer"
	"fireplace_cli/internal/session"

	"github.com/google/uuid"
)

// ApplianceSession is one connection's worth of appliance state.
type ApplianceSession interface {
	sequencer.Device
	Reachable() bool
	Subscribe(buffer int) (<-chan session.Observation, func())
	Close() error
}

// observationBuffer bounds the interim reports queued during one operation.
const observationBuffer = 16

// SessionFactory opens a fresh session for one operation.
type SessionFactory func() ApplianceSession

// Recorder persists finished operations.
type Recorder interface {
	Record(ctx context.Context, e models.JournalEntry) error
}

// Controller runs the public operations. Operations are serialized: one never starts
// while another, including its cleanup, is pending.
type Controller struct {
	newSession SessionFactory
	clock      clock.Clock
	timings    sequencer.Timings
	log        *logger.Logger
	journal    Recorder

	mu         sync.Mutex
	publishers []StatusPublisher
}

var _ Fireplace = (*Controller)(nil)

// ControllerOption configures NewController.
type ControllerOption func(*Controller)

func WithClock(c clock.Clock) ControllerOption { return func(ct *Controller) { ct.clock = c } }
func WithTimings(t sequencer.Timings) ControllerOption { return func(ct *Controller) { ct.timings = t } }
func WithLogger(l *logger.Logger) ControllerOption { return func(ct *Controller) { ct.log = l } }
func WithJournal(r Recorder) ControllerOption { return func(ct *Controller) { ct.journal = r } }
func WithPublisher(p StatusPublisher) ControllerOption {
	return func(ct *Controller) { ct.publishers = append(ct.publishers, p) }
}

func NewController(factory SessionFactory, opts ...ControllerOption) *Controller {
	c := &Controller{
		newSession: factory,
		clock:      clock.Real{},
		timings:    sequencer.DefaultTimings(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = logger.OrNop(c.log)
	return c
}

// SessionFactoryFor returns a factory of real sessions to addr.
func SessionFactoryFor(addr string, opts ...session.Option) SessionFactory {
	return func() ApplianceSession { return session.New(addr, opts...) }
}

// AddPublisher registers p for every subsequent report.
func (c *Controller) AddPublisher(p StatusPublisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishers = append(c.publishers, p)
}

// TurnOn lights the fireplace in temperature mode at the default target.
func (c *Controller) TurnOn(ctx context.Context) (Report, error) {
	t := models.DefaultTemperatureC
	return c.run(ctx, OpTurnOn, "Fireplace turned on", func(seq *sequencer.Sequencer, _ session.Snapshot) (bool, error) {
		return seq.Apply(sequencer.Target{Mode: models.ModeTemperature, Temperature: &t})
	})
}

func (c *Controller) TurnOff(ctx context.Context) (Report, error) {
	return c.run(ctx, OpTurnOff, "Fireplace turned off", func(seq *sequencer.Sequencer, _ session.Snapshot) (bool, error) {
		return seq.Apply(sequencer.Target{Mode: models.ModeOff})
	})
}

// Status refreshes once and reports what the appliance said.
func (c *Controller) Status(ctx context.Context) (Report, error) {
	return c.run(ctx, OpStatus, "Status queried", nil)
}

func (c *Controller) SetMode(ctx context.Context, mode models.OperationMode) (Report, error) {
	if !mode.Valid() {
		return Report{Operation: OpSetMode}, models.ErrUnknownMode
	}
	return c.run(ctx, OpSetMode, "Mode set to "+mode.String(), func(seq *sequencer.Sequencer, _ session.Snapshot) (bool, error) {
		return seq.Apply(sequencer.Target{Mode: mode})
	})
}

// SetTemperature moves to temperature mode at celsius. From Off it goes through
// ignition; already in temperature mode only the value is updated.
func (c *Controller) SetTemperature(ctx context.Context, celsius float64) (Report, error) {
	if !models.ValidTemperature(celsius) {
		return Report{Operation: OpSetTemperature}, models.ErrInvalidTemperature
	}
	t := models.RoundTemperature(celsius)
	desc := fmt.Sprintf("Temperature set to %.1f °C", t)
	return c.run(ctx, OpSetTemperature, desc, func(seq *sequencer.Sequencer, snap session.Snapshot) (bool, error) {
		if snap.Known && !snap.SafetyUnknown && snap.Status.Mode == models.ModeTemperature {
			return seq.SetTemperature(t)
		}
		return seq.Apply(sequencer.Target{Mode: models.ModeTemperature, Temperature: &t})
	})
}

type driveFunc func(seq *sequencer.Sequencer, snap session.Snapshot) (bool, error)

// run is the operation template: refresh, drive, settle, refresh, report. The session
// is closed on every path. ctx only carries values; cancellation is ignored.
func (c *Controller) run(ctx context.Context, op, desc string, drive driveFunc) (Report, error) {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	rep := Report{Operation: op, StartedAt: c.clock.Now().UTC()}
	sess := c.newSession()
	defer func() {
		if err := sess.Close(); err != nil {
			c.log.Warnw("session_close_failed", "operation", op, "err", err)
		}
	}()

	c.log.Infow("operation_started", "operation", op)
	stopInterim := c.forwardObservations(ctx, sess, rep)
	defer stopInterim()
	seq := sequencer.New(sess, c.clock, c.timings, c.log)

	snap, err := seq.Refresh()
	if err != nil {
		return c.fail(ctx, rep, desc, err)
	}
	if drive == nil {
		rep.Completed = snap.Known
	} else {
		done, err := drive(seq, snap)
		if err != nil {
			return c.fail(ctx, rep, desc, err)
		}
		rep.Completed = done
		if c.timings.OperationSettle > 0 {
			c.clock.Sleep(c.timings.OperationSettle)
		}
		if snap, err = seq.Refresh(); err != nil {
			return c.fail(ctx, rep, desc, err)
		}
	}

	if snap.Known {
		st := snap.Status
		rep.Status = &st
	}
	rep.Reachable = sess.Reachable()
	rep.Duration = c.clock.Now().Sub(rep.StartedAt)

	c.log.Infow("operation_finished", "operation", op, "completed", rep.Completed, "reachable", rep.Reachable)
	if !rep.Completed && drive != nil {
		desc += " (pending ignition)"
	}
	c.record(ctx, rep, desc, nil)
	stopInterim()
	c.publish(ctx, rep)
	return rep, nil
}

// forwardObservations publishes every status the session observes as an interim
// report until the returned func is called. The func waits for queued observations
// to be delivered, so the final report is always published last.
func (c *Controller) forwardObservations(ctx context.Context, sess ApplianceSession, base Report) func() {
	if len(c.publishers) == 0 {
		return func() {}
	}
	obs, unsubscribe := sess.Subscribe(observationBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for o := range obs {
			st := o.Status
			rep := base
			rep.Status = &st
			rep.Reachable = true
			rep.Interim = true
			rep.Duration = o.At.Sub(base.StartedAt)
			c.publish(ctx, rep)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			<-done
		})
	}
}

func (c *Controller) fail(ctx context.Context, rep Report, desc string, err error) (Report, error) {
	rep.Duration = c.clock.Now().Sub(rep.StartedAt)
	c.log.Errorw("operation_failed", "operation", rep.Operation, "err", err)
	c.record(ctx, rep, desc+" failed", err)
	return rep, fmt.Errorf("%s: %w", rep.Operation, err)
}

var entryTypes = map[string]string{
	OpTurnOn:         models.EntryTurnOn,
	OpTurnOff:        models.EntryTurnOff,
	OpStatus:         models.EntryStatus,
	OpSetMode:        models.EntrySetMode,
	OpSetTemperature: models.EntrySetTemperature,
}

func (c *Controller) record(ctx context.Context, rep Report, desc string, opErr error) {
	if c.journal == nil {
		return
	}
	meta := map[string]any{
		"completed": rep.Completed,
		"reachable": rep.Reachable,
	}
	if rep.Status != nil {
		meta["status"] = rep.Status
	}
	if opErr != nil {
		meta["error"] = opErr.Error()
	}
	err := c.journal.Record(ctx, models.JournalEntry{
		EntryID:     uuid.NewString(),
		OccurredAt:  rep.StartedAt,
		Type:        entryTypes[rep.Operation],
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		c.log.Warnw("journal_record_failed", "operation", rep.Operation, "err", err)
	}
}

// publish runs with c.mu held by the operation, so publishers cannot change under it.
func (c *Controller) publish(ctx context.Context, rep Report) {
	for _, p := range c.publishers {
		if err := p.Publish(ctx, rep); err != nil {
			c.log.Warnw("status_publish_failed", "operation", rep.Operation, "err", err)
		}
	}
}
