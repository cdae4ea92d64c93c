// Package simulator emulates a fireplace appliance on a TCP port. It answers status
// requests and reproduces ignition and shutdown latency, so the client can be
// exercised without hardware.
package simulator

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/protocol"
)

// Thermal model.
const (
	AmbientC        = 18.0
	RampUpCPerSec   = 0.05
	RampDownCPerSec = 0.02
	ToleranceC      = 0.1
)

const (
	defaultIgnitionDelay = 40 * time.Second
	defaultShutdownDelay = 30 * time.Second
)

type options struct {
	ignitionDelay time.Duration
	shutdownDelay time.Duration
	layout        protocol.Layout
	log           *logger.Logger
}

// Option configures Listen.
type Option func(*options)

func WithIgnitionDelay(d time.Duration) Option { return func(o *options) { o.ignitionDelay = d } }
func WithShutdownDelay(d time.Duration) Option { return func(o *options) { o.shutdownDelay = d } }
func WithLayout(l protocol.Layout) Option { return func(o *options) { o.layout = l } }
func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

// Appliance is a running emulator.
type Appliance struct {
	ln   net.Listener
	opts options
	log  *logger.Logger

	mu       sync.Mutex
	state    models.ApplianceStatus
	flame    models.FlameHeight
	received []protocol.Command
	conns    map[net.Conn]struct{}
	timers   []*time.Timer
	closed   bool

	wg sync.WaitGroup
}

// Listen starts an appliance on addr ("127.0.0.1:0" picks a free port). It starts
// cold: Off with the guard flame out.
func Listen(addr string, opt ...Option) (*Appliance, error) {
	o := options{
		ignitionDelay: defaultIgnitionDelay,
		shutdownDelay: defaultShutdownDelay,
		layout:        protocol.DefaultLayout,
	}
	for _, fn := range opt {
		fn(&o)
	}
	if err := o.layout.Validate(); err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	a := &Appliance{
		ln:    ln,
		opts:  o,
		log:   logger.OrNop(o.log),
		flame: models.FlameNeutral,
		state: models.ApplianceStatus{
			Mode:               models.ModeOff,
			CurrentTemperature: AmbientC,
			TargetTemperature:  models.DefaultTemperatureC,
		},
		conns: make(map[net.Conn]struct{}),
	}
	a.wg.Add(1)
	go a.acceptLoop()
	a.log.Infow("simulator_listening", "addr", a.Addr())
	return a, nil
}

// Addr returns the listening address.
func (a *Appliance) Addr() string { return a.ln.Addr().String() }

// Status returns the current emulated status.
func (a *Appliance) Status() models.ApplianceStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SetStatus replaces the emulated status.
func (a *Appliance) SetStatus(st models.ApplianceStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = st
}

// Received returns every command decoded so far, in arrival order.
func (a *Appliance) Received() []protocol.Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]protocol.Command(nil), a.received...)
}

// DropConnections closes every client connection, as a network glitch would.
func (a *Appliance) DropConnections() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.conns {
		_ = c.Close()
	}
}

// Close stops the listener, drops clients and waits for their handlers.
func (a *Appliance) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	for _, t := range a.timers {
		t.Stop()
	}
	a.mu.Unlock()

	err := a.ln.Close()
	a.DropConnections()
	a.wg.Wait()
	return err
}

// Run drifts the current temperature at the given interval until ctx is canceled.
func (a *Appliance) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			a.drift(now.Sub(last).Seconds())
			last = now
		}
	}
}

func (a *Appliance) drift(elapsed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := &a.state
	goal := AmbientC
	if st.Mode != models.ModeOff {
		goal = st.TargetTemperature
	}
	switch {
	case st.CurrentTemperature < goal-ToleranceC:
		st.CurrentTemperature = minFloat(st.CurrentTemperature+RampUpCPerSec*elapsed, goal)
	case st.CurrentTemperature > goal+ToleranceC:
		st.CurrentTemperature = maxFloat(st.CurrentTemperature-RampDownCPerSec*elapsed, goal)
	}
	st.CurrentTemperature = models.RoundTemperature(st.CurrentTemperature)
}

func (a *Appliance) acceptLoop() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				a.log.Errorw("simulator_accept_failed", "err", err)
			}
			return
		}
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			_ = c.Close()
			return
		}
		a.conns[c] = struct{}{}
		a.mu.Unlock()

		a.wg.Add(1)
		go a.serve(c)
	}
}

func (a *Appliance) serve(c net.Conn) {
	defer a.wg.Done()
	defer func() {
		a.mu.Lock()
		delete(a.conns, c)
		a.mu.Unlock()
		_ = c.Close()
	}()
	a.log.Debugw("simulator_client_connected", "remote", c.RemoteAddr().String())

	buf := make([]byte, 512)
	var pending []byte
	for {
		n, err := c.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			var frames [][]byte
			frames, pending = protocol.SplitCommands(pending)
			for _, f := range frames {
				cmd, ok := protocol.DecodeCommand(f)
				if !ok {
					a.log.Warnw("simulator_unknown_frame", "len", len(f))
					continue
				}
				if reply := a.handle(cmd); reply != nil {
					if _, err := c.Write(reply); err != nil {
						return
					}
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// handle applies cmd and returns the status frame to send back, if any.
func (a *Appliance) handle(cmd protocol.Command) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, cmd)
	a.log.Debugw("simulator_command", "command", cmd.String())

	st := &a.state
	switch cmd.Op() {
	case protocol.OpRequestStatus:
		return protocol.FormatStatus(a.opts.layout, *st, int(protocol.FlameCode(a.flame)))
	case protocol.OpIgnite:
		if st.GuardFlameOn || st.Igniting {
			return nil
		}
		st.Igniting = true
		a.after(a.opts.ignitionDelay, func() {
			st.Igniting = false
			st.GuardFlameOn = true
			st.Mode = models.ModeManual
		})
	case protocol.OpGuardFlameOff:
		if !st.GuardFlameOn || st.ShuttingDown {
			return nil
		}
		st.ShuttingDown = true
		a.after(a.opts.shutdownDelay, func() {
			st.ShuttingDown = false
			st.GuardFlameOn = false
			st.Mode = models.ModeOff
		})
	case protocol.OpStandby:
		if st.GuardFlameOn {
			st.Mode = models.ModeOff
		}
	case protocol.OpSetManualMode:
		a.setMode(models.ModeManual)
	case protocol.OpSetEcoMode:
		a.setMode(models.ModeEco)
	case protocol.OpSetTemperatureMode:
		a.setMode(models.ModeTemperature)
	case protocol.OpSetTemperatureValue:
		st.TargetTemperature = models.ClampTemperature(cmd.Temperature())
	case protocol.OpSetFlameHeight:
		a.flame = cmd.FlameHeight()
	}
	return nil
}

// setMode only takes effect with a lit guard flame; callers hold a.mu.
func (a *Appliance) setMode(m models.OperationMode) {
	if a.state.GuardFlameOn && !a.state.ShuttingDown {
		a.state.Mode = m
	}
}

// after runs fn under a.mu once d has elapsed; callers hold a.mu.
func (a *Appliance) after(d time.Duration, fn func()) {
	t := time.AfterFunc(d, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if !a.closed {
			fn()
		}
	})
	a.timers = append(a.timers, t)
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}
