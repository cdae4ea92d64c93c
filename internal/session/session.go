// Package session binds one appliance address to a lazily (re)connected link and a
// status cache fed by the link's inbound frames.
package session

import (
	"errors"
	"fmt"
	"sync"

	"fireplace_cli/internal/clock"
	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/protocol"
	"fireplace_cli/internal/transport"
)

// ErrClosed is returned by Send once the session has been closed.
var ErrClosed = errors.New("session closed")

// Snapshot is what the session currently believes about the appliance.
type Snapshot struct {
	Status models.ApplianceStatus
	Known  bool

	// Igniting and ShuttingDown mirror the appliance flags and are also raised
	// locally when this client starts an ignition or shutdown.
	Igniting     bool
	ShuttingDown bool

	// SafetyUnknown is set after a transport failure until the first status of the
	// new connection arrives; Status must not be trusted while it is set.
	SafetyUnknown bool
}

type options struct {
	log      *logger.Logger
	clock    clock.Clock
	decoder  *protocol.Decoder
	linkOpts []transport.Option
}

// Option configures New.
type Option func(*options)

func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }
func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }
func WithDecoder(d *protocol.Decoder) Option { return func(o *options) { o.decoder = d } }
func WithLinkOptions(opts ...transport.Option) Option {
	return func(o *options) { o.linkOpts = append(o.linkOpts, opts...) }
}

// Session talks to one appliance. It is meant to serve a single public operation.
type Session struct {
	addr    string
	log     *logger.Logger
	clock   clock.Clock
	decoder *protocol.Decoder
	linkOps []transport.Option
	cache   *StatusCache

	mu             sync.Mutex
	link           *transport.Link
	closed         bool
	igniting       bool
	shuttingDown   bool
	lostConnection bool

	pumps sync.WaitGroup
}

// New returns a session for addr ("host:port"). No connection is made until Send.
func New(addr string, opt ...Option) *Session {
	o := options{}
	for _, fn := range opt {
		fn(&o)
	}
	if o.clock == nil {
		o.clock = clock.Real{}
	}
	if o.decoder == nil {
		o.decoder = protocol.DefaultDecoder()
	}
	log := logger.OrNop(o.log)
	return &Session{
		addr:    addr,
		log:     log,
		clock:   o.clock,
		decoder: o.decoder,
		linkOps: append([]transport.Option{transport.WithLogger(log)}, o.linkOpts...),
		cache:   NewStatusCache(),
	}
}

// Send encodes cmd and writes it, connecting first if there is no live link.
// No acknowledgement is awaited.
func (s *Session) Send(cmd protocol.Command) error {
	link, err := s.ensureLink()
	if err != nil {
		return err
	}
	s.log.Debugw("command_sent", "addr", s.addr, "command", cmd.String())
	if err := link.Write(protocol.Encode(cmd)); err != nil {
		s.onTransportError(link, err)
		return fmt.Errorf("send %s to %s: %w", cmd, s.addr, err)
	}
	return nil
}

func (s *Session) ensureLink() (*transport.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.link != nil && !s.link.Destroyed() {
		return s.link, nil
	}
	link, err := transport.Dial(s.addr, s.linkOps...)
	if err != nil {
		s.lostConnection = true
		s.log.Errorw("transport_connect_failed", "addr", s.addr, "err", err)
		return nil, fmt.Errorf("connect %s: %w", s.addr, err)
	}
	s.link = link
	s.pumps.Add(1)
	go s.pump(link)
	return link, nil
}

func (s *Session) pump(link *transport.Link) {
	defer s.pumps.Done()
	for ev := range link.Events() {
		if ev.Err != nil {
			s.onTransportError(link, ev.Err)
			continue
		}
		s.onInboundData(ev.Data)
	}
}

// onInboundData applies one received chunk. Chunks that are not exactly one status
// frame are ignored.
func (s *Session) onInboundData(raw []byte) {
	st, ok := s.decoder.TryDecode(raw)
	if !ok {
		s.log.Debugw("frame_ignored", "addr", s.addr, "len", len(raw))
		return
	}

	s.mu.Lock()
	s.igniting = st.Igniting
	s.shuttingDown = st.ShuttingDown
	s.cache.Observe(st, s.clock.Now())
	defensive := false
	if s.lostConnection {
		s.lostConnection = false
		if !s.shuttingDown {
			s.shuttingDown = true
			defensive = true
		}
	}
	s.mu.Unlock()

	s.log.Debugw("status_observed", "addr", s.addr, "mode", st.Mode.String(),
		"current_c", st.CurrentTemperature, "target_c", st.TargetTemperature,
		"guard_flame", st.GuardFlameOn, "igniting", st.Igniting, "shutting_down", st.ShuttingDown)

	if defensive {
		// burner state is unknown after a reconnect
		s.log.Warnw("defensive_guard_flame_off", "addr", s.addr)
		if err := s.Send(protocol.GuardFlameOff()); err != nil {
			s.log.Errorw("defensive_guard_flame_off_failed", "addr", s.addr, "err", err)
		}
	}
}

// onTransportError destroys link so the next Send reconnects.
func (s *Session) onTransportError(link *transport.Link, err error) {
	s.log.Errorw("transport_error", "addr", s.addr, "err", err)
	s.mu.Lock()
	if s.link == link {
		s.link = nil
	}
	s.lostConnection = true
	s.mu.Unlock()
	_ = link.Close()
}

// Snapshot returns the current view of the appliance.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, known := s.cache.Last()
	return Snapshot{
		Status:        st,
		Known:         known,
		Igniting:      s.igniting,
		ShuttingDown:  s.shuttingDown,
		SafetyUnknown: s.lostConnection,
	}
}

// MarkIgniting records that an ignition command is in flight.
func (s *Session) MarkIgniting() {
	s.mu.Lock()
	s.igniting = true
	s.mu.Unlock()
}

// MarkShuttingDown records that a guard-flame-off command is in flight.
func (s *Session) MarkShuttingDown() {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()
}

// Reachable reports whether a status arrived within UnreachableAfter. Advisory only.
func (s *Session) Reachable() bool {
	return s.cache.Reachable(s.clock.Now())
}

// Subscribe streams status observations; call the returned func to stop.
func (s *Session) Subscribe(buffer int) (<-chan Observation, func()) {
	return s.cache.Subscribe(buffer)
}

// Close destroys the connection and waits for its reader. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	link := s.link
	s.link = nil
	s.mu.Unlock()

	var err error
	if link != nil {
		err = link.Close()
	}
	s.pumps.Wait()
	return err
}
