// Package transport owns the TCP connection to the appliance.
package transport

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"fireplace_cli/internal/logger"
)

// Default timings.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultIdleTimeout  = 15 * time.Second
	DefaultWriteTimeout = 5 * time.Second

	readBufferSize = 1024
	eventBuffer    = 16
)

// ErrClosed is returned by Write after the link has been destroyed.
var ErrClosed = errors.New("transport: link closed")

// Event carries either one inbound chunk or the error that ended the link.
type Event struct {
	Data []byte
	Err  error
}

type options struct {
	dialTimeout  time.Duration
	idleTimeout  time.Duration
	writeTimeout time.Duration
	log          *logger.Logger
}

// Option configures Dial.
type Option func(*options)

func WithDialTimeout(d time.Duration) Option { return func(o *options) { o.dialTimeout = d } }
func WithIdleTimeout(d time.Duration) Option { return func(o *options) { o.idleTimeout = d } }
func WithWriteTimeout(d time.Duration) Option { return func(o *options) { o.writeTimeout = d } }
func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

func defaultOptions() options {
	return options{
		dialTimeout:  DefaultDialTimeout,
		idleTimeout:  DefaultIdleTimeout,
		writeTimeout: DefaultWriteTimeout,
	}
}

// Link is one TCP connection. Inbound chunks are delivered on Events until the link
// ends; the channel is closed afterwards. A link that stays silent for the idle
// timeout is destroyed without reporting an error.
type Link struct {
	addr   string
	conn   net.Conn
	opts   options
	log    *logger.Logger
	events chan Event

	writeMu   sync.Mutex
	closeOnce sync.Once
	destroyed atomic.Bool
}

// Dial connects to addr ("host:port") and starts the read loop.
func Dial(addr string, opt ...Option) (*Link, error) {
	o := defaultOptions()
	for _, fn := range opt {
		fn(&o)
	}
	conn, err := net.DialTimeout("tcp", addr, o.dialTimeout)
	if err != nil {
		return nil, err
	}
	l := &Link{
		addr:   addr,
		conn:   conn,
		opts:   o,
		log:    logger.OrNop(o.log),
		events: make(chan Event, eventBuffer),
	}
	l.log.Debugw("transport_connected", "addr", addr)
	go l.readLoop()
	return l, nil
}

// Events returns the inbound channel.
func (l *Link) Events() <-chan Event { return l.events }

// Destroyed reports whether Close has been called or the link ended.
func (l *Link) Destroyed() bool { return l.destroyed.Load() }

// Write sends one frame. Writes are serialized.
func (l *Link) Write(frame []byte) error {
	if l.Destroyed() {
		return ErrClosed
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	now := time.Now()
	if l.opts.writeTimeout > 0 {
		_ = l.conn.SetWriteDeadline(now.Add(l.opts.writeTimeout))
	}
	if l.opts.idleTimeout > 0 {
		_ = l.conn.SetReadDeadline(now.Add(l.opts.idleTimeout))
	}
	_, err := l.conn.Write(frame)
	return err
}

// Close destroys the link. It is safe to call more than once.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.destroyed.Store(true)
		err = l.conn.Close()
	})
	return err
}

func (l *Link) readLoop() {
	defer close(l.events)
	buf := make([]byte, readBufferSize)
	for {
		if l.opts.idleTimeout > 0 {
			_ = l.conn.SetReadDeadline(time.Now().Add(l.opts.idleTimeout))
		}
		n, err := l.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			l.events <- Event{Data: chunk}
		}
		if err == nil {
			continue
		}
		if l.Destroyed() {
			return
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			l.log.Debugw("transport_idle_recycled", "addr", l.addr, "idle", l.opts.idleTimeout)
			_ = l.Close()
			return
		}
		_ = l.Close()
		l.events <- Event{Err: err}
		return
	}
}
