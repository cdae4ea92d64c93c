package service

import (
	"context"
	"sync"
	"time"

	"fireplace_cli/internal/logger"
)

// Monitor caches the latest report seen by the controller and can poll the
// appliance in the background.
type Monitor struct {
	fireplace Fireplace
	log       *logger.Logger

	mu     sync.RWMutex
	latest Report
	have   bool
}

var (
	_ Monitoring      = (*Monitor)(nil)
	_ StatusPublisher = (*Monitor)(nil)
)

func NewMonitor(fireplace Fireplace, log *logger.Logger) *Monitor {
	return &Monitor{fireplace: fireplace, log: logger.OrNop(log)}
}

// Latest returns the most recent report, if any.
func (m *Monitor) Latest() (Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.have
}

// Publish stores rep; registered on the controller it sees every operation.
func (m *Monitor) Publish(_ context.Context, rep Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.have && rep.StartedAt.Before(m.latest.StartedAt) {
		return nil
	}
	m.latest = rep
	m.have = true
	return nil
}

// Poll runs a status query. When the controller also publishes to m, the report is
// cached by that path; it is stored here as well for standalone use.
func (m *Monitor) Poll(ctx context.Context) (Report, error) {
	rep, err := m.fireplace.Status(ctx)
	if err != nil {
		return rep, err
	}
	_ = m.Publish(ctx, rep)
	return rep, nil
}

// Run polls every interval until ctx is canceled. Failures are logged and retried on
// the next tick.
func (m *Monitor) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := m.Poll(ctx); err != nil {
				m.log.Warnw("status_poll_failed", "err", err)
			}
		}
	}
}
