package session

import (
	"sync"
	"time"

	"fireplace_cli/internal/models"
)

// UnreachableAfter is how long the appliance may stay silent before it is reported unreachable.
const UnreachableAfter = 5 * time.Minute

// Observation is one decoded status and the time it arrived.
type Observation struct {
	Status models.ApplianceStatus
	At     time.Time
}

// StatusCache keeps the most recent status and fans observations out to subscribers.
// Slow subscribers miss observations rather than block the reader.
type StatusCache struct {
	mu          sync.Mutex
	last        models.ApplianceStatus
	known       bool
	lastContact time.Time
	subs        map[int]chan Observation
	nextSub     int
}

func NewStatusCache() *StatusCache {
	return &StatusCache{subs: make(map[int]chan Observation)}
}

// Observe records st as the latest status.
func (c *StatusCache) Observe(st models.ApplianceStatus, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = st
	c.known = true
	c.lastContact = at
	obs := Observation{Status: st, At: at}
	for _, ch := range c.subs {
		select {
		case ch <- obs:
		default:
		}
	}
}

// Last returns the latest status and whether one was ever observed.
func (c *StatusCache) Last() (models.ApplianceStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.known
}

// Reachable reports whether a status arrived less than UnreachableAfter before now.
func (c *StatusCache) Reachable(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known {
		return false
	}
	return now.Sub(c.lastContact) < UnreachableAfter
}

// Subscribe returns a channel of future observations and a func that ends the subscription.
func (c *StatusCache) Subscribe(buffer int) (<-chan Observation, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Observation, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
