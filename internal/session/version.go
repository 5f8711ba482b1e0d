package session

import (
	"sync"
	"time"
)

// VersionClock issues record versions. Each version is above the floor passed
// in, above every version the clock issued before, and at least the current
// time in nanoseconds, so a key that is deleted and written again never gets
// back a version an old reader may still hold.
type VersionClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewVersionClock creates a clock reading time from now
func NewVersionClock(now func() time.Time) *VersionClock {
	return &VersionClock{now: now}
}

// Next returns a fresh version greater than floor
func (c *VersionClock) Next(floor int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.now().UnixNano()
	if next <= floor {
		next = floor + 1
	}
	if next <= c.last {
		next = c.last + 1
	}
	c.last = next
	return next
}

// Observe records a version issued elsewhere so later ones stay above it
func (c *VersionClock) Observe(version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version > c.last {
		c.last = version
	}
}
