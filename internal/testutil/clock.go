package testutil

import (
	"sync"
	"time"
)

// Epoch is the first time returned by a new DeterministicClock.
var Epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock returns Epoch, then advances one second per call.
//
// Thread-safety: All methods are safe for concurrent use.
type DeterministicClock struct {
	mu   sync.Mutex
	next time.Time
}

// NewDeterministicClock creates a clock starting at Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{next: Epoch}
}

// Now returns the current tick and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = Epoch
}
