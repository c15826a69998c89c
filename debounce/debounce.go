// Package debounce coalesces bursts of search-box edits into one committed
// category filter.
package debounce

import (
	"sync"
	"time"
)

const (
	// DefaultDelay is the quiet period before an edit is committed
	DefaultDelay = 300 * time.Millisecond
	// MinLength is the shortest raw value that may be committed
	MinLength = 3
)

// Ticket identifies one scheduled emission. Only the most recent ticket can
// commit.
type Ticket uint64

// Debouncer is a trailing-edge debounce over raw input. The caller owns the
// timer: after Input it waits Delay() and then calls Expire with the
// ticket. It is safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu        sync.Mutex
	raw       string
	committed string
	latest    Ticket
}

// New creates a debouncer whose committed value starts at initial
func New(delay time.Duration, initial string) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:     delay,
		raw:       initial,
		committed: initial,
	}
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Input records a keystroke's worth of raw input and cancels any pending
// emission.
func (d *Debouncer) Input(raw string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.raw = raw
	d.latest++
	return d.latest
}

// Expire is called once the quiet period for t has elapsed. It commits the
// raw value when t is still current and the value is long enough, and
// reports the committed value.
func (d *Debouncer) Expire(t Ticket) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t != d.latest || len(d.raw) < MinLength {
		return "", false
	}
	d.committed = d.raw
	return d.committed, true
}

// Select commits value immediately, bypassing the quiet period, and makes
// it the raw value too.
func (d *Debouncer) Select(value string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.raw = value
	d.committed = value
	d.latest++
	return value
}

// Raw returns the latest raw input
func (d *Debouncer) Raw() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Committed returns the last committed value
func (d *Debouncer) Committed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}
