// Package countdown provides the auto-advance timer used during the
// feedback phase of a practice session.
package countdown

import (
	"sync"
	"time"
)

// DefaultSeconds is the feedback countdown length.
const DefaultSeconds = 5

// Timer counts down once per second from a fixed number of seconds and
// fires an expiry callback exactly once per armed cycle. Re-arming or
// stopping the timer invalidates the previous cycle, so a stale tick
// can never fire against the wrong question.
type Timer struct {
	mu        sync.Mutex
	seconds   int
	remaining int
	interval  time.Duration
	cycle     *cycle

	onExpire func()
	onTick   func(remaining int)
}

type cycle struct {
	stop chan struct{}
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides the tick interval (tests only).
func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

// WithOnTick registers a per-tick hook receiving the remaining count.
func WithOnTick(fn func(remaining int)) Option {
	return func(t *Timer) { t.onTick = fn }
}

// New creates a stopped Timer that counts down from seconds and calls
// onExpire when it reaches zero.
func New(seconds int, onExpire func(), opts ...Option) *Timer {
	if seconds <= 0 {
		seconds = DefaultSeconds
	}
	t := &Timer{
		seconds:   seconds,
		remaining: seconds,
		interval:  time.Second,
		onExpire:  onExpire,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start arms the countdown from the full value, cancelling any cycle
// already running.
func (t *Timer) Start() {
	t.mu.Lock()
	t.stopLocked()
	t.remaining = t.seconds
	c := &cycle{stop: make(chan struct{})}
	t.cycle = c
	t.mu.Unlock()

	go t.run(c)
}

// Reset is Start under its intent-revealing name: the countdown is put
// back to the full value before any state change becomes visible.
func (t *Timer) Reset() {
	t.Start()
}

// Stop cancels the running cycle, if any, and restores the full value.
// It is idempotent and safe to call from any exit path.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.remaining = t.seconds
	t.mu.Unlock()
}

// stopLocked cancels the current cycle. Caller holds the lock.
func (t *Timer) stopLocked() {
	if t.cycle != nil {
		close(t.cycle.stop)
		t.cycle = nil
	}
}

// Remaining returns the current countdown value.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) run(c *cycle) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.cycle != c {
				// A Reset or Stop raced this tick; the cycle is dead.
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			expired := remaining <= 0
			if expired {
				t.stopLocked()
			}
			onTick := t.onTick
			t.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if expired {
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}
