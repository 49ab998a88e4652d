package schedule

import (
	"sync"
	"time"
)

// AfterFunc is the timer factory; production code passes time.AfterFunc, tests
// inject a capture.
type AfterFunc func(d time.Duration, fn func()) *time.Timer

// Timer owns at most one pending callback. The zero value is not usable; use New.
type Timer struct {
	mu      sync.Mutex
	after   AfterFunc
	pending *time.Timer
	gen     uint64
}

// New creates a [Timer] backed by after (nil means time.AfterFunc).
func New(after AfterFunc) *Timer {
	if after == nil {
		after = time.AfterFunc
	}
	return &Timer{after: after}
}

// Arm cancels any pending callback and schedules fn to run once after d.
// The callback runs on its own goroutine, as time.AfterFunc does.
func (t *Timer) Arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}

	t.gen++
	gen := t.gen
	t.pending = t.after(d, func() {
		t.mu.Lock()
		if t.gen != gen {
			// A rearm or cancel superseded this callback between fire and lock.
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()

		fn()
	})
}

// Cancel clears the pending callback, if any.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Armed reports whether a callback is pending.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
