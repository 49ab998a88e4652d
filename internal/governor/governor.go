package governor

import (
	"sync"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultMinInterval = 2 * time.Second
)

// Config holds refresh gate tuning parameters.
type Config struct {
	// MaxAttempts is the ceiling of consecutive failed-or-in-progress attempts
	// before the gate turns terminal.
	MaxAttempts int
	// MinInterval is the minimum spacing between two admitted attempts.
	MinInterval time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Decision is the outcome of an Admit call.
type Decision int

const (
	// Proceed admits the attempt; the caller owes a Succeed or Fail call.
	Proceed Decision = iota
	// SkipInFlight rejects the attempt because one is already running.
	SkipInFlight
	// SkipDebounced rejects the attempt because the previous one was too recent.
	SkipDebounced
	// Exhausted rejects the attempt terminally until Reset.
	Exhausted
)

// Governor gates refresh attempts for a single tracked reference.
type Governor struct {
	mu          sync.Mutex
	cfg         Config
	attempts    int
	lastAttempt time.Time
	inFlight    bool
	exhausted   bool
}

// New creates a [Governor]. Zero config fields take the package defaults
// (3 attempts, 2s spacing, wall clock).
func New(cfg Config) *Governor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Governor{cfg: cfg}
}

// Admit runs the three gate checks and, when the attempt is admitted, records
// the attempt bookkeeping (in-flight flag, attempt counter, last-attempt
// instant) in the same critical section.
func (g *Governor) Admit() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return SkipInFlight
	}

	if g.exhausted {
		return Exhausted
	}
	if g.attempts >= g.cfg.MaxAttempts {
		g.exhausted = true
		return Exhausted
	}

	now := g.cfg.Now()
	if !g.lastAttempt.IsZero() && now.Sub(g.lastAttempt) < g.cfg.MinInterval {
		return SkipDebounced
	}

	g.inFlight = true
	g.attempts++
	g.lastAttempt = now
	return Proceed
}

// Succeed reports that the admitted attempt completed successfully. The
// consecutive-attempt counter resets to zero.
func (g *Governor) Succeed() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inFlight = false
	g.attempts = 0
}

// Fail reports that the admitted attempt failed. The attempt counter stays
// incremented; the return value is true when the gate just turned terminal.
func (g *Governor) Fail() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inFlight = false
	if g.attempts >= g.cfg.MaxAttempts {
		g.exhausted = true
	}
	return g.exhausted
}

// Reset clears all gate state for a fresh tracking session.
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts = 0
	g.lastAttempt = time.Time{}
	g.inFlight = false
	g.exhausted = false
}

// IsExhausted reports whether the gate is terminal.
func (g *Governor) IsExhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exhausted
}

// InFlight reports whether an admitted attempt has not completed yet.
func (g *Governor) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Attempts returns the consecutive failed-or-in-progress attempt count since
// the last success.
func (g *Governor) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}
