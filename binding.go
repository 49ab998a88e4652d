package urlkeeper

import (
	"context"
	"sync"
	"time"

	"github.com/civicgrid/urlkeeper/expiry"
	"github.com/civicgrid/urlkeeper/internal/governor"
	"github.com/civicgrid/urlkeeper/internal/schedule"
)

// Refresh trigger labels carried on events.
const (
	triggerInitial   = "initial"
	triggerProactive = "proactive"
	triggerReactive  = "reactive"
)

// Binding is the consumer handle for one tracking session of one reference.
//
// The rendering layer reads state through [Binding.Snapshot] and writes
// through exactly two entry points: [Binding.ReportLoadFailure] and
// [Binding.Dispose]. All other mutation belongs to the engine.
type Binding struct {
	engine *Engine
	gov    *governor.Governor
	timer  *schedule.Timer

	// sessionID tags every in-flight refresh with the session it belongs to;
	// results arriving after disposal are discarded instead of mutating state
	// that no longer represents the reference.
	sessionID  string
	reference  string
	fileKey    string
	entity     *EntityRef
	tenantID   string
	consumerID string

	mu         sync.Mutex
	disposed   bool
	state      BindingState
	currentURL string
	expiresAt  time.Time
}

// Snapshot returns a point-in-time read of the session.
func (b *Binding) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Reference:    b.reference,
		FileKey:      b.fileKey,
		CurrentURL:   b.currentURL,
		ExpiresAt:    b.expiresAt,
		State:        b.state,
		IsRefreshing: b.gov.InFlight(),
		Exhausted:    b.state == StateExhausted,
		Attempts:     b.gov.Attempts(),
		TimerArmed:   b.timer.Armed(),
	}
}

// SessionID returns the session tag carried on this binding's events.
func (b *Binding) SessionID() string {
	return b.sessionID
}

// ReportLoadFailure is the reactive refresh path: the consumer calls it when
// rendering the current URL failed (an image element errored). The attempt is
// gated; a skip returns ("", nil) and the consumer keeps showing what it has.
// [ErrExhausted] tells the consumer to switch to its fallback visual until the
// reference changes.
func (b *Binding) ReportLoadFailure(ctx context.Context) (string, error) {
	b.engine.metricInc(MetricReactiveReported)
	return b.refresh(ctx, triggerReactive)
}

// Dispose ends the session: the proactive timer is cancelled synchronously and
// any in-flight refresh result is discarded on arrival. Dispose is idempotent.
func (b *Binding) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	b.timer.Cancel()
	b.mu.Unlock()

	b.engine.unregister(b)
}

// refresh runs one gated refresh attempt. The governor admits at most one
// concurrent attempt per binding; skips return ("", nil). Failures inside the
// attempt budget are absorbed (the last known-good URL stays current);
// exhaustion surfaces as [ErrExhausted].
func (b *Binding) refresh(ctx context.Context, trigger string) (string, error) {
	e := b.engine

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return "", ErrBindingDisposed
	}
	session := b.sessionID
	hadURL := b.currentURL != ""

	switch b.gov.Admit() {
	case governor.SkipInFlight:
		b.mu.Unlock()
		e.metricInc(MetricRefreshSkippedInFlight)
		e.emit(b.event(EventRefreshSkipped, trigger, 0, false, "refresh already in flight"))
		return "", nil

	case governor.SkipDebounced:
		// Keep the proactive loop alive: a debounced timer fire retries once
		// the spacing window has passed.
		if trigger == triggerProactive {
			b.timer.Arm(e.config.Refresh.MinAttemptInterval, b.onProactiveFire)
		}
		b.mu.Unlock()
		e.metricInc(MetricRefreshDebounced)
		e.emit(b.event(EventRefreshSkipped, trigger, 0, false, "attempt debounced"))
		return "", nil

	case governor.Exhausted:
		b.state = StateExhausted
		b.timer.Cancel()
		b.mu.Unlock()
		e.metricInc(MetricRefreshExhausted)
		e.emit(b.event(EventRefreshExhausted, trigger, 0, false, ErrExhausted.Error()))
		return "", ErrExhausted
	}

	if hadURL {
		b.state = StateRefreshPending
	} else {
		b.state = StateResolving
	}
	attempt := b.gov.Attempts()
	b.mu.Unlock()

	e.emit(b.event(EventRefreshStarted, trigger, attempt, true, ""))

	var entityType, entityID string
	if b.entity != nil {
		entityType = b.entity.Type
		entityID = b.entity.ID
	}

	started := e.now()
	res, err := e.client.Refresh(ctx, b.fileKey, entityType, entityID)
	if e.metrics != nil {
		e.metrics.Observe(MetricRefreshLatency, e.now().Sub(started))
	}

	b.mu.Lock()
	if b.disposed || b.sessionID != session {
		b.mu.Unlock()
		e.metricInc(MetricStaleResultDiscarded)
		return "", ErrBindingDisposed
	}

	if err != nil {
		if exhausted := b.gov.Fail(); exhausted {
			b.state = StateExhausted
			b.timer.Cancel()
			b.mu.Unlock()
			e.metricInc(MetricRefreshFailure)
			e.metricInc(MetricRefreshExhausted)
			e.emit(b.event(EventRefreshFailed, trigger, attempt, false, err.Error()))
			e.emit(b.event(EventRefreshExhausted, trigger, attempt, false, ErrExhausted.Error()))
			return "", ErrExhausted
		}

		if hadURL {
			b.state = StateValid
		} else {
			b.state = StateResolving
		}
		b.mu.Unlock()
		e.metricInc(MetricRefreshFailure)
		e.emit(b.event(EventRefreshFailed, trigger, attempt, false, err.Error()))
		return "", nil
	}

	b.gov.Succeed()
	now := e.now()
	b.currentURL = res.PresignedURL
	if res.ExpiresIn > 0 {
		b.expiresAt = now.Add(res.ExpiresIn)
	} else {
		expiresAt, parsed := expiry.Parse(res.PresignedURL)
		if !parsed {
			expiresAt = now.Add(e.config.Refresh.FallbackValidityWindow)
			e.metricInc(MetricExpiryFallback)
			e.emit(b.event(EventExpiryFallback, trigger, attempt, true, ""))
		}
		b.expiresAt = expiresAt
	}
	b.state = StateValid
	b.armLocked(now)
	url := b.currentURL
	expiresAt := b.expiresAt
	b.mu.Unlock()

	e.metricInc(MetricRefreshSuccess)
	e.emit(b.event(EventRefreshSucceeded, trigger, attempt, true, ""))

	// Fire-and-forget side effects: neither the cache write nor the entity
	// persistence participates in refresh correctness.
	if e.cache != nil {
		go func() {
			_ = e.cache.Put(context.Background(), b.tenantID, b.fileKey, url, expiresAt)
		}()
	}
	if b.entity != nil && e.entityWriter != nil {
		go e.persistEntity(b, url)
	}

	return url, nil
}

// armLocked schedules the proactive refresh for the current expiry. Callers
// hold b.mu. When the URL is already inside its refresh window the attempt
// starts immediately instead of arming a timer.
func (b *Binding) armLocked(now time.Time) {
	delay := b.expiresAt.Sub(now) - b.engine.config.Refresh.LeadTime
	if delay <= 0 {
		go b.onProactiveFire()
		return
	}
	b.timer.Arm(delay, b.onProactiveFire)
}

func (b *Binding) onProactiveFire() {
	b.engine.metricInc(MetricProactiveFired)
	_, _ = b.refresh(context.Background(), triggerProactive)
}

// event assembles an [Event] carrying this binding's session coordinates.
func (b *Binding) event(eventType, trigger string, attempt int, success bool, errMsg string) Event {
	return Event{
		EventType:  eventType,
		SessionID:  b.sessionID,
		TenantID:   b.tenantID,
		ConsumerID: b.consumerID,
		FileKey:    b.fileKey,
		Trigger:    trigger,
		Attempt:    attempt,
		Success:    success,
		Error:      errMsg,
	}
}
