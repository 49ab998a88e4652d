package urlkeeper

import (
	"context"
	"sync"
	"time"

	"github.com/civicgrid/urlkeeper/expiry"
	"github.com/civicgrid/urlkeeper/internal/fetch"
	"github.com/civicgrid/urlkeeper/internal/governor"
	"github.com/civicgrid/urlkeeper/internal/schedule"
	"github.com/civicgrid/urlkeeper/keyref"
	"github.com/civicgrid/urlkeeper/urlcache"
	"github.com/google/uuid"
)

// Engine defines a public type used by urlkeeper APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	client       *fetch.Client
	cache        *urlcache.Store
	entityWriter EntityWriter
	events       *eventDispatcher
	metrics      *Metrics

	// now and after are the clock and timer factory; engine tests swap them
	// before the first Track call.
	now   func() time.Time
	after schedule.AfterFunc

	mu       sync.Mutex
	closed   bool
	bindings map[*Binding]struct{}
}

// Track starts a lifecycle session for reference: the canonical storage key is
// resolved, an initial URL is obtained (from the reference itself, the
// warm-start cache, or a first refresh), and the proactive timer is armed.
//
// The returned [Binding] is the consumer's handle for the session. Tracking
// the same reference twice creates two independent sessions; replacing a
// reference means disposing the old binding and tracking the new value.
// Tenant and consumer identifiers are read from ctx at call time.
func (e *Engine) Track(ctx context.Context, reference string, entity *EntityRef) (*Binding, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	e.mu.Unlock()

	tenantID := tenantIDFromContext(ctx)
	consumerID := consumerIDFromContext(ctx)

	key, ok := keyref.Resolve(reference)
	if !ok {
		e.metricInc(MetricResolveFailure)
		e.emit(Event{
			EventType:  EventResolveFailed,
			TenantID:   tenantID,
			ConsumerID: consumerID,
			Error:      ErrCannotResolve.Error(),
		})
		return nil, ErrCannotResolve
	}

	b := &Binding{
		engine:     e,
		sessionID:  uuid.NewString(),
		reference:  reference,
		fileKey:    key,
		entity:     cloneEntity(entity),
		tenantID:   tenantID,
		consumerID: consumerID,
		state:      StateUninitialized,
		timer:      schedule.New(e.after),
		gov: governor.New(governor.Config{
			MaxAttempts: e.config.Refresh.MaxAttempts,
			MinInterval: e.config.Refresh.MinAttemptInterval,
			Now:         e.now,
		}),
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	e.bindings[b] = struct{}{}
	e.mu.Unlock()

	b.start()

	return b, nil
}

// start seeds the binding's initial URL and arms or kicks the first refresh.
func (b *Binding) start() {
	e := b.engine
	now := e.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	// A full signed URL as the reference is usable immediately; its expiry
	// comes from the query string.
	if b.reference != b.fileKey {
		expiresAt, parsed := expiry.Parse(b.reference)
		if !parsed {
			expiresAt = now.Add(e.config.Refresh.FallbackValidityWindow)
			e.metricInc(MetricExpiryFallback)
			e.emit(b.event(EventExpiryFallback, "", 0, true, ""))
		}
		b.currentURL = b.reference
		b.expiresAt = expiresAt
		b.state = StateValid
		b.armLocked(now)
		return
	}

	// A bare key may have a cached last known-good URL from a previous
	// session or process.
	if e.cache != nil {
		entry, err := e.cache.Get(context.Background(), b.tenantID, b.fileKey)
		if err == nil && entry.ExpiresAt.After(now) {
			e.metricInc(MetricCacheHit)
			e.emit(b.event(EventCacheHit, "", 0, true, ""))
			b.currentURL = entry.URL
			b.expiresAt = entry.ExpiresAt
			b.state = StateValid
			b.armLocked(now)
			return
		}
		e.metricInc(MetricCacheMiss)
	}

	b.state = StateResolving
	go func() {
		_, _ = b.refresh(context.Background(), triggerInitial)
	}()
}

// Close disposes every live binding and shuts the event dispatcher down.
// In-flight refresh results arriving after Close are discarded.
func (e *Engine) Close() {
	if e == nil {
		return
	}

	e.mu.Lock()
	e.closed = true
	live := make([]*Binding, 0, len(e.bindings))
	for b := range e.bindings {
		live = append(live, b)
	}
	e.mu.Unlock()

	for _, b := range live {
		b.Dispose()
	}

	if e.events != nil {
		e.events.Close()
	}
}

// EventsDropped describes the eventsdropped operation and its observable behavior.
//
// EventsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EventsDropped() uint64 {
	if e == nil || e.events == nil {
		return 0
	}
	return e.events.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emit(event Event) {
	if e == nil || e.events == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.events.Emit(context.Background(), event)
}

func (e *Engine) unregister(b *Binding) {
	e.mu.Lock()
	delete(e.bindings, b)
	e.mu.Unlock()
}

func (e *Engine) persistEntity(b *Binding, url string) {
	err := e.entityWriter.WriteURL(context.Background(), *b.entity, b.fileKey, url)
	if err != nil {
		e.metricInc(MetricEntityPersistFailure)
		e.emit(b.event(EventEntityPersistFailed, "", 0, false, err.Error()))
		return
	}
	e.metricInc(MetricEntityPersistSuccess)
	e.emit(b.event(EventEntityPersisted, "", 0, true, ""))
}

func cloneEntity(entity *EntityRef) *EntityRef {
	if entity == nil {
		return nil
	}
	clone := *entity
	return &clone
}
