package urlkeeper

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event type values carried in [Event.EventType].
const (
	// EventRefreshStarted is an exported constant or variable used by the URL lifecycle engine.
	EventRefreshStarted = "refresh_started"
	// EventRefreshSucceeded is an exported constant or variable used by the URL lifecycle engine.
	EventRefreshSucceeded = "refresh_succeeded"
	// EventRefreshFailed is an exported constant or variable used by the URL lifecycle engine.
	EventRefreshFailed = "refresh_failed"
	// EventRefreshSkipped is an exported constant or variable used by the URL lifecycle engine.
	EventRefreshSkipped = "refresh_skipped"
	// EventRefreshExhausted is an exported constant or variable used by the URL lifecycle engine.
	EventRefreshExhausted = "refresh_exhausted"
	// EventResolveFailed is an exported constant or variable used by the URL lifecycle engine.
	EventResolveFailed = "resolve_failed"
	// EventExpiryFallback is an exported constant or variable used by the URL lifecycle engine.
	EventExpiryFallback = "expiry_fallback"
	// EventCacheHit is an exported constant or variable used by the URL lifecycle engine.
	EventCacheHit = "cache_hit"
	// EventEntityPersisted is an exported constant or variable used by the URL lifecycle engine.
	EventEntityPersisted = "entity_persisted"
	// EventEntityPersistFailed is an exported constant or variable used by the URL lifecycle engine.
	EventEntityPersistFailed = "entity_persist_failed"
)

type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	EventType  string            `json:"event_type"`
	SessionID  string            `json:"session_id,omitempty"`
	TenantID   string            `json:"tenant_id,omitempty"`
	ConsumerID string            `json:"consumer_id,omitempty"`
	FileKey    string            `json:"file_key,omitempty"`
	Trigger    string            `json:"trigger,omitempty"`
	Attempt    int               `json:"attempt,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type EventSink interface {
	Emit(ctx context.Context, event Event)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
