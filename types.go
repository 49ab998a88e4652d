package urlkeeper

import (
	"context"
	"time"
)

// EntityRef associates a tracked reference with the database record that
// stores its last known-good URL, so a refreshed URL can be persisted back.
type EntityRef struct {
	Type string
	ID   string
}

// TokenSource supplies the bearer token for refresh requests. An empty token
// with a nil error means "no token available"; the request proceeds
// unauthenticated. The [github.com/civicgrid/urlkeeper/tokens] package provides
// implementations.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// EntityWriter persists a refreshed URL against the owning record. Calls are
// fire-and-forget: failures are surfaced as events and metrics, never as
// refresh failures.
type EntityWriter interface {
	WriteURL(ctx context.Context, entity EntityRef, fileKey, url string) error
}

// BindingState defines a public type used by urlkeeper APIs.
//
// BindingState values describe where a tracked reference sits in its lifecycle;
// transitions are driven exclusively by the Engine.
type BindingState uint8

const (
	// StateUninitialized is an exported constant or variable used by the URL lifecycle engine.
	StateUninitialized BindingState = iota
	// StateResolving is an exported constant or variable used by the URL lifecycle engine.
	StateResolving
	// StateValid is an exported constant or variable used by the URL lifecycle engine.
	StateValid
	// StateRefreshPending is an exported constant or variable used by the URL lifecycle engine.
	StateRefreshPending
	// StateExhausted is an exported constant or variable used by the URL lifecycle engine.
	StateExhausted
)

// String describes the string operation and its observable behavior.
func (s BindingState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateValid:
		return "valid"
	case StateRefreshPending:
		return "refresh_pending"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time read of a [Binding]. Consumers render
// CurrentURL, treat Exhausted as "switch to the fallback visual", and never
// write back.
type Snapshot struct {
	Reference    string
	FileKey      string
	CurrentURL   string
	ExpiresAt    time.Time
	State        BindingState
	IsRefreshing bool
	Exhausted    bool
	Attempts     int
	TimerArmed   bool
}
