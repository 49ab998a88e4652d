// Package urlkeeper keeps time-limited signed object-storage URLs valid across a
// session: proactive refresh ahead of expiry, reactive refresh on load failure,
// single-flight deduplication per reference, debounce and attempt ceilings, and
// optional Redis warm-start plus entity persistence of refreshed URLs.
//
// The package is designed for concurrent server and rendering workloads: Engine
// and Binding methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// urlkeeper is the public surface. It exposes [Engine], [Builder], [Config],
// [Binding], and value types (Snapshot, Event, MetricsSnapshot). All internal
// coordination — the refresh gate, the HTTP round trip, the proactive timer —
// lives under internal/ and is never exported. The leaf packages expiry, keyref,
// tokens, and urlcache are importable on their own.
//
// # What this package must NOT do
//
//   - Implement the object-storage signing algorithm; refreshing is one HTTP
//     round trip to a backend endpoint.
//   - Expose Redis clients, the refresh transport, or timer internals in its
//     public API.
//   - Render anything. Consumers read [Binding] snapshots and report load
//     failures; display decisions stay with the caller.
//
// # Refresh contract
//
// Per tracked reference there is at most one armed proactive timer and at most
// one in-flight refresh at any time. A successful refresh resets the attempt
// counter; after the configured ceiling of consecutive failures the binding is
// exhausted and stays terminal until the reference is tracked anew.
package urlkeeper
