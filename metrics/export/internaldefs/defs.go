package internaldefs

import (
	urlkeeper "github.com/civicgrid/urlkeeper"
)

// CounterDef defines a public type used by urlkeeper APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   urlkeeper.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by urlkeeper APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   urlkeeper.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the URL lifecycle engine.
var CounterDefs = []CounterDef{
	{ID: urlkeeper.MetricRefreshSuccess, Name: "urlkeeper_refresh_success_total", Help: "Successful signed-URL refreshes."},
	{ID: urlkeeper.MetricRefreshFailure, Name: "urlkeeper_refresh_failure_total", Help: "Failed signed-URL refresh attempts."},
	{ID: urlkeeper.MetricRefreshSkippedInFlight, Name: "urlkeeper_refresh_skipped_in_flight_total", Help: "Refresh triggers skipped because one was already in flight."},
	{ID: urlkeeper.MetricRefreshDebounced, Name: "urlkeeper_refresh_debounced_total", Help: "Refresh triggers skipped by debounce spacing."},
	{ID: urlkeeper.MetricRefreshExhausted, Name: "urlkeeper_refresh_exhausted_total", Help: "Refresh triggers rejected after the attempt ceiling."},
	{ID: urlkeeper.MetricProactiveFired, Name: "urlkeeper_proactive_fired_total", Help: "Proactive refresh timer fires."},
	{ID: urlkeeper.MetricReactiveReported, Name: "urlkeeper_reactive_reported_total", Help: "Load failures reported by consumers."},
	{ID: urlkeeper.MetricResolveFailure, Name: "urlkeeper_resolve_failure_total", Help: "References that could not be resolved to a storage key."},
	{ID: urlkeeper.MetricExpiryFallback, Name: "urlkeeper_expiry_fallback_total", Help: "Expiry instants derived from the fallback window."},
	{ID: urlkeeper.MetricCacheHit, Name: "urlkeeper_cache_hit_total", Help: "Warm-start cache hits."},
	{ID: urlkeeper.MetricCacheMiss, Name: "urlkeeper_cache_miss_total", Help: "Warm-start cache misses."},
	{ID: urlkeeper.MetricEntityPersistSuccess, Name: "urlkeeper_entity_persist_success_total", Help: "Refreshed URLs persisted against their owning record."},
	{ID: urlkeeper.MetricEntityPersistFailure, Name: "urlkeeper_entity_persist_failure_total", Help: "Failed entity persistence side effects."},
	{ID: urlkeeper.MetricStaleResultDiscarded, Name: "urlkeeper_stale_result_discarded_total", Help: "Refresh results discarded because their session ended."},
}

// HistogramDefs is an exported constant or variable used by the URL lifecycle engine.
var HistogramDefs = []HistogramDef{
	{ID: urlkeeper.MetricRefreshLatency, Name: "urlkeeper_refresh_latency_seconds", Help: "Refresh round-trip latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the URL lifecycle engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the URL lifecycle engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
