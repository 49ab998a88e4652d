//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	urlkeeper "github.com/civicgrid/urlkeeper"
)

// An engine restart against the same Redis warm-starts from the cache instead
// of hammering the signing service again.
func TestWarmStartAcrossEngineRestart(t *testing.T) {
	backend := newRefreshBackend(t)
	rdb := newIntegrationRedis(t)

	first := newIntegrationEngine(t, backend.srv.URL, rdb)
	b, err := first.Track(context.Background(), "gallery/pic.png", nil)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	snap := waitValid(t, b)
	if !strings.Contains(snap.CurrentURL, "gallery/pic.png") {
		t.Fatalf("unexpected refreshed URL %q", snap.CurrentURL)
	}
	if got := backend.hits.Load(); got != 1 {
		t.Fatalf("expected 1 backend hit, got %d", got)
	}

	// The cache write races the refresh return; give it a moment to land.
	deadline := time.Now().Add(3 * time.Second)
	for {
		second := newIntegrationEngine(t, backend.srv.URL, rdb)
		b2, err := second.Track(context.Background(), "gallery/pic.png", nil)
		if err != nil {
			t.Fatalf("Track on restarted engine failed: %v", err)
		}
		snap2 := waitValid(t, b2)
		if snap2.CurrentURL == snap.CurrentURL && backend.hits.Load() == 1 {
			return
		}
		b2.Dispose()
		if time.Now().After(deadline) {
			t.Fatalf("expected warm start from cache, hits=%d snapshot=%+v", backend.hits.Load(), snap2)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// A binding created during a backend outage recovers through the reactive
// path once the backend is healthy again.
func TestReactiveRecoveryAfterBackendOutage(t *testing.T) {
	backend := newRefreshBackend(t)
	backend.setFail(true)

	engine := newIntegrationEngine(t, backend.srv.URL, nil)

	b, err := engine.Track(context.Background(), "gallery/pic.png", nil)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	defer b.Dispose()

	// Wait out the failed initial attempt.
	deadline := time.Now().Add(3 * time.Second)
	for backend.hits.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if snap := b.Snapshot(); snap.CurrentURL != "" {
		t.Fatalf("expected no URL during outage, got %q", snap.CurrentURL)
	}

	backend.setFail(false)
	time.Sleep(5 * time.Millisecond) // clear the debounce window

	url, err := b.ReportLoadFailure(context.Background())
	if err != nil {
		t.Fatalf("reactive refresh failed: %v", err)
	}
	if !strings.Contains(url, "gallery/pic.png") {
		t.Fatalf("unexpected refreshed URL %q", url)
	}

	snap := waitValid(t, b)
	if snap.CurrentURL != url {
		t.Fatalf("snapshot URL %q does not match refresh result %q", snap.CurrentURL, url)
	}
}

// Exhaustion is terminal for the binding, not for the reference: tracking the
// same reference again starts with a fresh attempt budget.
func TestExhaustionClearsOnRetrack(t *testing.T) {
	backend := newRefreshBackend(t)
	backend.setFail(true)

	engine := newIntegrationEngine(t, backend.srv.URL, nil)

	reference := mintSignedURL("gallery/pic.png", 3*time.Hour)
	b, err := engine.Track(context.Background(), reference, nil)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		time.Sleep(5 * time.Millisecond) // clear the debounce window
		_, lastErr = b.ReportLoadFailure(context.Background())
	}
	if !errors.Is(lastErr, urlkeeper.ErrExhausted) {
		t.Fatalf("expected ErrExhausted after ceiling, got %v", lastErr)
	}
	if snap := b.Snapshot(); !snap.Exhausted {
		t.Fatalf("expected exhausted snapshot, got %+v", snap)
	}
	b.Dispose()

	// A fresh Track of the same reference is a new session with a new budget.
	b2, err := engine.Track(context.Background(), reference, nil)
	if err != nil {
		t.Fatalf("re-Track failed: %v", err)
	}
	defer b2.Dispose()

	snap := b2.Snapshot()
	if snap.Exhausted {
		t.Fatal("expected fresh binding not exhausted")
	}
	if snap.State != urlkeeper.StateValid {
		t.Fatalf("expected seeded StateValid, got %s", snap.State)
	}
	if snap.Attempts != 0 {
		t.Fatalf("expected zero attempts on fresh binding, got %d", snap.Attempts)
	}
}
