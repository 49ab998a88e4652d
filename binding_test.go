package urlkeeper

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func trackSignedURL(t *testing.T, engine *Engine, key string, validFor time.Duration) (*Binding, string) {
	t.Helper()

	reference := signedURL(key, validFor)
	b, err := engine.Track(context.Background(), reference, nil)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	t.Cleanup(b.Dispose)

	return b, reference
}

func TestReactiveRefreshUpdatesURL(t *testing.T) {
	const fresh = "https://media.example.com/file/portal-assets/a.png?X-Amz-Signature=fresh"
	srv, hits := newRefreshServer(t, refreshOK(fresh, 7200))
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, _ := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	url, err := b.ReportLoadFailure(context.Background())
	if err != nil {
		t.Fatalf("ReportLoadFailure failed: %v", err)
	}
	if url != fresh {
		t.Fatalf("expected refreshed URL, got %q", url)
	}

	snap := b.Snapshot()
	if snap.CurrentURL != fresh {
		t.Fatalf("expected snapshot to carry refreshed URL, got %q", snap.CurrentURL)
	}
	if snap.State != StateValid {
		t.Fatalf("expected StateValid, got %s", snap.State)
	}
	if snap.Attempts != 0 {
		t.Fatalf("expected attempt counter reset on success, got %d", snap.Attempts)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 server hit, got %d", got)
	}
}

func TestFailuresWithinBudgetAreAbsorbed(t *testing.T) {
	srv, _ := newRefreshServer(t, refreshFail())
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, reference := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	url, err := b.ReportLoadFailure(context.Background())
	if err != nil {
		t.Fatalf("expected absorbed failure, got %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty URL on absorbed failure, got %q", url)
	}

	snap := b.Snapshot()
	if snap.State != StateValid {
		t.Fatalf("expected StateValid with last known-good URL, got %s", snap.State)
	}
	if snap.CurrentURL != reference {
		t.Fatalf("expected last known-good URL kept, got %q", snap.CurrentURL)
	}
	if snap.Attempts != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", snap.Attempts)
	}
}

func TestExhaustionAfterAttemptCeiling(t *testing.T) {
	srv, hits := newRefreshServer(t, refreshFail())
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, _ := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := b.ReportLoadFailure(context.Background()); err != nil {
			t.Fatalf("attempt %d: expected absorbed failure, got %v", i+1, err)
		}
	}

	if _, err := b.ReportLoadFailure(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted on third failure, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 server hits, got %d", got)
	}

	// Once exhausted, further reports are rejected without a round trip.
	if _, err := b.ReportLoadFailure(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted after exhaustion, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected no additional server hits, got %d", got)
	}

	snap := b.Snapshot()
	if !snap.Exhausted || snap.State != StateExhausted {
		t.Fatalf("expected exhausted snapshot, got %+v", snap)
	}
	if snap.TimerArmed {
		t.Fatal("expected proactive timer cancelled on exhaustion")
	}
}

func TestSuccessResetsAttemptBudget(t *testing.T) {
	const fresh = "https://media.example.com/file/portal-assets/a.png?X-Amz-Signature=fresh"

	var calls atomic.Int64
	srv, _ := newRefreshServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 3 {
			refreshOK(fresh, 7200)(w, r)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, _ := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	// Two failures inside the budget, then a success.
	for i := 0; i < 2; i++ {
		if _, err := b.ReportLoadFailure(context.Background()); err != nil {
			t.Fatalf("attempt %d: expected absorbed failure, got %v", i+1, err)
		}
	}
	url, err := b.ReportLoadFailure(context.Background())
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if url != fresh {
		t.Fatalf("expected refreshed URL, got %q", url)
	}
	if got := b.Snapshot().Attempts; got != 0 {
		t.Fatalf("expected attempt counter reset, got %d", got)
	}

	// The success restored the full budget: three more failures before
	// exhaustion, not one.
	for i := 0; i < 2; i++ {
		if _, err := b.ReportLoadFailure(context.Background()); err != nil {
			t.Fatalf("post-reset attempt %d: expected absorbed failure, got %v", i+1, err)
		}
	}
	if _, err := b.ReportLoadFailure(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted after refilled budget drained, got %v", err)
	}
}

func TestDebounceSkipsRapidRetries(t *testing.T) {
	const fresh = "https://media.example.com/file/portal-assets/a.png?X-Amz-Signature=fresh"
	srv, hits := newRefreshServer(t, refreshOK(fresh, 7200))

	cfg := lifecycleTestConfig(srv.URL)
	cfg.Refresh.MinAttemptInterval = time.Hour

	engine := buildLifecycleEngine(t, cfg)
	b, _ := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	if _, err := b.ReportLoadFailure(context.Background()); err != nil {
		t.Fatalf("first report failed: %v", err)
	}

	url, err := b.ReportLoadFailure(context.Background())
	if err != nil {
		t.Fatalf("expected debounced skip, got %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty URL on debounced skip, got %q", url)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected single server hit, got %d", got)
	}
	if got := engine.MetricsSnapshot().Counters[MetricRefreshDebounced]; got != 1 {
		t.Fatalf("expected 1 debounced skip, got %d", got)
	}
}

func TestConcurrentReportsSingleWinner(t *testing.T) {
	const fresh = "https://media.example.com/file/portal-assets/a.png?X-Amz-Signature=fresh"

	release := make(chan struct{})
	srv, hits := newRefreshServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		refreshOK(fresh, 7200)(w, r)
	})
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, _ := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	const reporters = 16
	results := make(chan string, reporters)
	start := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(reporters)
	for i := 0; i < reporters; i++ {
		go func() {
			defer wg.Done()
			<-start
			url, err := b.ReportLoadFailure(context.Background())
			if err != nil {
				t.Errorf("ReportLoadFailure failed: %v", err)
				return
			}
			results <- url
		}()
	}

	close(start)

	// The winner is parked in the server; everyone else must come back as a
	// skip before the round trip is released.
	skips := 0
	for skips < reporters-1 {
		select {
		case url := <-results:
			if url != "" {
				t.Fatalf("unexpected winner before release: %q", url)
			}
			skips++
		case <-time.After(3 * time.Second):
			t.Fatalf("expected %d skips, got %d", reporters-1, skips)
		}
	}

	close(release)
	wg.Wait()

	select {
	case url := <-results:
		if url != fresh {
			t.Fatalf("expected winner to return refreshed URL, got %q", url)
		}
	default:
		t.Fatal("expected exactly one winning result")
	}

	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 server hit, got %d", got)
	}
}

func TestDisposeDiscardsInFlightResult(t *testing.T) {
	const fresh = "https://media.example.com/file/portal-assets/a.png?X-Amz-Signature=fresh"

	release := make(chan struct{})
	srv, hits := newRefreshServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		refreshOK(fresh, 7200)(w, r)
	})
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, reference := trackSignedURL(t, engine, "a.png", 3*time.Hour)

	type outcome struct {
		url string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		url, err := b.ReportLoadFailure(context.Background())
		done <- outcome{url: url, err: err}
	}()

	waitHits(t, hits, 1)
	b.Dispose()
	close(release)

	res := <-done
	if !errors.Is(res.err, ErrBindingDisposed) {
		t.Fatalf("expected ErrBindingDisposed, got %v", res.err)
	}
	if res.url != "" {
		t.Fatalf("expected no URL from discarded result, got %q", res.url)
	}

	snap := b.Snapshot()
	if snap.CurrentURL != reference {
		t.Fatalf("expected state untouched by stale result, got %q", snap.CurrentURL)
	}
	if got := engine.MetricsSnapshot().Counters[MetricStaleResultDiscarded]; got != 1 {
		t.Fatalf("expected 1 discarded stale result, got %d", got)
	}
}

func TestDisposeCancelsTimerAndRejectsReports(t *testing.T) {
	srv, hits := newRefreshServer(t, refreshOK("https://x", 7200))
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	b, _ := trackSignedURL(t, engine, "a.png", 3*time.Hour)
	if !b.Snapshot().TimerArmed {
		t.Fatal("expected timer armed before dispose")
	}

	b.Dispose()
	b.Dispose() // idempotent

	if b.Snapshot().TimerArmed {
		t.Fatal("expected timer cancelled after dispose")
	}
	if _, err := b.ReportLoadFailure(context.Background()); !errors.Is(err, ErrBindingDisposed) {
		t.Fatalf("expected ErrBindingDisposed, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no server hits, got %d", hits.Load())
	}
}

func TestProactiveRefreshFiresImmediatelyInsideWindow(t *testing.T) {
	const fresh = "https://media.example.com/file/portal-assets/a.png?X-Amz-Signature=fresh"
	srv, hits := newRefreshServer(t, refreshOK(fresh, 7200))
	engine := buildLifecycleEngine(t, lifecycleTestConfig(srv.URL))

	// 30 minutes left on a 1 hour lead time: already inside the refresh window.
	b, _ := trackSignedURL(t, engine, "a.png", 30*time.Minute)

	snap := waitSnapshot(t, b, func(s Snapshot) bool { return s.CurrentURL == fresh })
	if snap.State != StateValid {
		t.Fatalf("expected StateValid, got %s", snap.State)
	}
	waitHits(t, hits, 1)

	if got := engine.MetricsSnapshot().Counters[MetricProactiveFired]; got < 1 {
		t.Fatalf("expected proactive fire recorded, got %d", got)
	}
}
