//go:build integration
// +build integration

package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	urlkeeper "github.com/civicgrid/urlkeeper"
	"github.com/redis/go-redis/v9"
)

// refreshBackend is a stand-in signing service: it mints fresh signed URLs
// for any requested key and can be flipped into an outage.
type refreshBackend struct {
	srv  *httptest.Server
	hits atomic.Int64

	mu   sync.Mutex
	fail bool
}

func newRefreshBackend(t *testing.T) *refreshBackend {
	t.Helper()

	b := &refreshBackend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)

		b.mu.Lock()
		failing := b.fail
		b.mu.Unlock()
		if failing {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		fileKey := r.URL.Query().Get("fileKey")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success":true,"data":{"fileKey":%q,"presignedUrl":%q,"expiresIn":7200}}`,
			fileKey, mintSignedURL(fileKey, 2*time.Hour))
	}))
	t.Cleanup(b.srv.Close)

	return b
}

func (b *refreshBackend) setFail(fail bool) {
	b.mu.Lock()
	b.fail = fail
	b.mu.Unlock()
}

func mintSignedURL(key string, validFor time.Duration) string {
	return fmt.Sprintf(
		"https://media.example.com/file/portal-assets/%s?X-Amz-Date=%s&X-Amz-Expires=%d&X-Amz-Signature=it",
		key,
		time.Now().UTC().Format("20060102T150405Z"),
		int64(validFor/time.Second),
	)
}

func newIntegrationRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func newIntegrationEngine(t *testing.T, baseURL string, rdb *redis.Client) *urlkeeper.Engine {
	t.Helper()

	cfg := urlkeeper.DefaultConfig()
	cfg.Endpoint.BaseURL = baseURL
	cfg.Cache.Enabled = rdb != nil
	cfg.Refresh.MinAttemptInterval = time.Millisecond

	builder := urlkeeper.New().WithConfig(cfg)
	if rdb != nil {
		builder = builder.WithRedis(rdb)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func waitValid(t *testing.T, b *urlkeeper.Binding) urlkeeper.Snapshot {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		snap := b.Snapshot()
		if snap.State == urlkeeper.StateValid {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatalf("binding never became valid, last: %+v", b.Snapshot())
	return urlkeeper.Snapshot{}
}
