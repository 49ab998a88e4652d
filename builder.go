package urlkeeper

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/civicgrid/urlkeeper/internal/fetch"
	"github.com/civicgrid/urlkeeper/urlcache"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by urlkeeper APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	httpClient   *http.Client
	tokenSource  TokenSource
	entityWriter EntityWriter
	eventSink    EventSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithEndpoint sets the refresh service base URL, keeping the rest of the
// configuration at its current values.
func (b *Builder) WithEndpoint(baseURL string) *Builder {
	b.config.Endpoint.BaseURL = baseURL
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the transport used for refresh round trips. When
// unset, a client bounded by Endpoint.RequestTimeout is used.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithTokenSource describes the withtokensource operation and its observable behavior.
//
// WithTokenSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTokenSource(src TokenSource) *Builder {
	b.tokenSource = src
	return b
}

// WithEntityWriter describes the withentitywriter operation and its observable behavior.
//
// WithEntityWriter does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEntityWriter(w EntityWriter) *Builder {
	b.entityWriter = w
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	b.config.Events.Enabled = true
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled && b.redis == nil {
		return nil, errors.New("Cache requires redis client")
	}

	tokenSource := b.tokenSource
	client, err := fetch.New(fetch.Config{
		BaseURL:    cfg.Endpoint.BaseURL,
		HTTPClient: b.httpClient,
		Timeout:    cfg.Endpoint.RequestTimeout,
		Token: func(ctx context.Context) (string, error) {
			if tokenSource == nil {
				return "", nil
			}
			return tokenSource.Token(ctx)
		},
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		client:       client,
		entityWriter: b.entityWriter,
		metrics:      NewMetrics(cfg.Metrics),
		events:       newEventDispatcher(cfg.Events, b.eventSink),
		now:          time.Now,
		after:        time.AfterFunc,
		bindings:     make(map[*Binding]struct{}),
	}

	if cfg.Cache.Enabled {
		engine.cache = urlcache.NewStore(b.redis, cfg.Cache.RedisPrefix)
	}

	b.built = true

	return engine, nil
}
