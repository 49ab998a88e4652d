package urlkeeper

import (
	"errors"
	"net/url"
	"time"
)

// Config defines a public type used by urlkeeper APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Endpoint EndpointConfig
	Refresh  RefreshConfig
	Cache    CacheConfig
	Events   EventConfig
	Metrics  MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig defines a public type used by urlkeeper APIs.
//
// EndpointConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EndpointConfig struct {
	// BaseURL is the refresh service root; the engine calls
	// <BaseURL>/files/refresh-url.
	BaseURL string
	// RequestTimeout bounds one refresh round trip when no custom HTTP client
	// is supplied.
	RequestTimeout time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by urlkeeper APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// LeadTime is how long before expiry the proactive refresh fires.
	LeadTime time.Duration
	// MaxAttempts is the ceiling of consecutive failed attempts before a
	// binding turns exhausted.
	MaxAttempts int
	// MinAttemptInterval is the debounce spacing between attempts.
	MinAttemptInterval time.Duration
	// FallbackValidityWindow is assumed when a URL's expiry cannot be parsed.
	// It should match the backend's default signing duration.
	FallbackValidityWindow time.Duration
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig defines a public type used by urlkeeper APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	// Enabled turns on the Redis warm-start cache; requires a Redis client on
	// the Builder.
	Enabled bool
	// RedisPrefix namespaces cache keys.
	RedisPrefix string
}

/*
====================================
EVENT CONFIG
====================================
*/

// EventConfig defines a public type used by urlkeeper APIs.
//
// EventConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of blocking the
	// refresh path; drops are counted.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by urlkeeper APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration a [Builder] starts from. Callers
// mutate the copy and pass it back through [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Endpoint: EndpointConfig{
			RequestTimeout: 10 * time.Second,
		},
		Refresh: RefreshConfig{
			LeadTime:               time.Hour,
			MaxAttempts:            3,
			MinAttemptInterval:     2 * time.Second,
			FallbackValidityWindow: 7 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled:     false,
			RedisPrefix: "uk",
		},
		Events: EventConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone still goes through one
	// place so future reference fields keep the immutability contract.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Endpoint
	if c.Endpoint.BaseURL == "" {
		return errors.New("Endpoint BaseURL is required")
	}
	if u, err := url.Parse(c.Endpoint.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Endpoint BaseURL must be an absolute URL")
	}
	if c.Endpoint.RequestTimeout <= 0 {
		return errors.New("Endpoint RequestTimeout must be > 0")
	}

	// Refresh
	if c.Refresh.LeadTime <= 0 {
		return errors.New("Refresh LeadTime must be > 0")
	}
	if c.Refresh.MaxAttempts <= 0 {
		return errors.New("Refresh MaxAttempts must be > 0")
	}
	if c.Refresh.MinAttemptInterval <= 0 {
		return errors.New("Refresh MinAttemptInterval must be > 0")
	}
	if c.Refresh.FallbackValidityWindow <= 0 {
		return errors.New("Refresh FallbackValidityWindow must be > 0")
	}

	// Cache
	if c.Cache.Enabled && c.Cache.RedisPrefix == "" {
		return errors.New("Cache RedisPrefix is required when cache is enabled")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when events are enabled")
	}

	return nil
}
