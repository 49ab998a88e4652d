package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	refreshPath = "/files/refresh-url"

	// maxEnvelopeBytes bounds the response body read; the envelope is a few
	// hundred bytes in practice.
	maxEnvelopeBytes = 1 << 20
)

var (
	// ErrEndpointUnavailable wraps transport-level failures reaching the refresh endpoint.
	ErrEndpointUnavailable = errors.New("refresh endpoint unavailable")
	// ErrEndpointStatus wraps non-2xx responses from the refresh endpoint.
	ErrEndpointStatus = errors.New("refresh endpoint status")
	// ErrEnvelope wraps malformed or unsuccessful response envelopes.
	ErrEnvelope = errors.New("refresh envelope invalid")
)

// Config holds refresh client construction parameters.
type Config struct {
	// BaseURL is the refresh service root, e.g. "https://api.example.com/v1".
	BaseURL string
	// HTTPClient overrides the transport; nil means a client with Timeout.
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
	// Token supplies the bearer token; nil or an empty/failed result sends the
	// request unauthenticated.
	Token func(ctx context.Context) (string, error)
}

// Result carries the refreshed URL and its validity window.
type Result struct {
	FileKey      string
	PresignedURL string
	ExpiresIn    time.Duration
}

// Client performs refresh round trips against one endpoint.
type Client struct {
	base  string
	http  *http.Client
	token func(ctx context.Context) (string, error)
}

// New validates cfg.BaseURL and returns a refresh [Client].
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("refresh endpoint base URL required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("refresh endpoint base URL invalid: %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:  base,
		http:  httpClient,
		token: cfg.Token,
	}, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		FileKey      string `json:"fileKey"`
		PresignedURL string `json:"presignedUrl"`
		ExpiresIn    int64  `json:"expiresIn"`
	} `json:"data"`
}

// Refresh performs one round trip for fileKey, attaching the entity
// association as query parameters when present so the backend can persist the
// refreshed URL against the owning record.
func (c *Client) Refresh(ctx context.Context, fileKey, entityType, entityID string) (Result, error) {
	q := url.Values{}
	q.Set("fileKey", fileKey)
	if entityType != "" && entityID != "" {
		q.Set("entityType", entityType)
		q.Set("entityId", entityID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+refreshPath+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	if c.token != nil {
		// A token-source failure downgrades to an unauthenticated request
		// rather than burning a retry attempt on a guaranteed rejection.
		if tok, tokErr := c.token(ctx); tokErr == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: %s", ErrEndpointStatus, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxEnvelopeBytes)).Decode(&env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}

	if !env.Success || env.Data == nil || env.Data.PresignedURL == "" {
		msg := env.Message
		if msg == "" {
			msg = "refresh rejected by backend"
		}
		return Result{}, fmt.Errorf("%w: %s", ErrEnvelope, msg)
	}

	expiresIn := time.Duration(env.Data.ExpiresIn) * time.Second
	if expiresIn < 0 {
		expiresIn = 0
	}

	key := env.Data.FileKey
	if key == "" {
		key = fileKey
	}

	return Result{
		FileKey:      key,
		PresignedURL: env.Data.PresignedURL,
		ExpiresIn:    expiresIn,
	}, nil
}
