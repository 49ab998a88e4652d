package urlcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotCached is returned when no valid entry exists for the key.
	ErrNotCached = errors.New("signed url not cached")
	// ErrRedisUnavailable is an exported constant or variable used by the URL lifecycle engine.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Entry is one cached signed URL with its absolute expiry.
type Entry struct {
	URL       string
	ExpiresAt time.Time
}

// Store caches signed URLs in Redis, keyed by tenant and storage key.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] with the given key prefix ("uk" when empty).
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "uk"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(tenantID, fileKey string) string {
	return s.prefix + ":u:" + tenantID + ":" + fileKey
}

// Put stores url for (tenantID, fileKey) with a TTL running to expiresAt.
// Entries already at or past expiry are not written.
func (s *Store) Put(ctx context.Context, tenantID, fileKey, url string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	value := strconv.FormatInt(expiresAt.Unix(), 10) + "|" + url
	if err := s.redis.Set(ctx, s.key(tenantID, fileKey), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the cached entry for (tenantID, fileKey). Missing and corrupt
// entries both return [ErrNotCached]; corrupt entries are deleted on read.
func (s *Store) Get(ctx context.Context, tenantID, fileKey string) (Entry, error) {
	raw, err := s.redis.Get(ctx, s.key(tenantID, fileKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotCached
		}
		return Entry{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sep := strings.IndexByte(raw, '|')
	if sep <= 0 || sep == len(raw)-1 {
		_ = s.redis.Del(ctx, s.key(tenantID, fileKey)).Err()
		return Entry{}, ErrNotCached
	}

	unix, convErr := strconv.ParseInt(raw[:sep], 10, 64)
	if convErr != nil {
		_ = s.redis.Del(ctx, s.key(tenantID, fileKey)).Err()
		return Entry{}, ErrNotCached
	}

	return Entry{
		URL:       raw[sep+1:],
		ExpiresAt: time.Unix(unix, 0),
	}, nil
}

// Delete removes the entry for (tenantID, fileKey). Deleting a missing entry
// is not an error.
func (s *Store) Delete(ctx context.Context, tenantID, fileKey string) error {
	if err := s.redis.Del(ctx, s.key(tenantID, fileKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
