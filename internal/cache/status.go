// Package cache keeps short-lived copies of courier job status.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-delivery/internal/domain"
)

const (
	keyPrefix  = "courier:status:"
	defaultTTL = 10 * time.Second
)

// StatusCache stores JobStatus values in Redis.
type StatusCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Username string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisClient builds a client from opts.
func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewStatusCache wraps client. A non-positive ttl uses the default.
func NewStatusCache(client redis.Cmdable, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StatusCache{client: client, ttl: ttl}
}

// Key returns the Redis key of a job.
func Key(jobID string) string { return keyPrefix + jobID }

// Get returns the cached status and whether it was present.
func (c *StatusCache) Get(ctx context.Context, jobID string) (domain.JobStatus, bool, error) {
	raw, err := c.client.Get(ctx, Key(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.JobStatus{}, false, nil
	}
	if err != nil {
		return domain.JobStatus{}, false, fmt.Errorf("cache get %s: %w", jobID, err)
	}

	var st domain.JobStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		// битая запись: считаем промахом
		return domain.JobStatus{}, false, nil
	}
	return st, true, nil
}

// Set caches st under its job id.
func (c *StatusCache) Set(ctx context.Context, st domain.JobStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", st.JobID, err)
	}
	if err := c.client.Set(ctx, Key(st.JobID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", st.JobID, err)
	}
	return nil
}

// Delete drops the cached status of a job.
func (c *StatusCache) Delete(ctx context.Context, jobID string) error {
	if err := c.client.Del(ctx, Key(jobID)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", jobID, err)
	}
	return nil
}

// Ping checks the connection.
func (c *StatusCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Nop is a cache that never holds anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) (domain.JobStatus, bool, error) {
	return domain.JobStatus{}, false, nil
}

// Set does nothing.
func (Nop) Set(context.Context, domain.JobStatus) error { return nil }

// Delete does nothing.
func (Nop) Delete(context.Context, string) error { return nil }
