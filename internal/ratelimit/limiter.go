// Package ratelimit provides a Redis-backed fixed-window rate limiter.
// It guards the write endpoints only; the redirect path is never limited.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MetadataKey marks a huma operation as rate limited.
const MetadataKey = "ratelimit"

// Limiter reports whether the request identified by key fits the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// FixedWindow counts requests per key in fixed windows backed by Redis.
type FixedWindow struct {
	client *redis.Client
	window time.Duration
	max    int64
	prefix string
}

// NewFixedWindow creates a limiter allowing max requests per window.
func NewFixedWindow(client *redis.Client, window time.Duration, max int64) *FixedWindow {
	return &FixedWindow{
		client: client,
		window: window,
		max:    max,
		prefix: "ratelimit:",
	}
}

// Allow reports whether the request identified by key fits in the current
// window. The counter key embeds the window start so windows roll over
// without cleanup.
func (l *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	windowStart := time.Now().Truncate(l.window).Unix()
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, windowStart)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit incr %s: %w", key, err)
	}

	return incr.Val() <= l.max, nil
}

// Compile-time check.
var _ Limiter = (*FixedWindow)(nil)
