// Package ratelimit throttles public endpoints with fixed-window counters
// kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "funnel:ratelimit:"

// Limiter allows a fixed number of hits per key in each window.
type Limiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	now      func() time.Time
}

// NewLimiter creates a Limiter over client.
func NewLimiter(client *redis.Client, requests int, window time.Duration) *Limiter {
	return &Limiter{client: client, requests: requests, window: window, now: time.Now}
}

// NewClient opens a Redis client from a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Ping checks the connection.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Allow records one hit for key.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, time.Duration, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	reset := windowStart.Add(l.window).Sub(now)
	bucket := keyPrefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, bucket)
		pipe.Expire(ctx, bucket, l.window)
		return nil
	})
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	remaining := l.requests - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.requests, remaining, reset, nil
}

// Limit returns the allowed hits per window.
func (l *Limiter) Limit() int { return l.requests }

// Close closes the Redis client.
func (l *Limiter) Close() error {
	return l.client.Close()
}
