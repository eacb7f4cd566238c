package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisClient is the subset of the redis client used for login counters.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginThrottle counts failed logins per identifier inside a fixed window.
// Redis errors fail open.
type LoginThrottle struct {
	redis       RedisClient
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle.
func NewLoginThrottle(rdb RedisClient, maxFailures int, window time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{redis: rdb, maxFailures: int64(maxFailures), window: window}
}

func failureKey(identifier string) string {
	return fmt.Sprintf("login_failures:%s", strings.ToLower(strings.TrimSpace(identifier)))
}

// Locked reports whether identifier has reached the failure limit.
func (t *LoginThrottle) Locked(ctx context.Context, identifier string) bool {
	n, err := t.redis.Get(ctx, failureKey(identifier)).Int64()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Msg("Login throttle unavailable")
		return false
	}
	return n >= t.maxFailures
}

// RecordFailure counts a failed attempt and reports whether this attempt
// reached the limit. The window is set on every failure with NX so a
// counter left without a TTL picks one up on the next attempt.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) bool {
	key := failureKey(identifier)
	n, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Msg("Login throttle unavailable")
		return false
	}
	if err := t.redis.ExpireNX(ctx, key, t.window).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to set login throttle window")
	}
	return n == t.maxFailures
}

// Reset clears the failure count after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) {
	if err := t.redis.Del(ctx, failureKey(identifier)).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to reset login throttle")
	}
}
