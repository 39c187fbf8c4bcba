package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultLockout     = 15 * time.Minute
)

// LoginThrottle counts consecutive failed logins per account in Redis.
// Key format: login_failures:<email>, expiring after the lockout window.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
// Non-positive limits fall back to the defaults.
func NewLoginThrottle(client *redis.Client, maxFailures int64, lockout time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{client: client, maxFailures: maxFailures, lockout: lockout}
}

// Allow reports whether another login attempt is permitted for this account.
func (t *LoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n < t.maxFailures, nil
}

// RecordFailure bumps the failure counter and refreshes the lockout window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.key(email)
	if err := t.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	return t.client.Expire(ctx, key, t.lockout).Err()
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login_failures:" + email
}
