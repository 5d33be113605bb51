package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// LoginThrottle counts failed logins per username and client address in
// Redis. Key format: login:fail:<lowercased username>:<client ip>
//
// Keying on the address keeps one client from locking everybody else out of
// an account. The counter expires lockout after the most recent failure.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginThrottle creates a LoginThrottle. Non-positive values fall back to
// 5 attempts and a 15 minute lockout.
func NewLoginThrottle(client *redis.Client, maxAttempts int, lockout time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

// Blocked reports whether username has reached the failure limit from clientIP.
func (t *LoginThrottle) Blocked(ctx context.Context, username, clientIP string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(username, clientIP)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// Fail records one failed attempt and refreshes the lockout window.
func (t *LoginThrottle) Fail(ctx context.Context, username, clientIP string) error {
	key := t.key(username, clientIP)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the failure count after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username, clientIP string) error {
	return t.client.Del(ctx, t.key(username, clientIP)).Err()
}

func (t *LoginThrottle) key(username, clientIP string) string {
	if clientIP == "" {
		clientIP = "unknown"
	}
	return "login:fail:" + strings.ToLower(strings.TrimSpace(username)) + ":" + clientIP
}
