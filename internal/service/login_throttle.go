package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"bolt-api/pkg/redis"

	"go.uber.org/zap"
)

// LoginThrottle counts failed logins per email in Redis. Redis errors never
// block a login; they are logged and the attempt is let through.
type LoginThrottle struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle creates a throttle. A nil client disables throttling.
func NewLoginThrottle(redisClient *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	return &LoginThrottle{
		redis:       redisClient,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.redis != nil && t.maxAttempts > 0
}

// Allow reports whether another login attempt is permitted for email
func (t *LoginThrottle) Allow(ctx context.Context, email string) bool {
	if !t.enabled() {
		return true
	}

	val, err := t.redis.Get(ctx, t.key(email))
	if errors.Is(err, redis.Nil) {
		return true
	}
	if err != nil {
		t.logger.Warn("Login throttle unavailable, allowing attempt",
			zap.String("email_hash", hashEmailForLog(email)),
			zap.Error(err))
		return true
	}

	attempts, err := strconv.Atoi(val)
	if err != nil {
		t.logger.Warn("Login throttle counter corrupted",
			zap.String("email_hash", hashEmailForLog(email)),
			zap.Error(err))
		return true
	}
	return attempts < t.maxAttempts
}

// RetryAfter returns how long email stays blocked, or zero when unknown
func (t *LoginThrottle) RetryAfter(ctx context.Context, email string) time.Duration {
	if !t.enabled() {
		return 0
	}

	ttl, err := t.redis.TTL(ctx, t.key(email))
	if err != nil {
		t.logger.Warn("Failed to read login throttle window",
			zap.String("email_hash", hashEmailForLog(email)),
			zap.Error(err))
		return 0
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}

// RecordFailure increments the failure counter for email
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if !t.enabled() {
		return
	}

	attempts, err := t.redis.IncrWithTTL(ctx, t.key(email), t.window)
	if err != nil {
		t.logger.Warn("Failed to record login failure",
			zap.String("email_hash", hashEmailForLog(email)),
			zap.Error(err))
		return
	}
	if int(attempts) == t.maxAttempts {
		t.logger.Info("Login attempts exhausted",
			zap.String("email_hash", hashEmailForLog(email)),
			zap.Duration("window", t.window))
	}
}

// Reset clears the failure counter after a successful login
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if !t.enabled() {
		return
	}

	if err := t.redis.Delete(ctx, t.key(email)); err != nil {
		t.logger.Warn("Failed to reset login throttle",
			zap.String("email_hash", hashEmailForLog(email)),
			zap.Error(err))
	}
}

func (t *LoginThrottle) key(email string) string {
	return t.redis.KeyBuilder.KeyLoginAttempts(emailDigest(email))
}

func emailDigest(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:16])
}

// hashEmailForLog keeps emails out of logs
func hashEmailForLog(email string) string {
	return emailDigest(email)[:8]
}
