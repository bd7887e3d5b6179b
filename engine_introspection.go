package campusauth

import (
	"context"
	"log/slog"
	"time"
)

// HealthStatus is an on-demand Redis health result. RedisConfigured is false
// when neither rotation nor throttling is enabled; the other fields are then
// zero.
type HealthStatus struct {
	RedisConfigured bool
	RedisAvailable  bool
	RedisLatency    time.Duration
}

type redisPinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Health pings the Redis instance backing rotation and throttling.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	var p redisPinger
	switch {
	case e == nil:
		return HealthStatus{}
	case e.revocations != nil:
		p = e.revocations
	case e.rateLimiter != nil:
		p = e.rateLimiter
	default:
		return HealthStatus{}
	}

	latency, err := p.Ping(ctx)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "redis health check failed", slog.Any("error", err))
	}
	return HealthStatus{
		RedisConfigured: true,
		RedisAvailable:  err == nil,
		RedisLatency:    latency,
	}
}

// LoginAttempts returns the failed login attempts currently counted against
// email. It fails with ErrEngineNotReady when login throttling is off.
func (e *Engine) LoginAttempts(ctx context.Context, email string) (int, error) {
	if e == nil || e.rateLimiter == nil || !e.config.Security.EnableLoginThrottle {
		return 0, ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if email == "" {
		return 0, nil
	}

	n, err := e.rateLimiter.LoginAttempts(ctx, email)
	if err != nil {
		return 0, e.infraError(ctx, "login attempts", ErrStoreUnavailable, err)
	}
	return n, nil
}
