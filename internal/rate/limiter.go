package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Prefix                  string
	EnableLoginThrottle     bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

// Limiter enforces failed-login budgets per email and per email+IP, and a
// refresh budget per user, using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "campusauth"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin fails with ErrRateLimited once the email (or the email from this
// IP) has used its failed-attempt budget.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if !l.config.EnableLoginThrottle {
		return nil
	}
	for _, key := range l.loginKeys(email, ip) {
		if err := l.checkCounter(ctx, key, l.config.MaxLoginAttempts); err != nil {
			return err
		}
	}
	return nil
}

// IncrementLogin records a failed login attempt.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	if !l.config.EnableLoginThrottle {
		return nil
	}
	for _, key := range l.loginKeys(email, ip) {
		count, err := l.incrementWithTTL(ctx, key, l.config.LoginCooldownDuration)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxLoginAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// ResetLogin clears the failed-login counters after a successful login.
func (l *Limiter) ResetLogin(ctx context.Context, email, ip string) error {
	if !l.config.EnableLoginThrottle {
		return nil
	}
	if err := l.redis.Del(ctx, l.loginKeys(email, ip)...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// CheckRefresh counts one refresh for userID and fails with ErrRateLimited
// when the window budget is exhausted.
func (l *Limiter) CheckRefresh(ctx context.Context, userID string) error {
	if !l.config.EnableRefreshThrottle {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, l.refreshKey(userID), l.config.RefreshCooldownDuration)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRefreshAttempts) {
		return ErrRateLimited
	}
	return nil
}

// LoginAttempts returns the failed-attempt counter for email. Missing keys
// read as zero.
func (l *Limiter) LoginAttempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.loginEmailKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Ping reports Redis round-trip latency.
func (l *Limiter) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := l.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (l *Limiter) loginKeys(email, ip string) []string {
	keys := []string{l.loginEmailKey(email)}
	if ip != "" {
		keys = append(keys, l.loginIPKey(email, ip))
	}
	return keys
}

func (l *Limiter) loginEmailKey(email string) string {
	return l.config.Prefix + ":rl:login:" + strings.ToLower(email)
}

func (l *Limiter) loginIPKey(email, ip string) string {
	return l.config.Prefix + ":rl:login-ip:" + ip + ":" + strings.ToLower(email)
}

func (l *Limiter) refreshKey(userID string) string {
	return l.config.Prefix + ":rl:refresh:" + userID
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the TTL is set on the first hit only.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
