package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/campusauth/internal/ids"
)

var (
	// ErrReused is returned when a token id is consumed a second time.
	ErrReused = errors.New("refresh token already used")
	// ErrRevoked is returned for a token issued before the user's cutoff.
	ErrRevoked = errors.New("refresh token revoked")
	// ErrRedisUnavailable wraps transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	consumeStatusReused  int64 = 0
	consumeStatusOK      int64 = 1
	consumeStatusRevoked int64 = 2
)

// KEYS[1] used-marker for the token id, KEYS[2] per-user cutoff.
// ARGV[1] token issue time (unix ms), ARGV[2] marker ttl (ms), ARGV[3] now
// (unix ms), ARGV[4] cutoff ttl (ms). A token issued in the cutoff
// millisecond is revoked.
const consumeScript = `
local cutoff = tonumber(redis.call("GET", KEYS[2]) or "0")
if tonumber(ARGV[1]) <= cutoff then
  return 2
end
local ok = redis.call("SET", KEYS[1], "1", "NX", "PX", ARGV[2])
if ok then
  return 1
end
redis.call("SET", KEYS[2], ARGV[3], "PX", ARGV[4])
return 0
`

var consumeLua = redis.NewScript(consumeScript)

// Token identifies one refresh token. When ID is a ULID its embedded
// millisecond timestamp is used as the issue time; IssuedAt is the fallback.
type Token struct {
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store tracks consumed refresh tokens.
type Store struct {
	redis      redis.UniversalClient
	prefix     string
	refreshTTL time.Duration
	now        func() time.Time
}

// NewStore returns a Store. refreshTTL bounds how long a user cutoff must be
// kept: no token older than that can still be valid.
func NewStore(client redis.UniversalClient, prefix string, refreshTTL time.Duration) *Store {
	if prefix == "" {
		prefix = "campusauth"
	}
	return &Store{redis: client, prefix: prefix, refreshTTL: refreshTTL, now: time.Now}
}

func (t Token) issuedAt() time.Time {
	if at, ok := ids.Time(t.ID); ok {
		return at
	}
	return t.IssuedAt
}

func (s *Store) usedKey(tokenID string) string {
	return s.prefix + ":rt:used:" + tokenID
}

func (s *Store) cutoffKey(userID string) string {
	return s.prefix + ":rt:cutoff:" + userID
}

// Consume marks tok as used. It returns ErrReused if tok was consumed before,
// in which case all of the user's outstanding refresh tokens are revoked, and
// ErrRevoked if tok predates such a revocation.
func (s *Store) Consume(ctx context.Context, tok Token) error {
	if tok.ID == "" || tok.UserID == "" {
		return errors.New("revocation: token id and user id required")
	}
	now := s.now()
	markerTTL := tok.ExpiresAt.Sub(now)
	if markerTTL < time.Second {
		markerTTL = time.Second
	}
	cutoffTTL := s.refreshTTL
	if cutoffTTL < time.Second {
		cutoffTTL = time.Second
	}

	status, err := consumeLua.Run(ctx, s.redis,
		[]string{s.usedKey(tok.ID), s.cutoffKey(tok.UserID)},
		tok.issuedAt().UnixMilli(),
		markerTTL.Milliseconds(),
		now.UnixMilli(),
		cutoffTTL.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch status {
	case consumeStatusOK:
		return nil
	case consumeStatusReused:
		return ErrReused
	case consumeStatusRevoked:
		return ErrRevoked
	default:
		return fmt.Errorf("revocation: unexpected script status %d", status)
	}
}

// RevokeUser invalidates every refresh token issued to userID before now.
func (s *Store) RevokeUser(ctx context.Context, userID string) error {
	err := s.redis.Set(ctx, s.cutoffKey(userID), strconv.FormatInt(s.now().UnixMilli(), 10), s.refreshTTL).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping reports Redis round-trip latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
