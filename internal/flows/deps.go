package flows

import (
	"context"

	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/revocation"
	"github.com/MrEthical07/campusauth/scope"
)

// Deps groups the per-flow dependency sets. The Engine builds it once.
type Deps struct {
	Register RegisterDeps
	Login    LoginDeps
	Refresh  RefreshDeps
	Validate ValidateDeps
}

// ScopeResolver builds the live scope map for a user.
type ScopeResolver interface {
	Resolve(ctx context.Context, userID string) (scope.Map, error)
}

// PairMinter signs an access/refresh pair.
type PairMinter interface {
	GeneratePair(payload jwt.Payload) (jwt.Pair, error)
}

// TokenParser verifies a token of a given kind.
type TokenParser interface {
	ParseClaims(token string, kind jwt.Kind) (*jwt.Claims, error)
}

// LoginLimiter throttles password attempts. internal/rate.Limiter satisfies it.
type LoginLimiter interface {
	CheckLogin(ctx context.Context, email, ip string) error
	IncrementLogin(ctx context.Context, email, ip string) error
	ResetLogin(ctx context.Context, email, ip string) error
}

// RefreshLimiter throttles refresh calls per user.
type RefreshLimiter interface {
	CheckRefresh(ctx context.Context, userID string) error
}

// TokenConsumer makes refresh tokens single-use. revocation.Store satisfies it.
type TokenConsumer interface {
	Consume(ctx context.Context, tok revocation.Token) error
}

func mint(userID string, universities scope.Map, minter PairMinter) (jwt.Pair, error) {
	return minter.GeneratePair(jwt.NewPayload(userID, universities))
}
