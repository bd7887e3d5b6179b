package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/campusauth/internal/rate"
	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/revocation"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureEmpty
	RefreshFailureParse
	RefreshFailureRateLimited
	RefreshFailureLimiter
	RefreshFailureReuse
	RefreshFailureRevocation
	RefreshFailureResolve
	RefreshFailureMint
)

// RefreshResult carries the replacement pair or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	UserID  string
	Pair    jwt.Pair
	Orgs    int
}

// RefreshDeps captures refresh flow dependencies. Limiter and Revocation are
// optional.
type RefreshDeps struct {
	Parser     TokenParser
	Tokens     PairMinter
	Resolver   ScopeResolver
	Limiter    RefreshLimiter
	Revocation TokenConsumer
}

// RunRefresh exchanges a refresh token for a new pair. The scope map embedded
// in the old token is ignored; scopes are resolved again for its subject.
// With rotation enabled the old token is consumed after the new pair is
// signed; a consume failure discards the new pair.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if refreshToken == "" {
		return RefreshResult{Failure: RefreshFailureEmpty, Err: jwt.ErrTokenInvalid}
	}

	claims, err := deps.Parser.ParseClaims(refreshToken, jwt.KindRefresh)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureParse, Err: err}
	}
	userID := claims.User.ID

	if deps.Limiter != nil {
		if err := deps.Limiter.CheckRefresh(ctx, userID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return RefreshResult{Failure: RefreshFailureRateLimited, Err: err, UserID: userID}
			}
			return RefreshResult{Failure: RefreshFailureLimiter, Err: err, UserID: userID}
		}
	}

	universities, err := deps.Resolver.Resolve(ctx, userID)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureResolve, Err: err, UserID: userID}
	}

	pair, err := mint(userID, universities, deps.Tokens)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureMint, Err: err, UserID: userID}
	}

	// Consume only once the replacement exists; earlier failures leave the
	// old token usable.
	if deps.Revocation != nil {
		tok := revocation.Token{ID: claims.ID, UserID: userID}
		if claims.IssuedAt != nil {
			tok.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			tok.ExpiresAt = claims.ExpiresAt.Time
		}
		if err := deps.Revocation.Consume(ctx, tok); err != nil {
			if errors.Is(err, revocation.ErrReused) || errors.Is(err, revocation.ErrRevoked) {
				return RefreshResult{Failure: RefreshFailureReuse, Err: err, UserID: userID}
			}
			return RefreshResult{Failure: RefreshFailureRevocation, Err: err, UserID: userID}
		}
	}

	return RefreshResult{UserID: userID, Pair: pair, Orgs: len(universities)}
}
