package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/campusauth/internal/rate"
	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/password"
	"github.com/MrEthical07/campusauth/store"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureLimiter
	LoginFailureNotFound
	LoginFailureLookup
	LoginFailurePasswordMismatch
	LoginFailureVerify
	LoginFailureResolve
	LoginFailureMint
)

// LoginResult carries the authenticated user's pair or failure metadata.
type LoginResult struct {
	Failure LoginFailureKind
	Err     error
	UserID  string
	Pair    jwt.Pair
	// Orgs is the number of organizations in the minted scope map.
	Orgs int
}

// AccountFinder looks up an account by normalized email.
type AccountFinder interface {
	FindAccountByEmail(ctx context.Context, email string) (store.Account, error)
}

// LoginDeps captures login flow dependencies. Limiter is optional.
type LoginDeps struct {
	Accounts AccountFinder
	Hasher   password.Hasher
	Resolver ScopeResolver
	Tokens   PairMinter
	Limiter  LoginLimiter
	Warn     func(string, ...any)
}

// RunLogin verifies email and password, resolves live scopes and mints a pair.
func RunLogin(ctx context.Context, email, plain, ip string, deps LoginDeps) LoginResult {
	if deps.Limiter != nil {
		if err := deps.Limiter.CheckLogin(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err}
			}
			return LoginResult{Failure: LoginFailureLimiter, Err: err}
		}
	}

	account, err := deps.Accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			recordLoginFailure(ctx, email, ip, deps)
			return LoginResult{Failure: LoginFailureNotFound, Err: err}
		}
		return LoginResult{Failure: LoginFailureLookup, Err: err}
	}

	ok, err := deps.Hasher.Verify(plain, account.PasswordHash)
	if err != nil && !errors.Is(err, password.ErrPasswordTooLong) {
		return LoginResult{Failure: LoginFailureVerify, Err: err, UserID: account.ID}
	}
	if !ok {
		recordLoginFailure(ctx, email, ip, deps)
		return LoginResult{Failure: LoginFailurePasswordMismatch, Err: err, UserID: account.ID}
	}

	if deps.Limiter != nil {
		if err := deps.Limiter.ResetLogin(ctx, email, ip); err != nil && deps.Warn != nil {
			deps.Warn("login throttle reset failed", "error", err)
		}
	}

	universities, err := deps.Resolver.Resolve(ctx, account.ID)
	if err != nil {
		return LoginResult{Failure: LoginFailureResolve, Err: err, UserID: account.ID}
	}

	pair, err := mint(account.ID, universities, deps.Tokens)
	if err != nil {
		return LoginResult{Failure: LoginFailureMint, Err: err, UserID: account.ID}
	}

	return LoginResult{UserID: account.ID, Pair: pair, Orgs: len(universities)}
}

func recordLoginFailure(ctx context.Context, email, ip string, deps LoginDeps) {
	if deps.Limiter == nil {
		return
	}
	if err := deps.Limiter.IncrementLogin(ctx, email, ip); err != nil && deps.Warn != nil {
		deps.Warn("login throttle increment failed", "error", err)
	}
}
