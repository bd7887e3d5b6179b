package campusauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/campusauth/internal/audit"
	"github.com/MrEthical07/campusauth/internal/flows"
	"github.com/MrEthical07/campusauth/internal/rate"
	"github.com/MrEthical07/campusauth/jwt"
	"github.com/MrEthical07/campusauth/revocation"
	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
)

// Engine runs registration, login, refresh and logout. It is safe for
// concurrent use; each call is independent.
type Engine struct {
	config      Config
	jwtManager  *jwt.Manager
	resolver    *scope.Resolver
	accounts    store.AccountStore
	avatars     store.AvatarStore
	hasher      PasswordHasher
	rateLimiter *rate.Limiter
	revocations *revocation.Store
	audit       *audit.Dispatcher
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time
	flows       flows.Deps
}

// Close flushes pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events lost to a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:      map[MetricID]uint64{},
			Histograms:    map[MetricID][]uint64{},
			HistogramSums: map[MetricID]time.Duration{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observe(id MetricID, start time.Time) {
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		e.metrics.Observe(id, time.Since(start))
	}
}

// ClearRefreshCookie returns a directive that deletes the refresh cookie.
func (e *Engine) ClearRefreshCookie() CookieDirective {
	if e == nil || e.jwtManager == nil {
		return CookieDirective{}
	}
	return e.jwtManager.ClearRefreshCookie()
}

// RefreshCookieName is the cookie the transport reads the refresh token from.
func (e *Engine) RefreshCookieName() string {
	if e == nil || e.jwtManager == nil {
		return jwt.DefaultRefreshCookieName
	}
	return e.jwtManager.CookieName()
}

func (e *Engine) ready() bool {
	return e != nil && e.jwtManager != nil && e.accounts != nil && e.resolver != nil
}

func (e *Engine) result(pair jwt.Pair) AuthResult {
	return AuthResult{
		AccessToken:   pair.AccessToken,
		refreshCookie: e.jwtManager.RefreshCookie(pair.RefreshToken, pair.RefreshExpiresAt),
	}
}

// infraError logs cause and returns the opaque sentinel in its place.
func (e *Engine) infraError(ctx context.Context, op string, sentinel, cause error, attrs ...slog.Attr) error {
	e.metricInc(MetricInfraFailure)
	attrs = append(attrs, slog.String("op", op), slog.Any("error", cause))
	e.logger.LogAttrs(ctx, slog.LevelError, "operation failed", attrs...)
	return sentinel
}

/*
====================================
REGISTER
====================================
*/

// Register creates an account and signs the user in with an empty scope map.
// avatar may be nil.
func (e *Engine) Register(ctx context.Context, in RegisterInput, avatar *Avatar) (AuthResult, error) {
	if !e.ready() {
		return AuthResult{}, ErrEngineNotReady
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, fieldMetadata(err))
		return AuthResult{}, err
	}

	res := flows.RunRegister(ctx, flows.RegisterRequest{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Password:      in.Password,
		FatherInitial: in.FatherInitial,
		Avatar:        avatar,
	}, e.flows.Register)

	if res.AvatarErr != nil {
		e.metricInc(MetricAvatarFailure)
		e.logger.LogAttrs(ctx, slog.LevelWarn, "avatar not stored",
			slog.String("user_id", res.UserID), slog.Any("error", res.AvatarErr))
		e.emitAudit(ctx, auditEventAvatarFailure, false, res.UserID, ErrInternal, nil)
	}

	switch res.Failure {
	case flows.RegisterFailureNone:
		e.metricInc(MetricRegisterSuccess)
		e.emitAudit(ctx, auditEventRegisterSuccess, true, res.UserID, nil, nil)
		return e.result(res.Pair), nil

	case flows.RegisterFailurePasswordPolicy:
		e.metricInc(MetricRegisterFailure)
		err := e.passwordPolicyError(in.Password)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, fieldMetadata(err))
		return AuthResult{}, err

	case flows.RegisterFailureDuplicate:
		e.metricInc(MetricRegisterDuplicate)
		err := newFieldError("email", "Email is already in use", ErrDuplicateEmail)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", err, fieldMetadata(err))
		return AuthResult{}, err

	default:
		e.metricInc(MetricRegisterFailure)
		err := e.infraError(ctx, "register", ErrInternal, res.Err,
			slog.String("user_id", res.UserID), slog.Int("failure", int(res.Failure)))
		e.emitAudit(ctx, auditEventRegisterFailure, false, res.UserID, err, nil)
		return AuthResult{}, err
	}
}

func (e *Engine) passwordPolicyError(plain string) *FieldError {
	if limit := e.config.Password.MaxLength; limit > 0 && len(plain) > limit {
		return newFieldError("password", fmt.Sprintf("Password must be at most %d characters", limit), ErrPasswordPolicy)
	}
	return newFieldError("password",
		fmt.Sprintf("Password must be at least %d characters", e.config.Password.MinLength), ErrPasswordPolicy)
}

/*
====================================
LOGIN
====================================
*/

// Login verifies email and password and returns tokens carrying the user's
// current scopes.
func (e *Engine) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if !e.ready() {
		return AuthResult{}, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricLoginLatency, start)

	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" {
		err := newFieldError("email", "Email is required", ErrInvalidInput)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, fieldMetadata(err))
		return AuthResult{}, err
	}
	if password == "" {
		err := newFieldError("password", "Password is required", ErrInvalidInput)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, fieldMetadata(err))
		return AuthResult{}, err
	}

	res := flows.RunLogin(ctx, email, password, clientIPFromContext(ctx), e.flows.Login)

	switch res.Failure {
	case flows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLoginSuccess, true, res.UserID, nil, func() map[string]string {
			return map[string]string{"universities": fmt.Sprint(res.Orgs)}
		})
		return e.result(res.Pair), nil

	case flows.LoginFailureRateLimited:
		e.metricInc(MetricLoginRateLimited)
		e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, nil)
		return AuthResult{}, ErrLoginRateLimited

	case flows.LoginFailureNotFound:
		e.metricInc(MetricLoginFailure)
		err := newFieldError("email", "There is no user registered with this email", ErrNoSuchAccount)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, fieldMetadata(err))
		return AuthResult{}, err

	case flows.LoginFailurePasswordMismatch:
		e.metricInc(MetricLoginFailure)
		err := newFieldError("password", "Incorrect password", ErrBadPassword)
		e.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, err, fieldMetadata(err))
		return AuthResult{}, err

	case flows.LoginFailureLimiter, flows.LoginFailureLookup, flows.LoginFailureResolve:
		e.metricInc(MetricLoginFailure)
		err := e.infraError(ctx, "login", ErrStoreUnavailable, res.Err,
			slog.String("user_id", res.UserID), slog.Int("failure", int(res.Failure)))
		e.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, err, nil)
		return AuthResult{}, err

	default:
		e.metricInc(MetricLoginFailure)
		err := e.infraError(ctx, "login", ErrInternal, res.Err,
			slog.String("user_id", res.UserID), slog.Int("failure", int(res.Failure)))
		e.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, err, nil)
		return AuthResult{}, err
	}
}

/*
====================================
REFRESH
====================================
*/

// Refresh exchanges a refresh token for a new pair. Scopes are resolved again
// so membership changes since the last login take effect.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if !e.ready() {
		return AuthResult{}, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricRefreshLatency, start)

	res := flows.RunRefresh(ctx, refreshToken, e.flows.Refresh)

	switch res.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, nil, func() map[string]string {
			return map[string]string{"universities": fmt.Sprint(res.Orgs)}
		})
		return e.result(res.Pair), nil

	case flows.RefreshFailureEmpty, flows.RefreshFailureParse:
		e.metricInc(MetricRefreshFailure)
		err := tokenError(res.Err)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", err, nil)
		return AuthResult{}, err

	case flows.RefreshFailureRateLimited:
		e.metricInc(MetricRefreshRateLimited)
		e.emitAudit(ctx, auditEventRefreshRateLimited, false, res.UserID, ErrRefreshRateLimited, nil)
		return AuthResult{}, ErrRefreshRateLimited

	case flows.RefreshFailureReuse:
		e.metricInc(MetricRefreshReuseDetected)
		e.logger.LogAttrs(ctx, slog.LevelWarn, "refresh token reuse",
			slog.String("user_id", res.UserID), slog.String("ip", clientIPFromContext(ctx)))
		e.emitAudit(ctx, auditEventRefreshReuseDetected, false, res.UserID, ErrRefreshReuse, nil)
		return AuthResult{}, ErrRefreshReuse

	case flows.RefreshFailureLimiter, flows.RefreshFailureRevocation, flows.RefreshFailureResolve:
		e.metricInc(MetricRefreshFailure)
		err := e.infraError(ctx, "refresh", ErrStoreUnavailable, res.Err,
			slog.String("user_id", res.UserID), slog.Int("failure", int(res.Failure)))
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.UserID, err, nil)
		return AuthResult{}, err

	default:
		e.metricInc(MetricRefreshFailure)
		err := e.infraError(ctx, "refresh", ErrInternal, res.Err,
			slog.String("user_id", res.UserID), slog.Int("failure", int(res.Failure)))
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.UserID, err, nil)
		return AuthResult{}, err
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenKindMismatch):
		return ErrTokenKindMismatch
	default:
		return ErrTokenInvalid
	}
}

/*
====================================
LOGOUT / VALIDATE
====================================
*/

// Logout is not supported: tokens are stateless and the call always fails
// with ErrUnauthorized. Transports should still clear the refresh cookie with
// ClearRefreshCookie.
func (e *Engine) Logout(ctx context.Context) error {
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, false, "", ErrUnauthorized, nil)
	return ErrUnauthorized
}

// ValidateAccess verifies a bearer access token and returns its payload. No
// store is consulted.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (Payload, error) {
	if e == nil || e.jwtManager == nil {
		return Payload{}, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricValidateLatency, start)

	res := flows.RunValidateAccess(accessToken, e.flows.Validate)
	if res.Failure != flows.ValidateFailureNone {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "access token rejected", slog.Any("error", res.Err))
		return Payload{}, tokenError(res.Err)
	}
	return res.Payload, nil
}

func fieldMetadata(err error) func() map[string]string {
	return func() map[string]string {
		fe, ok := AsFieldError(err)
		if !ok {
			return nil
		}
		return map[string]string{"field": fe.Field}
	}
}
