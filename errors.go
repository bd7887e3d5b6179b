package campusauth

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail is wrapped in a FieldError on "email" when registration
	// hits an address that is already registered.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrNoSuchAccount is wrapped in a FieldError on "email" when login finds no
	// account for the address.
	ErrNoSuchAccount = errors.New("no account registered with this email")
	// ErrBadPassword is wrapped in a FieldError on "password" when the password
	// does not match.
	ErrBadPassword = errors.New("incorrect password")
	// ErrPasswordPolicy is wrapped in a FieldError on "password" when a new
	// password violates the length policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrInvalidInput is wrapped in a FieldError when a registration or login
	// field fails shape validation.
	ErrInvalidInput = errors.New("invalid input")

	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenKindMismatch = errors.New("token kind mismatch")
	// ErrRefreshReuse means a rotated refresh token was presented again.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrUnauthorized is returned by Logout unconditionally.
	ErrUnauthorized = errors.New("unauthorized")

	ErrLoginRateLimited   = errors.New("login rate limited")
	ErrRefreshRateLimited = errors.New("refresh rate limited")

	// ErrStoreUnavailable means a backing store could not be reached. The
	// cause is logged, never returned.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInternal covers every other unexpected failure.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady is returned when a nil or closed Engine is used.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// FieldError attributes a caller-correctable failure to one input field.
// Message is safe to show to end users.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Err }

func newFieldError(field, message string, err error) *FieldError {
	return &FieldError{Field: field, Message: message, Err: err}
}

// AsFieldError returns the FieldError in err's chain, if any.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsFieldError reports whether err is a field-scoped validation error.
func IsFieldError(err error) bool {
	_, ok := AsFieldError(err)
	return ok
}

// IsTokenError reports whether err requires the caller to re-authenticate.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenKindMismatch) ||
		errors.Is(err, ErrRefreshReuse) ||
		errors.Is(err, ErrUnauthorized)
}

// IsRateLimited reports whether err is a throttling rejection.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrLoginRateLimited) || errors.Is(err, ErrRefreshRateLimited)
}

// IsInfraError reports whether err is an opaque infrastructure failure.
func IsInfraError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrInternal) ||
		errors.Is(err, ErrEngineNotReady)
}
