package campusauth

import (
	"context"
	"errors"
)

const (
	auditEventRegisterSuccess      = "register_success"
	auditEventRegisterFailure      = "register_failure"
	auditEventRegisterDuplicate    = "register_duplicate"
	auditEventAvatarFailure        = "avatar_failure"
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventLoginRateLimited     = "login_rate_limited"
	auditEventRefreshSuccess       = "refresh_success"
	auditEventRefreshInvalid       = "refresh_invalid"
	auditEventRefreshRateLimited   = "refresh_rate_limited"
	auditEventRefreshReuseDetected = "refresh_reuse_detected"
	auditEventLogout               = "logout"
)

// AuditErrorCode is the coarse error label recorded on failed events.
type AuditErrorCode string

const (
	auditErrUnauthorized   AuditErrorCode = "unauthorized"
	auditErrInvalidInput   AuditErrorCode = "invalid_input"
	auditErrDuplicate      AuditErrorCode = "duplicate"
	auditErrUnknownAccount AuditErrorCode = "unknown_account"
	auditErrBadPassword    AuditErrorCode = "invalid_credentials"
	auditErrPasswordPolicy AuditErrorCode = "password_policy"
	auditErrRateLimited    AuditErrorCode = "rate_limited"
	auditErrRefreshReuse   AuditErrorCode = "refresh_reuse"
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrExpiredToken   AuditErrorCode = "expired_token"
	auditErrTokenKind      AuditErrorCode = "token_kind_mismatch"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrNoSuchAccount):
		return auditErrUnknownAccount
	case errors.Is(err, ErrBadPassword):
		return auditErrBadPassword
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrLoginRateLimited), errors.Is(err, ErrRefreshRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrRefreshReuse):
		return auditErrRefreshReuse
	case errors.Is(err, ErrTokenExpired):
		return auditErrExpiredToken
	case errors.Is(err, ErrTokenKindMismatch):
		return auditErrTokenKind
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
