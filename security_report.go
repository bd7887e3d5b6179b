package campusauth

import (
	"net/http"

	"github.com/MrEthical07/campusauth/internal/security"
)

// SecurityReport is a read-only snapshot of the engine's security posture.
type SecurityReport = security.Report

// PasswordConfigReport summarizes the Argon2id parameters in use.
type PasswordConfigReport = security.PasswordReport

// SecurityReport describes the effective configuration. Warnings name
// settings weaker than the recommended defaults.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	c := e.config
	return security.BuildReport(security.ReportInput{
		ProductionMode:   c.Security.ProductionMode,
		SigningAlgorithm: c.JWT.SigningMethod,
		AccessTTL:        c.JWT.AccessTTL,
		RefreshTTL:       c.JWT.RefreshTTL,
		Password: security.PasswordReport{
			Memory:      c.Password.Memory,
			Time:        c.Password.Time,
			Parallelism: c.Password.Parallelism,
			SaltLength:  c.Password.SaltLength,
			KeyLength:   c.Password.KeyLength,
			MinLength:   c.Password.MinLength,
		},
		InsecureCookie:          c.Cookie.Insecure,
		CookieSameSite:          sameSiteName(c.Cookie.SameSite),
		EnforceRefreshRotation:  c.Security.EnforceRefreshRotation,
		EnableLoginThrottle:     c.Security.EnableLoginThrottle,
		MaxLoginAttempts:        c.Security.MaxLoginAttempts,
		LoginCooldownDuration:   c.Security.LoginCooldownDuration,
		EnableRefreshThrottle:   c.Security.EnableRefreshThrottle,
		MaxRefreshAttempts:      c.Security.MaxRefreshAttempts,
		RefreshCooldownDuration: c.Security.RefreshCooldownDuration,
		AuditEnabled:            c.Audit.Enabled,
	})
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "default"
	}
}
