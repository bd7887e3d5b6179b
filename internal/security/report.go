package security

import "time"

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

type Report struct {
	ProductionMode         bool
	SigningAlgorithm       string
	AccessTTL              time.Duration
	RefreshTTL             time.Duration
	Argon2                 PasswordReport
	SecureCookie           bool
	CookieSameSite         string
	RefreshRotationEnabled bool
	LoginThrottleActive    bool
	RefreshThrottleActive  bool
	AuditEnabled           bool
	// Warnings lists weak settings. It is empty for a hardened config.
	Warnings []string
}

type ReportInput struct {
	ProductionMode          bool
	SigningAlgorithm        string
	AccessTTL               time.Duration
	RefreshTTL              time.Duration
	Password                PasswordReport
	InsecureCookie          bool
	CookieSameSite          string
	EnforceRefreshRotation  bool
	EnableLoginThrottle     bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
	AuditEnabled            bool
}

const (
	minArgon2MemoryKB = 19 * 1024
	longAccessTTL     = time.Hour
)

func BuildReport(input ReportInput) Report {
	loginThrottle := input.EnableLoginThrottle &&
		input.MaxLoginAttempts > 0 &&
		input.LoginCooldownDuration > 0
	refreshThrottle := input.EnableRefreshThrottle &&
		input.MaxRefreshAttempts > 0 &&
		input.RefreshCooldownDuration > 0

	var warnings []string
	if input.InsecureCookie {
		warnings = append(warnings, "refresh cookie is sent without the Secure attribute")
	}
	if input.Password.Memory < minArgon2MemoryKB {
		warnings = append(warnings, "argon2 memory is below 19 MiB")
	}
	if input.AccessTTL > longAccessTTL {
		warnings = append(warnings, "access tokens live longer than one hour")
	}
	if !loginThrottle {
		warnings = append(warnings, "login throttling is off")
	}
	if !input.EnforceRefreshRotation {
		warnings = append(warnings, "refresh tokens are reusable until they expire")
	}
	if input.SigningAlgorithm == "hs256" {
		warnings = append(warnings, "tokens are signed with a shared secret")
	}

	return Report{
		ProductionMode:         input.ProductionMode,
		SigningAlgorithm:       input.SigningAlgorithm,
		AccessTTL:              input.AccessTTL,
		RefreshTTL:             input.RefreshTTL,
		Argon2:                 input.Password,
		SecureCookie:           !input.InsecureCookie,
		CookieSameSite:         input.CookieSameSite,
		RefreshRotationEnabled: input.EnforceRefreshRotation,
		LoginThrottleActive:    loginThrottle,
		RefreshThrottleActive:  refreshThrottle,
		AuditEnabled:           input.AuditEnabled,
		Warnings:               warnings,
	}
}
