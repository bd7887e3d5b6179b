package campusauth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config is the complete engine configuration. Build it once at startup,
// typically from DefaultConfig, and do not mutate it afterwards.
type Config struct {
	JWT      JWTConfig
	Cookie   CookieConfig
	Password PasswordConfig
	Avatar   AvatarConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls token signing and lifetimes.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "ed25519" (default) or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
}

// CookieConfig controls the refresh cookie. HttpOnly is always set.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	SameSite http.SameSite
	// Insecure omits the Secure attribute. Rejected in ProductionMode.
	Insecure bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id parameters and the length policy applied to
// new passwords.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
	MaxLength   int
}

/*
====================================
AVATAR CONFIG
====================================
*/

// AvatarFailurePolicy decides what Register does when the account was
// created but storing its avatar failed.
type AvatarFailurePolicy int

const (
	// AvatarKeepAccount completes registration without an avatar and records
	// the failure in the log and audit stream.
	AvatarKeepAccount AvatarFailurePolicy = iota
	// AvatarFailRegistration returns ErrInternal. The account row remains.
	AvatarFailRegistration
)

func (p AvatarFailurePolicy) String() string {
	switch p {
	case AvatarKeepAccount:
		return "keep"
	case AvatarFailRegistration:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseAvatarFailurePolicy maps "keep" and "fail" to their policy values.
func ParseAvatarFailurePolicy(s string) (AvatarFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return AvatarKeepAccount, nil
	case "fail":
		return AvatarFailRegistration, nil
	default:
		return 0, errors.New("avatar failure policy must be 'keep' or 'fail'")
	}
}

// AvatarConfig controls avatar handling during registration.
type AvatarConfig struct {
	FailurePolicy AvatarFailurePolicy
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds throttling and rotation switches. Every Redis-backed
// feature is off by default; enabling one requires Builder.WithRedis.
type SecurityConfig struct {
	ProductionMode bool

	EnableLoginThrottle   bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration

	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration

	// EnforceRefreshRotation makes every refresh token single-use. A second
	// presentation fails with ErrRefreshReuse.
	EnforceRefreshRotation bool

	RedisPrefix string
}

func (s SecurityConfig) needsRedis() bool {
	return s.EnableLoginThrottle || s.EnableRefreshThrottle || s.EnforceRefreshRotation
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a development-friendly configuration without keys.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "ed25519",
			Issuer:        "campusauth",
		},
		Cookie: CookieConfig{
			Name:     "refresh_token",
			Path:     "/",
			SameSite: http.SameSiteStrictMode,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   10,
			MaxLength:   1024,
		},
		Avatar: AvatarConfig{
			FailurePolicy: AvatarKeepAccount,
		},
		Security: SecurityConfig{
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			MaxRefreshAttempts:      20,
			RefreshCooldownDuration: time.Minute,
			RedisPrefix:             "campusauth",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	switch c.JWT.SigningMethod {
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("ed25519 requires PrivateKey")
		}
		if len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	case "hs256":
		if len(c.JWT.PrivateKey) < 32 {
			return errors.New("hs256 requires PrivateKey of at least 32 bytes")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Cookie
	if strings.TrimSpace(c.Cookie.Name) == "" {
		return errors.New("Cookie Name must not be empty")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode && c.Cookie.Insecure {
		return errors.New("Cookie SameSite=None requires a secure cookie")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}
	if c.Password.MaxLength < c.Password.MinLength {
		return errors.New("Password MaxLength must be >= MinLength")
	}

	// Avatar
	if c.Avatar.FailurePolicy != AvatarKeepAccount && c.Avatar.FailurePolicy != AvatarFailRegistration {
		return errors.New("Avatar FailurePolicy is invalid")
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security LoginCooldownDuration must be > 0")
		}
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 {
			return errors.New("Security MaxRefreshAttempts must be > 0")
		}
		if c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("Security RefreshCooldownDuration must be > 0")
		}
	}
	if c.Security.needsRedis() && strings.TrimSpace(c.Security.RedisPrefix) == "" {
		return errors.New("Security RedisPrefix must not be empty")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	if c.Security.ProductionMode {
		if c.JWT.AccessTTL > 15*time.Minute {
			return errors.New("ProductionMode requires JWT AccessTTL <= 15m")
		}
		if c.JWT.RefreshTTL > 30*24*time.Hour {
			return errors.New("ProductionMode requires JWT RefreshTTL <= 30d")
		}
		if c.Cookie.Insecure {
			return errors.New("ProductionMode requires secure cookies")
		}
		if c.Password.Memory < 65536 {
			return errors.New("ProductionMode requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("ProductionMode requires Password Time >= 2")
		}
		if c.Password.KeyLength < 32 {
			return errors.New("ProductionMode requires Password KeyLength >= 32")
		}
		if c.Password.MinLength < 8 {
			return errors.New("ProductionMode requires Password MinLength >= 8")
		}
		if !c.Security.EnableLoginThrottle {
			return errors.New("ProductionMode requires login throttling")
		}
	}

	return nil
}
