package config

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/campusauth"
)

// JWTConfig holds signing settings. Keys are base64 (standard encoding).
type JWTConfig struct {
	SigningMethod string        `env:"SIGNING_METHOD" envDefault:"ed25519"`
	PrivateKey    string        `env:"PRIVATE_KEY"`
	PublicKey     string        `env:"PUBLIC_KEY"`
	KeyID         string        `env:"KEY_ID"`
	Issuer        string        `env:"ISSUER"         envDefault:"campusauth"`
	Audience      string        `env:"AUDIENCE"`
	AccessTTL     time.Duration `env:"ACCESS_TTL"     envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL"    envDefault:"168h"`
	Leeway        time.Duration `env:"LEEWAY"         envDefault:"0s"`
}

func (j *JWTConfig) Sanitize() {
	j.SigningMethod = strings.ToLower(strings.TrimSpace(j.SigningMethod))
	j.PrivateKey = strings.TrimSpace(j.PrivateKey)
	j.PublicKey = strings.TrimSpace(j.PublicKey)
}

// CookieConfig controls the refresh cookie.
type CookieConfig struct {
	Name     string `env:"NAME"      envDefault:"refresh_token"`
	Path     string `env:"PATH"      envDefault:"/"`
	Domain   string `env:"DOMAIN"`
	SameSite string `env:"SAME_SITE" envDefault:"strict"`
	Insecure bool   `env:"INSECURE"  envDefault:"false"`
}

func (c *CookieConfig) Sanitize() {
	c.SameSite = strings.ToLower(strings.TrimSpace(c.SameSite))
}

func (c CookieConfig) sameSite() (http.SameSite, error) {
	switch c.SameSite {
	case "", "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("COOKIE_SAME_SITE must be strict, lax or none, got %q", c.SameSite)
	}
}

// PasswordConfig holds Argon2id parameters and the new-password policy.
type PasswordConfig struct {
	Memory      uint32 `env:"ARGON2_MEMORY_KB"    envDefault:"65536"`
	Time        uint32 `env:"ARGON2_TIME"         envDefault:"3"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM"  envDefault:"2"`
	MinLength   int    `env:"PASSWORD_MIN_LENGTH" envDefault:"10"`
	MaxLength   int    `env:"PASSWORD_MAX_LENGTH" envDefault:"1024"`
}

// AvatarConfig controls avatar uploads.
type AvatarConfig struct {
	Dir           string `env:"DIR"            envDefault:"data"`
	MaxBytes      int64  `env:"MAX_BYTES"      envDefault:"5242880"`
	FailurePolicy string `env:"FAILURE_POLICY" envDefault:"keep"`
}

func (a *AvatarConfig) Sanitize() {
	if a.MaxBytes <= 0 {
		a.MaxBytes = 5 << 20
	}
	a.FailurePolicy = strings.ToLower(strings.TrimSpace(a.FailurePolicy))
}

// SecurityConfig switches the Redis-backed protections.
type SecurityConfig struct {
	LoginThrottle      bool          `env:"LOGIN_THROTTLE"       envDefault:"false"`
	MaxLoginAttempts   int           `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LoginCooldown      time.Duration `env:"LOGIN_COOLDOWN"       envDefault:"15m"`
	RefreshThrottle    bool          `env:"REFRESH_THROTTLE"     envDefault:"false"`
	MaxRefreshAttempts int           `env:"REFRESH_MAX_ATTEMPTS" envDefault:"20"`
	RefreshCooldown    time.Duration `env:"REFRESH_COOLDOWN"     envDefault:"1m"`
	RefreshRotation    bool          `env:"REFRESH_ROTATION"     envDefault:"false"`
}

// AuditConfig controls the audit stream. Events are written through slog.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"      envDefault:"true"`
	BufferSize int  `env:"BUFFER_SIZE"  envDefault:"1024"`
	DropIfFull bool `env:"DROP_IF_FULL" envDefault:"true"`
}

func (a *AuditConfig) Sanitize() {
	if a.BufferSize <= 0 {
		a.BufferSize = 1024
	}
}

// EngineConfig converts c into a campusauth.Config. Validation of the
// result is left to campusauth.Config.Validate.
func (c *AppConfig) EngineConfig() (campusauth.Config, error) {
	cfg := campusauth.DefaultConfig()

	priv, err := decodeKey("JWT_PRIVATE_KEY", c.JWT.PrivateKey)
	if err != nil {
		return cfg, err
	}
	pub, err := decodeKey("JWT_PUBLIC_KEY", c.JWT.PublicKey)
	if err != nil {
		return cfg, err
	}
	cfg.JWT = campusauth.JWTConfig{
		AccessTTL:     c.JWT.AccessTTL,
		RefreshTTL:    c.JWT.RefreshTTL,
		SigningMethod: c.JWT.SigningMethod,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        c.JWT.Issuer,
		Audience:      c.JWT.Audience,
		Leeway:        c.JWT.Leeway,
		KeyID:         c.JWT.KeyID,
	}

	sameSite, err := c.Cookie.sameSite()
	if err != nil {
		return cfg, err
	}
	cfg.Cookie = campusauth.CookieConfig{
		Name:     c.Cookie.Name,
		Path:     c.Cookie.Path,
		Domain:   c.Cookie.Domain,
		SameSite: sameSite,
		Insecure: c.Cookie.Insecure,
	}

	cfg.Password.Memory = c.Password.Memory
	cfg.Password.Time = c.Password.Time
	cfg.Password.Parallelism = c.Password.Parallelism
	cfg.Password.MinLength = c.Password.MinLength
	cfg.Password.MaxLength = c.Password.MaxLength

	policy, err := campusauth.ParseAvatarFailurePolicy(c.Avatar.FailurePolicy)
	if err != nil {
		return cfg, fmt.Errorf("AVATAR_FAILURE_POLICY: %w", err)
	}
	cfg.Avatar.FailurePolicy = policy

	cfg.Security = campusauth.SecurityConfig{
		ProductionMode:          c.Production,
		EnableLoginThrottle:     c.Security.LoginThrottle,
		MaxLoginAttempts:        c.Security.MaxLoginAttempts,
		LoginCooldownDuration:   c.Security.LoginCooldown,
		EnableRefreshThrottle:   c.Security.RefreshThrottle,
		MaxRefreshAttempts:      c.Security.MaxRefreshAttempts,
		RefreshCooldownDuration: c.Security.RefreshCooldown,
		EnforceRefreshRotation:  c.Security.RefreshRotation,
		RedisPrefix:             c.Redis.Prefix,
	}

	cfg.Audit = campusauth.AuditConfig{
		Enabled:    c.Audit.Enabled,
		BufferSize: c.Audit.BufferSize,
		DropIfFull: c.Audit.DropIfFull,
	}
	cfg.Metrics = campusauth.MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	}

	return cfg, nil
}

func decodeKey(name, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
	}
	return key, nil
}
