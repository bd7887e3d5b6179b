// Package config loads the campusauth server configuration from the
// environment. A .env file in the working directory is read first when
// present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig is the complete server configuration.
type AppConfig struct {
	// Production enables campusauth's ProductionMode hardening checks.
	Production bool   `env:"PRODUCTION" envDefault:"false"`
	LogLevel   string `env:"LOG_LEVEL"  envDefault:"info"`

	HTTP     HTTPConfig
	Store    StoreConfig
	Postgres DBConfig     `envPrefix:"DB_"`
	SQLite   SQLiteConfig `envPrefix:"SQLITE_"`
	Redis    RedisConfig  `envPrefix:"REDIS_"`
	JWT      JWTConfig    `envPrefix:"JWT_"`
	Cookie   CookieConfig `envPrefix:"COOKIE_"`
	Password PasswordConfig
	Avatar   AvatarConfig `envPrefix:"AVATAR_"`
	Security SecurityConfig
	Audit    AuditConfig `envPrefix:"AUDIT_"`
}

// Load reads .env (if any) and the process environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return parse(env.Options{})
}

// LoadFrom parses cfg from environment only, ignoring the process
// environment and any .env file.
func LoadFrom(environment map[string]string) (AppConfig, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (AppConfig, error) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *AppConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.HTTP.Sanitize()
	c.Store.Sanitize()
	c.JWT.Sanitize()
	c.Cookie.Sanitize()
	c.Avatar.Sanitize()
	c.Audit.Sanitize()
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NeedsRedis reports whether any Redis-backed feature is switched on.
func (c *AppConfig) NeedsRedis() bool {
	return c.Security.LoginThrottle || c.Security.RefreshThrottle || c.Security.RefreshRotation
}
