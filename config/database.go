package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig selects the account and membership backend.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"sqlite"`

	// Migrate applies the embedded schema on start.
	Migrate bool `env:"STORE_MIGRATE" envDefault:"true"`
}

func (s *StoreConfig) Sanitize() {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	if s.Driver == "postgresql" || s.Driver == "pg" {
		s.Driver = DriverPostgres
	}
	if s.Driver == "sqlite3" {
		s.Driver = DriverSQLite
	}
}

// DBConfig contains PostgreSQL connection settings.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"campusauth"`
	Password string `env:"PASSWORD" envDefault:"campusauth"`
	Name     string `env:"NAME"     envDefault:"campusauth"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

// DSN renders a postgres:// URL for the pgx stdlib driver.
func (d DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// SQLiteConfig contains the embedded database location.
type SQLiteConfig struct {
	Path string `env:"PATH" envDefault:"campusauth.db"`
}

// RedisConfig contains Redis connection settings. Redis is dialed only when
// a throttling or rotation feature is enabled.
type RedisConfig struct {
	Addrs    []string `env:"ADDRS"    envDefault:"localhost:6379"`
	Password string   `env:"PASSWORD" envDefault:""`
	DB       int      `env:"DB"       envDefault:"0"`
	Prefix   string   `env:"PREFIX"   envDefault:"campusauth"`
}

// UniversalOptions returns options for redis.NewUniversalClient. More than
// one address selects a cluster client.
func (r RedisConfig) UniversalOptions() *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:    r.Addrs,
		Password: r.Password,
		DB:       r.DB,
	}
}
