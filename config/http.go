package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	Addr        string `env:"HTTP_ADDR"         envDefault:":8080"`
	MetricsAddr string `env:"HTTP_METRICS_ADDR" envDefault:":9090"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"15s"`

	// TrustProxy takes the client IP from X-Forwarded-For.
	TrustProxy bool `env:"HTTP_TRUST_PROXY" envDefault:"false"`
}

// Sanitize clamps timeouts to sane minimums.
func (h *HTTPConfig) Sanitize() {
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 5 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
}
