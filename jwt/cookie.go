package jwt

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultRefreshCookieName is used when CookieConfig.Name is empty.
const DefaultRefreshCookieName = "refresh_token"

// CookieConfig controls the refresh cookie attributes. HttpOnly is always set.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	SameSite http.SameSite
	// Insecure drops the Secure attribute. Only meant for local development
	// over plain HTTP.
	Insecure bool
}

func (c CookieConfig) normalize() (CookieConfig, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = DefaultRefreshCookieName
	}
	if strings.ContainsAny(c.Name, " ;,=\t\r\n") {
		return c, errors.New("invalid refresh cookie name")
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteStrictMode
	}
	if c.SameSite == http.SameSiteNoneMode && c.Insecure {
		return c, errors.New("SameSite=None requires a secure cookie")
	}
	return c, nil
}

// CookieDirective describes a cookie the transport layer must set on the
// response. It is returned instead of writing to a response object so the
// token service stays transport-agnostic.
type CookieDirective struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// IsZero reports whether d carries no cookie.
func (d CookieDirective) IsZero() bool {
	return d.Name == ""
}

// HTTPCookie converts d for use with http.SetCookie.
func (d CookieDirective) HTTPCookie() *http.Cookie {
	return &http.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     d.Path,
		Domain:   d.Domain,
		MaxAge:   d.MaxAge,
		Expires:  d.Expires,
		HttpOnly: d.HTTPOnly,
		Secure:   d.Secure,
		SameSite: d.SameSite,
	}
}

// CookieName returns the configured refresh cookie name.
func (j *Manager) CookieName() string {
	return j.config.Cookie.Name
}

// RefreshCookie returns the directive delivering refreshToken to the client.
// MaxAge equals the refresh lifetime.
func (j *Manager) RefreshCookie(refreshToken string, expiresAt time.Time) CookieDirective {
	c := j.config.Cookie
	return CookieDirective{
		Name:     c.Name,
		Value:    refreshToken,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   int(j.config.RefreshTTL / time.Second),
		Expires:  expiresAt.UTC(),
		HTTPOnly: true,
		Secure:   !c.Insecure,
		SameSite: c.SameSite,
	}
}

// ClearRefreshCookie returns a directive that removes the refresh cookie.
func (j *Manager) ClearRefreshCookie() CookieDirective {
	c := j.config.Cookie
	return CookieDirective{
		Name:     c.Name,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		HTTPOnly: true,
		Secure:   !c.Insecure,
		SameSite: c.SameSite,
	}
}
