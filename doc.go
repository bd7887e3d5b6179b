// Package campusauth registers, signs in and refreshes users of a
// multi-university platform, issuing JWT access/refresh pairs whose payload
// carries the user's per-university capability scopes.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build]. Scopes are never cached: every Login and Refresh asks the
// membership store again, so a revoked role disappears from the next
// refreshed token.
//
// # Architecture boundaries
//
// campusauth is the public surface. It exposes [Engine], [Builder], [Config],
// the error sentinels and value types. Flow sequencing, throttling and audit
// dispatch live under internal/. Persistence is supplied by the caller
// through the interfaces in package store; store/postgres and store/sqlite
// are the bundled implementations.
//
// # Cookies
//
// The refresh token never appears in a response body. [AuthResult] carries a
// [CookieDirective] that the transport applies; package httpapi does this
// for net/http.
package campusauth
