// Package jwt mints and verifies the access/refresh token pair. Both kinds are
// signed with the same key material and carry the user id plus a snapshot of
// the user's university scope map; the "typ" claim keeps the kinds apart.
//
// The package also describes the refresh cookie as a CookieDirective so that
// HTTP concerns stay in the transport layer.
package jwt
