// Package revocation makes refresh tokens single-use. Each refresh token id
// is consumed in Redis the first time it is exchanged; presenting it again is
// treated as theft and revokes every refresh token issued to that user up to
// that moment.
//
// The package only sees token ids, user ids and timestamps. It never parses
// tokens.
package revocation
