// Package middleware adapts campusauth.Engine access-token validation to
// net/http.
//
// # Guards
//
//   - [RequireAccess] verifies the bearer access token and stores its payload
//     in the request context.
//   - [ClientInfo] records the caller's IP and User-Agent so the Engine can
//     attach them to audit events and throttle keys.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does not parse
// tokens itself and never touches a store; all decisions are delegated to
// Engine.ValidateAccess. Capability checks against the payload's scope map
// are left to the handlers.
package middleware
