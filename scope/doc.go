// Package scope computes the per-university capability map embedded in issued
// tokens. The map is derived from the caller's current memberships on every
// call and is never cached.
package scope
