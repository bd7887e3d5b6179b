// Package flows holds the register, login, refresh and access-validation
// orchestration as plain functions over explicit dependency structs.
//
// Each RunX function returns a result carrying a FailureKind instead of a
// public error. The root package maps kinds to its sentinel errors, emits
// audit events and bumps metrics; flows only sequence the calls.
//
// Flows never import the root package and keep no state between calls.
package flows
