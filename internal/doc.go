// Package internal groups helpers private to campusauth.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - flows: register, login and refresh orchestration behind Engine
//   - ids: monotonic ULID generation for token and account ids
//   - mocks: gomock doubles for store and hasher interfaces
//   - rate: Redis-backed login and refresh throttles
//   - security: configuration posture report
package internal
