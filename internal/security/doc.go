// Package security derives a read-only security posture report from engine
// configuration. It performs no I/O.
package security
