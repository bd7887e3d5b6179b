// Package audit buffers security events and hands them to a Sink on a
// background goroutine.
//
// The package decides nothing about which events exist. Callers build an
// Event and Emit it; the Dispatcher either queues it or, when configured to
// drop, counts it as lost.
package audit
