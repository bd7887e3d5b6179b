package campusauth

import (
	"io"
	"log/slog"

	"github.com/MrEthical07/campusauth/internal/audit"
)

// AuditEvent is one security-relevant record. Events never carry passwords,
// password hashes or tokens.
type AuditEvent = audit.Event

// AuditSink receives audit events from the Engine's background dispatcher.
type AuditSink = audit.Sink

// NoOpSink drops every event.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers events in a channel, mostly for tests.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per event line.
type JSONWriterSink = audit.JSONWriterSink

// SlogSink writes events through a *slog.Logger.
type SlogSink = audit.SlogSink

func NewChannelSink(buffer int) *ChannelSink { return audit.NewChannelSink(buffer) }

func NewJSONWriterSink(w io.Writer) *JSONWriterSink { return audit.NewJSONWriterSink(w) }

func NewSlogSink(logger *slog.Logger) *SlogSink { return audit.NewSlogSink(logger) }
