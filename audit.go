package fitgate

import (
	"io"

	internalaudit "github.com/fittrack/fitgate/internal/audit"
)

// Audit event types emitted by the client.
const (
	AuditLogin           = "login"
	AuditRegister        = "register"
	AuditLogout          = "logout"
	AuditTokenRefresh    = "token_refresh"
	AuditSessionRestored = "session_restored"
	AuditSessionCleared  = "session_cleared"
	AuditAuthExpired     = "auth_expired"
)

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
