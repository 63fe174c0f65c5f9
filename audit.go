package shadowid

import (
	"io"

	internalaudit "github.com/shadowid/shadowid/internal/audit"
)

// AuditEvent is a structured security event emitted by the engine. The
// event carries the specific rejection kind even when the returned error is
// generic.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON lines to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

const (
	auditRegisterSuccess  = "register.success"
	auditLoginSuccess     = "login.success"
	auditLoginFailure     = "login.failure"
	auditLoginRateLimited = "login.rate_limited"
	auditGuardDegraded    = "login.guard_degraded"
	auditRefreshSuccess   = "refresh.success"
	auditRefreshRejected  = "refresh.rejected"
)
