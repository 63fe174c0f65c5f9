package shadowid

import (
	"context"
	"log/slog"
	"time"

	"github.com/shadowid/shadowid/internal/audit"
	"github.com/shadowid/shadowid/internal/guard"
	"github.com/shadowid/shadowid/internal/metrics"
	"github.com/shadowid/shadowid/internal/seal"
	"github.com/shadowid/shadowid/internal/sessions"
	"github.com/shadowid/shadowid/jwt"
)

// Engine orchestrates the credential lifecycle: registration, login with
// abuse control, and refresh-token rotation. Construct it through
// [Builder.Build]; all methods are safe for concurrent use afterwards.
type Engine struct {
	config     Config
	tokens     *jwt.Manager
	box        *seal.Box
	sessions   *sessions.Store
	guard      *guard.Guard
	identities IdentityProvider
	audit      *audit.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Close flushes the audit dispatcher. The engine must not be used after
// Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a deep copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// storeCtx bounds a backend call so no store outage can block a request
// indefinitely.
func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.StoreTimeout)
}

func (e *Engine) emit(ctx context.Context, eventType, identifier string, success bool, detail error) {
	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		Identifier: identifier,
		Success:    success,
	}
	if detail != nil {
		event.Error = detail.Error()
	}
	e.audit.Emit(ctx, event)
}
