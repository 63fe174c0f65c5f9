package shadowid

import (
	internalmetrics "github.com/shadowid/shadowid/internal/metrics"
)

// MetricID identifies a specific engine counter.
type MetricID = internalmetrics.MetricID

const (
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess = internalmetrics.MetricRegisterSuccess
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts logins rejected for unknown identifiers.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginRateLimited counts logins rejected by the abuse guard.
	MetricLoginRateLimited = internalmetrics.MetricLoginRateLimited
	// MetricGuardDegraded counts guard-backend outages that were degraded
	// to "not rate limited" by configuration.
	MetricGuardDegraded = internalmetrics.MetricGuardDegraded
	// MetricRefreshSuccess counts successful refresh rotations.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricSessionCreated counts refresh sessions created at login.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionRotated counts refresh sessions replaced by rotation.
	MetricSessionRotated = internalmetrics.MetricSessionRotated
)

// MetricsSnapshot is a point-in-time deep copy of all engine counters.
type MetricsSnapshot = internalmetrics.Snapshot
