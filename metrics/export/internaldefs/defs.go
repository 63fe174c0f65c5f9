package internaldefs

import (
	shadowid "github.com/shadowid/shadowid"
)

// CounterDef binds an engine counter to its exported metric name.
type CounterDef struct {
	ID   shadowid.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in a fixed, exporter-visible order.
var CounterDefs = []CounterDef{
	{ID: shadowid.MetricRegisterSuccess, Name: "shadowid_register_success_total", Help: "Successful identity registrations."},
	{ID: shadowid.MetricLoginSuccess, Name: "shadowid_login_success_total", Help: "Successful login attempts."},
	{ID: shadowid.MetricLoginFailure, Name: "shadowid_login_failure_total", Help: "Login attempts rejected for unknown identifiers."},
	{ID: shadowid.MetricLoginRateLimited, Name: "shadowid_login_rate_limited_total", Help: "Login attempts rejected by the abuse guard."},
	{ID: shadowid.MetricGuardDegraded, Name: "shadowid_guard_degraded_total", Help: "Guard backend outages degraded to unguarded login."},
	{ID: shadowid.MetricRefreshSuccess, Name: "shadowid_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: shadowid.MetricRefreshFailure, Name: "shadowid_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: shadowid.MetricSessionCreated, Name: "shadowid_session_created_total", Help: "Refresh sessions created at login."},
	{ID: shadowid.MetricSessionRotated, Name: "shadowid_session_rotated_total", Help: "Refresh sessions replaced by rotation."},
}

// AuditDroppedName is the metric name for audit dispatcher backpressure drops.
const AuditDroppedName = "shadowid_audit_dropped_total"

// AuditDroppedHelp documents the audit drop counter.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
