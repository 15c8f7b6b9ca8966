package internaldefs

import (
	"github.com/modularsaas/authsession"
)

// CounterDef binds a [authsession.MetricID] to a stable exported name.
type CounterDef struct {
	ID   authsession.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric to its exported name.
type HistogramDef struct {
	ID   authsession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: authsession.MetricLoginSuccess, Name: "authsession_login_success_total", Help: "Successful login attempts."},
	{ID: authsession.MetricLoginFailure, Name: "authsession_login_failure_total", Help: "Failed login attempts."},
	{ID: authsession.MetricLoginDisabled, Name: "authsession_login_disabled_total", Help: "Logins rejected for disabled accounts."},
	{ID: authsession.MetricRestoreSuccess, Name: "authsession_restore_success_total", Help: "Session restores that produced a session."},
	{ID: authsession.MetricRestoreStale, Name: "authsession_restore_stale_total", Help: "Session restores discarded as stale."},
	{ID: authsession.MetricRestoreFailure, Name: "authsession_restore_failure_total", Help: "Session restores abandoned due to backend errors."},
	{ID: authsession.MetricLogout, Name: "authsession_logout_total", Help: "Explicit logouts."},
	{ID: authsession.MetricRoleUpdate, Name: "authsession_role_update_total", Help: "Applied role updates."},
	{ID: authsession.MetricRoleUpdateDenied, Name: "authsession_role_update_denied_total", Help: "Role updates rejected by authorization."},
	{ID: authsession.MetricSessionWriteFailure, Name: "authsession_session_write_failure_total", Help: "Best-effort session record writes that failed."},
	{ID: authsession.MetricLastLoginUpdateFailure, Name: "authsession_last_login_update_failure_total", Help: "Best-effort lastLogin updates that failed."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authsession.MetricLoginLatency, Name: "authsession_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the fixed latency
// buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with identifier-safe
// spellings for exporters that embed the bound in a metric name.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// 8-bucket shape.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// histogram exporters expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
