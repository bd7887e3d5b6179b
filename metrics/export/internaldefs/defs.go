package internaldefs

import (
	"github.com/MrEthical07/campusauth"
)

// CounterDef maps an engine counter to its exported name.
type CounterDef struct {
	ID   campusauth.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine latency histogram to its exported name.
type HistogramDef struct {
	ID   campusauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "campusauth_audit_dropped_total"

var CounterDefs = []CounterDef{
	{ID: campusauth.MetricRegisterSuccess, Name: "campusauth_register_success_total", Help: "Completed registrations."},
	{ID: campusauth.MetricRegisterFailure, Name: "campusauth_register_failure_total", Help: "Registrations rejected by validation or failed in a backend."},
	{ID: campusauth.MetricRegisterDuplicate, Name: "campusauth_register_duplicate_total", Help: "Registrations rejected because the email is taken."},
	{ID: campusauth.MetricAvatarFailure, Name: "campusauth_avatar_failure_total", Help: "Registrations whose avatar could not be stored."},
	{ID: campusauth.MetricLoginSuccess, Name: "campusauth_login_success_total", Help: "Successful logins."},
	{ID: campusauth.MetricLoginFailure, Name: "campusauth_login_failure_total", Help: "Failed logins."},
	{ID: campusauth.MetricLoginRateLimited, Name: "campusauth_login_rate_limited_total", Help: "Logins rejected by throttling."},
	{ID: campusauth.MetricRefreshSuccess, Name: "campusauth_refresh_success_total", Help: "Successful token refreshes."},
	{ID: campusauth.MetricRefreshFailure, Name: "campusauth_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: campusauth.MetricRefreshReuseDetected, Name: "campusauth_refresh_reuse_detected_total", Help: "Rotated refresh tokens presented again."},
	{ID: campusauth.MetricRefreshRateLimited, Name: "campusauth_refresh_rate_limited_total", Help: "Refreshes rejected by throttling."},
	{ID: campusauth.MetricLogout, Name: "campusauth_logout_total", Help: "Logout calls."},
	{ID: campusauth.MetricInfraFailure, Name: "campusauth_infra_failure_total", Help: "Store, Redis or hashing failures."},
}

var HistogramDefs = []HistogramDef{
	{ID: campusauth.MetricLoginLatency, Name: "campusauth_login_latency_seconds", Help: "Login latency."},
	{ID: campusauth.MetricRefreshLatency, Name: "campusauth_refresh_latency_seconds", Help: "Refresh latency."},
	{ID: campusauth.MetricValidateLatency, Name: "campusauth_validate_latency_seconds", Help: "Access token validation latency."},
}

// HistogramBounds are the upper bounds in seconds of the first seven engine
// buckets. The eighth bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// flatten buckets into separate instruments.
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

// NormalizeBuckets copies raw into a fixed eight-bucket array. Missing
// buckets read as zero.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
