package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every unlabeled counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful password logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed password logins."},
	{ID: goSession.MetricSSOLoginSuccess, Name: "gosession_sso_login_success_total", Help: "Sessions started from an SSO payload."},
	{ID: goSession.MetricSSOLoginFailure, Name: "gosession_sso_login_failure_total", Help: "Rejected SSO payloads."},
	{ID: goSession.MetricRegisterSuccess, Name: "gosession_register_success_total", Help: "Successful registrations."},
	{ID: goSession.MetricRegisterFailure, Name: "gosession_register_failure_total", Help: "Failed registrations."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful token refreshes."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goSession.MetricRefreshCoalesced, Name: "gosession_refresh_coalesced_total", Help: "Refresh triggers that joined a refresh already in flight."},
	{ID: goSession.MetricRefreshDiscarded, Name: "gosession_refresh_discarded_total", Help: "Refresh results dropped because the session changed."},
	{ID: goSession.MetricIdentityUpdated, Name: "gosession_identity_updated_total", Help: "Local identity updates."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logouts."},
	{ID: goSession.MetricLogoutServerFailure, Name: "gosession_logout_server_failure_total", Help: "Logouts whose server call failed."},
	{ID: goSession.MetricSessionExpired, Name: "gosession_session_expired_total", Help: "Sessions ended because the token lapsed without renewal."},
}

// LabeledValue binds one counter to its value of the family label.
type LabeledValue struct {
	ID    goSession.MetricID
	Value string
}

// FamilyDef is a counter family whose series differ by a single label.
type FamilyDef struct {
	Name   string
	Help   string
	Label  string
	Values []LabeledValue
}

// FamilyDefs lists the labeled counter families in a stable order.
var FamilyDefs = []FamilyDef{
	{
		Name:  "gosession_refresh_triggers_total",
		Help:  "Settled token refreshes by what started them.",
		Label: "trigger",
		Values: []LabeledValue{
			{ID: goSession.MetricRefreshTriggerTimer, Value: "timer"},
			{ID: goSession.MetricRefreshTriggerVisibility, Value: "visibility"},
			{ID: goSession.MetricRefreshTriggerHeartbeat, Value: "heartbeat"},
			{ID: goSession.MetricRefreshTriggerManual, Value: "manual"},
		},
	},
	{
		Name:  "gosession_bootstrap_total",
		Help:  "Startups by outcome.",
		Label: "outcome",
		Values: []LabeledValue{
			{ID: goSession.MetricBootstrapUnauthenticated, Value: "unauthenticated"},
			{ID: goSession.MetricBootstrapExpired, Value: "expired"},
			{ID: goSession.MetricBootstrapVerified, Value: "verified"},
			{ID: goSession.MetricBootstrapDegraded, Value: "degraded"},
			{ID: goSession.MetricBootstrapCleared, Value: "cleared"},
		},
	},
	{
		Name:  "gosession_verification_total",
		Help:  "Tenant verification results.",
		Label: "outcome",
		Values: []LabeledValue{
			{ID: goSession.MetricVerificationExternalVerified, Value: "external_verified"},
			{ID: goSession.MetricVerificationExternalIncomplete, Value: "external_incomplete"},
			{ID: goSession.MetricVerificationPlatformVerified, Value: "platform_verified"},
			{ID: goSession.MetricVerificationPlatformUnverified, Value: "platform_unverified"},
			{ID: goSession.MetricVerificationCheckFailed, Value: "check_failed"},
		},
	},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRefreshLatency, Name: "gosession_refresh_latency_seconds", Help: "Token refresh round-trip latency."},
}

// HistogramBounds are the upper bounds of the eight latency buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix are HistogramBounds in instrument-name form.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
