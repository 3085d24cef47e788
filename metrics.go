package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by goSession APIs.
//
// MetricID values index the counters of a [Metrics] instance and are stable for export.
type MetricID uint16

const (
	// MetricLoginSuccess counts password logins that started a session.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed password logins.
	MetricLoginFailure
	// MetricSSOLoginSuccess counts SSO payloads that started a session.
	MetricSSOLoginSuccess
	// MetricSSOLoginFailure counts rejected SSO payloads.
	MetricSSOLoginFailure
	// MetricRegisterSuccess counts accepted registrations.
	MetricRegisterSuccess
	// MetricRegisterFailure counts rejected or failed registrations.
	MetricRegisterFailure
	// MetricRefreshSuccess counts refresh calls that replaced the session.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh calls that failed.
	MetricRefreshFailure
	// MetricRefreshCoalesced counts triggers that joined a refresh already in flight.
	MetricRefreshCoalesced
	// MetricRefreshDiscarded counts refresh responses dropped after logout or expiry.
	MetricRefreshDiscarded
	// MetricRefreshTriggerTimer counts refresh calls started by the armed timer.
	MetricRefreshTriggerTimer
	// MetricRefreshTriggerVisibility counts refresh calls started by a visibility change.
	MetricRefreshTriggerVisibility
	// MetricRefreshTriggerHeartbeat counts refresh calls started by the heartbeat.
	MetricRefreshTriggerHeartbeat
	// MetricRefreshTriggerManual counts refresh calls started explicitly or by bootstrap.
	MetricRefreshTriggerManual
	// MetricBootstrapUnauthenticated counts startups without a stored token.
	MetricBootstrapUnauthenticated
	// MetricBootstrapExpired counts startups that found an expired token.
	MetricBootstrapExpired
	// MetricBootstrapVerified counts startups that refreshed identity from the server.
	MetricBootstrapVerified
	// MetricBootstrapDegraded counts startups that fell back to the cached identity.
	MetricBootstrapDegraded
	// MetricBootstrapCleared counts cold startups whose identity fetch failed.
	MetricBootstrapCleared
	// MetricVerificationExternalVerified counts cascade results.
	MetricVerificationExternalVerified
	// MetricVerificationExternalIncomplete counts cascade results.
	MetricVerificationExternalIncomplete
	// MetricVerificationPlatformVerified counts cascade results.
	MetricVerificationPlatformVerified
	// MetricVerificationPlatformUnverified counts cascade results.
	MetricVerificationPlatformUnverified
	// MetricVerificationCheckFailed counts cascade results that failed open.
	MetricVerificationCheckFailed
	// MetricIdentityUpdated counts applied updateUser merges.
	MetricIdentityUpdated
	// MetricLogout counts logouts.
	MetricLogout
	// MetricLogoutServerFailure counts logouts whose server call failed.
	MetricLogoutServerFailure
	// MetricSessionExpired counts sessions ended because the token lapsed unrecoverably.
	MetricSessionExpired
	// MetricRefreshLatency is the refresh round-trip histogram.
	MetricRefreshLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets  [histBucketCount]uint64
	sumNanos uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by goSession APIs.
//
// Metrics instances are lock-free and safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by goSession APIs.
//
// MetricsSnapshot is a point-in-time copy; it does not change after [Metrics.Snapshot] returns.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
	// HistogramSums holds the total observed duration per histogram.
	HistogramSums map[MetricID]time.Duration
}

// NewMetrics returns a metrics set configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only histogram metrics accept
// observations.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRefreshLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
	if d > 0 {
		atomic.AddUint64(&m.histograms[id].sumNanos, uint64(d))
	}
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRefreshLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRefreshLatency].buckets[i])
		}
		s.Histograms[MetricRefreshLatency] = buckets
		s.HistogramSums = map[MetricID]time.Duration{
			MetricRefreshLatency: time.Duration(atomic.LoadUint64(&m.histograms[MetricRefreshLatency].sumNanos)),
		}
	}

	return s
}

// bucketIndex maps a refresh round-trip to a histogram bucket. Bounds are
// 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
