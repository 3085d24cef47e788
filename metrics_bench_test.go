package goSession

import (
	"sync/atomic"
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricRefreshSuccess)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricRefreshSuccess)
	}
}

// refreshOutcome mirrors what the scheduler hooks record for one settled
// refresh.
type refreshOutcome struct {
	trigger MetricID
	took    time.Duration
}

// sessionRefreshMix approximates a long-lived session: mostly timer renewals
// with occasional heartbeat catch-ups after sleep.
var sessionRefreshMix = [...]refreshOutcome{
	{MetricRefreshTriggerTimer, 40 * time.Millisecond},
	{MetricRefreshTriggerTimer, 70 * time.Millisecond},
	{MetricRefreshTriggerTimer, 120 * time.Millisecond},
	{MetricRefreshTriggerTimer, 35 * time.Millisecond},
	{MetricRefreshTriggerHeartbeat, 300 * time.Millisecond},
	{MetricRefreshTriggerHeartbeat, 900 * time.Millisecond},
	{MetricRefreshTriggerVisibility, 60 * time.Millisecond},
	{MetricRefreshTriggerManual, 3 * time.Second},
}

func recordRefresh(m *Metrics, o refreshOutcome) {
	m.Inc(MetricRefreshSuccess)
	m.Inc(o.trigger)
	m.Observe(MetricRefreshLatency, o.took)
}

func BenchmarkMetricsRecordRefresh(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		recordRefresh(m, sessionRefreshMix[i%len(sessionRefreshMix)])
	}
}

// BenchmarkMetricsRecordRefreshParallel models many controllers in one
// process sharing a Metrics set while their schedulers fire together.
func BenchmarkMetricsRecordRefreshParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			recordRefresh(m, sessionRefreshMix[idx])
			idx++
			if idx == len(sessionRefreshMix) {
				idx = 0
			}
		}
	})
}

func BenchmarkMetricsRecordRefreshLatencyDisabledParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			recordRefresh(m, sessionRefreshMix[idx])
			idx++
			if idx == len(sessionRefreshMix) {
				idx = 0
			}
		}
	})
}

type packedBenchmarkMetrics struct {
	counters [metricIDCount]uint64
}

func (m *packedBenchmarkMetrics) Inc(id MetricID) {
	atomic.AddUint64(&m.counters[id], 1)
}

// startupMetricIDs is what a fleet of controllers records at once after a
// deploy.
var startupMetricIDs = [...]MetricID{
	MetricBootstrapVerified,
	MetricBootstrapVerified,
	MetricBootstrapDegraded,
	MetricVerificationPlatformVerified,
	MetricVerificationExternalVerified,
	MetricRefreshSuccess,
	MetricRefreshCoalesced,
	MetricRefreshTriggerVisibility,
}

func BenchmarkMetricsStartupBurstPadded(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(startupMetricIDs[idx])
			idx++
			if idx == len(startupMetricIDs) {
				idx = 0
			}
		}
	})
}

func BenchmarkMetricsStartupBurstPacked(b *testing.B) {
	m := &packedBenchmarkMetrics{}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(startupMetricIDs[idx])
			idx++
			if idx == len(startupMetricIDs) {
				idx = 0
			}
		}
	})
}

func BenchmarkMetricsSnapshot(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	for _, o := range sessionRefreshMix {
		recordRefresh(m, o)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = m.Snapshot()
	}
}
