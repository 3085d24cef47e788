package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

type fakeSource struct {
	snapshot goSession.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goSession.MetricsSnapshot { return f.snapshot }
func (f fakeSource) EventsDropped() uint64                       { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters:   map[goSession.MetricID]uint64{},
			Histograms: map[goSession.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricLoginSuccess: 7,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricRefreshLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "gosession_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gosession_refresh_latency_seconds_bucket{le=\"0.05\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gosession_refresh_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gosession_events_dropped_total 2") {
		t.Fatalf("expected events dropped counter in output, got:\n%s", out)
	}
}

func TestRenderLabelsFamiliesAndLatencySum(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricRefreshTriggerTimer:          4,
				goSession.MetricRefreshTriggerManual:         1,
				goSession.MetricBootstrapDegraded:            2,
				goSession.MetricVerificationExternalVerified: 3,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricRefreshLatency: {2, 0, 0, 0, 0, 0, 0, 0},
			},
			HistogramSums: map[goSession.MetricID]time.Duration{
				goSession.MetricRefreshLatency: 1500 * time.Millisecond,
			},
		},
	})

	out := exp.Render()
	for _, want := range []string{
		"# TYPE gosession_refresh_triggers_total counter\n",
		`gosession_refresh_triggers_total{trigger="timer"} 4`,
		`gosession_refresh_triggers_total{trigger="visibility"} 0`,
		`gosession_refresh_triggers_total{trigger="manual"} 1`,
		`gosession_bootstrap_total{outcome="degraded"} 2`,
		`gosession_verification_total{outcome="external_verified"} 3`,
		"gosession_refresh_latency_seconds_sum 1.5\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "# TYPE gosession_refresh_triggers_total") != 1 {
		t.Fatalf("family header must be written once")
	}
	if strings.Contains(out, "gosession_refresh_trigger_timer_total") {
		t.Fatalf("trigger counters must only appear as labeled series")
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters:   map[goSession.MetricID]uint64{goSession.MetricLoginSuccess: 1},
			Histograms: map[goSession.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricLoginSuccess:                 1000,
				goSession.MetricLoginFailure:                 40,
				goSession.MetricRefreshSuccess:               800,
				goSession.MetricRefreshFailure:               10,
				goSession.MetricRefreshCoalesced:             120,
				goSession.MetricRefreshTriggerTimer:          610,
				goSession.MetricRefreshTriggerHeartbeat:      150,
				goSession.MetricRefreshTriggerVisibility:     40,
				goSession.MetricBootstrapVerified:            900,
				goSession.MetricVerificationPlatformVerified: 300,
				goSession.MetricVerificationCheckFailed:      3,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricRefreshLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
			HistogramSums: map[goSession.MetricID]time.Duration{
				goSession.MetricRefreshLatency: 412 * time.Second,
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
