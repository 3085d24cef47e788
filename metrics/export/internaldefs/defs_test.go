package internaldefs

import (
	"strings"
	"testing"

	goSession "github.com/MrEthical07/goSession"
)

func TestDefsCoverEveryCounterOnce(t *testing.T) {
	seen := make(map[goSession.MetricID]bool)
	names := make(map[string]bool)
	claim := func(id goSession.MetricID, what string) {
		t.Helper()
		if id == goSession.MetricRefreshLatency {
			t.Fatalf("histogram listed as %s", what)
		}
		if seen[id] {
			t.Fatalf("metric id %d exported twice (%s)", id, what)
		}
		seen[id] = true
	}
	checkName := func(name string) {
		t.Helper()
		if names[name] {
			t.Fatalf("duplicate metric name %q", name)
		}
		if !strings.HasPrefix(name, "gosession_") || !strings.HasSuffix(name, "_total") {
			t.Fatalf("unexpected counter name %q", name)
		}
		names[name] = true
	}

	for _, def := range CounterDefs {
		checkName(def.Name)
		claim(def.ID, def.Name)
	}
	for _, fam := range FamilyDefs {
		checkName(fam.Name)
		if fam.Label == "" || len(fam.Values) == 0 {
			t.Fatalf("family %q needs a label and values", fam.Name)
		}
		values := make(map[string]bool, len(fam.Values))
		for _, v := range fam.Values {
			if values[v.Value] {
				t.Fatalf("family %q repeats %s=%q", fam.Name, fam.Label, v.Value)
			}
			values[v.Value] = true
			claim(v.ID, fam.Name+"{"+v.Value+"}")
		}
	}
	for id := goSession.MetricLoginSuccess; id < goSession.MetricRefreshLatency; id++ {
		if !seen[id] {
			t.Fatalf("metric id %d is not exported", id)
		}
	}
}

func TestHistogramBoundsMatchSuffixes(t *testing.T) {
	if len(HistogramBounds) != 8 || len(HistogramBoundSuffix) != 8 {
		t.Fatalf("expected 8 bounds, got %d/%d", len(HistogramBounds), len(HistogramBoundSuffix))
	}
	for i, bound := range HistogramBounds[:7] {
		if got := strings.ReplaceAll(bound, ".", "_"); got != HistogramBoundSuffix[i] {
			t.Fatalf("bound %q suffix mismatch: %q", bound, HistogramBoundSuffix[i])
		}
	}
}

func TestCumulativeBuckets(t *testing.T) {
	raw := NormalizeBuckets([]uint64{1, 2, 3})
	got := CumulativeBuckets(raw)
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("CumulativeBuckets=%v want %v", got, want)
	}
}
