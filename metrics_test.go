package authrim

import (
	"testing"
	"time"
)

func TestMetricsDisabledIsInert(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricSubmitSuccess)
	m.Observe(MetricSubmitLatency, 10*time.Millisecond)

	if m.Enabled() {
		t.Fatal("metrics should report disabled")
	}
	if got := m.Value(MetricSubmitSuccess); got != 0 {
		t.Fatalf("disabled metrics must not count, got %d", got)
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatal("disabled snapshot should be empty")
	}
}

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricSubmitSuccess)
	m.Observe(MetricSubmitLatency, time.Millisecond)
	if m.Value(MetricSubmitSuccess) != 0 {
		t.Fatal("nil metrics must read zero")
	}
}

func TestMetricsCountersAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Inc(MetricFlowInitialized)
	m.Inc(MetricFlowInitialized)
	m.Inc(MetricSubmitRateLimited)

	if got := m.Value(MetricFlowInitialized); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricFlowInitialized] != 2 {
		t.Fatalf("snapshot counter mismatch: %d", snap.Counters[MetricFlowInitialized])
	}
	if snap.Counters[MetricSubmitRateLimited] != 1 {
		t.Fatalf("snapshot counter mismatch: %d", snap.Counters[MetricSubmitRateLimited])
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	samples := []struct {
		d      time.Duration
		bucket int
	}{
		{3 * time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{20 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{90 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}
	for _, s := range samples {
		m.Observe(MetricSubmitLatency, s.d)
	}

	buckets := m.Snapshot().Histograms[MetricSubmitLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for _, s := range samples {
		if buckets[s.bucket] != 1 {
			t.Fatalf("expected one sample in bucket %d for %v, got %d",
				s.bucket, s.d, buckets[s.bucket])
		}
	}
}

func TestMetricsObserveIgnoresCounterIDs(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricFlowCompleted, time.Millisecond)

	snap := m.Snapshot()
	if _, ok := snap.Histograms[MetricFlowCompleted]; ok {
		t.Fatal("counter ids must not collect latency samples")
	}
}
