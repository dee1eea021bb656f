package authrim

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter or histogram.
type MetricID uint16

const (
	// MetricFlowInitialized counts successful InitFlow calls.
	MetricFlowInitialized MetricID = iota
	// MetricFlowInitFailure counts InitFlow calls that returned an error.
	MetricFlowInitFailure
	// MetricSubmitSuccess counts submits that advanced or completed a flow.
	MetricSubmitSuccess
	// MetricSubmitReplayed counts submits answered from the idempotency cache.
	MetricSubmitReplayed
	// MetricSubmitRateLimited counts submits rejected by the sliding window.
	MetricSubmitRateLimited
	// MetricSessionExpired counts submits rejected past the session age ceiling.
	MetricSessionExpired
	// MetricCycleBlocked counts transitions rejected by the revisit cap.
	MetricCycleBlocked
	// MetricFlowTooLong counts transitions rejected by the total length cap.
	MetricFlowTooLong
	// MetricFlowCompleted counts flows that reached a terminal node.
	MetricFlowCompleted
	// MetricFlowCancelled counts explicit cancellations.
	MetricFlowCancelled
	// MetricUnreachableTermination counts decision/switch dead ends.
	MetricUnreachableTermination
	// MetricPlanCacheHit counts plan lookups served from cache.
	MetricPlanCacheHit
	// MetricPlanCacheMiss counts plan lookups that triggered compilation.
	MetricPlanCacheMiss
	// MetricPlanCompileFailure counts graph compilations that failed.
	MetricPlanCompileFailure
	// MetricDecisionDefaultTaken counts decision nodes routed via default branch.
	MetricDecisionDefaultTaken
	// MetricSwitchDefaultTaken counts switch nodes routed via default case.
	MetricSwitchDefaultTaken
	// MetricStateReads counts GetFlowState calls.
	MetricStateReads
	// MetricSubmitLatency is the histogram for end-to-end submit duration.
	MetricSubmitLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is the lock-free in-process metrics store. All methods are safe
// for concurrent use; a nil *Metrics is valid and inert.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics store from config.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histograms are being recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample into the submit histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricSubmitLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and enabled histograms.
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
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricSubmitLatency].buckets[i])
		}
		s.Histograms[MetricSubmitLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
