package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authrim "github.com/sgrastar/authrim-sub000"
	"github.com/sgrastar/authrim-sub000/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() authrim.MetricsSnapshot
	AuditDropped() uint64
}

// Collector renders engine metrics for a Prometheus registry.
type Collector struct {
	source         metricsSource
	counterDescs   map[authrim.MetricID]*prometheus.Desc
	histogramDescs map[authrim.MetricID]*prometheus.Desc
	auditDropped   *prometheus.Desc
}

// NewCollector creates a Collector reading from the given engine.
func NewCollector(engine *authrim.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource creates a Collector from a custom snapshot source.
func NewCollectorFromSource(source metricsSource) *Collector {
	c := &Collector{
		source:         source,
		counterDescs:   make(map[authrim.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histogramDescs: make(map[authrim.MetricID]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		auditDropped: prometheus.NewDesc("authrim_audit_dropped_total",
			"Dropped audit events due to dispatcher backpressure.", nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counterDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histogramDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.counterDescs {
		ch <- desc
	}
	for _, desc := range c.histogramDescs {
		ch <- desc
	}
	ch <- c.auditDropped
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()

	for _, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(c.counterDescs[def.ID],
			prometheus.CounterValue, float64(snapshot.Counters[def.ID]))
	}

	for _, def := range internaldefs.HistogramDefs {
		raw := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		cumulative := internaldefs.CumulativeBuckets(raw)

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[i]
		}
		count := cumulative[len(cumulative)-1]

		// The engine tracks bucket counts only; the sum is reported as zero.
		ch <- prometheus.MustNewConstHistogram(c.histogramDescs[def.ID], count, 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(c.auditDropped,
		prometheus.CounterValue, float64(c.source.AuditDropped()))
}

// Handler returns an http.Handler serving this collector from a dedicated
// registry.
func (c *Collector) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
