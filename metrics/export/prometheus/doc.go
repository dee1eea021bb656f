// Package prometheus exposes engine metrics as a prometheus.Collector.
// Counters and histograms are read lazily from a metrics snapshot at scrape
// time, so collection never touches the engine's hot path.
package prometheus
