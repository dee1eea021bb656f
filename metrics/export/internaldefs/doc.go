// Package internaldefs holds the shared metric name table consumed by the
// exporter packages. It exists so the Prometheus and OpenTelemetry exporters
// agree on names, help text, and bucket layout without repeating them.
package internaldefs
