// Package otel bridges engine metrics into an OpenTelemetry meter using
// observable instruments, so collection happens on the reader's schedule
// rather than per engine operation.
package otel
