// Package observe provides observability primitives for health probe
// execution.
//
// It is a pure instrumentation library: no scheduling, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the health manager
// so that every probe run is traced, measured, and logged.
package observe
