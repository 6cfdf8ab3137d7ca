package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution metrics for probe runs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRun records a single probe run with its duration and raw outcome.
	// Exactly one of the healthy/unhealthy counters is incremented per run.
	RecordRun(ctx context.Context, meta ProbeMeta, duration time.Duration, healthy bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter          metric.Meter
	healthyCount   metric.Int64Counter
	unhealthyCount metric.Int64Counter
	durationHist   metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	healthyCount, err := meter.Int64Counter(
		"health.probe.healthy",
		metric.WithDescription("Total number of healthy probe run outcomes"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	unhealthyCount, err := meter.Int64Counter(
		"health.probe.unhealthy",
		metric.WithDescription("Total number of unhealthy probe run outcomes"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"health.probe.duration_ms",
		metric.WithDescription("Probe run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		healthyCount:   healthyCount,
		unhealthyCount: unhealthyCount,
		durationHist:   durationHist,
	}, nil
}

// RecordRun records metrics for a probe run.
func (m *metricsImpl) RecordRun(ctx context.Context, meta ProbeMeta, duration time.Duration, healthy bool) {
	attrs := []attribute.KeyValue{
		attribute.String("probe.name", meta.Name),
		attribute.Bool("probe.critical", meta.Critical),
	}
	if meta.Type != "" {
		attrs = append(attrs, attribute.String("probe.type", meta.Type))
	}

	opt := metric.WithAttributes(attrs...)

	if healthy {
		m.healthyCount.Add(ctx, 1, opt)
	} else {
		m.unhealthyCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordRun(ctx context.Context, meta ProbeMeta, duration time.Duration, healthy bool) {
}

// NewNoopMetrics creates a no-op Metrics.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}
