package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records eventtap metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one dispatch pass.
	RecordDispatch(ctx context.Context, eventType string, suppressed bool, duration time.Duration)

	// RecordSubscriberPanic records a recovered subscriber panic, labelled
	// by subscriber form ("raw" or "enriched").
	RecordSubscriberPanic(ctx context.Context, form string)

	// RecordEnrichFailure records an event that could not be enriched.
	RecordEnrichFailure(ctx context.Context, eventType string)

	// RecordReconcile records a hook rebuild attempt.
	RecordReconcile(ctx context.Context, installed bool, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	suppressed      metric.Int64Counter
	panics          metric.Int64Counter
	enrichFailures  metric.Int64Counter
	reconciles      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventtap")

	dispatches, err := meter.Int64Counter("eventtap.dispatch.events",
		metric.WithDescription("Number of intercepted events dispatched"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("eventtap.dispatch.latency_us",
		metric.WithDescription("Time spent dispatching one event in microseconds"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return nil, err
	}

	suppressed, err := meter.Int64Counter("eventtap.dispatch.suppressed",
		metric.WithDescription("Number of events suppressed by a subscriber"),
	)
	if err != nil {
		return nil, err
	}

	panics, err := meter.Int64Counter("eventtap.subscriber.panics",
		metric.WithDescription("Number of recovered subscriber panics"),
	)
	if err != nil {
		return nil, err
	}

	enrichFailures, err := meter.Int64Counter("eventtap.enrich.failures",
		metric.WithDescription("Number of events that could not be enriched"),
	)
	if err != nil {
		return nil, err
	}

	reconciles, err := meter.Int64Counter("eventtap.hook.reconciles",
		metric.WithDescription("Number of hook rebuild attempts"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		suppressed:      suppressed,
		panics:          panics,
		enrichFailures:  enrichFailures,
		reconciles:      reconciles,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records one dispatch pass.
func (m *otelMetrics) RecordDispatch(ctx context.Context, eventType string, suppressed bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("event_type", eventType),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds()), attrs)
	if suppressed {
		m.suppressed.Add(ctx, 1, attrs)
	}
}

// RecordSubscriberPanic records a recovered subscriber panic.
func (m *otelMetrics) RecordSubscriberPanic(ctx context.Context, form string) {
	m.panics.Add(ctx, 1, metric.WithAttributes(
		attribute.String("form", form),
	))
}

// RecordEnrichFailure records an event that could not be enriched.
func (m *otelMetrics) RecordEnrichFailure(ctx context.Context, eventType string) {
	m.enrichFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordReconcile records a hook rebuild attempt.
func (m *otelMetrics) RecordReconcile(ctx context.Context, installed bool, err error) {
	m.reconciles.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("installed", installed),
		attribute.Bool("failed", err != nil),
	))
}
