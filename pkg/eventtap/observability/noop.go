package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordDispatch does nothing.
func (NoopMetrics) RecordDispatch(_ context.Context, _ string, _ bool, _ time.Duration) {}

// RecordSubscriberPanic does nothing.
func (NoopMetrics) RecordSubscriberPanic(_ context.Context, _ string) {}

// RecordEnrichFailure does nothing.
func (NoopMetrics) RecordEnrichFailure(_ context.Context, _ string) {}

// RecordReconcile does nothing.
func (NoopMetrics) RecordReconcile(_ context.Context, _ bool, _ error) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartReconcileSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartReconcileSpan(ctx context.Context, _ int, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
