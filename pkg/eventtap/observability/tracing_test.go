package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("eventtap")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		tracer = otel.Tracer("eventtap")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartReconcileSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		exporter.Reset()

		ctx, span := sm.StartReconcileSpan(context.Background(), 3, "keyDown|keyUp")
		require.NotNil(t, span)
		assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "eventtap.reconcile", s.Name)
		assert.Equal(t, codes.Ok, s.Status.Code)

		var subscribers int64
		var mask string
		for _, attr := range s.Attributes {
			switch attr.Key {
			case "subscribers":
				subscribers = attr.Value.AsInt64()
			case "mask":
				mask = attr.Value.AsString()
			}
		}
		assert.Equal(t, int64(3), subscribers)
		assert.Equal(t, "keyDown|keyUp", mask)
	})

	t.Run("records error", func(t *testing.T) {
		exporter.Reset()

		_, span := sm.StartReconcileSpan(context.Background(), 1, "keyDown")
		sm.EndSpanWithError(span, errors.New("permission denied"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "permission denied", spans[0].Status.Description)
		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
	})

	t.Run("nil span is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { sm.EndSpanWithError(nil, errors.New("x")) })
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	ctx, span := sm.StartReconcileSpan(context.Background(), 0, "none")
	sm.AddSpanEvent(ctx, "hook.disposed", attribute.String("mask", "keyDown"))
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "hook.disposed", spans[0].Events[0].Name)
}

func TestNoopSpanManager(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		newCtx, span := sm.StartReconcileSpan(ctx, 1, "keyDown")
		assert.Equal(t, ctx, newCtx)
		assert.NotNil(t, span)
		sm.AddSpanEvent(newCtx, "x")
		sm.EndSpanWithError(span, errors.New("x"))
	})
}
