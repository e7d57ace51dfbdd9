package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the summed counter value for datapoints carrying key=value.
func sumFor(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.Emit() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordDispatch(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordDispatch(ctx, "keyDown", false, 40*time.Microsecond)
	m.RecordDispatch(ctx, "keyDown", true, 60*time.Microsecond)
	m.RecordDispatch(ctx, "mouseMoved", false, 10*time.Microsecond)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumFor(t, findMetric(rm, "eventtap.dispatch.events"), "event_type", "keyDown"))
	assert.Equal(t, int64(1), sumFor(t, findMetric(rm, "eventtap.dispatch.events"), "event_type", "mouseMoved"))
	assert.Equal(t, int64(1), sumFor(t, findMetric(rm, "eventtap.dispatch.suppressed"), "event_type", "keyDown"))

	latency := findMetric(rm, "eventtap.dispatch.latency_us")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	require.NotEmpty(t, hist.DataPoints)
}

func TestRecordSubscriberPanicAndEnrichFailure(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordSubscriberPanic(ctx, "raw")
	m.RecordSubscriberPanic(ctx, "raw")
	m.RecordSubscriberPanic(ctx, "enriched")
	m.RecordEnrichFailure(ctx, "scrollWheel")

	rm := collectMetrics(t, reader)
	panics := findMetric(rm, "eventtap.subscriber.panics")
	assert.Equal(t, int64(2), sumFor(t, panics, "form", "raw"))
	assert.Equal(t, int64(1), sumFor(t, panics, "form", "enriched"))
	assert.Equal(t, int64(1), sumFor(t, findMetric(rm, "eventtap.enrich.failures"), "event_type", "scrollWheel"))
}

func TestRecordReconcile(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordReconcile(ctx, true, nil)
	m.RecordReconcile(ctx, false, errors.New("denied"))
	m.RecordReconcile(ctx, false, nil)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "eventtap.hook.reconciles")
	assert.Equal(t, int64(1), sumFor(t, metric, "failed", "true"))
	assert.Equal(t, int64(2), sumFor(t, metric, "failed", "false"))
	assert.Equal(t, int64(1), sumFor(t, metric, "installed", "true"))
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordDispatch(context.Background(), "keyDown", true, time.Millisecond)
		m.RecordSubscriberPanic(context.Background(), "raw")
		m.RecordEnrichFailure(context.Background(), "keyDown")
		m.RecordReconcile(context.Background(), false, errors.New("x"))
	})
}
