package eventtap

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/observability"
)

// supervisorConfig holds construction options.
type supervisorConfig struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	metricsEnabled bool
	spans          observability.SpanManager
	tracingEnabled bool
	enricher       hook.Enricher
	enricherSet    bool
	panicLimit     int
	slowDispatch   time.Duration
	observer       func(Outcome)
}

func defaultSupervisorConfig() supervisorConfig {
	return supervisorConfig{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Supervisor.
type Option func(*supervisorConfig)

// WithLogger sets the logger. Default: slog.Default().
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *supervisorConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics.
// Default: false (no-op recorder)
//
// Metrics use the global meter provider; configure it first with
// otel.SetMeterProvider.
func WithMetrics(enabled bool) Option {
	return func(c *supervisorConfig) {
		c.metricsEnabled = enabled
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables an OpenTelemetry span per hook rebuild.
// Default: false
func WithTracing(enabled bool) Option {
	return func(c *supervisorConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithEnricher sets how low-level events are converted for enriched
// subscribers.
//
// By default the supervisor uses the tap itself when it implements
// hook.Enricher, and hook.StandardEnricher otherwise. A nil enricher
// disables enrichment: enriched subscribers stay registered and count toward
// the hook mask, but never receive events.
func WithEnricher(e hook.Enricher) Option {
	return func(c *supervisorConfig) {
		c.enricher = e
		c.enricherSet = true
	}
}

// WithPanicLimit unsubscribes a subscriber once its callbacks have panicked
// n times. The subscriber is removed after the dispatch pass that reached
// the limit completes. Default: 0 (never remove)
func WithPanicLimit(n int) Option {
	return func(c *supervisorConfig) {
		if n > 0 {
			c.panicLimit = n
		}
	}
}

// WithSlowDispatch logs a warning for every dispatch pass that takes
// longer than d. Default: 0 (off)
func WithSlowDispatch(d time.Duration) Option {
	return func(c *supervisorConfig) {
		if d > 0 {
			c.slowDispatch = d
		}
	}
}

// WithDispatchObserver registers fn to receive an Outcome after every
// dispatch pass. fn runs on the event delivery path and must not block.
func WithDispatchObserver(fn func(Outcome)) Option {
	return func(c *supervisorConfig) {
		c.observer = fn
	}
}

// Outcome describes one completed dispatch pass.
type Outcome struct {
	// Event is the low-level event as it left the pass.
	Event hook.Event
	// Suppressed is true if a subscriber cancelled the event.
	Suppressed bool
	// SuppressedBy names the cancelling subscriber.
	SuppressedBy string
	// SuppressedForm is the form SuppressedBy was dispatched under.
	SuppressedForm Form
	// Enriched is true if an enriched representation was built.
	Enriched bool
	// EnrichErr is the *EnrichError from a failed enrichment, or nil.
	EnrichErr error
	// Invoked counts the callbacks that ran, including ones that panicked.
	Invoked int
	// Panics holds the panics recovered during the pass.
	Panics []*PanicError
	// Duration is the time spent in the pass.
	Duration time.Duration
}
