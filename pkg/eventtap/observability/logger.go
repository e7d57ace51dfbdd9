// Package observability provides structured logging, metrics, and tracing
// for eventtap.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds subscriber context to a logger.
func EnrichLogger(logger *slog.Logger, subscriber, form string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("subscriber", subscriber),
		slog.String("form", form),
	)
}

// LogHookInstalled logs a hook being created and enabled.
func LogHookInstalled(logger *slog.Logger, mask string, subscribers int) {
	if logger == nil {
		return
	}
	logger.Debug("event hook installed",
		slog.String("mask", mask),
		slog.Int("subscribers", subscribers),
	)
}

// LogHookRemoved logs a hook being disabled and disposed.
func LogHookRemoved(logger *slog.Logger, mask string) {
	if logger == nil {
		return
	}
	logger.Debug("event hook removed",
		slog.String("mask", mask),
	)
}

// LogHookFailed logs a hook that could not be installed (non-fatal).
func LogHookFailed(logger *slog.Logger, op, mask string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event hook unavailable",
		slog.String("operation", op),
		slog.String("mask", mask),
		slog.String("error", err.Error()),
	)
}

// LogSubscribed logs a subscriber registration.
func LogSubscribed(logger *slog.Logger, subscriber, form string, events []string, rehook bool) {
	if logger == nil {
		return
	}
	logger.Debug("subscriber registered",
		slog.String("subscriber", subscriber),
		slog.String("form", form),
		slog.Any("events", events),
		slog.Bool("rehook", rehook),
	)
}

// LogEmptySubscription logs a subscription that was ignored because it
// named no events.
func LogEmptySubscription(logger *slog.Logger, subscriber, form string) {
	if logger == nil {
		return
	}
	logger.Debug("subscription ignored: no events",
		slog.String("subscriber", subscriber),
		slog.String("form", form),
	)
}

// LogUnsubscribed logs a subscriber removal.
func LogUnsubscribed(logger *slog.Logger, subscriber string, rehook bool) {
	if logger == nil {
		return
	}
	logger.Debug("subscriber removed",
		slog.String("subscriber", subscriber),
		slog.Bool("rehook", rehook),
	)
}

// LogSubscriberPanic logs a recovered panic from a subscriber callback.
// logger is expected to carry the subscriber, see EnrichLogger.
func LogSubscriberPanic(logger *slog.Logger, eventType string, value any, stack string) {
	if logger == nil {
		return
	}
	logger.Error("subscriber panicked",
		slog.String("event_type", eventType),
		slog.Any("panic", value),
		slog.String("stack", stack),
	)
}

// LogQuarantined logs a subscriber removed after repeated panics.
// logger is expected to carry the subscriber, see EnrichLogger.
func LogQuarantined(logger *slog.Logger, panics int) {
	if logger == nil {
		return
	}
	logger.Warn("subscriber quarantined",
		slog.Int("panics", panics),
	)
}

// LogSlowDispatch logs a dispatch pass that took longer than threshold.
func LogSlowDispatch(logger *slog.Logger, eventType string, duration, threshold time.Duration, invoked int) {
	if logger == nil {
		return
	}
	logger.Warn("slow dispatch",
		slog.String("event_type", eventType),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
		slog.Int("invoked", invoked),
	)
}

// LogEnrichFailed logs an event that could not be enriched (non-fatal).
func LogEnrichFailed(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Debug("event enrichment failed",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogInvalidRef logs a callback whose reference no longer resolves.
func LogInvalidRef(logger *slog.Logger, ref uint64, eventType string) {
	if logger == nil {
		return
	}
	logger.Warn("hook callback with unknown reference, passing event through",
		slog.Uint64("ref", ref),
		slog.String("event_type", eventType),
	)
}

// LogTapReenabled logs the hook being switched back on after the OS
// disabled it.
func LogTapReenabled(logger *slog.Logger, reason string) {
	if logger == nil {
		return
	}
	logger.Info("event hook re-enabled",
		slog.String("reason", reason),
	)
}

// LogJournalWriteFailed logs a journal record that could not be stored.
func LogJournalWriteFailed(logger *slog.Logger, recordID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("record_id", recordID),
		slog.String("error", err.Error()),
	)
}

// LogJournalClosed logs the journal recorder shutting down.
func LogJournalClosed(logger *slog.Logger, written, dropped uint64) {
	if logger == nil {
		return
	}
	logger.Debug("journal closed",
		slog.Uint64("written", written),
		slog.Uint64("dropped", dropped),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
