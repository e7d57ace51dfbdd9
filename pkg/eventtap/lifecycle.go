package eventtap

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/observability"
)

// hookManager owns the single hook of one Supervisor.
// Callers serialise access with the supervisor's lock.
type hookManager struct {
	tap     hook.Tap
	ref     hook.Ref
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	handle hook.Handle
	mask   eventtype.Mask
}

func (m *hookManager) installed() bool {
	return m.handle != 0
}

// reconcile replaces the current hook with one covering aggregate.
// With no subscribers, or when aggregate has no mask bits, it only removes
// the current hook.
func (m *hookManager) reconcile(ctx context.Context, subscribers int, aggregate []eventtype.Type) (err error) {
	mask := eventtype.MaskOf(aggregate...)

	ctx, span := m.spans.StartReconcileSpan(ctx, subscribers, mask.String())
	defer func() {
		m.spans.EndSpanWithError(span, err)
		m.metrics.RecordReconcile(ctx, m.installed(), err)
	}()

	m.teardown(ctx)
	if subscribers == 0 || mask.Empty() {
		return nil
	}

	handle, err := m.tap.Create(mask, Dispatch, m.ref)
	if err != nil {
		observability.LogHookFailed(m.logger, "create", mask.String(), err)
		return &HookError{Op: "create", Mask: mask, Err: err}
	}
	if err := m.tap.Attach(handle); err != nil {
		m.tap.Dispose(handle)
		observability.LogHookFailed(m.logger, "attach", mask.String(), err)
		return &HookError{Op: "attach", Mask: mask, Err: err}
	}
	m.tap.Enable(handle, true)

	m.handle, m.mask = handle, mask
	m.spans.AddSpanEvent(ctx, "hook.installed",
		attribute.Int64("handle", int64(handle)),
		attribute.String("mask", mask.String()),
	)
	observability.LogHookInstalled(m.logger, mask.String(), subscribers)
	return nil
}

// teardown disables and disposes the current hook, if any.
func (m *hookManager) teardown(ctx context.Context) {
	if !m.installed() {
		return
	}
	m.tap.Enable(m.handle, false)
	m.tap.Dispose(m.handle)
	m.spans.AddSpanEvent(ctx, "hook.removed",
		attribute.Int64("handle", int64(m.handle)),
	)
	observability.LogHookRemoved(m.logger, m.mask.String())
	m.handle, m.mask = 0, 0
}

// reenable switches the current hook back on after the tap disabled it.
func (m *hookManager) reenable(reason eventtype.Type) {
	if !m.installed() {
		return
	}
	m.tap.Enable(m.handle, true)
	observability.LogTapReenabled(m.logger, reason.String())
}
