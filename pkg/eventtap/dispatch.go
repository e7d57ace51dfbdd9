package eventtap

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/observability"
)

// Compile-time check that Dispatch can be installed as a hook callback.
var _ hook.Callback = Dispatch

// Dispatch is the callback every Supervisor installs on its hook.
//
// It resolves ref to the owning Supervisor and runs one dispatch pass over
// ev. A reference that does not resolve, for example one belonging to a
// closed Supervisor, passes the event through untouched.
func Dispatch(ref hook.Ref, ev *hook.Event) hook.Verdict {
	if ev == nil {
		return hook.PassThrough
	}
	s, err := resolve(ref)
	if err != nil {
		observability.LogInvalidRef(slog.Default(), uint64(ref), ev.Type.String())
		return hook.PassThrough
	}
	return s.dispatch(ev)
}

// pass is the state of one dispatch pass.
type pass struct {
	s          *Supervisor
	outcome    Outcome
	quarantine []quarantined
}

type quarantined struct {
	name string
	form Form
}

func (s *Supervisor) dispatch(ev *hook.Event) hook.Verdict {
	elapsed := observability.TimedOperation()

	// Taps switch themselves off when a callback is too slow or on user
	// request, and only tell the callback afterwards.
	if ev.Type.TapDisabled() {
		s.mu.Lock()
		s.hooks.reenable(ev.Type)
		s.mu.Unlock()
	}

	p := &pass{s: s}
	p.run(ev)
	p.outcome.Event = *ev
	p.outcome.Duration = elapsed()

	s.cfg.metrics.RecordDispatch(context.Background(), ev.Type.String(), p.outcome.Suppressed, p.outcome.Duration)
	if s.cfg.slowDispatch > 0 && p.outcome.Duration > s.cfg.slowDispatch {
		observability.LogSlowDispatch(s.cfg.logger, ev.Type.String(), p.outcome.Duration, s.cfg.slowDispatch, p.outcome.Invoked)
	}
	if s.cfg.observer != nil {
		s.cfg.observer(p.outcome)
	}
	for _, q := range p.quarantine {
		s.quarantine(q.name, q.form)
	}

	if p.outcome.Suppressed {
		return hook.Suppress
	}
	return hook.PassThrough
}

func (p *pass) run(ev *hook.Event) {
	s := p.s

	raw := &RawEvent{Event: ev}
	for _, sub := range s.subs.RawEntries() {
		if !sub.Interested(ev.Type) {
			continue
		}
		p.invoke(sub.Name, FormRaw, ev.Type, func() { sub.Callback(raw) })
		if raw.Cancelled() {
			p.suppress(sub.Name, FormRaw)
			return
		}
	}

	if s.enricher == nil || !ev.Type.Universal() || !s.subs.HasEnriched() {
		return
	}
	enriched, err := s.enricher.Enrich(ev)
	if err == nil && enriched == nil {
		err = hook.ErrNotEnrichable
	}
	if err != nil {
		p.outcome.EnrichErr = &EnrichError{Type: ev.Type, Err: err}
		observability.LogEnrichFailed(s.cfg.logger, ev.Type.String(), err)
		s.cfg.metrics.RecordEnrichFailure(context.Background(), ev.Type.String())
		return
	}
	p.outcome.Enriched = true

	wrapped := &EnrichedEvent{Enriched: enriched}
	for _, sub := range s.subs.EnrichedEntries() {
		if !sub.Interested(ev.Type) {
			continue
		}
		p.invoke(sub.Name, FormEnriched, ev.Type, func() { sub.Callback(wrapped) })
		if wrapped.Cancelled() {
			p.suppress(sub.Name, FormEnriched)
			return
		}
	}
}

func (p *pass) suppress(name string, form Form) {
	p.outcome.Suppressed = true
	p.outcome.SuppressedBy = name
	p.outcome.SuppressedForm = form
}

// invoke runs one subscriber callback, recovering a panic so the rest of
// the pass continues.
func (p *pass) invoke(name string, form Form, t eventtype.Type, fn func()) {
	p.outcome.Invoked++
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr := &PanicError{
			Subscriber: name,
			Form:       form,
			Type:       t,
			Value:      r,
			Stack:      string(debug.Stack()),
		}
		p.outcome.Panics = append(p.outcome.Panics, perr)
		logger := observability.EnrichLogger(p.s.cfg.logger, name, form.String())
		observability.LogSubscriberPanic(logger, t.String(), r, perr.Stack)
		p.s.cfg.metrics.RecordSubscriberPanic(context.Background(), form.String())
		if p.s.countPanic(name) {
			p.quarantine = append(p.quarantine, quarantined{name: name, form: form})
		}
	}()
	fn()
}

// countPanic records a panic by name and reports whether it reached the
// panic limit.
func (s *Supervisor) countPanic(name string) bool {
	if s.cfg.panicLimit == 0 {
		return false
	}
	n := s.panics.GetOrCreate(name, func() *atomic.Int64 { return new(atomic.Int64) }).Add(1)
	return n == int64(s.cfg.panicLimit)
}

// quarantine unsubscribes name if it is still at the panic limit.
func (s *Supervisor) quarantine(name string, form Form) {
	count, ok := s.panics.Get(name)
	if !ok {
		return
	}
	n := int(count.Load())
	if n < s.cfg.panicLimit {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.subs.Forms(name)) == 0 {
		return
	}
	observability.LogQuarantined(observability.EnrichLogger(s.cfg.logger, name, form.String()), n)
	s.unsubscribeLocked(name)
}
