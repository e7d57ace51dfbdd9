package eventtap

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/observability"
	"github.com/randalmurphal/eventtap/pkg/eventtap/registry"
	"github.com/randalmurphal/eventtap/pkg/eventtap/subscription"
)

// refs maps hook references to their supervisors. Every hook callback is
// resolved through it, so a callback arriving after Close finds nothing and
// passes the event through.
var (
	refs    = registry.New[hook.Ref, *Supervisor]()
	lastRef atomic.Uint64
)

func resolve(ref hook.Ref) (*Supervisor, error) {
	s, ok := refs.Get(ref)
	if !ok || s == nil {
		return nil, ErrInvalidRef
	}
	return s, nil
}

// Supervisor owns one interception hook and the subscribers sharing it.
//
// Several supervisors may exist at once, each with its own hook, but they
// compete for the same underlying interception resource. Most programs
// create one.
type Supervisor struct {
	mu     sync.Mutex
	ref    hook.Ref
	subs   *subscription.Registry[RawCallback, EnrichedCallback]
	hooks  *hookManager
	closed bool

	cfg      supervisorConfig
	enricher hook.Enricher

	// panics counts recovered panics per subscriber name.
	panics *registry.Registry[string, *atomic.Int64]
}

// New creates a Supervisor that intercepts events through tap.
// No hook is created until the first subscription.
func New(tap hook.Tap, opts ...Option) *Supervisor {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	enricher := cfg.enricher
	if !cfg.enricherSet {
		if e, ok := tap.(hook.Enricher); ok {
			enricher = e
		} else {
			enricher = hook.StandardEnricher
		}
	}

	s := &Supervisor{
		ref:      hook.Ref(lastRef.Add(1)),
		subs:     subscription.New[RawCallback, EnrichedCallback](),
		cfg:      cfg,
		enricher: enricher,
		panics:   registry.New[string, *atomic.Int64](),
	}
	s.hooks = &hookManager{
		tap:     tap,
		ref:     s.ref,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		spans:   cfg.spans,
	}
	refs.Register(s.ref, s)
	return s
}

// Subscribe registers cb for the low-level events in events under name.
//
// Registering a name that already has a raw subscription replaces its
// events and callback; the subscriber keeps its place in dispatch order.
// Unknown types are dropped, and an empty event set or a nil callback is
// ignored. The hook is rebuilt when the aggregate event set changes, or
// when no hook is installed.
//
// The tap-disabled notifications have no mask bit. A subscriber may list
// them, but they only arrive while a hook installed for other events is
// live; a subscription made only of them installs no hook.
func (s *Supervisor) Subscribe(name string, events []eventtype.Type, cb RawCallback) {
	events = knownTypes(events)
	s.subscribe(name, FormRaw, eventtype.Dedupe(events), func() bool {
		return s.subs.AddRaw(name, events, cb)
	}, cb == nil)
}

// SubscribeEnriched registers cb for the enriched events in kinds under
// name.
//
// Only kinds with a low-level counterpart can be intercepted; the rest are
// dropped, and if none remain the call is ignored. Otherwise it behaves like
// Subscribe.
func (s *Supervisor) SubscribeEnriched(name string, kinds []eventtype.Kind, cb EnrichedCallback) {
	events := eventtype.Lower(kinds)
	s.subscribe(name, FormEnriched, eventtype.Dedupe(events), func() bool {
		return s.subs.AddEnriched(name, events, cb)
	}, cb == nil)
}

func (s *Supervisor) subscribe(name string, form Form, events []eventtype.Type, add func() bool, nilCallback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || nilCallback {
		return
	}
	if len(events) == 0 {
		observability.LogEmptySubscription(s.cfg.logger, name, form.String())
		return
	}

	before := s.subs.Aggregate()
	rehook := add()
	// A replacement with fewer events can shrink the aggregate.
	if !rehook && !eventtype.Subset(before, s.subs.Aggregate()) {
		rehook = true
	}
	observability.LogSubscribed(s.cfg.logger, name, form.String(), typeNames(events), rehook)
	s.resetPanics(name)

	if rehook || !s.hooks.installed() {
		_ = s.reconcileLocked(context.Background())
	}
}

// Unsubscribe removes name from both forms. Unknown names are ignored.
// The hook is rebuilt if the aggregate event set shrank, and removed if no
// subscribers remain.
func (s *Supervisor) Unsubscribe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked(name)
}

func (s *Supervisor) unsubscribeLocked(name string) {
	if s.closed || len(s.subs.Forms(name)) == 0 {
		return
	}

	rehook := s.subs.Remove(name)
	observability.LogUnsubscribed(s.cfg.logger, name, rehook)
	s.resetPanics(name)

	if rehook || (s.subs.Count() > 0 && !s.hooks.installed()) {
		_ = s.reconcileLocked(context.Background())
	}
}

// UnsubscribeAll removes every subscriber and the hook.
func (s *Supervisor) UnsubscribeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.clearLocked()
}

func (s *Supervisor) clearLocked() {
	s.subs.Clear()
	s.panics.Clear()
	_ = s.reconcileLocked(context.Background())
}

// SubscribedEvents returns the union of every subscriber's events,
// deduplicated in first-seen order.
func (s *Supervisor) SubscribedEvents() []eventtype.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.Aggregate()
}

// SubscriberCount returns the number of registrations. A name subscribed
// in both forms counts twice.
func (s *Supervisor) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.Count()
}

// Mask returns the mask of the installed hook, or zero without one.
func (s *Supervisor) Mask() eventtype.Mask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.mask
}

// Hooked reports whether a hook is installed.
func (s *Supervisor) Hooked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.installed()
}

// Reconcile rebuilds the hook from the current subscribers.
//
// Subscription changes reconcile automatically; call Reconcile to retry
// after a *HookError, for example once input permission has been granted.
func (s *Supervisor) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.reconcileLocked(ctx)
}

func (s *Supervisor) reconcileLocked(ctx context.Context) error {
	return s.hooks.reconcile(ctx, s.subs.Count(), s.subs.Aggregate())
}

// Close removes every subscriber and the hook and releases the supervisor's
// reference. Hook callbacks that arrive after Close pass their events
// through. Close is idempotent.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.clearLocked()
	s.closed = true
	refs.Delete(s.ref)
	return nil
}

func (s *Supervisor) resetPanics(name string) {
	s.panics.Delete(name)
}

func knownTypes(types []eventtype.Type) []eventtype.Type {
	known := make([]eventtype.Type, 0, len(types))
	for _, t := range types {
		if t.Valid() {
			known = append(known, t)
		}
	}
	return known
}

func typeNames(types []eventtype.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
