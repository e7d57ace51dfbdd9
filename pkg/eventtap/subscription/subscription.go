// Package subscription holds the subscriber stores behind an eventtap
// supervisor.
//
// A Registry keeps two insertion-ordered stores keyed by subscriber name, one
// per representation form. The union of every stored interest set decides
// which events the hook must intercept, so mutations report whether that
// union changed and the caller can rebuild the hook.
package subscription

import (
	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/registry"
)

// Form identifies which event representation a subscriber receives.
type Form int

const (
	// FormRaw subscribers receive the hook's low-level event.
	FormRaw Form = iota
	// FormEnriched subscribers receive the enriched representation.
	FormEnriched
)

// String returns "raw" or "enriched".
func (f Form) String() string {
	switch f {
	case FormRaw:
		return "raw"
	case FormEnriched:
		return "enriched"
	default:
		return "unknown"
	}
}

// Entry is one registered subscriber.
type Entry[C any] struct {
	Name     string
	Events   []eventtype.Type
	Callback C
}

// Interested reports whether the entry subscribed to t.
func (e Entry[C]) Interested(t eventtype.Type) bool {
	return eventtype.Contains(e.Events, t)
}

// Registry stores raw subscribers with callbacks of type R and enriched
// subscribers with callbacks of type E.
type Registry[R, E any] struct {
	raw      *registry.Registry[string, Entry[R]]
	enriched *registry.Registry[string, Entry[E]]
}

// New creates an empty Registry.
func New[R, E any]() *Registry[R, E] {
	return &Registry[R, E]{
		raw:      registry.New[string, Entry[R]](),
		enriched: registry.New[string, Entry[E]](),
	}
}

// AddRaw registers or replaces the raw subscriber called name.
// It reports whether the aggregate event set grew, meaning the hook must be
// rebuilt. An empty event set is ignored and reports false.
func (r *Registry[R, E]) AddRaw(name string, events []eventtype.Type, cb R) bool {
	events = eventtype.Dedupe(events)
	if len(events) == 0 {
		return false
	}
	needsRehook := !eventtype.Subset(events, r.Aggregate())
	r.raw.Register(name, Entry[R]{Name: name, Events: events, Callback: cb})
	return needsRehook
}

// AddEnriched registers or replaces the enriched subscriber called name.
// It behaves like AddRaw.
func (r *Registry[R, E]) AddEnriched(name string, events []eventtype.Type, cb E) bool {
	events = eventtype.Dedupe(events)
	if len(events) == 0 {
		return false
	}
	needsRehook := !eventtype.Subset(events, r.Aggregate())
	r.enriched.Register(name, Entry[E]{Name: name, Events: events, Callback: cb})
	return needsRehook
}

// Remove deletes name from both stores. It reports whether any event left
// the aggregate set.
func (r *Registry[R, E]) Remove(name string) bool {
	before := r.Aggregate()
	_, hadRaw := r.raw.Delete(name)
	_, hadEnriched := r.enriched.Delete(name)
	if !hadRaw && !hadEnriched {
		return false
	}
	return !eventtype.Subset(before, r.Aggregate())
}

// Clear empties both stores.
func (r *Registry[R, E]) Clear() {
	r.raw.Clear()
	r.enriched.Clear()
}

// Aggregate returns the union of every interest set, deduplicated in
// first-seen order. Enriched subscribers are visited before raw ones.
func (r *Registry[R, E]) Aggregate() []eventtype.Type {
	var all []eventtype.Type
	for _, e := range r.enriched.Entries() {
		all = append(all, e.Value.Events...)
	}
	for _, e := range r.raw.Entries() {
		all = append(all, e.Value.Events...)
	}
	return eventtype.Dedupe(all)
}

// Count returns the number of registrations across both stores. A name
// registered in both forms counts twice.
func (r *Registry[R, E]) Count() int {
	return r.raw.Len() + r.enriched.Len()
}

// HasEnriched reports whether any enriched subscriber is registered.
func (r *Registry[R, E]) HasEnriched() bool {
	return r.enriched.Len() > 0
}

// RawEntries returns the raw subscribers in registration order.
func (r *Registry[R, E]) RawEntries() []Entry[R] {
	return values(r.raw.Entries())
}

// EnrichedEntries returns the enriched subscribers in registration order.
func (r *Registry[R, E]) EnrichedEntries() []Entry[E] {
	return values(r.enriched.Entries())
}

// Forms returns the forms name is registered under.
func (r *Registry[R, E]) Forms(name string) []Form {
	var forms []Form
	if r.raw.Has(name) {
		forms = append(forms, FormRaw)
	}
	if r.enriched.Has(name) {
		forms = append(forms, FormEnriched)
	}
	return forms
}

func values[C any](entries []registry.Entry[string, Entry[C]]) []Entry[C] {
	out := make([]Entry[C], len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}
