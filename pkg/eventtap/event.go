package eventtap

import (
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/subscription"
)

// Form identifies which representation a subscriber receives.
type Form = subscription.Form

// Subscriber forms.
const (
	FormRaw      = subscription.FormRaw
	FormEnriched = subscription.FormEnriched
)

// RawEvent is one low-level event in flight.
//
// A RawEvent is created for each dispatch pass and is only valid inside the
// callback it is handed to. Fields of the embedded event may be modified; a
// modified event that is not cancelled reaches its target as modified.
type RawEvent struct {
	*hook.Event
	cancelled bool
}

// Cancel stops the event. No later subscriber sees it and it does not reach
// its target.
func (e *RawEvent) Cancel() {
	e.cancelled = true
}

// Cancelled reports whether Cancel was called.
func (e *RawEvent) Cancelled() bool {
	return e.cancelled
}

// EnrichedEvent is the enriched representation of an event in flight.
// Its cancellation is independent of the RawEvent it was built from.
type EnrichedEvent struct {
	*hook.Enriched
	cancelled bool
}

// Cancel stops the event. No later enriched subscriber sees it and it does
// not reach its target.
func (e *EnrichedEvent) Cancel() {
	e.cancelled = true
}

// Cancelled reports whether Cancel was called.
func (e *EnrichedEvent) Cancelled() bool {
	return e.cancelled
}

// RawCallback receives low-level events.
type RawCallback func(ev *RawEvent)

// EnrichedCallback receives enriched events.
type EnrichedCallback func(ev *EnrichedEvent)
