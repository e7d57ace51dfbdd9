// Package hook defines the contract between eventtap and the interception
// hook it multiplexes.
//
// The hook is an external collaborator: something that can intercept every
// input event matching a mask, hand each one to a callback before normal
// delivery, and either forward or drop it based on the callback's verdict.
// Tap is that collaborator. Enricher converts a low-level Event into the
// higher-level Enriched representation.
//
// Two taps ship with eventtap: memtap, an in-process tap driven by Deliver,
// and termtap, which intercepts terminal input through tcell.
package hook

import (
	"errors"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

// Ref identifies the owner of a hook across the callback boundary.
// The zero Ref never resolves.
type Ref uint64

// Handle identifies a hook created by a Tap. The zero Handle is invalid.
type Handle uint64

// Verdict is the callback's decision for one intercepted event.
type Verdict int

const (
	// PassThrough lets the event continue to its intended target.
	PassThrough Verdict = iota
	// Suppress drops the event.
	Suppress
)

// String returns "pass" or "suppress".
func (v Verdict) String() string {
	if v == Suppress {
		return "suppress"
	}
	return "pass"
}

// Callback is invoked by a Tap for every intercepted event.
// ref is the value passed to Create. The callback may read and modify ev;
// a PassThrough verdict forwards the possibly modified event.
type Callback func(ref Ref, ev *Event) Verdict

// Tap creates and controls interception hooks.
//
// Implementations deliver events to the callback synchronously and in
// arrival order. Dispose must not wait for an in-flight callback to
// return, because a callback may itself trigger a rebuild of its hook.
type Tap interface {
	// Create allocates a hook for the events in mask. The hook is inert
	// until attached and enabled.
	Create(mask eventtype.Mask, cb Callback, ref Ref) (Handle, error)

	// Attach wires the hook into the event loop that pumps it.
	Attach(h Handle) error

	// Enable turns interception on or off.
	Enable(h Handle, enabled bool)

	// Dispose releases the hook. Unknown handles are ignored.
	Dispose(h Handle)
}

// Enricher converts a low-level event into its enriched representation.
type Enricher interface {
	Enrich(ev *Event) (*Enriched, error)
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ev *Event) (*Enriched, error)

// Enrich implements Enricher.
func (f EnricherFunc) Enrich(ev *Event) (*Enriched, error) {
	return f(ev)
}

// Sentinel errors reported by taps and enrichers.
var (
	// ErrPermissionDenied indicates the process may not intercept input.
	ErrPermissionDenied = errors.New("input interception not permitted")

	// ErrTapClosed indicates the tap has been shut down.
	ErrTapClosed = errors.New("tap closed")

	// ErrUnknownHandle indicates a handle the tap did not create or already disposed.
	ErrUnknownHandle = errors.New("unknown hook handle")

	// ErrNotEnrichable indicates the event has no enriched representation.
	ErrNotEnrichable = errors.New("event has no enriched representation")
)
