package eventtap

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

// Sentinel errors.
var (
	// ErrInvalidRef indicates a hook callback carried a reference that does
	// not resolve to a live Supervisor. The event is passed through.
	ErrInvalidRef = errors.New("hook reference does not resolve to a supervisor")

	// ErrClosed indicates the Supervisor has been closed.
	ErrClosed = errors.New("supervisor closed")
)

// HookError reports a hook that could not be installed.
// The supervisor stays registered without a hook until the next reconcile.
type HookError struct {
	// Op is the step that failed ("create" or "attach").
	Op string
	// Mask is the mask the hook was requested for.
	Mask eventtype.Mask
	// Err is the underlying error from the tap.
	Err error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s for %s: %v", e.Op, e.Mask, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HookError) Unwrap() error {
	return e.Err
}

// EnrichError reports an event that could not be enriched.
type EnrichError struct {
	Type eventtype.Type
	Err  error
}

// Error implements the error interface.
func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EnrichError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic recovered from a subscriber callback.
type PanicError struct {
	// Subscriber is the name of the subscriber that panicked.
	Subscriber string
	// Form is the form the subscriber was registered under.
	Form Form
	// Type is the event type being dispatched.
	Type eventtype.Type
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("subscriber %s (%s) panicked on %s: %v", e.Subscriber, e.Form, e.Type, e.Value)
}
