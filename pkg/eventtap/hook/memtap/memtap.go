// Package memtap provides an in-process hook.Tap.
//
// Events are fed in with Deliver instead of coming from the OS, which makes
// memtap the tap of choice for tests, replay tools, and embedding eventtap in
// programs that already own their input loop. Every Create, Attach, Enable
// and Dispose call is recorded so callers can assert on hook lifecycle.
package memtap

import (
	"fmt"
	"sync"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook/internal/table"
)

// Call records one lifecycle call made against the tap.
type Call struct {
	Op      string // "create", "attach", "enable", "disable", "dispose"
	Handle  hook.Handle
	Mask    eventtype.Mask
	Failed  bool
	Comment string
}

// Tap is an in-process hook.Tap.
type Tap struct {
	hooks *table.Table

	mu         sync.Mutex
	calls      []Call
	delivered  []hook.Event
	createErrs []error
	attachErrs []error
}

// Compile-time interface check.
var _ hook.Tap = (*Tap)(nil)

// New creates an empty Tap.
func New() *Tap {
	return &Tap{hooks: table.New()}
}

// FailCreate queues err to be returned by the next Create call.
// Queued errors are consumed in order.
func (t *Tap) FailCreate(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.createErrs = append(t.createErrs, err)
}

// FailAttach queues err to be returned by the next Attach call.
func (t *Tap) FailAttach(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attachErrs = append(t.attachErrs, err)
}

// Create implements hook.Tap.
func (t *Tap) Create(mask eventtype.Mask, cb hook.Callback, ref hook.Ref) (hook.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hooks.Closed() {
		t.calls = append(t.calls, Call{Op: "create", Mask: mask, Failed: true})
		return 0, hook.ErrTapClosed
	}
	if len(t.createErrs) > 0 {
		err := t.createErrs[0]
		t.createErrs = t.createErrs[1:]
		t.calls = append(t.calls, Call{Op: "create", Mask: mask, Failed: true, Comment: err.Error()})
		return 0, err
	}

	handle, err := t.hooks.Create(mask, cb, ref)
	if err != nil {
		return 0, fmt.Errorf("memtap: %w", err)
	}
	t.calls = append(t.calls, Call{Op: "create", Handle: handle, Mask: mask})
	return handle, nil
}

// Attach implements hook.Tap.
func (t *Tap) Attach(handle hook.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.hooks.Get(handle)
	if !ok {
		return hook.ErrUnknownHandle
	}
	if len(t.attachErrs) > 0 {
		err := t.attachErrs[0]
		t.attachErrs = t.attachErrs[1:]
		t.calls = append(t.calls, Call{Op: "attach", Handle: handle, Mask: h.Mask, Failed: true, Comment: err.Error()})
		return err
	}
	if err := t.hooks.Attach(handle); err != nil {
		return err
	}
	t.calls = append(t.calls, Call{Op: "attach", Handle: handle, Mask: h.Mask})
	return nil
}

// Enable implements hook.Tap.
func (t *Tap) Enable(handle hook.Handle, enabled bool) {
	h, ok := t.hooks.Enable(handle, enabled)
	if !ok {
		return
	}
	op := "enable"
	if !enabled {
		op = "disable"
	}
	t.record(Call{Op: op, Handle: handle, Mask: h.Mask})
}

// Dispose implements hook.Tap.
func (t *Tap) Dispose(handle hook.Handle) {
	if h, ok := t.hooks.Dispose(handle); ok {
		t.record(Call{Op: "dispose", Handle: handle, Mask: h.Mask})
	}
}

func (t *Tap) record(c Call) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
}

// Deliver pushes ev through the tap as if the OS had produced it.
//
// Every live hook that is attached, enabled, and whose mask covers the event
// sees it in creation order; hook-disabled notifications reach every
// attached hook regardless of mask. A Suppress verdict stops delivery.
// Events that survive are appended to the target log and PassThrough is
// returned.
func (t *Tap) Deliver(ev hook.Event) hook.Verdict {
	hooks := t.hooks.Select(func(h table.Hook) bool {
		return h.Covers(ev.Type) || (h.Attached && ev.Type.TapDisabled())
	})
	for _, h := range hooks {
		if h.Callback(h.Ref, &ev) == hook.Suppress {
			return hook.Suppress
		}
	}
	if ev.Type.TapDisabled() {
		return hook.PassThrough
	}

	t.mu.Lock()
	t.delivered = append(t.delivered, ev)
	t.mu.Unlock()
	return hook.PassThrough
}

// DisableAll simulates the OS switching every live hook off, and delivers
// the matching notification to each of them.
func (t *Tap) DisableAll(reason eventtype.Type) {
	t.hooks.DisableAll()
	t.Deliver(hook.Event{Type: reason, Source: "memtap"})
}

// Delivered returns the events that reached their target, oldest first.
func (t *Tap) Delivered() []hook.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]hook.Event, len(t.delivered))
	copy(out, t.delivered)
	return out
}

// Calls returns the recorded lifecycle calls, oldest first.
func (t *Tap) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// ResetCalls clears the call log.
func (t *Tap) ResetCalls() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
}

// Live returns the number of hooks created and not yet disposed.
func (t *Tap) Live() int {
	return t.hooks.Live()
}

// Enabled reports whether the hook behind handle is currently enabled.
func (t *Tap) Enabled(handle hook.Handle) bool {
	h, ok := t.hooks.Get(handle)
	return ok && h.Enabled
}

// Mask returns the mask of the newest live hook, or zero if there is none.
func (t *Tap) Mask() eventtype.Mask {
	h, ok := t.hooks.Newest()
	if !ok {
		return 0
	}
	return h.Mask
}

// Close disposes every hook and makes further Create calls fail.
func (t *Tap) Close() error {
	t.hooks.Close()
	return nil
}
