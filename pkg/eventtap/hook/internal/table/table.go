// Package table tracks the hooks created through a tap.
//
// Taps own event delivery; the table owns handle allocation, the
// attach/enable state of each hook, and selection of the hooks that should
// see an event. Hooks are kept in creation order.
package table

import (
	"errors"
	"sync"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/registry"
)

// ErrNilCallback is returned by Create for a nil callback.
var ErrNilCallback = errors.New("nil hook callback")

// Hook is the state of one created hook.
type Hook struct {
	Handle   hook.Handle
	Mask     eventtype.Mask
	Callback hook.Callback
	Ref      hook.Ref
	Attached bool
	Enabled  bool
}

// Covers reports whether h is live for events of type typ.
func (h Hook) Covers(typ eventtype.Type) bool {
	return h.Attached && h.Enabled && h.Mask.Has(typ)
}

// Table is a set of hooks. It is safe for concurrent use, and Select may
// be called while a callback of a selected hook disposes it.
type Table struct {
	// mu serialises read-modify-write updates; hooks guards its own reads.
	mu     sync.Mutex
	next   hook.Handle
	hooks  *registry.Registry[hook.Handle, Hook]
	closed bool
}

// New returns an empty Table.
func New() *Table {
	return &Table{hooks: registry.New[hook.Handle, Hook]()}
}

// Create allocates a handle for a new, detached and disabled hook.
func (t *Table) Create(mask eventtype.Mask, cb hook.Callback, ref hook.Ref) (hook.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, hook.ErrTapClosed
	}
	if cb == nil {
		return 0, ErrNilCallback
	}
	t.next++
	t.hooks.Register(t.next, Hook{Handle: t.next, Mask: mask, Callback: cb, Ref: ref})
	return t.next, nil
}

// Get returns the hook behind handle.
func (t *Table) Get(handle hook.Handle) (Hook, bool) {
	return t.hooks.Get(handle)
}

// Attach marks the hook attached.
func (t *Table) Attach(handle hook.Handle) error {
	_, ok := t.update(handle, func(h *Hook) { h.Attached = true })
	if !ok {
		return hook.ErrUnknownHandle
	}
	return nil
}

// Enable sets the enabled state and returns the updated hook.
// Unknown handles report false.
func (t *Table) Enable(handle hook.Handle, enabled bool) (Hook, bool) {
	return t.update(handle, func(h *Hook) { h.Enabled = enabled })
}

// DisableAll disables every hook.
func (t *Table) DisableAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks.Range(func(handle hook.Handle, h Hook) bool {
		h.Enabled = false
		t.hooks.Register(handle, h)
		return true
	})
}

// Dispose removes the hook and returns it. Unknown handles report false.
func (t *Table) Dispose(handle hook.Handle) (Hook, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hooks.Delete(handle)
}

// Select returns the hooks for which match is true, in creation order.
func (t *Table) Select(match func(Hook) bool) []Hook {
	var out []Hook
	t.hooks.Range(func(_ hook.Handle, h Hook) bool {
		if match(h) {
			out = append(out, h)
		}
		return true
	})
	return out
}

// Newest returns the most recently created live hook.
func (t *Table) Newest() (Hook, bool) {
	keys := t.hooks.Keys()
	if len(keys) == 0 {
		return Hook{}, false
	}
	return t.hooks.Get(keys[len(keys)-1])
}

// Live returns the number of hooks created and not yet disposed.
func (t *Table) Live() int {
	return t.hooks.Len()
}

// Closed reports whether Close was called.
func (t *Table) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close disposes every hook and makes further Create calls fail.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.hooks.Clear()
}

func (t *Table) update(handle hook.Handle, fn func(*Hook)) (Hook, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.hooks.Get(handle)
	if !ok {
		return Hook{}, false
	}
	fn(&h)
	t.hooks.Register(handle, h)
	return h, true
}
