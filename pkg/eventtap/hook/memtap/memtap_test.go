package memtap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
)

func install(t *testing.T, tap *Tap, mask eventtype.Mask, cb hook.Callback) hook.Handle {
	t.Helper()
	h, err := tap.Create(mask, cb, 7)
	require.NoError(t, err)
	require.NoError(t, tap.Attach(h))
	tap.Enable(h, true)
	return h
}

func TestDeliver_NoHookPassesThrough(t *testing.T) {
	tap := New()

	v := tap.Deliver(hook.Event{Type: eventtype.KeyDown})

	assert.Equal(t, hook.PassThrough, v)
	require.Len(t, tap.Delivered(), 1)
}

func TestDeliver_MaskFilters(t *testing.T) {
	tap := New()
	var seen []eventtype.Type
	install(t, tap, eventtype.MaskOf(eventtype.KeyDown), func(ref hook.Ref, ev *hook.Event) hook.Verdict {
		assert.Equal(t, hook.Ref(7), ref)
		seen = append(seen, ev.Type)
		return hook.PassThrough
	})

	tap.Deliver(hook.Event{Type: eventtype.KeyDown})
	tap.Deliver(hook.Event{Type: eventtype.KeyUp})

	assert.Equal(t, []eventtype.Type{eventtype.KeyDown}, seen)
	assert.Len(t, tap.Delivered(), 2)
}

func TestDeliver_Suppress(t *testing.T) {
	tap := New()
	install(t, tap, eventtype.MaskOf(eventtype.KeyDown), func(hook.Ref, *hook.Event) hook.Verdict {
		return hook.Suppress
	})

	assert.Equal(t, hook.Suppress, tap.Deliver(hook.Event{Type: eventtype.KeyDown}))
	assert.Empty(t, tap.Delivered())
}

func TestDeliver_CallbackCanRewrite(t *testing.T) {
	tap := New()
	install(t, tap, eventtype.MaskOf(eventtype.KeyDown), func(_ hook.Ref, ev *hook.Event) hook.Verdict {
		ev.Rune = 'z'
		return hook.PassThrough
	})

	tap.Deliver(hook.Event{Type: eventtype.KeyDown, Rune: 'a'})

	require.Len(t, tap.Delivered(), 1)
	assert.Equal(t, 'z', tap.Delivered()[0].Rune)
}

func TestDeliver_RequiresAttachAndEnable(t *testing.T) {
	tap := New()
	called := 0
	cb := func(hook.Ref, *hook.Event) hook.Verdict {
		called++
		return hook.PassThrough
	}

	h, err := tap.Create(eventtype.MaskOf(eventtype.KeyDown), cb, 1)
	require.NoError(t, err)
	tap.Deliver(hook.Event{Type: eventtype.KeyDown})
	assert.Equal(t, 0, called)

	require.NoError(t, tap.Attach(h))
	tap.Deliver(hook.Event{Type: eventtype.KeyDown})
	assert.Equal(t, 0, called)

	tap.Enable(h, true)
	tap.Deliver(hook.Event{Type: eventtype.KeyDown})
	assert.Equal(t, 1, called)
	assert.True(t, tap.Enabled(h))

	tap.Enable(h, false)
	tap.Deliver(hook.Event{Type: eventtype.KeyDown})
	assert.Equal(t, 1, called)
}

func TestDisposeInsideCallback(t *testing.T) {
	tap := New()
	var h hook.Handle
	h = install(t, tap, eventtype.MaskOf(eventtype.KeyDown), func(hook.Ref, *hook.Event) hook.Verdict {
		tap.Dispose(h)
		return hook.PassThrough
	})

	tap.Deliver(hook.Event{Type: eventtype.KeyDown})

	assert.Equal(t, 0, tap.Live())
	assert.Equal(t, eventtype.Mask(0), tap.Mask())
}

func TestFailureInjection(t *testing.T) {
	tap := New()
	cb := func(hook.Ref, *hook.Event) hook.Verdict { return hook.PassThrough }

	tap.FailCreate(hook.ErrPermissionDenied)
	_, err := tap.Create(1, cb, 1)
	assert.ErrorIs(t, err, hook.ErrPermissionDenied)

	h, err := tap.Create(1, cb, 1)
	require.NoError(t, err)

	boom := errors.New("no run loop")
	tap.FailAttach(boom)
	assert.ErrorIs(t, tap.Attach(h), boom)
	assert.NoError(t, tap.Attach(h))

	assert.ErrorIs(t, tap.Attach(999), hook.ErrUnknownHandle)
}

func TestCallLog(t *testing.T) {
	tap := New()
	mask := eventtype.MaskOf(eventtype.MouseMoved)
	h := install(t, tap, mask, func(hook.Ref, *hook.Event) hook.Verdict { return hook.PassThrough })
	tap.Enable(h, false)
	tap.Dispose(h)
	tap.Dispose(h)

	var ops []string
	for _, c := range tap.Calls() {
		ops = append(ops, c.Op)
		assert.Equal(t, mask, c.Mask)
	}
	assert.Equal(t, []string{"create", "attach", "enable", "disable", "dispose"}, ops)

	tap.ResetCalls()
	assert.Empty(t, tap.Calls())
}

func TestDisableAll_NotifiesEveryHook(t *testing.T) {
	tap := New()
	var got []eventtype.Type
	h := install(t, tap, eventtype.MaskOf(eventtype.KeyDown), func(_ hook.Ref, ev *hook.Event) hook.Verdict {
		got = append(got, ev.Type)
		return hook.PassThrough
	})

	tap.DisableAll(eventtype.TapDisabledByTimeout)

	assert.Equal(t, []eventtype.Type{eventtype.TapDisabledByTimeout}, got)
	assert.False(t, tap.Enabled(h))
	assert.Empty(t, tap.Delivered())
}

func TestClose(t *testing.T) {
	tap := New()
	install(t, tap, 1, func(hook.Ref, *hook.Event) hook.Verdict { return hook.PassThrough })

	require.NoError(t, tap.Close())
	assert.Equal(t, 0, tap.Live())

	_, err := tap.Create(1, func(hook.Ref, *hook.Event) hook.Verdict { return hook.PassThrough }, 1)
	assert.ErrorIs(t, err, hook.ErrTapClosed)
}
