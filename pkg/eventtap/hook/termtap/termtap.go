// Package termtap provides a hook.Tap that intercepts terminal input.
//
// Tap reads key and mouse events from a tcell.Screen, converts them to
// hook events, and runs them through the installed hooks before handing
// the survivors to a target function. The program that would normally
// read the screen's events reads them from the target instead, so a
// suppressed event never reaches it.
//
//	screen, _ := tcell.NewScreen()
//	_ = screen.Init()
//	screen.EnableMouse()
//
//	tap := termtap.New(screen, termtap.WithTarget(func(ev hook.Event) {
//	    editor.Handle(ev)
//	}))
//	go tap.Run(ctx)
//
//	sup := eventtap.New(tap)
//
// Conversion:
//   - every key press becomes keyDown (terminals do not report releases)
//   - mouse button transitions become leftMouseDown/Up, rightMouseDown/Up
//     and otherMouseDown/Up, per button
//   - motion with a button held becomes the matching dragged type
//   - motion with no button held becomes mouseMoved
//   - wheel movement becomes scrollWheel
package termtap

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook/internal/table"
)

// Tap is a hook.Tap fed by a tcell.Screen.
type Tap struct {
	screen tcell.Screen
	target func(hook.Event)
	other  func(tcell.Event)
	logger *slog.Logger
	conv   converter
	hooks  *table.Table
}

// Compile-time interface checks.
var (
	_ hook.Tap      = (*Tap)(nil)
	_ hook.Enricher = (*Tap)(nil)
)

// Option configures a Tap.
type Option func(*Tap)

// WithTarget sets the function that receives passed-through events.
// It runs on the Run goroutine.
func WithTarget(fn func(hook.Event)) Option {
	return func(t *Tap) {
		t.target = fn
	}
}

// WithOtherEvents sets a handler for screen events that are not input,
// such as resizes and focus changes.
func WithOtherEvents(fn func(tcell.Event)) Option {
	return func(t *Tap) {
		t.other = fn
	}
}

// WithSource sets the Source recorded on converted events.
// Default: "terminal".
func WithSource(name string) Option {
	return func(t *Tap) {
		t.conv.source = name
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tap) {
		t.logger = logger
	}
}

// New creates a tap reading from screen. The screen must already be
// initialised; the caller keeps ownership of it.
func New(screen tcell.Screen, opts ...Option) *Tap {
	t := &Tap{
		screen: screen,
		logger: slog.Default(),
		conv:   converter{source: "terminal"},
		hooks:  table.New(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// stopRun is posted to the screen to unblock PollEvent.
type stopRun struct{ t *Tap }

// Run polls the screen and delivers events until ctx is cancelled or the
// screen is finalised. Only one Run may be active at a time.
func (t *Tap) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		if err := t.screen.PostEvent(tcell.NewEventInterrupt(stopRun{t})); err != nil && t.logger != nil {
			t.logger.Warn("termtap: could not interrupt poll", slog.String("error", err.Error()))
		}
	})
	defer stop()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if intr, ok := ev.(*tcell.EventInterrupt); ok {
			if s, ok := intr.Data().(stopRun); ok && s.t == t {
				return ctx.Err()
			}
		}
		t.handle(ev)
	}
}

func (t *Tap) handle(ev tcell.Event) {
	converted := t.conv.convert(ev)
	if converted == nil {
		if t.other != nil {
			t.other(ev)
		}
		return
	}
	for _, e := range converted {
		t.Deliver(e)
	}
}

// Deliver pushes ev through the installed hooks as if it had come from the
// screen, forwarding the possibly modified event to the target unless a
// hook suppresses it. Events arriving while no hook is installed are
// forwarded unmodified. Runs on the caller's goroutine.
func (t *Tap) Deliver(ev hook.Event) hook.Verdict {
	for _, h := range t.hooks.Select(func(h table.Hook) bool { return h.Covers(ev.Type) }) {
		if h.Callback(h.Ref, &ev) == hook.Suppress {
			return hook.Suppress
		}
	}
	if t.target != nil {
		t.target(ev)
	}
	return hook.PassThrough
}

// Create implements hook.Tap.
func (t *Tap) Create(mask eventtype.Mask, cb hook.Callback, ref hook.Ref) (hook.Handle, error) {
	return t.hooks.Create(mask, cb, ref)
}

// Attach implements hook.Tap.
func (t *Tap) Attach(handle hook.Handle) error {
	return t.hooks.Attach(handle)
}

// Enable implements hook.Tap.
func (t *Tap) Enable(handle hook.Handle, enabled bool) {
	t.hooks.Enable(handle, enabled)
}

// Dispose implements hook.Tap. It never waits for an in-flight callback.
func (t *Tap) Dispose(handle hook.Handle) {
	t.hooks.Dispose(handle)
}

// Live returns the number of hooks created and not yet disposed.
func (t *Tap) Live() int {
	return t.hooks.Live()
}

// Close disposes every hook and makes further Create calls fail.
// It does not finalise the screen.
func (t *Tap) Close() error {
	t.hooks.Close()
	return nil
}

// Enrich implements hook.Enricher. It extends hook.StandardEnricher with
// the characters produced by named keys such as Enter and Tab.
func (t *Tap) Enrich(ev *hook.Event) (*hook.Enriched, error) {
	out, err := hook.StandardEnricher.Enrich(ev)
	if err != nil {
		return nil, err
	}
	if out.Characters == "" && out.Kind == eventtype.KindKeyDown {
		out.Characters = keyCharacters[tcell.Key(ev.KeyCode)]
	}
	return out, nil
}
