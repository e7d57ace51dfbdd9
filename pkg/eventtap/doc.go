/*
Package eventtap multiplexes one input-event interception hook across many
named subscribers.

# Overview

Intercepting input events before normal delivery is expensive and, on most
systems, a scarce resource: one hook per process is the norm. eventtap owns
that single hook and lets any number of subscribers share it. Each
subscriber names the event types it cares about, receives them either in
the hook's low-level form or in an enriched form, and may cancel an event
to stop it from reaching later subscribers and its intended target.

The hook's filter mask always equals the union of every subscriber's
interest set. When that union grows or shrinks the hook is rebuilt; when
it becomes empty the hook is removed.

# Basic Usage

	tap := memtap.New()
	sup := eventtap.New(tap)
	defer sup.Close()

	sup.Subscribe("hotkeys", []eventtype.Type{eventtype.KeyDown}, func(ev *eventtap.RawEvent) {
	    if ev.Flags&hook.ModControl != 0 && ev.Rune == 'q' {
	        ev.Cancel()
	    }
	})

	sup.SubscribeEnriched("clicks", []eventtype.Kind{eventtype.KindLeftMouseDown}, func(ev *eventtap.EnrichedEvent) {
	    fmt.Println("click", ev.ClickCount, "at", ev.Location)
	})

# Dispatch Order

For every intercepted event:
  - raw subscribers run in registration order, if interested
  - if nobody cancelled, the event type is universal, and at least one
    enriched subscriber exists, the event is enriched
  - enriched subscribers run in registration order, if interested
  - if nobody cancelled, the event continues to its target

Cancellation is checked after every single callback, so a subscriber that
cancels prevents every later subscriber in either form from running.

# Hook Failures

Creating the hook can fail, for example when the process lacks permission
to intercept input. Failures are logged and leave the supervisor without a
hook; subscriptions stay registered. The next subscription change, or an
explicit Reconcile, retries:

	if err := sup.Reconcile(ctx); err != nil {
	    var hookErr *eventtap.HookError
	    if errors.As(err, &hookErr) && errors.Is(err, hook.ErrPermissionDenied) {
	        log.Printf("grant input monitoring permission and retry")
	    }
	}

# Subscriber Panics

A panicking subscriber is recovered, logged with its stack, and treated as
if it had returned. Later subscribers still run. WithPanicLimit removes a
subscriber after repeated panics. WithSlowDispatch warns about passes that
run long enough to risk the OS disabling the hook.

# Observability

	sup := eventtap.New(tap,
	    eventtap.WithLogger(logger),
	    eventtap.WithMetrics(true),
	    eventtap.WithTracing(true))

OpenTelemetry metrics: eventtap.dispatch.events, eventtap.dispatch.latency_us,
eventtap.dispatch.suppressed, eventtap.subscriber.panics,
eventtap.enrich.failures, eventtap.hook.reconciles.
OpenTelemetry tracing: one eventtap.reconcile span per hook rebuild.

WithDispatchObserver receives an Outcome after every dispatch pass; the
journal package uses it to record intercepted events.

# Thread Safety

A Supervisor is safe for concurrent use. Callbacks never run while the
supervisor's lock is held, so a callback may Subscribe or Unsubscribe. Such
changes take effect from the next event; the pass in progress keeps the
subscriber list it started with.
*/
package eventtap
