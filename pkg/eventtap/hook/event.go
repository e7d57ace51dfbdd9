package hook

import (
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

// Modifier is a bit set of modifier keys held during an event.
type Modifier uint16

// Modifier flags.
const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModMeta
	ModCapsLock
	ModFunction
	ModNone Modifier = 0
)

// String lists the set modifiers, e.g. "Ctrl+Shift".
func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}
	var parts []string
	if m&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if m&ModMeta != 0 {
		parts = append(parts, "Meta")
	}
	if m&ModCapsLock != 0 {
		parts = append(parts, "CapsLock")
	}
	if m&ModFunction != 0 {
		parts = append(parts, "Fn")
	}
	return strings.Join(parts, "+")
}

// Point is a screen location.
type Point struct {
	X, Y float64
}

// Event is the hook's low-level representation of one input event.
type Event struct {
	Type      eventtype.Type
	Timestamp time.Time
	Location  Point

	// Keyboard fields.
	KeyCode uint16
	Rune    rune
	Repeat  bool

	Flags Modifier

	// Mouse fields. Button is 0 for left, 1 for right, 2 and up for others.
	Button     int
	ClickState int

	// Scroll deltas in lines.
	DeltaX, DeltaY int

	// Source names the device or tap that produced the event.
	Source string
}

// String returns a compact description for logs.
func (e *Event) String() string {
	switch e.Type {
	case eventtype.KeyDown, eventtype.KeyUp:
		return fmt.Sprintf("%s code=%d rune=%q mods=%s", e.Type, e.KeyCode, e.Rune, e.Flags)
	case eventtype.ScrollWheel:
		return fmt.Sprintf("%s dx=%d dy=%d", e.Type, e.DeltaX, e.DeltaY)
	default:
		return fmt.Sprintf("%s at (%.0f,%.0f)", e.Type, e.Location.X, e.Location.Y)
	}
}

// Enriched is the higher-level representation of an event.
type Enriched struct {
	Kind      eventtype.Kind
	Timestamp time.Time
	Location  Point

	Characters string
	KeyCode    uint16
	Repeat     bool
	Modifiers  Modifier

	ButtonNumber int
	ClickCount   int

	ScrollingDeltaX, ScrollingDeltaY float64

	// Raw is the event this representation was built from.
	Raw *Event
}

// StandardEnricher translates universal events field by field.
// Non-universal events fail with ErrNotEnrichable.
var StandardEnricher Enricher = EnricherFunc(enrich)

func enrich(ev *Event) (*Enriched, error) {
	if ev == nil {
		return nil, ErrNotEnrichable
	}
	kind, ok := ev.Type.Kind()
	if !ok {
		return nil, fmt.Errorf("%s: %w", ev.Type, ErrNotEnrichable)
	}

	out := &Enriched{
		Kind:      kind,
		Timestamp: ev.Timestamp,
		Location:  ev.Location,
		KeyCode:   ev.KeyCode,
		Repeat:    ev.Repeat,
		Modifiers: ev.Flags,
		Raw:       ev,
	}

	switch kind {
	case eventtype.KindKeyDown, eventtype.KindKeyUp:
		if ev.Rune != 0 {
			out.Characters = string(ev.Rune)
		}
	case eventtype.KindScrollWheel:
		out.ScrollingDeltaX = float64(ev.DeltaX)
		out.ScrollingDeltaY = float64(ev.DeltaY)
	case eventtype.KindLeftMouseDown, eventtype.KindLeftMouseUp,
		eventtype.KindRightMouseDown, eventtype.KindRightMouseUp,
		eventtype.KindOtherMouseDown, eventtype.KindOtherMouseUp:
		out.ButtonNumber = ev.Button
		out.ClickCount = ev.ClickState
	case eventtype.KindLeftMouseDragged, eventtype.KindRightMouseDragged,
		eventtype.KindOtherMouseDragged:
		out.ButtonNumber = ev.Button
	}

	return out, nil
}
