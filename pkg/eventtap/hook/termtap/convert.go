package termtap

import (
	"github.com/gdamore/tcell/v2"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
	"github.com/randalmurphal/eventtap/pkg/eventtap/hook"
)

// Buttons in button-number order: 0 left, 1 right, 2 and up the rest.
var buttonOrder = []tcell.ButtonMask{
	tcell.Button1, tcell.Button2, tcell.Button3, tcell.Button4,
	tcell.Button5, tcell.Button6, tcell.Button7, tcell.Button8,
}

const wheelMask = tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight

// converter turns tcell events into hook events. tcell reports mouse state
// rather than transitions, so the converter remembers the previous state.
// It is owned by the poll goroutine.
type converter struct {
	source  string
	buttons tcell.ButtonMask
	x, y    int
}

func (c *converter) convert(ev tcell.Event) []hook.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return []hook.Event{c.key(e)}
	case *tcell.EventMouse:
		return c.mouse(e)
	default:
		return nil
	}
}

func (c *converter) key(e *tcell.EventKey) hook.Event {
	out := hook.Event{
		Type:      eventtype.KeyDown,
		Timestamp: e.When(),
		KeyCode:   uint16(e.Key()),
		Flags:     modifiers(e.Modifiers()),
		Source:    c.source,
	}
	if e.Key() == tcell.KeyRune {
		out.Rune = e.Rune()
	}
	return out
}

func (c *converter) mouse(e *tcell.EventMouse) []hook.Event {
	x, y := e.Position()
	cur := e.Buttons() &^ wheelMask
	prev := c.buttons
	moved := x != c.x || y != c.y
	c.buttons, c.x, c.y = cur, x, y

	base := hook.Event{
		Timestamp: e.When(),
		Location:  hook.Point{X: float64(x), Y: float64(y)},
		Flags:     modifiers(e.Modifiers()),
		Source:    c.source,
	}

	var out []hook.Event
	for n, b := range buttonOrder {
		switch {
		case cur&b != 0 && prev&b == 0:
			ev := base
			ev.Type = buttonType(n, eventtype.LeftMouseDown, eventtype.RightMouseDown, eventtype.OtherMouseDown)
			ev.Button = n
			ev.ClickState = 1
			out = append(out, ev)
		case cur&b == 0 && prev&b != 0:
			ev := base
			ev.Type = buttonType(n, eventtype.LeftMouseUp, eventtype.RightMouseUp, eventtype.OtherMouseUp)
			ev.Button = n
			ev.ClickState = 1
			out = append(out, ev)
		}
	}

	held := cur & prev
	if held != 0 && moved {
		for n, b := range buttonOrder {
			if held&b != 0 {
				ev := base
				ev.Type = buttonType(n, eventtype.LeftMouseDragged, eventtype.RightMouseDragged, eventtype.OtherMouseDragged)
				ev.Button = n
				out = append(out, ev)
				break
			}
		}
	}

	if wheel := e.Buttons() & wheelMask; wheel != 0 {
		ev := base
		ev.Type = eventtype.ScrollWheel
		if wheel&tcell.WheelUp != 0 {
			ev.DeltaY++
		}
		if wheel&tcell.WheelDown != 0 {
			ev.DeltaY--
		}
		if wheel&tcell.WheelLeft != 0 {
			ev.DeltaX++
		}
		if wheel&tcell.WheelRight != 0 {
			ev.DeltaX--
		}
		out = append(out, ev)
	}

	if len(out) == 0 && cur == 0 && moved {
		ev := base
		ev.Type = eventtype.MouseMoved
		out = append(out, ev)
	}
	return out
}

func buttonType(n int, left, right, other eventtype.Type) eventtype.Type {
	switch n {
	case 0:
		return left
	case 1:
		return right
	default:
		return other
	}
}

func modifiers(m tcell.ModMask) hook.Modifier {
	var out hook.Modifier
	if m&tcell.ModShift != 0 {
		out |= hook.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= hook.ModControl
	}
	if m&tcell.ModAlt != 0 {
		out |= hook.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= hook.ModMeta
	}
	return out
}

// keyCharacters are the characters named keys produce.
var keyCharacters = map[tcell.Key]string{
	tcell.KeyEnter:     "\r",
	tcell.KeyTab:       "\t",
	tcell.KeyBackspace: "\b",
	tcell.KeyEscape:    "\x1b",
	tcell.KeyDEL:       "\x7f",
}
