package hook

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

func TestStandardEnricher_Universal(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		in    Event
		check func(t *testing.T, out *Enriched)
	}{
		{
			name: "key down carries characters",
			in:   Event{Type: eventtype.KeyDown, KeyCode: 4, Rune: 'a', Flags: ModShift, Timestamp: now},
			check: func(t *testing.T, out *Enriched) {
				assert.Equal(t, eventtype.KindKeyDown, out.Kind)
				assert.Equal(t, "a", out.Characters)
				assert.Equal(t, uint16(4), out.KeyCode)
				assert.Equal(t, ModShift, out.Modifiers)
				assert.Equal(t, now, out.Timestamp)
			},
		},
		{
			name: "key without rune has no characters",
			in:   Event{Type: eventtype.KeyUp, KeyCode: 53},
			check: func(t *testing.T, out *Enriched) {
				assert.Equal(t, eventtype.KindKeyUp, out.Kind)
				assert.Empty(t, out.Characters)
			},
		},
		{
			name: "mouse button carries click count",
			in:   Event{Type: eventtype.RightMouseDown, Button: 1, ClickState: 2, Location: Point{X: 3, Y: 4}},
			check: func(t *testing.T, out *Enriched) {
				assert.Equal(t, eventtype.KindRightMouseDown, out.Kind)
				assert.Equal(t, 1, out.ButtonNumber)
				assert.Equal(t, 2, out.ClickCount)
				assert.Equal(t, Point{X: 3, Y: 4}, out.Location)
			},
		},
		{
			name: "scroll deltas",
			in:   Event{Type: eventtype.ScrollWheel, DeltaX: -1, DeltaY: 3},
			check: func(t *testing.T, out *Enriched) {
				assert.Equal(t, eventtype.KindScrollWheel, out.Kind)
				assert.Equal(t, -1.0, out.ScrollingDeltaX)
				assert.Equal(t, 3.0, out.ScrollingDeltaY)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tt.in
			out, err := StandardEnricher.Enrich(&ev)
			require.NoError(t, err)
			assert.Same(t, &ev, out.Raw)
			tt.check(t, out)
		})
	}
}

func TestStandardEnricher_NotEnrichable(t *testing.T) {
	for _, typ := range []eventtype.Type{eventtype.Null, eventtype.TapDisabledByTimeout} {
		_, err := StandardEnricher.Enrich(&Event{Type: typ})
		assert.True(t, errors.Is(err, ErrNotEnrichable), typ.String())
	}

	_, err := StandardEnricher.Enrich(nil)
	assert.ErrorIs(t, err, ErrNotEnrichable)
}

func TestModifierString(t *testing.T) {
	assert.Equal(t, "None", ModNone.String())
	assert.Equal(t, "Ctrl+Shift", (ModShift | ModControl).String())
	assert.Equal(t, "Alt+Meta+Fn", (ModMeta | ModAlt | ModFunction).String())
}

func TestEventString(t *testing.T) {
	key := &Event{Type: eventtype.KeyDown, KeyCode: 1, Rune: 'x'}
	assert.Contains(t, key.String(), "keyDown")
	assert.Contains(t, key.String(), "'x'")

	scroll := &Event{Type: eventtype.ScrollWheel, DeltaY: 2}
	assert.Equal(t, "scrollWheel dx=0 dy=2", scroll.String())

	click := &Event{Type: eventtype.LeftMouseDown, Location: Point{X: 1, Y: 2}}
	assert.Equal(t, "leftMouseDown at (1,2)", click.String())
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "pass", PassThrough.String())
	assert.Equal(t, "suppress", Suppress.String())
}
