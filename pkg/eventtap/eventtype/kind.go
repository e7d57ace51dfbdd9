package eventtype

import (
	"fmt"
	"strings"
)

// Kind identifies a category of enriched input event.
type Kind uint32

// Universal kinds share their raw value with the matching Type.
const (
	KindLeftMouseDown     Kind = 1
	KindLeftMouseUp       Kind = 2
	KindRightMouseDown    Kind = 3
	KindRightMouseUp      Kind = 4
	KindMouseMoved        Kind = 5
	KindLeftMouseDragged  Kind = 6
	KindRightMouseDragged Kind = 7
	KindKeyDown           Kind = 10
	KindKeyUp             Kind = 11
	KindFlagsChanged      Kind = 12
	KindScrollWheel       Kind = 22
	KindTabletPoint       Kind = 23
	KindTabletProximity   Kind = 24
	KindOtherMouseDown    Kind = 25
	KindOtherMouseUp      Kind = 26
	KindOtherMouseDragged Kind = 27
)

// Enriched-only kinds. They never arrive through the hook.
const (
	KindMouseEntered       Kind = 8
	KindMouseExited        Kind = 9
	KindAppKitDefined      Kind = 13
	KindSystemDefined      Kind = 14
	KindApplicationDefined Kind = 15
	KindPeriodic           Kind = 16
	KindCursorUpdate       Kind = 17
	KindRotate             Kind = 18
	KindBeginGesture       Kind = 19
	KindEndGesture         Kind = 20
	KindGesture            Kind = 29
	KindMagnify            Kind = 30
	KindSwipe              Kind = 31
	KindSmartMagnify       Kind = 32
	KindQuickLook          Kind = 33
	KindPressure           Kind = 34
	KindDirectTouch        Kind = 37
	KindChangeMode         Kind = 38
)

// typeToKind is the partial bijection between the vocabularies.
var typeToKind = map[Type]Kind{
	LeftMouseDown:     KindLeftMouseDown,
	LeftMouseUp:       KindLeftMouseUp,
	RightMouseDown:    KindRightMouseDown,
	RightMouseUp:      KindRightMouseUp,
	MouseMoved:        KindMouseMoved,
	LeftMouseDragged:  KindLeftMouseDragged,
	RightMouseDragged: KindRightMouseDragged,
	KeyDown:           KindKeyDown,
	KeyUp:             KindKeyUp,
	FlagsChanged:      KindFlagsChanged,
	ScrollWheel:       KindScrollWheel,
	TabletPointer:     KindTabletPoint,
	TabletProximity:   KindTabletProximity,
	OtherMouseDown:    KindOtherMouseDown,
	OtherMouseUp:      KindOtherMouseUp,
	OtherMouseDragged: KindOtherMouseDragged,
}

var kindToType = func() map[Kind]Type {
	m := make(map[Kind]Type, len(typeToKind))
	for t, k := range typeToKind {
		m[k] = t
	}
	return m
}()

var kindNames = map[Kind]string{
	KindLeftMouseDown:      "leftMouseDown",
	KindLeftMouseUp:        "leftMouseUp",
	KindRightMouseDown:     "rightMouseDown",
	KindRightMouseUp:       "rightMouseUp",
	KindMouseMoved:         "mouseMoved",
	KindLeftMouseDragged:   "leftMouseDragged",
	KindRightMouseDragged:  "rightMouseDragged",
	KindMouseEntered:       "mouseEntered",
	KindMouseExited:        "mouseExited",
	KindKeyDown:            "keyDown",
	KindKeyUp:              "keyUp",
	KindFlagsChanged:       "flagsChanged",
	KindAppKitDefined:      "appKitDefined",
	KindSystemDefined:      "systemDefined",
	KindApplicationDefined: "applicationDefined",
	KindPeriodic:           "periodic",
	KindCursorUpdate:       "cursorUpdate",
	KindRotate:             "rotate",
	KindBeginGesture:       "beginGesture",
	KindEndGesture:         "endGesture",
	KindScrollWheel:        "scrollWheel",
	KindTabletPoint:        "tabletPoint",
	KindTabletProximity:    "tabletProximity",
	KindOtherMouseDown:     "otherMouseDown",
	KindOtherMouseUp:       "otherMouseUp",
	KindOtherMouseDragged:  "otherMouseDragged",
	KindGesture:            "gesture",
	KindMagnify:            "magnify",
	KindSwipe:              "swipe",
	KindSmartMagnify:       "smartMagnify",
	KindQuickLook:          "quickLook",
	KindPressure:           "pressure",
	KindDirectTouch:        "directTouch",
	KindChangeMode:         "changeMode",
}

// String returns the camel-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Universal reports whether k has a low-level counterpart.
func (k Kind) Universal() bool {
	_, ok := kindToType[k]
	return ok
}

// Type returns the low-level counterpart of k, if any.
func (k Kind) Type() (Type, bool) {
	t, ok := kindToType[k]
	return t, ok
}

// ParseKind returns the Kind with the given name. Matching is case-insensitive.
// A universal kind may also be named by its low-level type, so
// "tabletPointer" parses as KindTabletPoint.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	if t, err := ParseType(name); err == nil {
		if k, ok := t.Kind(); ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", name)
}

// ParseKinds parses every name in names, failing on the first unknown one.
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Lower projects kinds onto the low-level vocabulary. Kinds without a
// counterpart are dropped; the result keeps first-seen order and has no
// duplicates.
func Lower(kinds []Kind) []Type {
	types := make([]Type, 0, len(kinds))
	for _, k := range kinds {
		if t, ok := k.Type(); ok {
			types = append(types, t)
		}
	}
	return Dedupe(types)
}

// UniversalTypes returns every universal type in ascending order.
func UniversalTypes() []Type {
	return []Type{
		LeftMouseDown, LeftMouseUp, RightMouseDown, RightMouseUp,
		MouseMoved, LeftMouseDragged, RightMouseDragged,
		KeyDown, KeyUp, FlagsChanged,
		ScrollWheel, TabletPointer, TabletProximity,
		OtherMouseDown, OtherMouseUp, OtherMouseDragged,
	}
}
