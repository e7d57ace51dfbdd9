package eventtype

import (
	"fmt"
	"strings"
)

// Type identifies a category of low-level input event.
// Raw values follow the native hook numbering so they can be used directly
// as mask bit positions.
type Type uint32

// Low-level event types.
const (
	Null              Type = 0
	LeftMouseDown     Type = 1
	LeftMouseUp       Type = 2
	RightMouseDown    Type = 3
	RightMouseUp      Type = 4
	MouseMoved        Type = 5
	LeftMouseDragged  Type = 6
	RightMouseDragged Type = 7
	KeyDown           Type = 10
	KeyUp             Type = 11
	FlagsChanged      Type = 12
	ScrollWheel       Type = 22
	TabletPointer     Type = 23
	TabletProximity   Type = 24
	OtherMouseDown    Type = 25
	OtherMouseUp      Type = 26
	OtherMouseDragged Type = 27

	// TapDisabledByTimeout is reported when the OS disabled the hook because
	// a callback took too long.
	TapDisabledByTimeout Type = 0xFFFFFFFE

	// TapDisabledByUserInput is reported when the hook was disabled by user
	// input (for example, secure text entry).
	TapDisabledByUserInput Type = 0xFFFFFFFF
)

var typeNames = map[Type]string{
	Null:                   "null",
	LeftMouseDown:          "leftMouseDown",
	LeftMouseUp:            "leftMouseUp",
	RightMouseDown:         "rightMouseDown",
	RightMouseUp:           "rightMouseUp",
	MouseMoved:             "mouseMoved",
	LeftMouseDragged:       "leftMouseDragged",
	RightMouseDragged:      "rightMouseDragged",
	KeyDown:                "keyDown",
	KeyUp:                  "keyUp",
	FlagsChanged:           "flagsChanged",
	ScrollWheel:            "scrollWheel",
	TabletPointer:          "tabletPointer",
	TabletProximity:        "tabletProximity",
	OtherMouseDown:         "otherMouseDown",
	OtherMouseUp:           "otherMouseUp",
	OtherMouseDragged:      "otherMouseDragged",
	TapDisabledByTimeout:   "tapDisabledByTimeout",
	TapDisabledByUserInput: "tapDisabledByUserInput",
}

// String returns the camel-case name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint32(t))
}

// Valid reports whether t is a known low-level type.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Universal reports whether t has an enriched counterpart.
func (t Type) Universal() bool {
	_, ok := typeToKind[t]
	return ok
}

// TapDisabled reports whether t is one of the hook-disabled notifications.
func (t Type) TapDisabled() bool {
	return t == TapDisabledByTimeout || t == TapDisabledByUserInput
}

// Kind returns the enriched counterpart of t, if any.
func (t Type) Kind() (Kind, bool) {
	k, ok := typeToKind[t]
	return k, ok
}

// ParseType returns the Type with the given name. Matching is case-insensitive.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return Null, fmt.Errorf("unknown event type %q", name)
}

// ParseTypes parses every name in names, failing on the first unknown one.
func ParseTypes(names []string) ([]Type, error) {
	types := make([]Type, 0, len(names))
	for _, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// Dedupe returns types with duplicates removed, keeping first-seen order.
func Dedupe(types []Type) []Type {
	if len(types) == 0 {
		return nil
	}
	seen := make(map[Type]struct{}, len(types))
	out := make([]Type, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Contains reports whether t is in types.
func Contains(types []Type, t Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Subset reports whether every element of sub is in set.
func Subset(sub, set []Type) bool {
	for _, t := range sub {
		if !Contains(set, t) {
			return false
		}
	}
	return true
}
