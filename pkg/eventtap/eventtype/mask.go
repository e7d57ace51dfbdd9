package eventtype

import (
	"math/bits"
	"strings"
)

// Mask is the bitmask a hook is filtered to. Bit n is set when events of
// the Type with raw value n should be intercepted.
type Mask uint64

// MaskOf returns the mask covering every type in types.
// Types whose raw value does not fit a mask bit contribute nothing.
func MaskOf(types ...Type) Mask {
	var m Mask
	for _, t := range types {
		m |= bit(t)
	}
	return m
}

func bit(t Type) Mask {
	if uint32(t) >= 64 {
		return 0
	}
	return 1 << uint32(t)
}

// Has reports whether the bit for t is set.
func (m Mask) Has(t Type) bool {
	b := bit(t)
	return b != 0 && m&b != 0
}

// Empty reports whether no bit is set.
func (m Mask) Empty() bool {
	return m == 0
}

// Types returns the types whose bits are set, in ascending raw order.
func (m Mask) Types() []Type {
	types := make([]Type, 0, bits.OnesCount64(uint64(m)))
	for rest := uint64(m); rest != 0; rest &= rest - 1 {
		types = append(types, Type(bits.TrailingZeros64(rest)))
	}
	return types
}

// String lists the set types, e.g. "mouseMoved|keyDown".
func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	types := m.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}
