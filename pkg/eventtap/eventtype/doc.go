// Package eventtype defines the two input-event vocabularies used by eventtap
// and the mask calculation that filters the interception hook.
//
// # Vocabularies
//
// Type is the low-level vocabulary: the event categories the hook itself
// reports. Kind is the enriched vocabulary: the categories of the higher-level
// representation a raw event can be translated into. The two overlap on the
// universal subset, where a value means the same thing in both:
//
//	k, ok := eventtype.LeftMouseDown.Kind() // KindLeftMouseDown, true
//	t, ok := eventtype.KindMagnify.Type()   // Null, false
//
// Only universal types are eligible for enrichment.
//
// # Masks
//
// MaskOf folds a set of types into the bitmask the hook is filtered to:
//
//	mask := eventtype.MaskOf(eventtype.KeyDown, eventtype.MouseMoved)
//	mask.Has(eventtype.KeyDown) // true
//	mask.Has(eventtype.KeyUp)   // false
//
// An empty set yields a zero mask. Callers must not install a hook for a
// zero mask.
package eventtype
