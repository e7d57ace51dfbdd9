// Package registry provides a generic thread-safe registry that remembers
// insertion order.
//
// eventtap keeps its subscriber stores here, because dispatch must visit
// subscribers in a stable, reproducible order, and the process-wide table of
// live supervisor references.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.Register("b", 2)
//	r.Register("a", 1)
//	r.Register("b", 20) // replaces in place
//
//	r.Keys() // [b a]
//
// # Iteration
//
// Entries and Range work on a snapshot taken under the read lock, so the
// callback passed to Range may mutate the registry:
//
//	r.Range(func(key string, value int) bool {
//	    if value < 0 {
//	        r.Delete(key) // does not affect this iteration
//	    }
//	    return true
//	})
package registry
