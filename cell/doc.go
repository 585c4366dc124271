// Package cell provides a lazily-published single-instance holder.
//
// A Cell owns inline storage for exactly one value of its type
// parameter. The value is constructed in place exactly once, its
// address is published atomically, and it is destroyed exactly once
// no matter how many goroutines race on teardown. Readers that arrive
// before publication spin-wait; readers that arrive after publication
// take a constant-time fast path with no locking.
//
// The cell is a building block for values whose initialization order
// is not otherwise guaranteed: cross-package singletons, registries
// published to concurrent observers, and state that must exist before
// any reader touches it.
package cell
