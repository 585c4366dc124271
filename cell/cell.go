package cell

import (
	"runtime"
	"sync/atomic"
)

// Publication marker states. Transitions are monotonic:
// unpublished -> published -> tornDown. No state is ever revisited.
const (
	unpublished uint32 = iota
	published
	tornDown
)

// Get yields to the scheduler after this many consecutive empty polls.
const spinBudget = 64

// Cell holds one value of type T in inline storage.
//
// The zero value is ready for Construct. A Cell must not be copied
// after first use; the published address is the address of its slot.
type Cell[T any] struct {
	mark    atomic.Uint32
	claimed atomic.Bool
	slot    T
}

// New allocates a Cell and constructs its value immediately.
func New[T any](init func(*T) error) (*Cell[T], error) {
	c := &Cell[T]{}
	if err := c.Construct(init); err != nil {
		return nil, err
	}
	return c, nil
}

// Construct builds the value in place inside the cell's slot and
// publishes its address. It must be called exactly once per cell; a
// second call panics. If init returns an error the cell stays
// unpublished and must not be reused: waiting readers keep waiting,
// and a retried Construct panics.
//
// Every write init performs is visible to any goroutine whose Get
// returns, through the release store on the marker.
func (c *Cell[T]) Construct(init func(*T) error) error {
	if !c.claimed.CompareAndSwap(false, true) {
		panic("cell: double construction")
	}
	if init != nil {
		if err := init(&c.slot); err != nil {
			return err
		}
	}
	c.mark.Store(published)
	return nil
}

// Get returns the address of the live value.
//
// Once published this is a single atomic load. While construction is
// in flight on another goroutine, Get polls the marker, yielding to
// the scheduler between bursts, until publication lands. Get never
// returns a partially-constructed value.
//
// Calling Get on a torn-down cell is a lifetime violation by the
// owning scope and panics rather than hanging.
func (c *Cell[T]) Get() *T {
	for spins := 0; ; spins++ {
		switch c.mark.Load() {
		case published:
			return &c.slot
		case tornDown:
			panic("cell: access after teardown")
		}
		if spins >= spinBudget {
			runtime.Gosched()
		}
	}
}

// TryGet is the non-blocking form of Get. It reports false while
// construction has not finished, and panics after teardown.
func (c *Cell[T]) TryGet() (*T, bool) {
	switch c.mark.Load() {
	case published:
		return &c.slot, true
	case tornDown:
		panic("cell: access after teardown")
	}
	return nil, false
}

// Destroy tears the cell down. Of any number of concurrent callers,
// exactly one wins the marker swap and runs fini on the slot; the
// rest return false without effect. fini may be nil. Destroy on a
// cell that was never published returns false.
//
// After Destroy returns true the cell must not be accessed or
// reconstructed.
func (c *Cell[T]) Destroy(fini func(*T)) bool {
	if !c.mark.CompareAndSwap(published, tornDown) {
		return false
	}
	if fini != nil {
		fini(&c.slot)
	}
	return true
}
