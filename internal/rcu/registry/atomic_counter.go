package registry

import (
	"sync/atomic"

	"github.com/kolkov/rcuht/internal/rcu/parity"
)

// atomicCounter is a parity.Counter stored behind sync/atomic loads and
// stores only — never a compare-and-swap. The reader fast path is a single
// store (spec.md §4.1); only the reader owning a slot ever writes it, so
// plain load/store (not CAS) is both sufficient and faster.
type atomicCounter struct {
	v atomic.Uint64
}

func (c *atomicCounter) load() parity.Counter {
	return parity.Counter(c.v.Load())
}

func (c *atomicCounter) store(v parity.Counter) {
	c.v.Store(uint64(v))
}
