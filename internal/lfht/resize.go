package lfht

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/rcuht/rcu"
)

// growThreshold triggers an automatic doubling once the approximate node
// count exceeds this many entries per bucket on average (spec.md §4.2.6's
// count-triggered lazy grow). shrinkThreshold triggers a halving once the
// load factor drops below it, leaving hysteresis between the two so a
// table sitting right at the boundary does not thrash. chainLenResizeThreshold
// is spec.md §4.2.3's CHAIN_LEN_RESIZE_THRESHOLD: a second, independent
// grow trigger driven by a single bucket chain's length rather than the
// table's overall load, for key distributions skewed enough that the
// overall load factor stays low while one bucket grows long.
const (
	growThreshold           = 2.0
	shrinkThreshold         = 0.25
	chainLenResizeThreshold = 8
)

func (m *Map) maybeTriggerGrow() {
	if !m.cfg.AutoResize {
		return
	}
	size := m.currentSize()
	if m.maxSize != 0 && size >= m.maxSize {
		return
	}
	load := float64(m.t.approxCount()) / float64(size)
	if load <= growThreshold {
		return
	}
	m.triggerGrowToDouble(size)
}

// maybeTriggerGrowForChainLength is insert's independent chain-length
// feedback trigger (spec.md §4.2.3: "During the scan, count transitions
// between distinct reverse-hash values among non-dummy nodes. If this
// chain length meets CHAIN_LEN_RESIZE_THRESHOLD and auto-resize is
// enabled, schedule a lazy grow") — wired in alongside, not instead of,
// the count-based trigger above; spec.md §4.2.7 only conditions the
// *counting* half of resize on per-CPU counter availability, not this one.
func (m *Map) maybeTriggerGrowForChainLength(chainLen int) {
	if !m.cfg.AutoResize || chainLen < chainLenResizeThreshold {
		return
	}
	size := m.currentSize()
	if m.maxSize != 0 && size >= m.maxSize {
		return
	}
	m.triggerGrowToDouble(size)
}

// triggerGrowToDouble starts an asynchronous grow to size*2 (clamped to
// MaxSize), unless a resize is already in flight.
func (m *Map) triggerGrowToDouble(size uint64) {
	if !m.resizing.CompareAndSwap(false, true) {
		return
	}
	target := size * 2
	if m.maxSize != 0 && target > m.maxSize {
		target = m.maxSize
	}
	m.triggerResize(target)
}

func (m *Map) maybeTriggerShrink() {
	if !m.cfg.AutoResize {
		return
	}
	size := m.currentSize()
	if size <= m.minSize {
		return
	}
	load := float64(m.t.approxCount()) / float64(size)
	if load >= shrinkThreshold {
		return
	}
	if !m.resizing.CompareAndSwap(false, true) {
		return
	}
	target := size / 2
	if target < m.minSize {
		target = m.minSize
	}
	m.triggerResize(target)
}

// triggerResize runs an automatic grow/shrink on a fresh goroutine with
// its own freshly registered rcu.Ops (Config.NewOps), since the calling
// goroutine's own Ops belongs to it alone (see Config's doc comment) and
// a resize must go offline/online and call SynchronizeRCU independently
// of whatever RCS the triggering caller happens to be in.
func (m *Map) triggerResize(target uint64) {
	go func() {
		defer m.resizing.Store(false)
		ops, err := m.cfg.NewOps()
		if err != nil {
			return
		}
		if err := ops.RegisterThread(); err != nil {
			return
		}
		defer ops.UnregisterThread()
		_ = m.Resize(ops, target)
	}()
}

// Resize explicitly grows or shrinks the table to newSize, which must be a
// nonzero power of two within [MinSize, MaxSize] (spec.md §4.2.6). Growing
// pre-populates every newly addressable bucket's dummy in parallel across
// an errgroup of workers — grounded on the teacher's own worker-pool
// wiring style in cmd/racedetector (parallel instrumentation passes over
// independent files) — then publishes the new size behind a single
// SynchronizeRCU fence so no reader ever observes a size increase without
// the corresponding bucket dummies already linked in. Shrinking needs no
// data movement at all: every node stays on the one shared split-ordered
// list, and lowering the visible size simply means fewer low-order bits of
// the hash are consulted when addressing it (the Shalev & Shavit
// split-order invariant this whole package is built on).
//
// The calling goroutine goes offline for the duration (spec.md §4.2.6:
// "worker threads transition offline...before acquiring [the resize
// mutex] so that synchronize() calls...cannot deadlock against
// themselves") — Resize itself calls SynchronizeRCU, so if the caller
// remained online while holding resizeMu a concurrent Resize call could
// wait on a grace period that never arrives.
func (m *Map) Resize(ops rcu.Ops, newSize uint64) error {
	if newSize == 0 || !isPowerOfTwo(newSize) {
		return ErrInvalidArg
	}
	if m.minSize != 0 && newSize < m.minSize {
		return ErrInvalidArg
	}
	if m.maxSize != 0 && newSize > m.maxSize {
		return ErrInvalidArg
	}

	ops.ThreadOffline()
	defer ops.ThreadOnline()

	m.resizeMu.Lock()
	defer m.resizeMu.Unlock()

	oldSize := m.currentSize()
	if newSize > oldSize {
		if err := m.growPrepare(oldSize, newSize); err != nil {
			return err
		}
	}
	m.size.Store(newSize)
	ops.SynchronizeRCU()
	return nil
}

// growPrepare creates every bucket dummy in [oldSize, newSize) before the
// new size is published, partitioned across a worker group so a large
// grow does not serialize on a single goroutine.
func (m *Map) growPrepare(oldSize, newSize uint64) error {
	const minPartition = 1024
	workers := int((newSize - oldSize) / minPartition)
	if workers < 1 {
		workers = 1
	}
	if n := runtime.GOMAXPROCS(0); workers > n {
		workers = n
	}

	var g errgroup.Group
	span := (newSize - oldSize) / uint64(workers)
	if span == 0 {
		span = 1
	}
	for w := 0; w < workers; w++ {
		start := oldSize + uint64(w)*span
		end := start + span
		if w == workers-1 {
			end = newSize
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			for b := start; b < end; b++ {
				m.t.ensureBucket(b)
			}
			return nil
		})
	}
	return g.Wait()
}
