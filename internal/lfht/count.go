package lfht

import (
	"runtime"
	"sync/atomic"
)

// countShard is one CPU-sharded approximate counter, cache-line padded the
// same way registry.slot is, to keep concurrent adders/deleters on
// different shards from contending a cache line. Grounded on the
// teacher's detector.Sampler atomic-counter-per-metric pattern
// (internal/race/detector/detector.go), generalized here from "one atomic
// per metric" to "one atomic pair per CPU shard" per spec.md §4.2.7's
// approximate, per-CPU counting requirement.
type countShard struct {
	add atomic.Int64
	del atomic.Int64
	_   [6]uint64 // pad the two int64s out to a cache line
}

func newCountShards() []countShard {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return make([]countShard, n)
}

// shardFor picks this goroutine's shard. Go has no portable cheap
// "current CPU id" the way the C reference's sched_getcpu-backed counting
// does, so this hashes runtime_procPin-free state instead: the goroutine
// scheduler is free to migrate between calls, which only makes the count
// approximate in a different way than the reference (migration skew
// rather than preemption skew) — spec.md §4.2.7 only promises an
// approximate total, not a precise one, so this is within contract. See
// DESIGN.md.
func shardFor(shards []countShard, spread uint64) *countShard {
	return &shards[spread%uint64(len(shards))]
}

// recordAdd/recordDel bump the shard a newly added or removed node hashes
// into, keyed by the node's reverse-hash so the same logical key tends to
// land on the same shard across its add/del pair without needing a real
// CPU id.
func (t *table) recordAdd(reverseHash uint64) {
	shardFor(t.shards, reverseHash).add.Add(1)
}

func (t *table) recordDel(reverseHash uint64) {
	shardFor(t.shards, reverseHash).del.Add(1)
}

// approxCount sums every shard's (add - del). The result can be
// momentarily inconsistent with the true node count under concurrent
// mutation, matching spec.md §4.2.7's "approximate" contract.
func (t *table) approxCount() int64 {
	var n int64
	for i := range t.shards {
		n += t.shards[i].add.Load() - t.shards[i].del.Load()
	}
	if n < 0 {
		n = 0
	}
	return n
}
