package lfht

import (
	"bytes"
	"sync"
)

// orderLevel holds the dummy slots for one order of the split-ordered list
// (spec.md §4.2.2). Slots are filled lazily, at most once each, guarded by
// mu — contention on mu only occurs between concurrent first-touches of
// buckets in the same order, which resize already serializes against via
// its own worker partitioning (see resize.go), so this is not a hot path.
type orderLevel struct {
	mu    sync.Mutex
	slots []*node
}

// table is the single, permanent split-ordered list plus its order index.
// A resize never replaces or copies it: growing or shrinking only changes
// the Map's visible size counter and lazily materializes the dummies the
// new size newly addresses (spec.md §4.2.6). Every node a reader or writer
// has ever observed remains reachable from head for the table's entire
// lifetime.
type table struct {
	head *node // bucket 0's dummy; the permanent head of the entire list

	levelsMu sync.Mutex
	levels   []*orderLevel // levels[o] is order o's slot array, grown on demand

	shards []countShard // per-GOMAXPROCS approximate add/del counters
}

// newTable builds a fresh table with only the head dummy materialized;
// every other bucket's dummy is created lazily the first time a key hashes
// into it (spec.md §4.2.6).
func newTable() *table {
	t := &table{head: newDummy(dummyReverseHash(0))}
	t.levels = []*orderLevel{{slots: []*node{t.head}}}
	t.shards = newCountShards()
	return t
}

func (t *table) ensureLevel(order int) *orderLevel {
	t.levelsMu.Lock()
	defer t.levelsMu.Unlock()
	for len(t.levels) <= order {
		sz := orderSize(len(t.levels))
		t.levels = append(t.levels, &orderLevel{slots: make([]*node, sz)})
	}
	return t.levels[order]
}

// parentBucket returns the bucket whose dummy must exist before bucket b's
// dummy can be linked in: b with its highest set bit cleared. This is the
// standard split-ordered-list initialization order (Shalev & Shavit),
// cited in SPEC_FULL.md's count_nodes diagnostics section, applied here to
// lazy dummy creation as spec.md §4.2.6 requires ("each new dummy finds
// its predecessor dummy and links in via ordinary CAS-based insertion").
func parentBucket(b uint64) uint64 {
	return b &^ (uint64(1) << uint(flsUint64(b)))
}

// ensureBucket returns bucket b's dummy, creating it (and, recursively,
// every ancestor bucket's dummy it depends on) if this is the first access
// to it since the table was created or last grown into this order.
func (t *table) ensureBucket(b uint64) *node {
	if b == 0 {
		return t.head
	}
	order, sub := bucketOrder(b)
	lvl := t.ensureLevel(order)

	lvl.mu.Lock()
	if n := lvl.slots[sub]; n != nil {
		lvl.mu.Unlock()
		return n
	}
	lvl.mu.Unlock()

	parent := t.ensureBucket(parentBucket(b))

	lvl.mu.Lock()
	defer lvl.mu.Unlock()
	if n := lvl.slots[sub]; n != nil {
		return n
	}
	n := t.linkDummy(parent, b)
	lvl.slots[sub] = n
	return n
}

// linkDummy inserts bucket b's dummy into the list starting the search
// from parent, which is guaranteed to sort before it. If a concurrent
// caller already linked it in (possible because callers outside
// ensureBucket's lvl.mu critical section can race to reach the same
// bucket through a different ancestor path) the existing node is
// returned instead of a duplicate.
func (t *table) linkDummy(parent *node, b uint64) *node {
	target := dummyReverseHash(b)
	for {
		left, right := t.traverse(parent, target, nil)
		if right != nil && right.reverseHash == target {
			return right
		}
		n := newDummy(target)
		n.next.Store(&successor{target: right})
		if left.casNext(right, false, n, false) {
			return n
		}
	}
}

// nodeLess reports whether n sorts strictly before the (hash, key) pair in
// split-order: primarily by reverse-hash, then by key bytes for the rare
// case of two user nodes sharing a reverse-hash (spec.md §8 property 4).
// Dummy nodes never tie with user nodes because dummyReverseHash always
// produces an even value and nodeReverseHash always an odd one.
func nodeLess(n *node, hash uint64, key []byte) bool {
	if n.reverseHash != hash {
		return n.reverseHash < hash
	}
	return bytes.Compare(n.key, key) < 0
}

// traverse walks the list starting at start (a node known to sort at or
// before the target), returning the last non-removed node strictly before
// (hash, key) and the first non-removed node at or after it. Nodes found
// logically removed along the way are physically unlinked (Harris' lazy
// list algorithm), which is how spec.md §4.2.4's "a later traversal
// reclaims the space" half of deletion actually happens.
func (t *table) traverse(start *node, hash uint64, key []byte) (left, right *node) {
retry:
	left = start
	cur, _ := left.loadNext()
	for {
		if cur == nil {
			return left, nil
		}
		curTarget, curRemoved := cur.loadNext()
		if curRemoved {
			if !left.casNext(cur, false, curTarget, false) {
				goto retry
			}
			cur = curTarget
			continue
		}
		if nodeLess(cur, hash, key) {
			left = cur
			cur = curTarget
			continue
		}
		return left, cur
	}
}

// traverseChainLen behaves exactly like traverse but additionally counts
// chain length along the way: transitions between distinct reverse-hash
// values among non-dummy nodes encountered from start up to and including
// the first node at or after the insertion point (spec.md §4.2.3's
// chain-length feedback: "During the scan, count
// transitions between distinct reverse-hash values among non-dummy
// nodes"). insert uses this instead of plain traverse so Add can trigger
// a grow from a single bucket's chain length alone, independent of (and
// in addition to) the table-wide, count-based trigger in resize.go.
func (t *table) traverseChainLen(start *node, hash uint64, key []byte) (left, right *node, chainLen int) {
retry:
	left = start
	cur, _ := left.loadNext()
	chainLen = 0
	var lastHash uint64
	haveLast := false
	for {
		if cur == nil {
			return left, nil, chainLen
		}
		curTarget, curRemoved := cur.loadNext()
		if curRemoved {
			if !left.casNext(cur, false, curTarget, false) {
				goto retry
			}
			cur = curTarget
			continue
		}
		if !cur.dummy && (!haveLast || cur.reverseHash != lastHash) {
			chainLen++
			lastHash = cur.reverseHash
			haveLast = true
		}
		if nodeLess(cur, hash, key) {
			left = cur
			cur = curTarget
			continue
		}
		return left, cur, chainLen
	}
}

// bucketFor returns the dummy anchoring the bucket that key's hash maps
// into under the table's current size, creating it lazily if needed.
func (t *table) bucketFor(size uint64, hash uint64) *node {
	b := bucketIndex(hash, size)
	return t.ensureBucket(b)
}

// scanNext returns the next non-removed node after n without unlinking
// anything — a read-only counterpart to traverse's helping behavior, safe
// to call from pure lookups that hold no predecessor to CAS against.
func scanNext(n *node) *node {
	cur, _ := n.loadNext()
	for cur != nil && cur.isRemoved() {
		cur, _ = cur.loadNext()
	}
	return cur
}
