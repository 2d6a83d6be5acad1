package lfht

import "sync/atomic"

// successor is the immutable payload of a node's outgoing edge: a plain
// pointer to the next node plus the REMOVED flag. Publishing a new
// successor value is a single atomic.Pointer store, giving the atomic
// (next, flags) pair spec.md §9 requires without low-bit pointer tagging
// or unsafe.Pointer arithmetic — the "double-word-CAS-equivalent" option
// spec.md §9 explicitly allows. See DESIGN.md for why the DUMMY flag
// spec.md §3 places alongside REMOVED in the tagged pointer is instead
// carried as an immutable field directly on node (below): a node's
// dummy-ness never changes after construction, so there is nothing to
// preserve across a CAS and no reason to spend a bit of the mutable word
// on it.
type successor struct {
	target  *node
	removed bool
}

// node is one split-ordered list entry: either a dummy (bucket-anchor)
// sentinel or a user key/value pair. Dummies are created exactly once per
// bucket by ensureBucket and are never removed or replaced.
type node struct {
	key         []byte
	reverseHash uint64
	dummy       bool

	// next is this node's outgoing edge, published with CAS. The REMOVED
	// flag on a node's own next field marks that node logically deleted
	// (spec.md §4.2.4: "CAS the target node's own next from N to
	// flag_removed(N)") — readers that load a removed next still get a
	// valid target to keep walking, while a physical-delete pass (run by
	// the next writer that walks past it) unlinks it from its
	// predecessor.
	next atomic.Pointer[successor]

	// val is the user-supplied payload for a non-dummy node. Stored as
	// any rather than a generic type parameter to mirror spec.md §4.2.1's
	// untyped void* node/key contract; callers recover their concrete
	// type at the lfht façade layer.
	val any
}

func newDummy(reverseHash uint64) *node {
	n := &node{reverseHash: reverseHash, dummy: true}
	n.next.Store(&successor{})
	return n
}

func newUser(key []byte, reverseHash uint64, val any) *node {
	n := &node{key: key, reverseHash: reverseHash, val: val}
	n.next.Store(&successor{})
	return n
}

// loadNext returns the current target and removed flag of n's outgoing
// edge.
func (n *node) loadNext() (target *node, removed bool) {
	s := n.next.Load()
	return s.target, s.removed
}

// casNext attempts to publish a new (target, removed) pair, succeeding
// only if n's edge still equals (oldTarget, oldRemoved).
func (n *node) casNext(oldTarget *node, oldRemoved bool, newTarget *node, newRemoved bool) bool {
	old := n.next.Load()
	if old.target != oldTarget || old.removed != oldRemoved {
		return false
	}
	return n.next.CompareAndSwap(old, &successor{target: newTarget, removed: newRemoved})
}

// markRemoved flags n itself as logically removed without changing the
// target its edge points at. Returns false if n was concurrently removed
// or its edge concurrently changed target.
func (n *node) markRemoved(expectTarget *node) bool {
	old := n.next.Load()
	if old.target != expectTarget || old.removed {
		return false
	}
	return n.next.CompareAndSwap(old, &successor{target: expectTarget, removed: true})
}

// isRemoved reports whether n has been logically removed.
func (n *node) isRemoved() bool {
	return n.next.Load().removed
}
