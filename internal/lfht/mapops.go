package lfht

import "github.com/kolkov/rcuht/rcu"

// Iter is a small value carrying both the node a traversal landed on and
// the successor it observed there (spec.md §6's "Iterator layout": "An
// iterator is a small value {node, next} carrying both the current node
// and the next pointer loaded at traversal time; this is necessary for
// replace because the replace CAS needs the exact next the caller
// observed"). Valid() is the teacher's style of small boolean convenience
// predicates alongside raw fields (compare parity.Counter.Offline).
type Iter struct {
	n        *node
	observed *successor
}

// Valid reports whether it points at a node at all.
func (it *Iter) Valid() bool { return it != nil && it.n != nil }

// Key returns the iterator's node's key. Returned slices must not be
// mutated.
func (it *Iter) Key() []byte { return it.n.key }

// Value returns the iterator's node's stored value.
func (it *Iter) Value() any { return it.n.val }

func makeIter(n *node) *Iter {
	if n == nil {
		return &Iter{}
	}
	return &Iter{n: n, observed: n.next.Load()}
}

// Lookup returns an Iter over the first node matching key, or an invalid
// Iter if none exists (spec.md §4.2.1 lookup). ops must belong to the
// calling goroutine's own registered reader (see Config's doc comment).
func (m *Map) Lookup(ops rcu.Ops, key []byte) *Iter {
	ops.ReadLock()
	defer ops.ReadUnlock()

	raw := m.hash(key)
	return makeIter(m.t.lookup(m.currentSize(), raw, nodeReverseHash(raw), key))
}

// First returns an Iter over the first live node encountered in
// split-order, or an invalid Iter if the table is empty (spec.md §4.2.1
// first).
func (m *Map) First(ops rcu.Ops) *Iter {
	ops.ReadLock()
	defer ops.ReadUnlock()
	return makeIter(nextLive(m.t.head))
}

// Next returns an Iter over the next live user node after it in
// split-order, skipping dummies, or an invalid Iter at the end of the
// table (spec.md §4.2.1 next).
func (m *Map) Next(ops rcu.Ops, it *Iter) *Iter {
	if !it.Valid() {
		return &Iter{}
	}
	ops.ReadLock()
	defer ops.ReadUnlock()
	return makeIter(nextLive(it.n))
}

// NextDuplicate returns an Iter over the next node sharing it's key, or an
// invalid Iter (spec.md §4.2.1 next_duplicate).
func (m *Map) NextDuplicate(ops rcu.Ops, it *Iter) *Iter {
	if !it.Valid() {
		return &Iter{}
	}
	ops.ReadLock()
	defer ops.ReadUnlock()
	return makeIter(nextDuplicate(it.n))
}

// Add inserts key/val, permitting duplicate keys (spec.md §4.2.3 add).
func (m *Map) Add(ops rcu.Ops, key []byte, val any) *Iter {
	ops.ReadLock()
	n, _, chainLen, _ := m.t.insert(m.currentSize(), m.hash(key), key, val, false, false)
	ops.ReadUnlock()
	m.maybeTriggerGrow()
	m.maybeTriggerGrowForChainLength(chainLen)
	return makeIter(n)
}

// AddUnique inserts key/val only if key is not already present, returning
// ErrExists (and an Iter over the existing node) otherwise (spec.md
// §4.2.3 add_unique).
func (m *Map) AddUnique(ops rcu.Ops, key []byte, val any) (*Iter, error) {
	ops.ReadLock()
	n, old, chainLen, err := m.t.insert(m.currentSize(), m.hash(key), key, val, true, false)
	ops.ReadUnlock()
	if err != nil {
		return makeIter(old), err
	}
	m.maybeTriggerGrow()
	m.maybeTriggerGrowForChainLength(chainLen)
	return makeIter(n), nil
}

// AddReplace inserts key/val, atomically replacing any existing node for
// key (spec.md §4.2.3 add_replace / §4.2.5 replace). oldIter is invalid
// if this was a plain insert rather than a replace.
func (m *Map) AddReplace(ops rcu.Ops, key []byte, val any) (newIter, oldIter *Iter) {
	ops.ReadLock()
	n, old, chainLen, _ := m.t.insert(m.currentSize(), m.hash(key), key, val, true, true)
	ops.ReadUnlock()
	if old != nil {
		m.reclaim(ops, old)
	} else {
		m.maybeTriggerGrow()
		m.maybeTriggerGrowForChainLength(chainLen)
	}
	return makeIter(n), makeIter(old)
}

// Replace atomically swaps the node it points at for a new node holding
// newVal under the same key (spec.md §4.2.5). Returns ErrNotFound if the
// node it observed was concurrently removed or replaced.
func (m *Map) Replace(ops rcu.Ops, it *Iter, newVal any) (*Iter, error) {
	if !it.Valid() {
		return nil, ErrNotFound
	}
	ops.ReadLock()
	n, old, err := m.t.replaceNode(it.n, it.observed, newUser(it.n.key, it.n.reverseHash, newVal))
	ops.ReadUnlock()
	if err != nil {
		return nil, err
	}
	m.reclaim(ops, old)
	return makeIter(n), nil
}

// Del removes the first node matching key (spec.md §4.2.4), retrying
// internally against concurrent mutation since it owns the whole
// find-then-remove operation rather than being handed a caller's stale
// iterator.
func (m *Map) Del(ops rcu.Ops, key []byte) error {
	ops.ReadLock()
	n, err := m.t.del(m.currentSize(), m.hash(key), key)
	ops.ReadUnlock()
	if err != nil {
		return err
	}
	m.reclaim(ops, n)
	m.maybeTriggerShrink()
	return nil
}

// DelIter removes the node it points at, using its captured successor
// snapshot for a single-shot CAS (spec.md §4.2.1 del: "NOT_FOUND if
// concurrently removed", no retry). Useful when iterating with
// First/Next/Lookup and deleting the node currently being looked at.
func (m *Map) DelIter(ops rcu.Ops, it *Iter) error {
	if !it.Valid() {
		return ErrNotFound
	}
	ops.ReadLock()
	err := m.t.delIter(it.n, it.observed)
	ops.ReadUnlock()
	if err != nil {
		return err
	}
	m.reclaim(ops, it.n)
	m.maybeTriggerShrink()
	return nil
}

// reclaim schedules a deleted node's Release callback, if configured, to
// run after the grace period that makes it safe (spec.md §4.2.4: "the
// space is not actually reclaimed until a subsequent traversal or an
// explicit synchronize completes").
func (m *Map) reclaim(ops rcu.Ops, n *node) {
	if n == nil || m.cfg.Release == nil {
		return
	}
	key, val := n.key, n.val
	ops.CallRCU(func(any) { m.cfg.Release(key, val) }, nil)
}

// Count returns the approximate live node count (spec.md §4.2.7).
func (m *Map) Count() int64 { return m.t.approxCount() }

// NodeCounts is count_nodes's full result (spec.md §4.2.1): the
// approximate count sampled before and after the exact walk, the exact
// live count, and the exact count of nodes logically removed but not yet
// physically unlinked, plus the split-order table order and longest
// same-reverse-hash chain SPEC_FULL.md adds alongside those four fields.
type NodeCounts struct {
	ApproxBefore int64
	Exact        int
	ExactRemoved int
	ApproxAfter  int64
	Order        int
	LongestChain int
}

// CountNodes walks the table once and returns all of count_nodes's
// fields (spec.md §4.2.1).
func (m *Map) CountNodes() NodeCounts {
	c := m.t.countNodes()
	return NodeCounts{
		ApproxBefore: c.approxBefore,
		Exact:        c.exact,
		ExactRemoved: c.exactRemoved,
		ApproxAfter:  c.approxAfter,
		Order:        flsUint64(m.currentSize()),
		LongestChain: c.longestChain,
	}
}

// Destroy reports whether the table may be torn down: it returns
// ErrNonEmpty if any user node remains, unless force is true (spec.md §7:
// destroying a non-empty table is a caller error, never silently
// tolerated). Go's garbage collector reclaims the table's memory once the
// caller drops its last reference; Destroy exists to enforce the
// emptiness contract, not to free anything itself.
func (m *Map) Destroy(force bool) error {
	if !force && m.t.approxCount() > 0 {
		return ErrNonEmpty
	}
	return nil
}
