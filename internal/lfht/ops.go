package lfht

// lookup returns the first live node matching key reachable from key's
// bucket, or nil. rawHash addresses the bucket (low bits select the
// bucket under the table's current size); rh is its reverse-hash, the
// sort key used for list position and equality (spec.md §4.2.1 lookup).
// Callers must already hold a read-side critical section.
func (t *table) lookup(size, rawHash, rh uint64, key []byte) *node {
	start := t.bucketFor(size, rawHash)
	_, cur := t.traverse(start, rh, key)
	for cur != nil && cur.reverseHash == rh {
		if !cur.dummy && bytesEqual(cur.key, key) {
			return cur
		}
		cur = scanNext(cur)
	}
	return nil
}

// nextDuplicate returns the next live node after n sharing n's key,
// within the run of nodes tied at n's reverse-hash (spec.md §4.2.1
// next_duplicate). Returns nil once the run of matching keys ends.
func nextDuplicate(n *node) *node {
	cur := scanNext(n)
	for cur != nil && cur.reverseHash == n.reverseHash {
		if !cur.dummy && bytesEqual(cur.key, n.key) {
			return cur
		}
		cur = scanNext(cur)
	}
	return nil
}

// nextLive returns the next live user node after n in split-order,
// skipping dummies and logically removed nodes (spec.md §4.2.1
// next/first).
func nextLive(n *node) *node {
	cur := scanNext(n)
	for cur != nil && cur.dummy {
		cur = scanNext(cur)
	}
	return cur
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// insert implements add / add_unique / add_replace (spec.md §4.2.3). When
// unique is true and a live node with the same key already exists, it
// either returns ErrExists (replace == false) or atomically swaps the
// existing node out for the new one (replace == true), returning the
// replaced node as oldNode. chainLen is the bucket chain length observed
// during the scan (spec.md §4.2.3's chain-length feedback), returned so
// the caller can feed it to Map.maybeTriggerGrowForChainLength.
func (t *table) insert(size, rawHash uint64, rawKey []byte, val any, unique, replace bool) (newNode, oldNode *node, chainLen int, err error) {
	rh := nodeReverseHash(rawHash)
	newN := newUser(rawKey, rh, val)
	start := t.bucketFor(size, rawHash)

retry:
	for {
		left, right, cl := t.traverseChainLen(start, rh, rawKey)
		chainLen = cl
		if unique || replace {
			dup := right
			for dup != nil && dup.reverseHash == rh {
				if !dup.dummy && bytesEqual(dup.key, rawKey) {
					if !replace {
						return nil, dup, chainLen, ErrExists
					}
					observed := dup.next.Load()
					n, old, rerr := t.replaceNode(dup, observed, newN)
					if rerr != nil {
						// lost the race to a concurrent mutation; restart
						// the whole insert from the top of the bucket.
						continue retry
					}
					return n, old, chainLen, rerr
				}
				dup = scanNext(dup)
			}
		}
		newN.next.Store(&successor{target: right})
		if left.casNext(right, false, newN, false) {
			t.recordAdd(rh)
			return newN, nil, chainLen, nil
		}
	}
}

// replaceNode implements spec.md §4.2.5's replace algorithm: new.next is
// published pointing at old's successor as observed by the caller's
// iterator, then a single CAS on old.next both marks old logically
// removed and redirects anyone still looking at old to new. A later
// traversal physically splices new into old's predecessor, same as an
// ordinary deletion's cleanup.
//
// This takes the exact successor snapshot the caller's iterator captured
// at traversal time, per spec.md §6's "Iterator layout" note ("the
// replace CAS needs the exact next the caller observed"), and makes a
// single attempt: if old was concurrently removed or its successor
// changed, it returns ErrNotFound rather than retrying, matching the
// NOT_FOUND contract spec.md §4.2.1's replace row specifies.
func (t *table) replaceNode(old *node, observed *successor, newN *node) (*node, *node, error) {
	if observed.removed {
		return nil, nil, ErrNotFound
	}
	newN.next.Store(&successor{target: observed.target})
	if !old.next.CompareAndSwap(observed, &successor{target: newN, removed: true}) {
		return nil, nil, ErrNotFound
	}
	t.recordAdd(newN.reverseHash)
	t.recordDel(old.reverseHash)
	return newN, old, nil
}

// delIter removes the node an iterator observed, using its captured
// successor snapshot for a single-shot CAS (spec.md §4.2.1's del row:
// "0 on success, NOT_FOUND if concurrently removed" — no retry).
func (t *table) delIter(n *node, observed *successor) error {
	if observed.removed {
		return ErrNotFound
	}
	if !n.next.CompareAndSwap(observed, &successor{target: observed.target, removed: true}) {
		return ErrNotFound
	}
	t.recordDel(n.reverseHash)
	t.traverse(t.head, n.reverseHash, n.key) // help unlink
	return nil
}

// del implements spec.md §4.2.4: find the live node matching (hash, key),
// CAS its own next to the REMOVED state, then help physically unlink it
// with a follow-up traversal.
func (t *table) del(size, rawHash uint64, rawKey []byte) (*node, error) {
	rh := nodeReverseHash(rawHash)
	start := t.bucketFor(size, rawHash)
	for {
		_, cur := t.traverse(start, rh, rawKey)
		found := false
		for cur != nil && cur.reverseHash == rh {
			if !cur.dummy && bytesEqual(cur.key, rawKey) {
				found = true
				break
			}
			cur = scanNext(cur)
		}
		if !found {
			return nil, ErrNotFound
		}
		curTarget, removed := cur.loadNext()
		if removed {
			continue // someone else deleted it first; re-scan for another match
		}
		if cur.markRemoved(curTarget) {
			t.recordDel(rh)
			t.traverse(start, rh, rawKey) // help unlink
			return cur, nil
		}
		// lost the CAS race; re-traverse from scratch
	}
}

// nodeCounts is the full result of a single count_nodes walk: spec.md
// §4.2.1's four required fields (approxBefore, exact, exactRemoved,
// approxAfter), plus the split-order/chain-length diagnostics
// SPEC_FULL.md adds alongside them, not in place of them.
type nodeCounts struct {
	approxBefore int64
	exact        int
	exactRemoved int
	approxAfter  int64
	order        int
	longestChain int
}

// countNodes samples the approximate counter, walks the entire list once
// tallying live and logically-removed-but-not-yet-unlinked user nodes and
// the longest run of consecutive same-reverse-hash entries, then samples
// the approximate counter again (spec.md §4.2.1: "returns approximate-
// before, exact count, exact removed-but-not-yet-unlinked, approximate-
// after" — a writer can be concurrently mutating the table throughout the
// walk, so before/after bracket it rather than claiming the exact count is
// itself atomic with the approximation). Chain length is the diagnostic
// SPEC_FULL.md adds on top, grounded on Shalev & Shavit's discussion of
// chain length as the split-ordered list's health signal (the table is
// never literally rehashed, so a long chain is the only sign a grow is
// overdue).
func (t *table) countNodes() nodeCounts {
	var c nodeCounts
	c.approxBefore = t.approxCount()

	t.levelsMu.Lock()
	c.order = len(t.levels) - 1
	t.levelsMu.Unlock()

	cur, _ := t.head.loadNext()
	var run int
	var lastHash uint64
	haveLast := false
	for cur != nil {
		if cur.isRemoved() {
			if !cur.dummy {
				c.exactRemoved++
			}
			cur, _ = cur.loadNext()
			continue
		}
		if !cur.dummy {
			c.exact++
		}
		if haveLast && cur.reverseHash == lastHash {
			run++
		} else {
			run = 1
			lastHash = cur.reverseHash
			haveLast = true
		}
		if run > c.longestChain {
			c.longestChain = run
		}
		cur, _ = cur.loadNext()
	}

	c.approxAfter = t.approxCount()
	return c
}
