package lfht

import "math/bits"

// bitReverse reverses the bits of a 64-bit word (spec.md §3's "bit-reversed
// hash value"). Grounded on the teacher's own small bit-twiddling helpers
// (internal/race/shadowmem/shadow_cas.go's fastHash multiplicative mix) in
// spirit: a tight, allocation-free, pure function on machine words.
func bitReverse(x uint64) uint64 {
	return bits.Reverse64(x)
}

// flsUint64 returns floor(log2(x)) for x >= 1. Undefined (returns -1) for
// x == 0, matching the C reference's fls_ulong semantics referenced in
// spec.md §9 — see DESIGN.md for how this implementation sidesteps the
// source's undefined CAA_BITS_PER_lONG branch by always selecting the
// 64-bit word width.
func flsUint64(x uint64) int {
	if x == 0 {
		return -1
	}
	return bits.Len64(x) - 1
}

// bucketOrder returns the order table index and the sub-index within that
// order's dummy array for bucket b, per spec.md §4.2.2's addressing
// scheme, with the off-by-one in the written formula corrected: order o
// (o>=1) holds exactly 2^(o-1) dummies, so cumulative bucket count through
// order o is 2^o, and bucket b (b>=1) falls in the order satisfying
// 2^(order-1) <= b < 2^order, i.e. order = floor(log2(b))+1 — not
// floor(log2(b+1)) as spec.md's prose states, which places b=2 outside
// the bounds of any order-1 array of size 2^(1-1)=1. See DESIGN.md.
func bucketOrder(b uint64) (order int, sub uint64) {
	if b == 0 {
		return 0, 0
	}
	order = flsUint64(b) + 1
	sub = b - (uint64(1) << uint(order-1))
	return order, sub
}

// orderSize returns the number of dummy slots order o's array holds.
func orderSize(order int) uint64 {
	if order == 0 {
		return 1
	}
	return uint64(1) << uint(order-1)
}

// dummyReverseHash computes the reverse-hash of the dummy anchoring bucket
// b (spec.md §4.2.2: "the dummy whose reverse-hash is bit_reverse(b)").
// The low bit is forced to 0 and a user node's reverse-hash (below) always
// has its low bit forced to 1, so dummies and user nodes with otherwise
// identical reverse-hash values never compare equal — spec.md §8 property
// 4's "dummies with equal reverse-hash precede user nodes with the same
// reverse-hash" then falls out of plain integer ordering with no special
// tie-break code required. See DESIGN.md for this Open Question
// resolution (spec.md only says the two flags must exist; it does not
// mandate a representation).
func dummyReverseHash(b uint64) uint64 {
	return bitReverse(b) &^ 1
}

// nodeReverseHash computes the reverse-hash of a user key's hash value.
func nodeReverseHash(h uint64) uint64 {
	return bitReverse(h) | 1
}

// bucketIndex returns b = h & (s-1) for table size s (spec.md §4.2.2).
func bucketIndex(h uint64, size uint64) uint64 {
	return h & (size - 1)
}

// isPowerOfTwo reports whether n is a nonzero power of two.
func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
