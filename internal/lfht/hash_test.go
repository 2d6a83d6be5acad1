package lfht

import "testing"

func TestBitReverseRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 1234567, ^uint64(0)} {
		if got := bitReverse(bitReverse(v)); got != v {
			t.Fatalf("bitReverse(bitReverse(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestFlsUint64(t *testing.T) {
	cases := []struct {
		in   uint64
		want int
	}{
		{0, -1},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{7, 2},
		{8, 3},
	}
	for _, c := range cases {
		if got := flsUint64(c.in); got != c.want {
			t.Errorf("flsUint64(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestBucketOrderSizes(t *testing.T) {
	// Every bucket in [0, 2^maxOrder) must map to a sub-index within its
	// order's declared size, and every (order, sub) pair must be unique.
	const maxOrder = 10
	seen := map[[2]uint64]bool{}
	var b uint64
	for order := 0; order <= maxOrder; order++ {
		n := orderSize(order)
		for sub := uint64(0); sub < n; sub++ {
			gotOrder, gotSub := bucketOrder(b)
			if gotOrder != order || gotSub != sub {
				t.Fatalf("bucketOrder(%d) = (%d,%d), want (%d,%d)", b, gotOrder, gotSub, order, sub)
			}
			key := [2]uint64{uint64(order), sub}
			if seen[key] {
				t.Fatalf("duplicate (order,sub) = %v at bucket %d", key, b)
			}
			seen[key] = true
			b++
		}
	}
}

func TestDummyAndUserReverseHashNeverTie(t *testing.T) {
	for b := uint64(0); b < 1000; b++ {
		d := dummyReverseHash(b)
		if d&1 != 0 {
			t.Fatalf("dummyReverseHash(%d) = %d is odd, want even", b, d)
		}
	}
	for h := uint64(0); h < 1000; h++ {
		u := nodeReverseHash(h)
		if u&1 != 1 {
			t.Fatalf("nodeReverseHash(%d) = %d is even, want odd", h, u)
		}
	}
}

func TestParentBucket(t *testing.T) {
	cases := map[uint64]uint64{
		1: 0,
		2: 0,
		3: 1,
		4: 0,
		5: 1,
		6: 2,
		7: 3,
	}
	for b, want := range cases {
		if got := parentBucket(b); got != want {
			t.Errorf("parentBucket(%d) = %d, want %d", b, got, want)
		}
	}
}
