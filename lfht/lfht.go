// Package lfht is the public API of the lock-free, resizable,
// RCU-protected split-ordered hash table (spec.md §4.2). It is the LFHT
// component of rcuht, layered over package rcu's grace-period engine via
// the rcu.Ops interface (spec.md §6).
//
// Every read, mutation, and traversal method takes an rcu.Ops belonging
// to the calling goroutine's own registered reader — Go has no implicit
// per-thread storage the way the C reference's rcu_read_lock() relies on,
// so that binding is passed explicitly instead of fixed once at
// construction. A minimal single-goroutine user looks like:
//
//	dom := rcu.New(rcu.Options{})
//	defer dom.Close()
//	ops, _ := rcu.NewOps(dom)
//	ops.RegisterThread()
//	defer ops.UnregisterThread()
//
//	m, err := lfht.New(lfht.Config{
//		Hash: func(k []byte) uint64 {
//			h := fnv.New64a()
//			h.Write(k)
//			return h.Sum64()
//		},
//	})
//	m.Add(ops, []byte("a"), 1)
//	it := m.Lookup(ops, []byte("a"))
//	if it.Valid() {
//		fmt.Println(it.Value())
//	}
//
// A table shared by several concurrent goroutines gives each its own
// rcu.Ops, registered once before that goroutine's first call.
package lfht

import "github.com/kolkov/rcuht/internal/lfht"

// Map is a lock-free, RCU-protected, resizable split-ordered hash table.
type Map = lfht.Map

// Config configures a Map. See lfht.Config for field documentation.
type Config = lfht.Config

// HashFunc computes a 64-bit hash for a key.
type HashFunc = lfht.HashFunc

// Iter references a node observed by a lookup, traversal, or mutation —
// see lfht.Iter for why it also carries the successor observed there.
type Iter = lfht.Iter

// NodeCounts is count_nodes's result. See lfht.NodeCounts for field
// documentation.
type NodeCounts = lfht.NodeCounts

// Sentinel errors, re-exported for errors.Is comparisons.
var (
	ErrNotFound   = lfht.ErrNotFound
	ErrExists     = lfht.ErrExists
	ErrInvalidArg = lfht.ErrInvalidArg
	ErrNonEmpty   = lfht.ErrNonEmpty
)

// New constructs a Map. cfg.Hash must be set (a nil Hash, or a missing
// NewOps when AutoResize is set, is a programmer error and calls fatal()
// rather than returning an error — see DESIGN.md). cfg.InitialSize must be
// zero or a power of two (spec.md §4.2.1 create); any other value is a
// caller input error and returns ErrInvalidArg rather than being silently
// rounded.
func New(cfg Config) (*Map, error) { return lfht.New(cfg) }
