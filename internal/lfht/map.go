package lfht

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/rcuht/rcu"
)

// HashFunc computes a 64-bit hash for a key. Callers supply one at
// construction (spec.md §4.2.1's ht_create takes a hash function pointer);
// there is no built-in default because a good default depends on the key
// distribution the caller actually has.
type HashFunc func(key []byte) uint64

// Config configures a Map.
//
// Unlike the C reference, where rcu_read_lock/rcu_read_unlock implicitly
// operate on the calling pthread's thread-local registration, Go has no
// portable per-goroutine-local storage. Every public Map method below
// therefore takes an ops rcu.Ops parameter explicitly rather than storing
// one fixed in Config — package rcu's own doc comment on boundOps notes
// "LFHT is given one boundOps per goroutine that will call its
// operations"; a single Ops shared across concurrently calling goroutines
// would mean their ReadLock/ReadUnlock calls raced on the very same
// registered reader slot. See DESIGN.md.
type Config struct {
	Hash HashFunc

	// InitialSize is the initial number of buckets; it must be zero or a
	// power of two (New returns ErrInvalidArg otherwise). Zero selects 1.
	InitialSize uint64

	// MinSize and MaxSize bound automatic and explicit resizing. Zero
	// MaxSize means unbounded.
	MinSize uint64
	MaxSize uint64

	// AutoResize enables the lazy grow/shrink triggers of spec.md
	// §4.2.6. Disabled, only explicit Resize calls change the table
	// size.
	AutoResize bool

	// NewOps mints a freshly registered rcu.Ops for the internal
	// goroutine an automatic grow/shrink runs on (spec.md §4.2.6: lazy
	// resize triggers run asynchronously, not on the caller's own
	// goroutine). Required when AutoResize is true; ignored otherwise.
	NewOps func() (rcu.Ops, error)

	// Release, if non-nil, is invoked with a deleted node's key and
	// value after the grace period that makes it safe to reuse them —
	// the Go analogue of a caller-supplied call_rcu free callback, since
	// this package has no manual memory of its own to free but callers
	// may be pooling key/value buffers.
	Release func(key []byte, val any)
}

// Map is a lock-free, RCU-protected, resizable split-ordered hash table
// (spec.md §4.2). The zero value is not usable; construct with New.
type Map struct {
	cfg Config
	t   *table // the single, persistent split-ordered list; never swapped

	size atomic.Uint64 // current visible bucket count, always a power of two

	resizeMu sync.Mutex
	resizing atomic.Bool

	minSize uint64
	maxSize uint64
}

// New constructs a Map. cfg.Hash must be set (a programmer error, not a
// runtime one: fatal() rather than an error return, same as rcu.NewOps
// rejecting a nil Domain). cfg.InitialSize must be zero (meaning 1) or a
// power of two, matching spec.md's create() row ("init_size must be 0 or
// a power of two... invalid init_size ⇒ null"); that one is a caller
// input rather than a wiring mistake, so it returns ErrInvalidArg instead
// of being silently rounded up or treated as fatal.
func New(cfg Config) (*Map, error) {
	if cfg.Hash == nil {
		fatal("lfht: Config.Hash is required")
	}
	if cfg.AutoResize && cfg.NewOps == nil {
		fatal("lfht: Config.NewOps is required when AutoResize is true")
	}
	size := cfg.InitialSize
	if size == 0 {
		size = 1
	} else if !isPowerOfTwo(size) {
		return nil, ErrInvalidArg
	}
	m := &Map{
		cfg:     cfg,
		t:       newTable(),
		minSize: cfg.MinSize,
		maxSize: cfg.MaxSize,
	}
	if m.minSize == 0 {
		m.minSize = 1
	}
	m.size.Store(size)
	return m, nil
}

func (m *Map) hash(key []byte) uint64 { return m.cfg.Hash(key) }
func (m *Map) currentSize() uint64    { return m.size.Load() }
