// Package rcu is the public API of the quiescent-state-based grace-period
// engine (spec.md §4.1), the GP-Engine component of rcuht. It mirrors the
// shape of the teacher's own public race package (race/api.go): a thin,
// heavily documented façade over an internal implementation package, with
// Init-like construction and the same six operations spec.md §6 names as
// the "Caller ABI for GP-Engine."
package rcu

import "github.com/kolkov/rcuht/internal/rcu/engine"

// Domain is one grace-period domain: an independent reader registry, parity
// counter, and deferred-callback worker. Most programs need exactly one;
// tests and multi-tenant embeddings may want more than one, each isolated
// from the others.
type Domain struct {
	e *engine.Engine
}

// Options configures a new Domain.
type Options struct {
	// MaxReaders bounds concurrently registered readers. Zero means
	// unbounded.
	MaxReaders int
}

// New creates a grace-period domain.
func New(opts Options) *Domain {
	return &Domain{e: engine.New(engine.Options{MaxReaders: opts.MaxReaders})}
}

// Close stops the domain's deferred-callback worker, after running any
// work already queued. Closing a Domain with readers still registered is
// undefined behavior (spec.md §4.1).
func (d *Domain) Close() { d.e.Close() }

// Reader is a registered reader-thread handle.
type Reader struct{ r *engine.Reader }

// RegisterReader joins the reader set. Call once per logical reader
// thread before its first ReadLock.
func (d *Domain) RegisterReader() (*Reader, error) {
	r, err := d.e.RegisterReader()
	if err != nil {
		return nil, err
	}
	return &Reader{r: r}, nil
}

// UnregisterReader leaves the reader set. Must not be called while the
// reader is inside a read-side critical section.
func (d *Domain) UnregisterReader(r *Reader) { d.e.UnregisterReader(r.r) }

// ReadLock begins a read-side critical section. May be nested. Never
// allocates, never blocks.
//
//go:nosplit
func (d *Domain) ReadLock(r *Reader) { d.e.ReadLock(r.r) }

// ReadUnlock ends a read-side critical section (or one level of nesting).
//
//go:nosplit
func (d *Domain) ReadUnlock(r *Reader) { d.e.ReadUnlock(r.r) }

// Synchronize blocks until every read-side critical section that began
// before this call was entered has ended. It may block indefinitely if a
// reader never exits its RCS; it never prevents new RCSes from starting.
func (d *Domain) Synchronize() { d.e.Synchronize() }

// Defer arranges for fn(arg) to run after a future grace period elapses,
// in the domain's dedicated worker goroutine rather than the caller's.
func (d *Domain) Defer(fn func(arg any), arg any) { d.e.Defer(fn, arg) }

// goOffline and goOnline back Ops.ThreadOffline/ThreadOnline; see
// engine.Engine.GoOffline.
func (d *Domain) goOffline(r *Reader) uint64       { return d.e.GoOffline(r.r) }
func (d *Domain) goOnline(r *Reader, saved uint64) { d.e.GoOnline(r.r, saved) }
