package lfht

import "errors"

// Sentinel errors returned by the lfht façade (spec.md §4.2.1's error
// cases), following the teacher's style of package-level sentinel errors
// checked with errors.Is (see race/api.go).
var (
	// ErrNotFound is returned by operations that require an existing key
	// (Replace, Del-by-handle lookups at the façade layer) when it is gone.
	ErrNotFound = errors.New("lfht: key not found")

	// ErrExists is returned by AddUnique when the key is already present.
	ErrExists = errors.New("lfht: key already exists")

	// ErrInvalidArg is returned for malformed arguments: a non-zero,
	// non-power-of-two InitialSize passed to New, or a Resize target that
	// is not a power of two or lies outside the table's configured
	// [MinSize, MaxSize] range.
	ErrInvalidArg = errors.New("lfht: invalid argument")

	// ErrNonEmpty is returned by Destroy when the table still holds nodes
	// and the caller did not request a forced teardown (spec.md §7:
	// destroying a non-empty table is a caller error, not silently
	// tolerated).
	ErrNonEmpty = errors.New("lfht: table is not empty")
)
