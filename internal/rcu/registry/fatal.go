package registry

import (
	"fmt"
	"os"
)

// fatal reports an unmaskable programmer-error condition (spec.md §7) and
// terminates the process. panic is deliberately not used: a recover() up
// the call stack could let execution continue past exactly the invariant
// violations (unregistering a still-active reader, an unmatched
// ReadUnlock) spec.md §7 requires to be unmaskable. Mirrors
// cmd/racedetector/main.go's os.Exit usage on usage errors, generalized to
// exit code 2 for this package's fatal class.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "rcu/registry: fatal: "+format+"\n", args...)
	os.Exit(2)
}
