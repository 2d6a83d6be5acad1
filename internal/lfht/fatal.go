package lfht

import (
	"fmt"
	"os"
)

// fatal reports an unmaskable programmer-error condition (spec.md §7) and
// terminates the process. panic is deliberately not used here: a deferred
// recover() elsewhere in the program could catch a panic and let execution
// continue past an invariant spec.md §7 says must not be silently
// tolerated, the way a misused construct (a nil hash function, a table
// resized from outside its configured bounds by a caller ignoring errors)
// would be. Mirrors cmd/racedetector/main.go's os.Exit usage on usage
// errors, generalized to exit code 2 for this package's fatal class.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lfht: fatal: "+format+"\n", args...)
	os.Exit(2)
}
