// Package errutil holds small panic/assert helpers shared by the packages
// that make up the MMPHF construction pipeline. These are invariant
// checks for conditions the construction code itself is responsible for
// maintaining (e.g. "the peel order we just built is the right length") -
// never for validating caller input, which is reported as an error value.
package errutil

import "fmt"

const debug = false

// Bug panics with a formatted message. Used for internal invariants that
// should never fire outside of a construction bug.
func Bug(format string, args ...any) {
	panic(fmt.Sprintf("BUG: "+format, args...))
}

// BugOn panics with a formatted message if cond is true.
func BugOn(cond bool, format string, args ...any) {
	if cond {
		Bug(format, args...)
	}
}

// FatalIf panics if err is non-nil. Reserved for errors from collaborators
// that construction code treats as unrecoverable (e.g. a broken entropy
// source), not for caller-facing construction failures.
func FatalIf(err error) {
	if err == nil {
		return
	}
	panic(fmt.Sprintf("FATAL: %v", err))
}

// Debugf panics only when the debug const above is flipped on; useful for
// assertions that are too expensive to leave on in production builds.
func Debugf(cond bool, format string, args ...any) {
	if debug && cond {
		Bug(format, args...)
	}
}
