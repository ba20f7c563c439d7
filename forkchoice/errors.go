package forkchoice

import "github.com/cockroachdb/errors"

// Sentinel errors for fork-choice precondition violations. These
// surface the core's "programmer error" failure class (spec.md §7):
// an orphan block, or a head query against a store that was never
// seeded. Callers may use errors.Is to check for specific causes.
var (
	// ErrParentNotFound is returned by OnBlock when the new block's
	// parent has no known post-state: the caller skipped ancestor
	// sync before handing the block to the core.
	ErrParentNotFound = errors.New("forkchoice: parent state not found")

	// ErrEmptyBlockSet is returned by FindHead when asked to bootstrap
	// (start_root == ZeroRoot) against an empty block map.
	ErrEmptyBlockSet = errors.New("forkchoice: cannot select a start root from an empty block set")

	// ErrUnknownStart is returned by FindHead when a non-zero start
	// root is not present in the block map.
	ErrUnknownStart = errors.New("forkchoice: start root not found in block set")
)
