// Package validator implements block and vote production for the
// fork-choice core's host. Every function here is pure: state and
// locking belong to forkchoice.Store, never to this package.
package validator

import (
	"fmt"

	"github.com/devylongs/leanchoice/types"
)

// ExpectedProposer returns the validator assigned to propose slot
// under simple round-robin rotation.
func ExpectedProposer(slot types.Slot, numValidators uint64) types.ValidatorIndex {
	return types.ValidatorIndex(uint64(slot) % numValidators)
}

// IsProposer reports whether validatorIndex is assigned to propose
// slot.
func IsProposer(slot types.Slot, validatorIndex types.ValidatorIndex, numValidators uint64) bool {
	return validatorIndex == ExpectedProposer(slot, numValidators)
}

// ValidateProposer is IsProposer with an error return, for callers that
// want to short-circuit on a misassigned duty.
func ValidateProposer(slot types.Slot, validatorIndex types.ValidatorIndex, numValidators uint64) error {
	if !IsProposer(slot, validatorIndex, numValidators) {
		return fmt.Errorf("validator %d is not the proposer for slot %d (expected %d)",
			validatorIndex, slot, ExpectedProposer(slot, numValidators))
	}
	return nil
}
