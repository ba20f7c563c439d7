package forkchoice

import "github.com/devylongs/leanchoice/types"

// Interval phases within a slot (spec.md §4.4). Phase 1 is reserved by
// the protocol for attestation broadcast and has no store-side effect.
const (
	phaseAcceptVotes = 0
	phaseSafeTarget  = 2
)

// OnTick advances the store's logical clock by exactly one interval
// and dispatches the phase the new interval lands on. hasProposal
// indicates whether a block was (or is expected to be) proposed for
// the slot this interval belongs to — only phase 0 of a slot with a
// proposal drains the pending vote pool; every other phase combination
// is a no-op except phase 2, which always refreshes the safe target.
func (s *Store) OnTick(hasProposal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.time++
	s.dispatchPhaseLocked(hasProposal)
}

// AdvanceTime steps the store forward to target, one interval at a
// time, so that every intermediate phase still gets dispatched instead
// of being skipped by a single jump (spec.md §4.4's catch-up
// requirement). hasProposal applies only to the final interval reached
// — every interval strictly before it advances with hasProposal=false,
// since a proposal can only be known for the interval actually being
// caught up to.
func (s *Store) AdvanceTime(target types.Interval, hasProposal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.time < target {
		s.time++
		final := s.time == target
		s.dispatchPhaseLocked(final && hasProposal)
	}
}

// dispatchPhaseLocked runs the phase handler for the store's current
// interval. Must be called with s.mu held.
func (s *Store) dispatchPhaseLocked(hasProposal bool) {
	phase := uint64(s.time) % s.config.IntervalsPerSlot

	switch {
	case phase == phaseAcceptVotes && hasProposal:
		s.acceptNewVotesLocked()
	case phase == phaseSafeTarget:
		s.updateSafeTargetLocked()
	}
}
