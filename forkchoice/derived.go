package forkchoice

import "github.com/devylongs/leanchoice/types"

// latestJustifiedAcrossStates scans every admitted post-state for the
// highest-slot justified checkpoint, breaking ties on root so the
// result is deterministic across implementations.
func latestJustifiedAcrossStates(states map[types.Root]*types.State) (types.Checkpoint, bool) {
	var best types.Checkpoint
	found := false
	for _, state := range states {
		cp := state.LatestJustified
		if !found || cp.Slot > best.Slot || (cp.Slot == best.Slot && cp.Root.Compare(best.Root) > 0) {
			best, found = cp, true
		}
	}
	return best, found
}

// updateHeadLocked recomputes latestJustified, head, and
// latestFinalized (spec.md §4.5). Must be called with s.mu held.
func (s *Store) updateHeadLocked() {
	if latest, ok := latestJustifiedAcrossStates(s.states); ok {
		s.latestJustified = latest
	}

	head, err := FindHead(s.blocks, s.latestJustified.Root, s.latestKnownVotes, 0)
	if err != nil {
		// The justified root is always one of our own states' anchors,
		// so an error here means the store's own invariants broke.
		s.log.Error("find_head failed during update_head", "error", err)
		return
	}
	s.head = head

	if state, ok := s.states[s.head]; ok {
		s.latestFinalized = state.LatestFinalized
	}
}

// updateSafeTargetLocked recomputes safeTarget from the gossip vote
// pool under a 2/3 support threshold (spec.md §4.5). Must be called
// with s.mu held.
func (s *Store) updateSafeTargetLocked() {
	n := len(s.states)
	if n < 1 {
		n = 1
	}
	minScore := (2*n + 2) / 3

	target, err := FindHead(s.blocks, s.latestJustified.Root, s.latestNewVotes, minScore)
	if err != nil {
		s.log.Error("find_head failed during update_safe_target", "error", err)
		return
	}
	s.safeTarget = target
}
