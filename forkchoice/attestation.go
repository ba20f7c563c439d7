package forkchoice

import "github.com/devylongs/leanchoice/types"

// OnAttestation admits a gossiped vote into the pending vote pool
// (spec.md §4.3). Votes for a slot beyond the store's current slot are
// dropped silently: they are premature, not malformed, and the caller
// is expected to re-deliver them (or for them to arrive again via a
// block) once time catches up.
//
// Gossip votes never land directly in latestKnownVotes and never
// trigger update_head on their own — they wait in latestNewVotes until
// the tick state machine's accept_new_votes phase drains them
// (spec.md §4.6), so a validator cannot jump the interval boundary by
// racing its vote onto the wire early.
func (s *Store) OnAttestation(signed types.SignedVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processAttestationLocked(signed, false, s.CurrentSlotLocked())
}

// processAttestationLocked applies the shared monotonic-slot update
// rule: a validator's latest message in a pool only advances, it never
// regresses or is overwritten by a stale replay. fromBlock selects
// which pool the vote lands in — latestKnownVotes for votes carried by
// an admitted block, latestNewVotes for everything else. A vote from a
// block also evicts that validator's pending gossip vote when the
// pending one is older, so a pending vote is always newer than the
// known one. Must be called with s.mu held.
func (s *Store) processAttestationLocked(signed types.SignedVote, fromBlock bool, currentSlot types.Slot) {
	vote := signed.Message
	if vote.Target.Slot > currentSlot {
		return
	}

	pool := s.latestNewVotes
	if fromBlock {
		pool = s.latestKnownVotes
	}

	existing, ok := pool[signed.ValidatorID]
	if !ok || existing.Slot < vote.Target.Slot {
		pool[signed.ValidatorID] = vote.Target
	}

	if fromBlock {
		if pending, ok := s.latestNewVotes[signed.ValidatorID]; ok && pending.Slot < vote.Target.Slot {
			delete(s.latestNewVotes, signed.ValidatorID)
		}
	}
}

// acceptNewVotesLocked drains latestNewVotes into latestKnownVotes
// unconditionally — not just where newer, since processAttestationLocked
// evicts any pending vote that an on-chain vote has overtaken, so every
// pending vote is newer than the known one it replaces — and recomputes
// the head (spec.md §4.6). Must be called with s.mu held.
func (s *Store) acceptNewVotesLocked() {
	for validator, target := range s.latestNewVotes {
		s.latestKnownVotes[validator] = target
	}
	s.latestNewVotes = make(map[types.ValidatorIndex]types.Checkpoint)
	s.updateHeadLocked()
}
