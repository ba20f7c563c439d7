package forkchoice

import (
	"fmt"

	"github.com/devylongs/leanchoice/types"
)

// OnBlock admits a new block into the store (spec.md §4.2).
// Idempotent in root: re-admitting an already-known root is a no-op,
// not an error. block.ParentRoot must already have a post-state in the
// store — its absence is a programmer error (the caller skipped
// ancestor sync) and returns ErrParentNotFound, wrapped with the
// offending root.
func (s *Store) OnBlock(root types.Root, block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.blocks[root]; known {
		return nil
	}

	parentState, ok := s.states[block.ParentRoot]
	if !ok {
		return fmt.Errorf("%w: root %x", ErrParentNotFound, block.ParentRoot[:8])
	}

	advanced, err := s.processSlots(parentState, block.Slot)
	if err != nil {
		return fmt.Errorf("advance parent state to slot %d: %w", block.Slot, err)
	}
	postState, err := s.processBlock(advanced, block)
	if err != nil {
		return fmt.Errorf("apply state transition: %w", err)
	}

	s.blocks[root] = block
	s.states[root] = postState

	for _, signed := range block.Body.Attestations {
		s.processAttestationLocked(signed, true, s.CurrentSlotLocked())
	}

	s.updateHeadLocked()
	return nil
}

// CurrentSlotLocked is CurrentSlot without acquiring the lock, for use
// by handlers that already hold s.mu.
func (s *Store) CurrentSlotLocked() types.Slot {
	return types.Slot(uint64(s.time) / s.config.IntervalsPerSlot)
}
