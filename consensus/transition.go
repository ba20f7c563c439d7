// Package consensus implements the state-transition function the
// fork-choice core treats as an external collaborator. The core never
// imports this package: it only calls the function values
// (ProcessSlots, ProcessBlock) injected into forkchoice.NewStore. A
// host that has no transition function available may inject an
// identity stand-in instead (see forkchoice.IdentityTransition); doing
// so makes the chain unable to advance justification, which is a sound
// but inert placeholder, never a core concern.
package consensus

import (
	"fmt"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/devylongs/leanchoice/types"
)

// ProcessSlot performs per-slot housekeeping: if the pending block
// header's state root hasn't been filled in yet, fill it with the
// current state's root.
func ProcessSlot(s *types.State) (*types.State, error) {
	if !s.LatestBlockHeader.StateRoot.IsZero() {
		return s, nil
	}
	root, err := s.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("hash state: %w", err)
	}
	next := s.Copy()
	next.LatestBlockHeader.StateRoot = root
	return next, nil
}

// ProcessSlots advances s through empty slots up to, but not
// including, targetSlot.
func ProcessSlots(s *types.State, targetSlot types.Slot) (*types.State, error) {
	if s.Slot >= targetSlot {
		return nil, fmt.Errorf("target slot %d must exceed current slot %d", targetSlot, s.Slot)
	}
	state := s
	for state.Slot < targetSlot {
		next, err := ProcessSlot(state)
		if err != nil {
			return nil, err
		}
		next = next.Copy()
		next.Slot++
		state = next
	}
	return state, nil
}

// ProcessBlockHeader validates block against s and rotates in the new
// header. Genesis's first child marks the anchor as justified and
// finalized.
func ProcessBlockHeader(s *types.State, block *types.Block) (*types.State, error) {
	if block.Slot != s.Slot {
		return nil, fmt.Errorf("block slot %d != state slot %d", block.Slot, s.Slot)
	}
	if block.Slot <= s.LatestBlockHeader.Slot {
		return nil, fmt.Errorf("block slot %d <= latest header slot %d", block.Slot, s.LatestBlockHeader.Slot)
	}

	expectedProposer := uint64(block.Slot) % s.Config.NumValidators
	if block.ProposerIndex != expectedProposer {
		return nil, fmt.Errorf("proposer %d invalid for slot %d, expected %d", block.ProposerIndex, block.Slot, expectedProposer)
	}

	expectedParent, err := s.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("hash latest header: %w", err)
	}
	if block.ParentRoot != expectedParent {
		return nil, fmt.Errorf("parent root mismatch")
	}

	next := s.Copy()

	if s.LatestBlockHeader.Slot == 0 && s.LatestJustified.Root.IsZero() {
		next.LatestJustified.Root = block.ParentRoot
		next.LatestFinalized.Root = block.ParentRoot
	}

	parentSlot := int(s.LatestBlockHeader.Slot)
	next.HistoricalBlockHashes = append(next.HistoricalBlockHashes, block.ParentRoot)
	next.JustifiedSlots = appendBitAt(next.JustifiedSlots, parentSlot, s.LatestBlockHeader.Slot == 0)

	emptySlots := int(block.Slot - s.LatestBlockHeader.Slot - 1)
	for i := 0; i < emptySlots; i++ {
		next.HistoricalBlockHashes = append(next.HistoricalBlockHashes, types.ZeroRoot)
		next.JustifiedSlots = appendBitAt(next.JustifiedSlots, parentSlot+1+i, false)
	}

	bodyRoot, err := block.Body.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("hash body: %w", err)
	}
	next.LatestBlockHeader = types.BlockHeader{
		Slot:          block.Slot,
		ProposerIndex: block.ProposerIndex,
		ParentRoot:    block.ParentRoot,
		StateRoot:     types.ZeroRoot,
		BodyRoot:      bodyRoot,
	}

	return next, nil
}

// ProcessAttestations tallies body-included votes into the flattened
// justification bitlist, justifying a target on 2/3 supermajority and
// finalizing its source when no justifiable slot lies strictly
// between source and target.
func ProcessAttestations(s *types.State, attestations []types.SignedVote) (*types.State, error) {
	next := s.Copy()
	justifications := GetJustifications(next)

	for _, signed := range attestations {
		vote := signed.Message
		sourceSlot := int(vote.Source.Slot)
		targetSlot := int(vote.Target.Slot)
		validatorID := int(signed.ValidatorID)

		if !getBit(next.JustifiedSlots, sourceSlot) {
			continue
		}
		if getBit(next.JustifiedSlots, targetSlot) {
			continue
		}
		if sourceSlot >= len(next.HistoricalBlockHashes) || vote.Source.Root != next.HistoricalBlockHashes[sourceSlot] {
			continue
		}
		if targetSlot >= len(next.HistoricalBlockHashes) || vote.Target.Root != next.HistoricalBlockHashes[targetSlot] {
			continue
		}
		if vote.Target.Slot <= vote.Source.Slot {
			continue
		}
		if !IsJustifiableAfter(vote.Target.Slot, next.LatestFinalized.Slot) {
			continue
		}

		if _, exists := justifications[vote.Target.Root]; !exists {
			justifications[vote.Target.Root] = make([]bool, next.Config.NumValidators)
		}
		justifications[vote.Target.Root][validatorID] = true

		count := CountVotes(justifications[vote.Target.Root])
		if 3*count < 2*int(next.Config.NumValidators) {
			continue
		}

		next.LatestJustified = vote.Target
		next.JustifiedSlots = setBit(next.JustifiedSlots, targetSlot, true)
		delete(justifications, vote.Target.Root)

		canFinalize := true
		for slot := vote.Source.Slot + 1; slot < vote.Target.Slot; slot++ {
			if IsJustifiableAfter(slot, next.LatestFinalized.Slot) {
				canFinalize = false
				break
			}
		}
		if canFinalize {
			next.LatestFinalized = vote.Source
		}
	}

	return SetJustifications(next, justifications), nil
}

// ProcessBlock applies full block processing: header validation
// followed by attestation processing. This is the concrete realization
// of the fork-choice core's injected apply(state, block) -> state'.
func ProcessBlock(s *types.State, block *types.Block) (*types.State, error) {
	next, err := ProcessBlockHeader(s, block)
	if err != nil {
		return nil, err
	}
	return ProcessAttestations(next, block.Body.Attestations)
}

func getBit(bits []byte, index int) bool {
	if index < 0 {
		return false
	}
	bl := bitfield.Bitlist(bits)
	if uint64(index) >= bl.Len() {
		return false
	}
	return bl.BitAt(uint64(index))
}

func setBit(bits []byte, index int, val bool) []byte {
	bl := bitfield.Bitlist(bits)
	idx := uint64(index)
	if idx >= bl.Len() {
		grown := bitfield.NewBitlist(idx + 1)
		for i := uint64(0); i < bl.Len(); i++ {
			if bl.BitAt(i) {
				grown.SetBitAt(i, true)
			}
		}
		bl = grown
	}
	bl.SetBitAt(idx, val)
	return bl
}

func appendBitAt(bits []byte, index int, val bool) []byte {
	if len(bits) == 0 {
		bits = bitfield.NewBitlist(uint64(index) + 1)
	}
	return setBit(bits, index, val)
}
