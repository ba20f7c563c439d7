package validator

import (
	"fmt"

	"github.com/devylongs/leanchoice/types"
)

// SlotAdvanceFunc and StateTransitionFunc mirror the collaborator
// signatures forkchoice.Store is built with, so a caller can hand this
// package the same two functions it injected into NewStore.
type (
	SlotAdvanceFunc     func(state *types.State, targetSlot types.Slot) (*types.State, error)
	StateTransitionFunc func(parent *types.State, block *types.Block) (*types.State, error)
)

// CollectAttestations gathers known votes eligible for inclusion in a
// block: every validator's latest known vote whose
// target names a block the proposer has actually seen.
func CollectAttestations(knownVotes map[types.ValidatorIndex]types.Checkpoint, hasBlock func(types.Root) bool, source types.Checkpoint) []types.SignedVote {
	var out []types.SignedVote
	for validatorID, checkpoint := range knownVotes {
		if checkpoint.Root.IsZero() || !hasBlock(checkpoint.Root) {
			continue
		}
		out = append(out, types.SignedVote{
			ValidatorID: validatorID,
			Message: types.Vote{
				Slot:   checkpoint.Slot,
				Head:   checkpoint,
				Target: checkpoint,
				Source: source,
			},
		})
	}
	return out
}

// BuildBlock advances parentState to slot, assembles a block proposed
// by validatorIndex atop it carrying attestations, applies the
// injected state transition, and fills in the resulting state root.
// The parent-linking root is derived from parentState's own header
// after the slot advance (matching the header root ProcessBlockHeader
// expects), not the caller's block-level parent hash. The caller is
// responsible for admitting the returned block into a Store
// (forkchoice.Store.OnBlock) — this function never touches store
// state directly.
func BuildBlock(
	processSlots SlotAdvanceFunc,
	processBlock StateTransitionFunc,
	slot types.Slot,
	validatorIndex types.ValidatorIndex,
	parentState *types.State,
	attestations []types.SignedVote,
) (*types.Block, *types.State, error) {
	advanced, err := processSlots(parentState, slot)
	if err != nil {
		return nil, nil, fmt.Errorf("advance parent state to slot %d: %w", slot, err)
	}
	parentHeaderRoot, err := advanced.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return nil, nil, fmt.Errorf("hash parent header: %w", err)
	}

	block := &types.Block{
		Slot:          slot,
		ProposerIndex: uint64(validatorIndex),
		ParentRoot:    parentHeaderRoot,
		Body:          types.BlockBody{Attestations: attestations},
	}

	postState, err := processBlock(advanced, block)
	if err != nil {
		return nil, nil, fmt.Errorf("apply state transition: %w", err)
	}

	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		return nil, nil, fmt.Errorf("hash post-state: %w", err)
	}
	block.StateRoot = stateRoot

	return block, postState, nil
}

// ProduceVote builds the vote a validator should cast for slot, given
// the current head checkpoint, conservative safe-target checkpoint,
// and latest justified checkpoint (spec.md's vote-target derivation:
// head as the chain view, the safe target as the voting target once
// one exists, justified as source).
func ProduceVote(slot types.Slot, head, safeTarget, justified types.Checkpoint) types.Vote {
	target := safeTarget
	if target.Root.IsZero() {
		target = head
	}
	return types.Vote{
		Slot:   slot,
		Head:   head,
		Target: target,
		Source: justified,
	}
}
