package validator_test

import (
	"testing"

	"github.com/devylongs/leanchoice/consensus"
	"github.com/devylongs/leanchoice/types"
	"github.com/devylongs/leanchoice/validator"
)

func TestExpectedProposerRoundRobin(t *testing.T) {
	for slot := types.Slot(0); slot < 8; slot++ {
		want := types.ValidatorIndex(uint64(slot) % 4)
		if got := validator.ExpectedProposer(slot, 4); got != want {
			t.Fatalf("ExpectedProposer(%d, 4) = %d, want %d", slot, got, want)
		}
	}
}

func TestValidateProposerRejectsWrongValidator(t *testing.T) {
	if err := validator.ValidateProposer(1, 0, 4); err == nil {
		t.Fatal("expected error for validator 0 proposing slot 1 (expected validator 1)")
	}
	if err := validator.ValidateProposer(1, 1, 4); err != nil {
		t.Fatalf("unexpected error for the correct proposer: %v", err)
	}
}

func TestCollectAttestationsSkipsUnseenAndZeroVotes(t *testing.T) {
	known := map[types.ValidatorIndex]types.Checkpoint{
		0: {Root: types.ZeroRoot, Slot: 0},
		1: {Root: [32]byte{1}, Slot: 1},
		2: {Root: [32]byte{2}, Slot: 1},
	}
	hasBlock := func(r types.Root) bool { return r == [32]byte{1} }

	got := validator.CollectAttestations(known, hasBlock, types.Checkpoint{})
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].ValidatorID != 1 {
		t.Fatalf("ValidatorID = %d, want 1", got[0].ValidatorID)
	}
}

func TestBuildBlockLinksToAdvancedParentHeader(t *testing.T) {
	cfg := types.DefaultConfig(4, 0)
	state, _ := consensus.GenerateGenesis(cfg)

	block, postState, err := validator.BuildBlock(consensus.ProcessSlots, consensus.ProcessBlock, 1, 1, state, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %v", err)
	}
	if block.Slot != 1 {
		t.Fatalf("block.Slot = %d, want 1", block.Slot)
	}
	if postState.LatestBlockHeader.Slot != 1 {
		t.Fatalf("postState header slot = %d, want 1", postState.LatestBlockHeader.Slot)
	}
	if block.StateRoot.IsZero() {
		t.Fatal("block.StateRoot should be filled in")
	}
}

func TestProduceVoteFallsBackToHeadWithoutSafeTarget(t *testing.T) {
	head := types.Checkpoint{Root: [32]byte{9}, Slot: 3}
	justified := types.Checkpoint{Root: [32]byte{1}, Slot: 1}

	vote := validator.ProduceVote(3, head, types.Checkpoint{}, justified)
	if !vote.Target.Equal(head) {
		t.Fatalf("Target = %+v, want fallback to head %+v", vote.Target, head)
	}

	safeTarget := types.Checkpoint{Root: [32]byte{5}, Slot: 2}
	vote = validator.ProduceVote(3, head, safeTarget, justified)
	if !vote.Target.Equal(safeTarget) {
		t.Fatalf("Target = %+v, want safe target %+v", vote.Target, safeTarget)
	}
}
