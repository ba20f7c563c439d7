package consensus

import (
	"testing"

	"github.com/devylongs/leanchoice/types"
)

func genesisStore(t *testing.T, numValidators uint64) (*types.State, *types.Block) {
	t.Helper()
	cfg := types.DefaultConfig(numValidators, 1700000000)
	return GenerateGenesis(cfg)
}

// buildChild advances through empty slots to targetSlot and produces a
// valid child block with a correctly computed state root.
func buildChild(t *testing.T, parentState *types.State, parentRoot types.Root, targetSlot types.Slot) (*types.Block, *types.State) {
	t.Helper()

	advanced, err := ProcessSlots(parentState, targetSlot)
	if err != nil {
		t.Fatalf("ProcessSlots: %v", err)
	}

	proposer := uint64(targetSlot) % advanced.Config.NumValidators
	parentHeaderRoot, err := advanced.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		t.Fatalf("hash parent header: %v", err)
	}
	_ = parentHeaderRoot

	block := &types.Block{
		Slot:          targetSlot,
		ProposerIndex: proposer,
		ParentRoot:    parentHeaderRoot,
		Body:          types.BlockBody{Attestations: []types.SignedVote{}},
	}

	postState, err := ProcessBlock(advanced, block)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		t.Fatalf("hash post state: %v", err)
	}
	block.StateRoot = stateRoot
	return block, postState
}

func TestProcessSlotsAdvancesSlot(t *testing.T) {
	state, _ := genesisStore(t, 4)
	advanced, err := ProcessSlots(state, 3)
	if err != nil {
		t.Fatalf("ProcessSlots: %v", err)
	}
	if advanced.Slot != 3 {
		t.Fatalf("expected slot 3, got %d", advanced.Slot)
	}
}

func TestProcessSlotsRejectsNonIncreasing(t *testing.T) {
	state, _ := genesisStore(t, 4)
	if _, err := ProcessSlots(state, 0); err == nil {
		t.Fatalf("expected error advancing to a non-increasing slot")
	}
}

func TestProcessBlockHeaderRejectsWrongProposer(t *testing.T) {
	state, _ := genesisStore(t, 4)
	advanced, err := ProcessSlots(state, 1)
	if err != nil {
		t.Fatalf("ProcessSlots: %v", err)
	}
	parentHeaderRoot, _ := advanced.LatestBlockHeader.HashTreeRoot()

	badBlock := &types.Block{
		Slot:          1,
		ProposerIndex: (uint64(1) % advanced.Config.NumValidators) + 1, // wrong proposer
		ParentRoot:    parentHeaderRoot,
		Body:          types.BlockBody{Attestations: []types.SignedVote{}},
	}
	if _, err := ProcessBlockHeader(advanced, badBlock); err == nil {
		t.Fatalf("expected error for wrong proposer")
	}
}

func TestProcessBlockMarksGenesisJustifiedAndFinalized(t *testing.T) {
	genesis, genesisBlock := genesisStore(t, 4)
	genesisRoot, err := genesisBlock.HashTreeRoot()
	if err != nil {
		t.Fatalf("hash genesis block: %v", err)
	}

	_, postState := buildChild(t, genesis, genesisRoot, 1)

	if postState.LatestJustified.Root != genesisRoot {
		t.Fatalf("expected genesis root justified after first child, got %x", postState.LatestJustified.Root)
	}
	if postState.LatestFinalized.Root != genesisRoot {
		t.Fatalf("expected genesis root finalized after first child, got %x", postState.LatestFinalized.Root)
	}
}
