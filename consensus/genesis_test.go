package consensus

import (
	"testing"

	"github.com/devylongs/leanchoice/types"
)

func TestGenerateGenesis(t *testing.T) {
	cfg := types.DefaultConfig(8, 1700000000)
	state, block := GenerateGenesis(cfg)

	if block.Slot != 0 {
		t.Fatalf("expected genesis block at slot 0, got %d", block.Slot)
	}
	if !block.ParentRoot.IsZero() {
		t.Fatalf("expected genesis block to have zero parent root")
	}

	wantRoot, err := state.HashTreeRoot()
	if err != nil {
		t.Fatalf("hash state: %v", err)
	}
	if block.StateRoot != wantRoot {
		t.Fatalf("block state root does not match genesis state's hash tree root")
	}

	if !state.LatestJustified.Root.IsZero() || state.LatestJustified.Slot != 0 {
		t.Fatalf("expected genesis justified checkpoint (zero root, slot 0), got %+v", state.LatestJustified)
	}
	if !state.LatestFinalized.Equal(state.LatestJustified) {
		t.Fatalf("expected genesis justified and finalized checkpoints to match")
	}
}
