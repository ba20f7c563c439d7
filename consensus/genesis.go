package consensus

import (
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/devylongs/leanchoice/types"
)

// GenerateGenesis builds the anchor state and block for a network with
// the given configuration. Genesis checkpoints use the zero root; the
// fork-choice core's head-selection kernel treats a zero start root as
// "substitute the lowest-slot known block" (see forkchoice.FindHead),
// so this is handled without special-casing genesis anywhere else.
func GenerateGenesis(cfg types.Config) (*types.State, *types.Block) {
	emptyBody := types.BlockBody{Attestations: []types.SignedVote{}}
	bodyRoot, _ := emptyBody.HashTreeRoot()

	header := types.BlockHeader{
		Slot:          0,
		ProposerIndex: 0,
		ParentRoot:    types.ZeroRoot,
		StateRoot:     types.ZeroRoot,
		BodyRoot:      bodyRoot,
	}

	genesisCheckpoint := types.Checkpoint{Root: types.ZeroRoot, Slot: 0}

	state := &types.State{
		Config:                  cfg,
		Slot:                    0,
		LatestBlockHeader:       header,
		LatestJustified:         genesisCheckpoint,
		LatestFinalized:         genesisCheckpoint,
		HistoricalBlockHashes:   []types.Root{},
		JustifiedSlots:          bitfield.NewBitlist(1),
		JustificationRoots:      []types.Root{},
		JustificationValidators: bitfield.NewBitlist(1),
	}

	stateRoot, _ := state.HashTreeRoot()

	block := &types.Block{
		Slot:          0,
		ProposerIndex: 0,
		ParentRoot:    types.ZeroRoot,
		StateRoot:     stateRoot,
		Body:          emptyBody,
	}

	return state, block
}
