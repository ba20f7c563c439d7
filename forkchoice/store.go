// Package forkchoice implements the fork-choice core: the LMD-GHOST
// head-selection kernel, the two-phase vote pool, and the
// interval-tick state machine that drives it. The package never
// performs cryptographic verification, gossip networking, or
// persistence — those are external collaborators the host supplies.
package forkchoice

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/devylongs/leanchoice/types"
)

// StateTransitionFunc applies a block to a parent state, producing the
// post-state. This is the core's injected apply(state, block) ->
// state' collaborator (spec.md §6); the core never encodes any
// justification/finalization logic of its own.
type StateTransitionFunc func(parent *types.State, block *types.Block) (*types.State, error)

// SlotAdvanceFunc advances a state through empty slots up to, but not
// including, targetSlot.
type SlotAdvanceFunc func(state *types.State, targetSlot types.Slot) (*types.State, error)

// IdentityTransition is a sound placeholder for StateTransitionFunc:
// it clones the parent state unchanged. A store built with it can
// never advance justification, but it never panics or corrupts state
// either — useful for tests that only exercise head selection.
func IdentityTransition(parent *types.State, _ *types.Block) (*types.State, error) {
	return parent.Copy(), nil
}

// IdentitySlotAdvance is the matching placeholder for SlotAdvanceFunc:
// it bumps Slot without otherwise touching the state.
func IdentitySlotAdvance(state *types.State, targetSlot types.Slot) (*types.State, error) {
	next := state.Copy()
	next.Slot = targetSlot
	return next, nil
}

// Store is the single coherent in-memory state of the fork-choice
// core: logical time, the derived head/safe-target/justified/
// finalized fields, the block and state graphs, and the two vote
// pools. All mutation goes through the exported handlers, which take
// the store's mutex for their full duration (spec.md §5).
type Store struct {
	mu sync.RWMutex

	config types.Config
	log    *slog.Logger

	processSlots SlotAdvanceFunc
	processBlock StateTransitionFunc

	time            types.Interval
	head            types.Root
	safeTarget      types.Root
	latestJustified types.Checkpoint
	latestFinalized types.Checkpoint

	blocks           map[types.Root]*types.Block
	states           map[types.Root]*types.State
	latestKnownVotes map[types.ValidatorIndex]types.Checkpoint
	latestNewVotes   map[types.ValidatorIndex]types.Checkpoint
}

// Option configures optional Store behavior.
type Option func(*Store)

// WithLogger attaches a structured logger the store uses for
// diagnostic (not control-flow) output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// NewStore builds a Store from an anchor (genesis or checkpoint-sync)
// state/block/root triple. Initial time is anchorBlock.Slot *
// IntervalsPerSlot; head and safeTarget both start at anchorRoot; both
// vote pools start empty.
func NewStore(anchorState *types.State, anchorBlock *types.Block, anchorRoot types.Root, processSlots SlotAdvanceFunc, processBlock StateTransitionFunc, opts ...Option) (*Store, error) {
	s := &Store{
		config:           anchorState.Config,
		processSlots:     processSlots,
		processBlock:     processBlock,
		time:             types.Interval(uint64(anchorBlock.Slot) * anchorState.Config.IntervalsPerSlot),
		head:             anchorRoot,
		safeTarget:       anchorRoot,
		latestJustified:  anchorState.LatestJustified,
		latestFinalized:  anchorState.LatestFinalized,
		blocks:           map[types.Root]*types.Block{anchorRoot: anchorBlock},
		states:           map[types.Root]*types.State{anchorRoot: anchorState},
		latestKnownVotes: make(map[types.ValidatorIndex]types.Checkpoint),
		latestNewVotes:   make(map[types.ValidatorIndex]types.Checkpoint),
		log:              slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Time returns the store's logical clock, in intervals since genesis.
func (s *Store) Time() types.Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

// Head returns the current canonical tip.
func (s *Store) Head() types.Root {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.head
}

// SafeTarget returns the current conservative voting target.
func (s *Store) SafeTarget() types.Root {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.safeTarget
}

// LatestJustified returns the highest-slot justified checkpoint seen
// across all known states.
func (s *Store) LatestJustified() types.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestJustified
}

// LatestFinalized returns the finalized checkpoint from the head's
// state.
func (s *Store) LatestFinalized() types.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestFinalized
}

// HasBlock reports whether root has been admitted to the store.
func (s *Store) HasBlock(root types.Root) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocks[root]
	return ok
}

// GetBlock retrieves an admitted block by root.
func (s *Store) GetBlock(root types.Root) (*types.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[root]
	return b, ok
}

// GetState retrieves an admitted post-state by block root.
func (s *Store) GetState(root types.Root) (*types.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[root]
	return st, ok
}

// CurrentSlot returns the slot implied by the store's logical clock.
func (s *Store) CurrentSlot() types.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.Slot(uint64(s.time) / s.config.IntervalsPerSlot)
}

// CurrentInterval returns the interval-within-slot implied by the
// store's logical clock.
func (s *Store) CurrentInterval() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.time) % s.config.IntervalsPerSlot
}

// LatestKnownVote returns validator v's authoritative (on-chain)
// latest vote, if any.
func (s *Store) LatestKnownVote(v types.ValidatorIndex) (types.Checkpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.latestKnownVotes[v]
	return cp, ok
}

// LatestNewVote returns validator v's pending gossip vote, if any.
func (s *Store) LatestNewVote(v types.ValidatorIndex) (types.Checkpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.latestNewVotes[v]
	return cp, ok
}

// KnownVotesSnapshot returns a copy of the authoritative vote pool, for
// callers (block producers) that need to range over it without holding
// the store's lock for the duration.
func (s *Store) KnownVotesSnapshot() map[types.ValidatorIndex]types.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[types.ValidatorIndex]types.Checkpoint, len(s.latestKnownVotes))
	for k, v := range s.latestKnownVotes {
		out[k] = v
	}
	return out
}

// HeadState returns the post-state of the current head.
func (s *Store) HeadState() (*types.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[s.head]
	if !ok {
		return nil, fmt.Errorf("head state not found for root %x", s.head[:8])
	}
	return state, nil
}

// Config returns the network configuration the store was seeded with.
func (s *Store) Config() types.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}
