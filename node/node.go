// Package node wires the fork-choice core, the state-transition
// collaborator, the slot clock, and observability into a single
// runnable process. It drives time forward in real time and, when
// configured as a proposer, produces and admits its own blocks.
//
// Unlike a networked client, Node never gossips: every block and vote
// it produces it also admits into its own store immediately. Wiring a
// real p2p layer on top is a separate concern this package leaves to
// its caller — the store's OnBlock/OnAttestation handlers are exactly
// what a gossip handler would call.
package node

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/devylongs/leanchoice/clock"
	"github.com/devylongs/leanchoice/config"
	"github.com/devylongs/leanchoice/consensus"
	"github.com/devylongs/leanchoice/forkchoice"
	"github.com/devylongs/leanchoice/observability/logging"
	"github.com/devylongs/leanchoice/observability/metrics"
	"github.com/devylongs/leanchoice/storage"
	"github.com/devylongs/leanchoice/types"
	"github.com/devylongs/leanchoice/validator"
)

// Config configures a Node.
type Config struct {
	Genesis        config.Genesis
	ValidatorIndex types.ValidatorIndex
	Logger         *slog.Logger
	Archive        storage.Archive // optional durable mirror
}

// Node is a single-process consensus participant.
type Node struct {
	cfg    Config
	store  *forkchoice.Store
	clock  *clock.SlotClock
	logger *slog.Logger

	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	lastProposedSlot types.Slot
}

// New builds a Node from genesis parameters. The returned Node has not
// started its ticker yet.
func New(ctx context.Context, cfg Config) (*Node, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewComponentLogger(logging.CompNode)
	}

	networkCfg := cfg.Genesis.ToConfig()
	genesisState, genesisBlock := consensus.GenerateGenesis(networkCfg)
	genesisRoot, err := genesisBlock.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("hash genesis block: %w", err)
	}

	store, err := forkchoice.NewStore(genesisState, genesisBlock, genesisRoot,
		consensus.ProcessSlots, consensus.ProcessBlock,
		forkchoice.WithLogger(logger.With(slog.String("comp", logging.CompForkChoice))))
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if cfg.Archive != nil {
		if err := cfg.Archive.PutBlock(genesisRoot, genesisBlock); err != nil {
			return nil, fmt.Errorf("archive genesis block: %w", err)
		}
		if err := cfg.Archive.PutState(genesisRoot, genesisState); err != nil {
			return nil, fmt.Errorf("archive genesis state: %w", err)
		}
	}

	metrics.ValidatorsCount.Set(float64(networkCfg.NumValidators))

	ctx, cancel := context.WithCancel(ctx)
	return &Node{
		cfg:    cfg,
		store:  store,
		clock:  clock.New(networkCfg),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Store exposes the node's fork-choice store, for a caller that wants
// to feed it externally-received blocks or votes (i.e. a gossip
// handler this package doesn't implement).
func (n *Node) Store() *forkchoice.Store { return n.store }

// Start begins the node's real-time slot-driving loop in the
// background.
func (n *Node) Start() {
	n.wg.Add(1)
	go n.run()
	n.logger.Info("node started", "validators", n.store.Config().NumValidators)
}

// Stop cancels the driving loop and waits for it to exit.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()
	n.logger.Info("node stopped")
}

func (n *Node) run() {
	defer n.wg.Done()
	ticker := time.NewTicker(time.Duration(n.store.Config().SecondsPerInterval()) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			n.onTick()
		}
	}
}

func (n *Node) onTick() {
	if n.clock.IsBeforeGenesis() {
		return
	}

	target := n.clock.TotalIntervals()
	slotsCfg := n.store.Config()
	slot := types.Slot(uint64(target) / slotsCfg.IntervalsPerSlot)
	interval := uint64(target) % slotsCfg.IntervalsPerSlot

	proposer := validator.IsProposer(slot, n.cfg.ValidatorIndex, slotsCfg.NumValidators)
	hasProposal := interval == 0 && proposer && slot > n.lastProposedSlot

	n.store.AdvanceTime(target, hasProposal)

	if interval == 0 && slot > 0 && proposer && slot > n.lastProposedSlot {
		n.lastProposedSlot = slot
		n.proposeBlock(slot)
	}
	if interval == 1 && slot > 0 && !proposer {
		n.castVote(slot)
	}

	n.recordMetrics(slot)
}

func (n *Node) proposeBlock(slot types.Slot) {
	headState, err := n.store.HeadState()
	if err != nil {
		n.logger.Warn("propose block: head state unavailable", "slot", slot, "error", err)
		return
	}

	attestations := validator.CollectAttestations(n.store.KnownVotesSnapshot(), n.store.HasBlock, headState.LatestJustified)
	block, _, err := validator.BuildBlock(consensus.ProcessSlots, consensus.ProcessBlock, slot, n.cfg.ValidatorIndex, headState, attestations)
	if err != nil {
		n.logger.Warn("propose block failed", "slot", slot, "error", err)
		return
	}

	root, err := block.HashTreeRoot()
	if err != nil {
		n.logger.Warn("hash produced block failed", "slot", slot, "error", err)
		return
	}

	if err := n.store.OnBlock(root, block); err != nil {
		n.logger.Warn("admit produced block failed", "slot", slot, "error", err)
		return
	}
	n.archive(root, block)
	n.logger.Info("proposed block", "slot", slot, "root", logging.ShortHash(root))
}

func (n *Node) castVote(slot types.Slot) {
	head, target, justified := n.store.Head(), n.store.SafeTarget(), n.store.LatestJustified()
	headBlock, ok := n.store.GetBlock(head)
	if !ok {
		return
	}
	targetBlock, ok := n.store.GetBlock(target)
	if !ok {
		targetBlock = headBlock
		target = head
	}

	vote := validator.ProduceVote(slot,
		types.Checkpoint{Root: head, Slot: headBlock.Slot},
		types.Checkpoint{Root: target, Slot: targetBlock.Slot},
		justified,
	)
	n.store.OnAttestation(types.SignedVote{ValidatorID: n.cfg.ValidatorIndex, Message: vote})
	metrics.VotesAccepted.WithLabelValues("self").Inc()
}

func (n *Node) archive(root types.Root, block *types.Block) {
	if n.cfg.Archive == nil {
		return
	}
	state, ok := n.store.GetState(root)
	if !ok {
		return
	}
	if err := n.cfg.Archive.PutBlock(root, block); err != nil {
		n.logger.Warn("archive block failed", "error", err)
	}
	if err := n.cfg.Archive.PutState(root, state); err != nil {
		n.logger.Warn("archive state failed", "error", err)
	}
	if err := n.cfg.Archive.PruneBelow(n.store.LatestFinalized().Slot); err != nil {
		n.logger.Warn("archive prune failed", "error", err)
	}
}

func (n *Node) recordMetrics(slot types.Slot) {
	head := n.store.Head()
	if headBlock, ok := n.store.GetBlock(head); ok {
		metrics.HeadSlot.Set(float64(headBlock.Slot))
	}
	metrics.CurrentSlot.Set(float64(slot))
	if safeBlock, ok := n.store.GetBlock(n.store.SafeTarget()); ok {
		metrics.SafeTargetSlot.Set(float64(safeBlock.Slot))
	}
	metrics.LatestJustifiedSlot.Set(float64(n.store.LatestJustified().Slot))
	metrics.LatestFinalizedSlot.Set(float64(n.store.LatestFinalized().Slot))
}
