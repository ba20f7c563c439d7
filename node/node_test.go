package node

import (
	"context"
	"testing"
	"time"

	"github.com/devylongs/leanchoice/clock"
	"github.com/devylongs/leanchoice/config"
	"github.com/devylongs/leanchoice/types"
)

func newTestNode(t *testing.T, validatorIndex types.ValidatorIndex, unix int64) *Node {
	t.Helper()
	gen := config.Genesis{NumValidators: 4, GenesisTime: 0}
	n, err := New(context.Background(), Config{Genesis: gen, ValidatorIndex: validatorIndex})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n.clock = clock.NewWithTimeFunc(n.store.Config(), func() time.Time { return time.Unix(unix, 0) })
	return n
}

func TestOnTickProposerProducesBlock(t *testing.T) {
	cfgSecondsPerSlot := int64(12)
	n := newTestNode(t, 1, cfgSecondsPerSlot) // slot 1 begins at t=12, proposer = slot%4 = 1

	n.onTick()

	if n.store.Head() == n.store.SafeTarget() && n.store.CurrentSlot() == 0 {
		t.Fatal("expected time to have advanced past genesis")
	}
	if n.store.CurrentSlot() != 1 {
		t.Fatalf("CurrentSlot() = %d, want 1", n.store.CurrentSlot())
	}
	headBlock, ok := n.store.GetBlock(n.store.Head())
	if !ok || headBlock.Slot != 1 {
		t.Fatalf("expected proposer %d to have produced and admitted slot 1's block", n.cfg.ValidatorIndex)
	}
}

func TestOnTickNonProposerDoesNotPropose(t *testing.T) {
	n := newTestNode(t, 2, 12) // proposer for slot 1 is validator 1, not 2

	n.onTick()

	if n.store.CurrentSlot() != 1 {
		t.Fatalf("CurrentSlot() = %d, want 1", n.store.CurrentSlot())
	}
	if headBlock, ok := n.store.GetBlock(n.store.Head()); ok && headBlock.Slot == 1 {
		t.Fatal("non-proposer should not have admitted a slot-1 block")
	}
}

func TestOnTickBeforeGenesisIsNoOp(t *testing.T) {
	gen := config.Genesis{NumValidators: 4, GenesisTime: 1000}
	n, err := New(context.Background(), Config{Genesis: gen, ValidatorIndex: 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n.clock = clock.NewWithTimeFunc(n.store.Config(), func() time.Time { return time.Unix(0, 0) })

	n.onTick()

	if n.store.CurrentSlot() != 0 {
		t.Fatalf("CurrentSlot() = %d, want 0 (no-op before genesis)", n.store.CurrentSlot())
	}
}
