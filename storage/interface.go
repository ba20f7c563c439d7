// Package storage defines the archival layer that sits outside the
// fork-choice core: a durable (or test-only in-memory) record of
// blocks and states the core has already admitted, plus pruning below
// a finalized boundary. The core itself never persists across restarts
// (spec.md Non-goals) — this package exists purely for hosts that want
// to rebuild a Store from disk instead of from a checkpoint-sync peer.
package storage

import "github.com/devylongs/leanchoice/types"

// Archive is a durable record of admitted blocks and states, written
// to as the fork-choice core's host observes new canonical entries and
// read from on startup to rehydrate a Store.
type Archive interface {
	PutBlock(root types.Root, block *types.Block) error
	GetBlock(root types.Root) (*types.Block, bool, error)
	PutState(root types.Root, state *types.State) error
	GetState(root types.Root) (*types.State, bool, error)

	// PruneBelow deletes every block/state whose slot is strictly less
	// than finalizedSlot. Hosts call this after every finalization
	// event so the archive never grows past what's needed to recover a
	// live store.
	PruneBelow(finalizedSlot types.Slot) error

	Close() error
}
