// Package pebble is a durable storage.Archive backed by
// cockroachdb/pebble, for hosts that want a fork-choice store able to
// rehydrate across restarts. The core itself stays in-memory and
// restart-naive (spec.md Non-goals); this package is purely an
// optional mirror a host writes to as it observes admitted entries.
package pebble

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/devylongs/leanchoice/types"
)

const (
	blockPrefix = "b/"
	statePrefix = "s/"
)

// Store is a pebble-backed storage.Archive. Block/state bytes are
// gob-encoded: the SSZ codec (types.*.HashTreeRoot) already serves this
// repo's one wire-format need — content addressing — so these on-disk
// records don't need SSZ's variable-length-offset bookkeeping, only a
// way to round-trip a Go struct through bytes.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble db at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func blockKey(root types.Root) []byte { return append([]byte(blockPrefix), root[:]...) }
func stateKey(root types.Root) []byte { return append([]byte(statePrefix), root[:]...) }

func (s *Store) PutBlock(root types.Root, block *types.Block) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(block); err != nil {
		return fmt.Errorf("encode block: %w", err)
	}
	return s.db.Set(blockKey(root), buf.Bytes(), pebble.Sync)
}

func (s *Store) GetBlock(root types.Root) (*types.Block, bool, error) {
	raw, closer, err := s.db.Get(blockKey(root))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get block: %w", err)
	}
	defer closer.Close()

	var block types.Block
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&block); err != nil {
		return nil, false, fmt.Errorf("decode block: %w", err)
	}
	return &block, true, nil
}

func (s *Store) PutState(root types.Root, state *types.State) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.db.Set(stateKey(root), buf.Bytes(), pebble.Sync)
}

func (s *Store) GetState(root types.Root) (*types.State, bool, error) {
	raw, closer, err := s.db.Get(stateKey(root))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get state: %w", err)
	}
	defer closer.Close()

	var state types.State
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&state); err != nil {
		return nil, false, fmt.Errorf("decode state: %w", err)
	}
	return &state, true, nil
}

// PruneBelow deletes every block/state whose slot is strictly below
// finalizedSlot. Since keys aren't slot-ordered, this scans every
// block record and deletes each pruned block together with the state
// stored under the same root; acceptable for the archive's expected
// size (a pruned working set, not full chain history).
func (s *Store) PruneBelow(finalizedSlot types.Slot) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	if err := s.pruneBlocksInto(batch, finalizedSlot); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit prune batch: %w", err)
	}
	return nil
}

func (s *Store) pruneBlocksInto(batch *pebble.Batch, finalizedSlot types.Slot) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(blockPrefix),
		UpperBound: []byte(blockPrefix + "\xff"),
	})
	if err != nil {
		return fmt.Errorf("new iter: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var block types.Block
		if err := gob.NewDecoder(bytes.NewReader(iter.Value())).Decode(&block); err != nil {
			return fmt.Errorf("decode block during prune: %w", err)
		}
		if block.Slot >= finalizedSlot {
			continue
		}
		root := bytes.TrimPrefix(iter.Key(), []byte(blockPrefix))
		var rootArr types.Root
		copy(rootArr[:], root)
		if err := batch.Delete(iter.Key(), nil); err != nil {
			return err
		}
		if err := batch.Delete(stateKey(rootArr), nil); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *Store) Close() error { return s.db.Close() }
