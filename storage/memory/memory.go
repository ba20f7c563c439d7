// Package memory is a non-durable storage.Archive, useful for tests
// and single-process demos that don't need to survive a restart.
package memory

import (
	"sync"

	"github.com/devylongs/leanchoice/types"
)

// Store is an in-memory storage.Archive.
type Store struct {
	mu     sync.RWMutex
	blocks map[types.Root]*types.Block
	states map[types.Root]*types.State
}

// New creates an empty in-memory archive.
func New() *Store {
	return &Store{
		blocks: make(map[types.Root]*types.Block),
		states: make(map[types.Root]*types.State),
	}
}

func (m *Store) PutBlock(root types.Root, block *types.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[root] = block
	return nil
}

func (m *Store) GetBlock(root types.Root) (*types.Block, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[root]
	return b, ok, nil
}

func (m *Store) PutState(root types.Root, state *types.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[root] = state
	return nil
}

func (m *Store) GetState(root types.Root) (*types.State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[root]
	return s, ok, nil
}

// PruneBelow deletes every admitted block/state with a slot strictly
// below finalizedSlot.
func (m *Store) PruneBelow(finalizedSlot types.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for root, block := range m.blocks {
		if block.Slot < finalizedSlot {
			delete(m.blocks, root)
			delete(m.states, root)
		}
	}
	return nil
}

func (m *Store) Close() error { return nil }
