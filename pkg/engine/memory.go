package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/reconhq/mailrecon/pkg/errors"
)

// memoryStore is the default StateStore: a mutex-guarded map with no
// persistence across restarts.
type memoryStore struct {
	mu     sync.RWMutex
	states map[string]SyncState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]SyncState)}
}

// NewMemoryStore creates a process-local StateStore.
func NewMemoryStore() StateStore {
	return newMemoryStore()
}

func (s *memoryStore) Put(_ context.Context, state SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ItemID] = state
	return nil
}

func (s *memoryStore) Get(_ context.Context, itemID string) (SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[itemID]
	if !ok {
		return SyncState{}, errors.NewNotFoundError("sync state", itemID)
	}
	return state, nil
}

func (s *memoryStore) List(_ context.Context) ([]SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SyncState, 0, len(s.states))
	for _, state := range s.states {
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (s *memoryStore) Close() error {
	return nil
}
