// Package memstore provides an in-memory StateStore, for tests and
// for running without a writable data directory.
package memstore

import (
	"sync"

	"github.com/colonyops/folio/internal/core/document"
)

// StateStore keeps persisted document state in a map keyed by document
// identity.
type StateStore struct {
	mu     sync.Mutex
	states map[document.ID]document.PersistedState
}

// New returns an empty in-memory store.
func New() *StateStore {
	return &StateStore{states: make(map[document.ID]document.PersistedState)}
}

// Load implements document.StateStore.
func (s *StateStore) Load(info document.Info) (*document.PersistedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[info.ID]
	if !ok {
		return nil, nil
	}
	copied := state.Clone()
	return &copied, nil
}

// Save implements document.StateStore.
func (s *StateStore) Save(info document.Info, state *document.PersistedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[info.ID] = state.Clone()
	return nil
}

// Len returns the number of stored documents.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
