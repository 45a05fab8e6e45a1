// Package jsonfile implements the document StateStore as one JSON
// file per document under a root directory, written atomically.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/colonyops/folio/internal/core/document"
)

// StateStore persists per-document viewing state as <id>.json files.
type StateStore struct {
	root string
	mu   sync.RWMutex
}

// New creates a JSON file state store rooted at dir, creating the
// directory if needed.
func New(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory %s: %w", dir, err)
	}
	return &StateStore{root: dir}, nil
}

// Root returns the store's directory.
func (s *StateStore) Root() string { return s.root }

func (s *StateStore) statePath(id document.ID) string {
	return filepath.Join(s.root, id.String()+".json")
}

// Load implements document.StateStore. Returns (nil, nil) when no
// state exists for the document.
func (s *StateStore) Load(info document.Info) (*document.PersistedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.read(s.statePath(info.ID))
	if err != nil {
		return nil, fmt.Errorf("load state for %s: %w", info.Path, err)
	}
	return state, nil
}

// Save implements document.StateStore, writing temp-then-rename so a
// crash never leaves a truncated state file.
func (s *StateStore) Save(info document.Info, state *document.PersistedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	path := s.statePath(info.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Entry is one stored state file, for inspection tooling.
type Entry struct {
	ID    document.ID
	State document.PersistedState
}

// List returns every stored document state, sorted by ID.
func (s *StateStore) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, name := range names {
		if name.IsDir() || !strings.HasSuffix(name.Name(), ".json") {
			continue
		}
		id, err := document.ParseID(strings.TrimSuffix(name.Name(), ".json"))
		if err != nil {
			continue
		}

		state, err := s.read(filepath.Join(s.root, name.Name()))
		if err != nil || state == nil {
			continue
		}
		entries = append(entries, Entry{ID: id, State: *state})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries, nil
}

// Get returns the stored state for one document ID, or (nil, nil) when
// absent.
func (s *StateStore) Get(id document.ID) (*document.PersistedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.statePath(id))
}

// Prune deletes every stored state. Returns the number of files
// removed.
func (s *StateStore) Prune() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := os.ReadDir(s.root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if name.IsDir() || !strings.HasSuffix(name.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, name.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// read loads one state file. Returns (nil, nil) if the file doesn't
// exist.
func (s *StateStore) read(path string) (*document.PersistedState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var state document.PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &state, nil
}
