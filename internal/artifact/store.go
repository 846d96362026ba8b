package artifact

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrDuplicateID is returned when an artifact with the same id is
	// already in the store.
	ErrDuplicateID = errors.New("duplicate artifact id")

	// ErrNotFound is returned when the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")
)

// Store is the in-memory ordered artifact list for one chat view.
// The most recently added artifact is first.
type Store struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	items    []*Artifact
	index    map[string]*Artifact
	pinned   map[string]bool
	activeID string
}

// NewStore creates an empty Store. logger may be nil.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger: logger,
		index:  make(map[string]*Artifact),
		pinned: make(map[string]bool),
	}
}

// Add inserts an artifact at the front of the list and promotes it to
// active. An empty id gets a client-generated one. A duplicate id returns
// ErrDuplicateID and leaves the store unchanged.
func (s *Store) Add(a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = NewClientID()
	}
	if _, exists := s.index[a.ID]; exists {
		s.logger.Debug("ignoring duplicate artifact", "id", a.ID)
		return ErrDuplicateID
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	s.items = append([]*Artifact{a}, s.items...)
	s.index[a.ID] = a
	s.activeID = a.ID

	s.logger.Debug("added artifact", "id", a.ID, "type", a.Type, "title", a.Title)
	return nil
}

// Get returns the artifact with the given id.
func (s *Store) Get(id string) (*Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.index[id]
	return a, ok
}

// List returns the artifacts, most recent first.
func (s *Store) List() []*Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Artifact, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored artifacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// SetActive marks the artifact as the one shown in the large view.
// Unknown ids are a no-op and return false.
func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; !ok {
		return false
	}
	s.activeID = id
	return true
}

// Active returns the artifact currently promoted to the large view.
func (s *Store) Active() (*Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.index[s.activeID]
	return a, ok
}

// Pin adds an id to the pinned set. Pins are kept across Clear.
func (s *Store) Pin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned[id] = true
}

// Unpin removes an id from the pinned set.
func (s *Store) Unpin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pinned, id)
}

// IsPinned reports whether the id is pinned.
func (s *Store) IsPinned(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pinned[id]
}

// Pinned returns a copy of the pinned id set.
func (s *Store) Pinned() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.pinned))
	for id := range s.pinned {
		out[id] = true
	}
	return out
}

// Clear drops all artifacts and the active selection. The pinned set
// survives; it has an independent lifecycle.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.index = make(map[string]*Artifact)
	s.activeID = ""
	s.logger.Debug("cleared artifact store")
}
