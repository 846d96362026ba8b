// Package state persists small per-user console preferences: cached session
// ids, theme, zoom. It is the console's stand-in for the browser's
// localStorage — a flat string key/value file under the user config dir.
//
// Only identifiers and display preferences belong here. Full session
// objects are backend-owned and never outlive the page.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Well-known keys.
const (
	KeyTheme                = "theme"
	KeyZoom                 = "zoom"
	KeyToken                = "token"
	KeyInquirySession       = "inquiry_session_id"
	KeyTroubleshootSession  = "troubleshoot_session_id"
	KeyReviveGrafanaSession = "revive_grafana_session_id"
)

const stateFile = "state.json"

// Store is a file-backed key/value store. Safe for concurrent use within a
// process; a file lock guards against concurrent console processes.
type Store struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	values map[string]string
	logger *slog.Logger
}

// DefaultDir returns the console's state directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "nimbus-console"), nil
}

// Open loads (or initializes) the store in dir. logger may be nil.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	s := &Store{
		path:   filepath.Join(dir, stateFile),
		lock:   flock.New(filepath.Join(dir, stateFile+".lock")),
		values: make(map[string]string),
		logger: logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		// A corrupt preferences file is not fatal; start fresh.
		s.logger.Warn("discarding corrupt state file", "path", s.path, "error", err)
		s.values = make(map[string]string)
	}
	return nil
}

// Get returns the value for key, or "" when unset.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores a value and writes the file through. Setting "" deletes the
// key, mirroring localStorage.removeItem.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		delete(s.values, key)
	} else {
		s.values[key] = value
	}
	return s.flush()
}

// Snapshot returns a copy of all values, for diagnostics.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// flush writes the file atomically under the inter-process lock.
// Caller holds s.mu.
func (s *Store) flush() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("release state lock", "error", err)
		}
	}()

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
