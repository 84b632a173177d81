// Package credstore persists the authenticated identity across client runs,
// the way the browser client kept it in local storage.
package credstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/jvegav/EcoTrade/internal/domain"
)

// Record is the single persisted session: the normalized Identity plus the
// bearer Credential when one exists (delegated mode only).
type Record struct {
	Identity   domain.Identity    `json:"identity"`
	Credential *domain.Credential `json:"credential,omitempty"`
}

// Store owns the session file. All process-wide session state lives here;
// reads happen once at startup via Load, writes only through Commit and
// Clear.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	current *Record
}

// New creates a store bound to the given file path.
func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted record, if any. A missing file means no session;
// an unreadable one is treated the same and logged.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logger.Warn("discarding unreadable session file", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.current = &record
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the live record, or nil when logged out. The
// copy is taken under the same lock Commit writes under, so a read issued
// right after a commit always observes the full new record.
func (s *Store) Current() *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	record := *s.current
	return &record
}

// Commit atomically replaces the persisted record.
func (s *Store) Commit(record Record) error {
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	s.current = &record
	return nil
}

// Clear removes the persisted record. A subsequent Load starts with no
// identity.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Session implements the API client's credential source: it yields the
// stored bearer credential, or nil for direct-mode sessions.
func (s *Store) Session(_ context.Context) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Credential == nil {
		return nil, nil
	}
	cred := *s.current.Credential
	return &cred, nil
}
