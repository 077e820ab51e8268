package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const (
	fileName   = "search_history.json"
	maxEntries = 10
)

// Service is the durable search-history store: most recent first,
// de-duplicated, capped at ten queries.
type Service struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	entries []string
}

// NewService creates the store under dataDir, loading persisted history.
// Pass a nil fs to use the OS filesystem.
func NewService(fs afero.Fs, dataDir string) (*Service, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Service{fs: fs, path: filepath.Join(dataDir, fileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Add records a query at the front of the history, removing any earlier
// occurrence. Blank queries are ignored.
func (s *Service) Add(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]string, 0, len(s.entries)+1)
	updated = append(updated, query)
	for _, q := range s.entries {
		if q != query {
			updated = append(updated, q)
		}
	}
	if len(updated) > maxEntries {
		updated = updated[:maxEntries]
	}
	s.entries = updated

	return s.saveLocked()
}

// List returns the history, most recent first.
func (s *Service) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear empties the history.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove search history: %w", err)
	}
	return nil
}

func (s *Service) load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read search history: %w", err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode search history: %w", err)
	}
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	s.entries = entries
	return nil
}

// saveLocked writes the history atomically. Must be called with mu held.
func (s *Service) saveLocked() error {
	encoded, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode search history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("write search history temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace search history file: %w", err)
	}
	return nil
}
