package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"moodflix/models"
)

// ErrIncompleteSession is returned when a save would persist a token without
// its paired user profile or vice versa.
var ErrIncompleteSession = errors.New("session must include both token and user profile")

const fileName = "credentials.json"

// Service is the durable credential store. The session survives restarts and
// is written as a single unit: token and profile are never persisted apart.
type Service struct {
	mu      sync.RWMutex
	fs      afero.Fs
	path    string
	session *models.Session
}

// NewService creates the store under dataDir, loading any persisted session.
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

// Load returns a copy of the stored session, or nil when logged out.
// It is synchronous and has no side effects.
func (s *Service) Load() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// AccessToken returns the current bearer token, or empty when logged out.
// Implements api.TokenProvider.
func (s *Service) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// Save persists the session. Incomplete sessions are rejected so readers can
// never observe a token without its profile.
func (s *Service) Save(session models.Session) error {
	if !session.Valid() {
		return ErrIncompleteSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session
	s.session = &session
	if err := s.saveLocked(); err != nil {
		s.session = prev
		return err
	}
	return nil
}

// Clear removes the stored session. Safe to call when already empty.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func (s *Service) load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("decode credentials: %w", err)
	}
	// A half-written or legacy file without both halves counts as logged out.
	if session.Valid() {
		s.session = &session
	}
	return nil
}

// saveLocked writes the session atomically via temp file + rename.
// Must be called with mu held.
func (s *Service) saveLocked() error {
	encoded, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write credentials temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}
