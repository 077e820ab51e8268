package authstate

import (
	"log"
	"sync"

	"moodflix/models"
)

// CredentialStore is the durable session storage behind the auth state.
type CredentialStore interface {
	Load() *models.Session
	Save(models.Session) error
	Clear() error
}

// Listener is notified when the authentication state flips. The calendar
// engine subscribes so logout clears its buckets.
type Listener func(authenticated bool)

// Service owns "is the user logged in" and its resolution lifecycle. Auth
// resolution is asynchronous at startup; consumers that must wait for it
// block on Resolved instead of polling.
type Service struct {
	mu        sync.RWMutex
	creds     CredentialStore
	session   *models.Session
	listeners []Listener

	resolved    chan struct{}
	resolveOnce sync.Once
}

// NewService creates an unresolved auth state over the credential store.
func NewService(creds CredentialStore) *Service {
	return &Service{
		creds:    creds,
		resolved: make(chan struct{}),
	}
}

// Resolve loads any stored credential and completes auth resolution. The
// Resolved channel is closed exactly once, even if Resolve is called again.
func (s *Service) Resolve() {
	s.resolveOnce.Do(func() {
		if session := s.creds.Load(); session != nil {
			s.mu.Lock()
			s.session = session
			s.mu.Unlock()
			log.Printf("[authstate] restored session for user %s", session.User.ID)
		}
		close(s.resolved)
	})
}

// Resolved is closed once initial auth resolution has finished.
func (s *Service) Resolved() <-chan struct{} {
	return s.resolved
}

// Resolving reports whether auth resolution is still pending.
func (s *Service) Resolving() bool {
	select {
	case <-s.resolved:
		return false
	default:
		return true
	}
}

// IsAuthenticated reports whether a session is active.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// HasStoredCredential reports whether a valid credential is on disk. Used to
// gate loads during the window where resolution has not caught up yet.
func (s *Service) HasStoredCredential() bool {
	return s.creds.Load() != nil
}

// Session returns a copy of the active session, or nil.
func (s *Service) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// Subscribe registers a transition listener. Register before transitions can
// occur; listeners are invoked synchronously.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// SetSession persists a new session and marks the user authenticated.
func (s *Service) SetSession(session models.Session) error {
	if err := s.creds.Save(session); err != nil {
		return err
	}

	s.mu.Lock()
	wasAuthenticated := s.session != nil
	s.session = &session
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if !wasAuthenticated {
		notify(listeners, true)
	}
	return nil
}

// ClearSession logs the user out. The in-memory session is dropped first so
// listeners observe the unauthenticated state even if the disk wipe fails.
func (s *Service) ClearSession() error {
	s.mu.Lock()
	wasAuthenticated := s.session != nil
	s.session = nil
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	err := s.creds.Clear()
	if wasAuthenticated {
		notify(listeners, false)
	}
	return err
}

func notify(listeners []Listener, authenticated bool) {
	for _, l := range listeners {
		l(authenticated)
	}
}
