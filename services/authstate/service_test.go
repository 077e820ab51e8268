package authstate

import (
	"errors"
	"testing"
	"time"

	"moodflix/models"
)

type mockStore struct {
	session  *models.Session
	saveErr  error
	clearErr error
	loads    int
}

func (m *mockStore) Load() *models.Session {
	m.loads++
	if m.session == nil {
		return nil
	}
	session := *m.session
	return &session
}

func (m *mockStore) Save(session models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.session = &session
	return nil
}

func (m *mockStore) Clear() error {
	m.session = nil
	return m.clearErr
}

func testSession() models.Session {
	return models.Session{
		AccessToken: "tok",
		User:        models.UserInfo{ID: "u1", Name: "Alice"},
	}
}

func TestResolveRestoresStoredSession(t *testing.T) {
	stored := testSession()
	svc := NewService(&mockStore{session: &stored})

	if !svc.Resolving() {
		t.Fatal("service should start unresolved")
	}
	if svc.IsAuthenticated() {
		t.Fatal("no session before resolution")
	}

	svc.Resolve()

	if svc.Resolving() {
		t.Error("Resolving() should be false after Resolve")
	}
	if !svc.IsAuthenticated() {
		t.Error("stored session should authenticate the user")
	}
	if got := svc.Session(); got == nil || got.User.ID != "u1" {
		t.Errorf("Session() = %+v", got)
	}
}

func TestResolveWithEmptyStore(t *testing.T) {
	svc := NewService(&mockStore{})
	svc.Resolve()

	if svc.IsAuthenticated() {
		t.Error("empty store must not authenticate")
	}
	select {
	case <-svc.Resolved():
	default:
		t.Error("Resolved channel should be closed")
	}
}

func TestResolveIsOneShot(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store)

	svc.Resolve()
	loadsAfterFirst := store.loads

	// A second Resolve must not re-run resolution.
	svc.Resolve()
	if store.loads != loadsAfterFirst {
		t.Errorf("loads = %d, want %d", store.loads, loadsAfterFirst)
	}
}

func TestResolvedUnblocksWaiters(t *testing.T) {
	svc := NewService(&mockStore{})

	done := make(chan struct{})
	go func() {
		<-svc.Resolved()
		close(done)
	}()

	svc.Resolve()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter never unblocked")
	}
}

func TestSetSessionNotifiesOnLoginTransition(t *testing.T) {
	svc := NewService(&mockStore{})

	var notifications []bool
	svc.Subscribe(func(authenticated bool) {
		notifications = append(notifications, authenticated)
	})

	if err := svc.SetSession(testSession()); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}
	// A second set while already logged in is not a transition.
	if err := svc.SetSession(testSession()); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	if len(notifications) != 1 || !notifications[0] {
		t.Errorf("notifications = %v, want [true]", notifications)
	}
}

func TestSetSessionFailedPersistKeepsLoggedOut(t *testing.T) {
	svc := NewService(&mockStore{saveErr: errors.New("disk full")})

	notified := false
	svc.Subscribe(func(bool) { notified = true })

	if err := svc.SetSession(testSession()); err == nil {
		t.Fatal("want persist error")
	}
	if svc.IsAuthenticated() {
		t.Error("failed persist must not leave user logged in")
	}
	if notified {
		t.Error("no notification on failed login")
	}
}

func TestClearSessionNotifiesOnLogoutTransition(t *testing.T) {
	svc := NewService(&mockStore{})
	if err := svc.SetSession(testSession()); err != nil {
		t.Fatal(err)
	}

	var notifications []bool
	svc.Subscribe(func(authenticated bool) {
		notifications = append(notifications, authenticated)
	})

	if err := svc.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	// Clearing again while logged out is not a transition.
	if err := svc.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}

	if len(notifications) != 1 || notifications[0] {
		t.Errorf("notifications = %v, want [false]", notifications)
	}
}

func TestClearSessionDropsMemoryEvenWhenDiskFails(t *testing.T) {
	store := &mockStore{clearErr: errors.New("readonly fs")}
	svc := NewService(store)
	if err := svc.SetSession(testSession()); err != nil {
		t.Fatal(err)
	}
	// The disk wipe will fail, so stage the session back into the store to
	// mimic a file that survived.
	stored := testSession()
	store.session = &stored

	err := svc.ClearSession()
	if err == nil {
		t.Fatal("want disk error")
	}
	if svc.IsAuthenticated() {
		t.Error("in-memory session must be gone even when the wipe fails")
	}
}

func TestSessionReturnsCopy(t *testing.T) {
	svc := NewService(&mockStore{})
	if err := svc.SetSession(testSession()); err != nil {
		t.Fatal(err)
	}

	got := svc.Session()
	got.AccessToken = "mutated"

	if svc.Session().AccessToken != "tok" {
		t.Error("Session() must return a copy")
	}
}

func TestHasStoredCredential(t *testing.T) {
	stored := testSession()
	store := &mockStore{session: &stored}
	svc := NewService(store)

	if !svc.HasStoredCredential() {
		t.Error("credential on disk should be visible before resolution")
	}
	store.session = nil
	if svc.HasStoredCredential() {
		t.Error("no credential after wipe")
	}
}
