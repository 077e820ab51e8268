package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"moodflix/internal/auth"
	"moodflix/models"
)

type fakeSessions struct {
	session *models.Session
}

func (f *fakeSessions) Session() *models.Session { return f.session }

func TestSessionRequiredMiddlewareRejectsLoggedOut(t *testing.T) {
	middleware := SessionRequiredMiddleware(&fakeSessions{})
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSessionRequiredMiddlewareInjectsSession(t *testing.T) {
	session := models.Session{
		AccessToken: "tok",
		User:        models.UserInfo{ID: "u1"},
	}
	middleware := SessionRequiredMiddleware(&fakeSessions{session: &session})

	var got models.Session
	var ok bool
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.SessionFrom(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !ok || got.User.ID != "u1" {
		t.Errorf("session in context = (%+v, %v)", got, ok)
	}
}

func TestSessionRequiredMiddlewarePassesOptions(t *testing.T) {
	middleware := SessionRequiredMiddleware(&fakeSessions{})

	called := false
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/calendar", nil))
	if !called {
		t.Error("preflight requests must pass through")
	}
}
