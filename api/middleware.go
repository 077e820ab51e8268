package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"moodflix/internal/auth"
	"moodflix/models"
)

// SessionSource yields the active session, nil when logged out.
type SessionSource interface {
	Session() *models.Session
}

// SessionRequiredMiddleware rejects requests made without a session and
// injects the session into the request context otherwise.
func SessionRequiredMiddleware(sessions SessionSource) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			session := sessions.Session()
			if session == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "login required"})
				return
			}

			ctx := context.WithValue(r.Context(), auth.ContextKeySession, *session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
