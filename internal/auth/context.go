package auth

import (
	"net/http"

	"moodflix/models"
)

// ContextKey is the type used for context keys
type ContextKey string

// ContextKeySession is the key for the authenticated session in the context
const ContextKeySession ContextKey = "session"

// SessionFrom retrieves the authenticated session from the request context.
func SessionFrom(r *http.Request) (models.Session, bool) {
	session, ok := r.Context().Value(ContextKeySession).(models.Session)
	return session, ok
}
