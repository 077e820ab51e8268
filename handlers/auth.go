package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"moodflix/services/authstate"
	"moodflix/services/kakao"
)

// AuthHandler serves the Kakao login flow and session endpoints. Exchanger
// and client are nil when no app key is configured; login endpoints then
// answer 503 instead of crashing.
type AuthHandler struct {
	exchanger *kakao.Exchanger
	kakao     *kakao.Client
	auth      *authstate.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(exchanger *kakao.Exchanger, client *kakao.Client, auth *authstate.Service) *AuthHandler {
	return &AuthHandler{exchanger: exchanger, kakao: client, auth: auth}
}

func (h *AuthHandler) loginEnabled() bool {
	return h.exchanger != nil && h.kakao != nil
}

// LoginURL returns the Kakao authorization URL with a fresh state parameter.
func (h *AuthHandler) LoginURL(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeError(w, http.StatusServiceUnavailable, "kakao login is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": h.kakao.AuthURL(uuid.NewString()),
	})
}

// KakaoCallback exchanges the authorization code from the redirect and
// persists the resulting session. A duplicate callback for an
// already-processed code is acknowledged, not failed.
func (h *AuthHandler) KakaoCallback(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeError(w, http.StatusServiceUnavailable, "kakao login is not configured")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "authorization code is required")
		return
	}

	session, err := h.exchanger.Exchange(r.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		log.Printf("[auth] kakao code exchange failed: %v", err)
		writeUpstreamError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_processed"})
		return
	}

	if err := h.auth.SetSession(*session); err != nil {
		log.Printf("[auth] persisting session failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"user":   session.User,
	})
}

// Login builds a session from a Kakao SDK access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeError(w, http.StatusServiceUnavailable, "kakao login is not configured")
		return
	}

	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access token is required")
		return
	}

	session, err := h.exchanger.Login(r.Context(), req.AccessToken)
	if err != nil {
		log.Printf("[auth] kakao login failed: %v", err)
		writeUpstreamError(w, err)
		return
	}
	if err := h.auth.SetSession(*session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"user":   session.User,
	})
}

// Me returns the logged-in user, or 401.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := h.auth.Session()
	if session == nil {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	writeJSON(w, http.StatusOK, session.User)
}

// Logout clears the session. Safe to call when already logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.ClearSession(); err != nil {
		log.Printf("[auth] logout cleanup failed: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
