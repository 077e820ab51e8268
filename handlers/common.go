package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"moodflix/services/api"
	"moodflix/services/calendar"
	"moodflix/services/kakao"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeUpstreamError maps service-layer errors onto gateway responses.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrAuthRequired), errors.Is(err, calendar.ErrLoginRequired):
		writeError(w, http.StatusUnauthorized, "login required")
	case errors.Is(err, api.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, kakao.ErrConfigMissing):
		writeError(w, http.StatusServiceUnavailable, "kakao login is not configured")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
