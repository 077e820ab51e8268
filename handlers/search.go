package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"moodflix/services/search"
)

// SearchHandler serves the recent-search history endpoints.
type SearchHandler struct {
	Service *search.Service
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{Service: service}
}

// History returns recent queries, most recent first.
// GET /api/search/history
func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"history": h.Service.List()})
}

// Add records one query.
// POST /api/search/history {query}
func (h *SearchHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if err := h.Service.Add(req.Query); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record query")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"history": h.Service.List()})
}

// Clear empties the history.
// DELETE /api/search/history
func (h *SearchHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
