package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"moodflix/models"
	"moodflix/services/calendar"
)

// sharedEntryClient fetches shared photo-ticket entries from upstream.
type sharedEntryClient interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
}

// CalendarHandler serves the mood calendar endpoints. Months are one-based on
// this surface, matching the upstream API; the engine is zero-based.
type CalendarHandler struct {
	Service *calendar.Service
	Client  sharedEntryClient
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(service *calendar.Service, client sharedEntryClient) *CalendarHandler {
	return &CalendarHandler{Service: service, Client: client}
}

// GetMonth loads (if needed) and returns one month of entries.
// GET /api/calendar?year=2025&month=1[&force=true]
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "valid year is required")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}
	force := r.URL.Query().Get("force") == "true"

	if err := h.Service.Load(r.Context(), year, month-1, force); err != nil {
		writeUpstreamError(w, err)
		return
	}

	entries, _ := h.Service.Month(year, month-1)
	if entries == nil {
		entries = []models.CalendarEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// SaveEntry saves one day's mood journal.
// POST /api/calendar/entry {date, mood, notes, movie?}
func (h *CalendarHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  string               `json:"date"`
		Mood  string               `json:"mood"`
		Notes string               `json:"notes"`
		Movie *models.MovieSummary `json:"movie"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if req.Mood == "" {
		writeError(w, http.StatusBadRequest, "mood is required")
		return
	}

	entry, err := h.Service.SaveEntry(r.Context(), date, req.Mood, req.Notes, req.Movie)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes one day's journal.
// DELETE /api/calendar/entry?date=YYYY-MM-DD
func (h *CalendarHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if err := h.Service.DeleteEntry(r.Context(), date); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetEntry returns the cached entry for a date, 404 when the day is empty.
// GET /api/calendar/entry?date=YYYY-MM-DD
func (h *CalendarHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if err := h.Service.Load(r.Context(), date.Year(), int(date.Month())-1, false); err != nil {
		writeUpstreamError(w, err)
		return
	}
	entry := h.Service.EntryFor(date)
	if entry == nil {
		writeError(w, http.StatusNotFound, "no entry for date")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// GetShared proxies a shared photo-ticket lookup. Share IDs are UUIDs;
// anything else is rejected before touching upstream.
// GET /api/calendar/shared/{id}
func (h *CalendarHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "share id must be a UUID")
		return
	}

	var wire models.CalendarEntryWire
	if err := h.Client.Get(r.Context(), "/api/calendar/shared/"+id, nil, &wire); err != nil {
		writeUpstreamError(w, err)
		return
	}
	entry, err := wire.ToEntry()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
