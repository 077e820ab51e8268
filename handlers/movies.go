package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sourcegraph/conc/pool"

	"moodflix/models"
	"moodflix/services/movies"
	"moodflix/services/search"
)

// MoviesHandler serves the movie catalog endpoints.
type MoviesHandler struct {
	Service *movies.Service
	History *search.Service
}

// NewMoviesHandler creates a MoviesHandler.
func NewMoviesHandler(service *movies.Service, history *search.Service) *MoviesHandler {
	return &MoviesHandler{Service: service, History: history}
}

// List returns the movie list. ?refresh=true bypasses the cache.
func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"
	list, err := h.Service.GetMovieData(r.Context(), force)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Featured returns the first movie of the list, null when the list is empty.
func (h *MoviesHandler) Featured(w http.ResponseWriter, r *http.Request) {
	featured, err := h.Service.Featured(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"featured": featured})
}

// NewReleases returns the full list under the shape the browsing UI expects.
func (h *MoviesHandler) NewReleases(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.NewReleases(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movies": list})
}

// BundleResponse is the combined payload for a movie details screen.
type BundleResponse struct {
	Details *models.MovieDetails    `json:"details"`
	Trailer *models.TrailerResponse `json:"trailer"`
	Similar []models.MovieSummary   `json:"similar"`
}

// Bundle returns details, trailer, and similar titles in one response to cut
// round-trips when the details screen opens. Sub-fetches run concurrently;
// a failed sub-fetch leaves its field empty rather than failing the bundle.
// GET /api/movies/{id}/bundle
func (h *MoviesHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	movieID := strings.TrimSpace(mux.Vars(r)["id"])
	if movieID == "" {
		writeError(w, http.StatusBadRequest, "movie id is required")
		return
	}

	resp := BundleResponse{Similar: []models.MovieSummary{}}
	p := pool.New().WithContext(r.Context())

	p.Go(func(ctx context.Context) error {
		details, err := h.Service.Details(ctx, movieID)
		if err != nil {
			log.Printf("[movies] bundle details error: %v", err)
			return nil
		}
		resp.Details = details
		if details != nil {
			similar, err := h.Service.SimilarByGenre(ctx, movieID, details.Genre, 10)
			if err == nil {
				resp.Similar = similar
			}
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		trailer, err := h.Service.Trailer(ctx, movieID)
		if err != nil {
			log.Printf("[movies] bundle trailer error: %v", err)
			return nil
		}
		resp.Trailer = trailer
		return nil
	})
	_ = p.Wait()

	if resp.Details == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search queries the catalog and records the query in the search history.
// GET /api/movies/search?q=...&page=1&limit=20
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	page := parseIntOr(r.URL.Query().Get("page"), 1)
	limit := parseIntOr(r.URL.Query().Get("limit"), 20)

	result, err := h.Service.Search(r.Context(), query, page, limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if h.History != nil {
		if err := h.History.Add(query); err != nil {
			log.Printf("[movies] recording search history failed: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// Recommendations returns mood-based picks.
// POST /api/movies/recommendations {mood, customMood}
func (h *MoviesHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mood == "" {
		writeError(w, http.StatusBadRequest, "mood is required")
		return
	}

	picks, err := h.Service.Recommendations(r.Context(), req.Mood, req.CustomMood)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movies": picks})
}

// Sync triggers the upstream catalog resynchronization.
// POST /api/movies/sync
func (h *MoviesHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Sync(r.Context()); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
