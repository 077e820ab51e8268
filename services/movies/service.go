package movies

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"

	"moodflix/models"
	"moodflix/services/api"
)

// cacheTTL is how long the movie list stays fresh.
const cacheTTL = 5 * time.Minute

// APIClient is the slice of the upstream client the movie service uses.
type APIClient interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Service is a read-through cache over the upstream movie list plus
// pass-throughs for the per-movie endpoints. Derived views (featured, new
// releases) are recomputed from the one cached list, never stored separately.
type Service struct {
	client APIClient

	mu        sync.Mutex
	cached    []models.MovieSummary
	fetchedAt time.Time
	inflight  *inflightFetch

	now func() time.Time
}

// inflightFetch lets concurrent readers share one upstream request.
type inflightFetch struct {
	done   chan struct{}
	movies []models.MovieSummary
	err    error
}

// NewService creates the movie service.
func NewService(client APIClient) *Service {
	return &Service{client: client, now: time.Now}
}

// GetMovieData returns the movie list, fetching upstream when the cache is
// empty, expired, or a refresh is forced. Callers arriving while a fetch is
// pending wait for that fetch instead of issuing their own.
func (s *Service) GetMovieData(ctx context.Context, forceRefresh bool) ([]models.MovieSummary, error) {
	s.mu.Lock()
	if !forceRefresh && s.cached != nil && s.now().Sub(s.fetchedAt) < cacheTTL {
		movies := s.cached
		s.mu.Unlock()
		return movies, nil
	}
	if f := s.inflight; f != nil {
		s.mu.Unlock()
		<-f.done
		return f.movies, f.err
	}
	f := &inflightFetch{done: make(chan struct{})}
	s.inflight = f
	s.mu.Unlock()

	var movies []models.MovieSummary
	err := s.client.Get(ctx, "/api/movies", nil, &movies)
	if movies == nil {
		movies = []models.MovieSummary{}
	}

	s.mu.Lock()
	if err == nil {
		s.cached = movies
		s.fetchedAt = s.now()
	}
	s.inflight = nil
	s.mu.Unlock()

	if err != nil {
		f.err = fmt.Errorf("load movie list: %w", err)
	} else {
		f.movies = movies
	}
	close(f.done)
	return f.movies, f.err
}

// ClearCache drops the cached list so the next read always refetches.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// Sync asks the upstream service to resynchronize its catalog from the
// third-party source, then drops the local cache regardless of the outcome.
// Transient failures are retried; a 401 is not.
func (s *Service) Sync(ctx context.Context) error {
	defer s.ClearCache()

	err := retry.Do(
		func() error {
			return s.client.Post(ctx, "/api/movies/sync", nil, nil)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, api.ErrAuthRequired)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			log.Printf("[movies] sync attempt %d failed: %v", attempt+1, err)
		}),
	)
	if err != nil {
		return fmt.Errorf("movie sync: %w", err)
	}
	return nil
}

// Featured returns the first movie of the list, nil when the list is empty.
func (s *Service) Featured(ctx context.Context) (*models.MovieSummary, error) {
	movies, err := s.GetMovieData(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}
	featured := movies[0]
	return &featured, nil
}

// NewReleases returns the full list.
func (s *Service) NewReleases(ctx context.Context) ([]models.MovieSummary, error) {
	return s.GetMovieData(ctx, false)
}

// SimilarByGenre projects up to limit cached movies sharing a genre,
// excluding the movie itself. Cache-only; an empty result is fine.
func (s *Service) SimilarByGenre(ctx context.Context, movieID, genre string, limit int) ([]models.MovieSummary, error) {
	if genre == "" || limit <= 0 {
		return []models.MovieSummary{}, nil
	}
	movies, err := s.GetMovieData(ctx, false)
	if err != nil {
		return nil, err
	}

	similar := make([]models.MovieSummary, 0, limit)
	for _, m := range movies {
		if m.ID == movieID || !strings.EqualFold(m.Genre, genre) {
			continue
		}
		similar = append(similar, m)
		if len(similar) == limit {
			break
		}
	}
	return similar, nil
}

// Details fetches one movie, returning nil when upstream has no such movie.
func (s *Service) Details(ctx context.Context, movieID string) (*models.MovieDetails, error) {
	var details models.MovieDetails
	err := s.client.Get(ctx, "/api/movies/"+url.PathEscape(movieID), nil, &details)
	if errors.Is(err, api.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load movie details: %w", err)
	}
	return &details, nil
}

// Trailer fetches the trailer URL for a movie. Missing trailers come back as
// an empty response, not an error.
func (s *Service) Trailer(ctx context.Context, movieID string) (*models.TrailerResponse, error) {
	var trailer models.TrailerResponse
	err := s.client.Get(ctx, "/api/movies/"+url.PathEscape(movieID)+"/trailer", nil, &trailer)
	if errors.Is(err, api.ErrNotFound) {
		return &models.TrailerResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load movie trailer: %w", err)
	}
	return &trailer, nil
}

// Search queries the upstream catalog.
func (s *Service) Search(ctx context.Context, query string, page, limit int) (*models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var result models.SearchResult
	if err := s.client.Get(ctx, "/api/movies/search", params, &result); err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	if result.Movies == nil {
		result.Movies = []models.MovieSummary{}
	}
	return &result, nil
}

// Recommendations asks upstream for mood-based picks.
func (s *Service) Recommendations(ctx context.Context, mood, customMood string) ([]models.MovieSummary, error) {
	req := models.RecommendationRequest{
		Mood:       mood,
		CustomMood: strings.TrimSpace(customMood),
	}
	var resp models.RecommendationResponse
	if err := s.client.Post(ctx, "/api/movies/recommendations", req, &resp); err != nil {
		return nil, fmt.Errorf("movie recommendations: %w", err)
	}
	if resp.Movies == nil {
		resp.Movies = []models.MovieSummary{}
	}
	return resp.Movies, nil
}
