package models

// MovieSummary is the immutable movie snapshot returned by the upstream
// catalog. It is never mutated client-side.
type MovieSummary struct {
	ID          string  `json:"id"`
	TMDBID      int64   `json:"tmdbId"`
	Title       string  `json:"title"`
	PosterURL   string  `json:"posterUrl"`
	Genre       string  `json:"genre"`
	ReleaseDate string  `json:"releaseDate"`
	VoteAverage float64 `json:"voteAverage"`
}

// MovieDetails extends the summary with the fields the details screen shows.
type MovieDetails struct {
	MovieSummary
	Overview string `json:"overview,omitempty"`
	Runtime  int    `json:"runtime,omitempty"`
}

// TrailerResponse is the upstream trailer lookup result. TrailerURL is empty
// when no trailer is available.
type TrailerResponse struct {
	TrailerURL string `json:"trailerUrl"`
}

// SearchResult is one page of movie search results.
type SearchResult struct {
	Movies []MovieSummary `json:"movies"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
}

// RecommendationRequest asks the upstream service for mood-based picks.
type RecommendationRequest struct {
	Mood       string `json:"mood"`
	CustomMood string `json:"customMood,omitempty"`
}

// RecommendationResponse is the upstream answer to a recommendation request.
type RecommendationResponse struct {
	Movies []MovieSummary `json:"movies"`
}
