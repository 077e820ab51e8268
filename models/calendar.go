package models

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEntry is one journaled day as the client keeps it: the day of month
// is derived from the date and stays consistent with it.
type CalendarEntry struct {
	Day             int            `json:"day"`
	Mood            string         `json:"mood"`
	Notes           string         `json:"notes"`
	Date            string         `json:"date"` // YYYY-MM-DD
	ID              string         `json:"id"`
	Recommendations []MovieSummary `json:"recommendations"`
	SelectedMovie   *MovieSummary  `json:"selectedMovie,omitempty"`
}

// CalendarEntryWire is the upstream representation of a calendar entry.
type CalendarEntryWire struct {
	ID              string         `json:"id"`
	Date            string         `json:"date"`
	MoodEmoji       string         `json:"moodEmoji"`
	Note            string         `json:"note"`
	Recommendations []MovieSummary `json:"recommendations"`
	SelectedMovie   *MovieSummary  `json:"selectedMovie"`
}

// ToEntry validates the wire entry and converts it to the client shape,
// deriving the day of month from the entry date. Malformed dates are rejected
// at the boundary instead of propagating downstream.
func (w CalendarEntryWire) ToEntry() (CalendarEntry, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(w.Date))
	if err != nil {
		return CalendarEntry{}, fmt.Errorf("calendar entry %q: bad date %q: %w", w.ID, w.Date, err)
	}
	recs := w.Recommendations
	if recs == nil {
		recs = []MovieSummary{}
	}
	return CalendarEntry{
		Day:             t.Day(),
		Mood:            w.MoodEmoji,
		Notes:           w.Note,
		Date:            strings.TrimSpace(w.Date),
		ID:              w.ID,
		Recommendations: recs,
		SelectedMovie:   w.SelectedMovie,
	}, nil
}

// SaveEntryRequest is the upstream payload for creating or replacing one day.
// MovieID is null when the user saved a mood without picking a movie.
type SaveEntryRequest struct {
	Date      string  `json:"date"`
	MoodEmoji string  `json:"moodEmoji"`
	Note      string  `json:"note"`
	MovieID   *string `json:"movieId"`
}
