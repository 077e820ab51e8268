package models

import (
	"strings"
	"testing"
)

func TestWireToEntryDerivesDay(t *testing.T) {
	wire := CalendarEntryWire{
		ID:        "e1",
		Date:      "2025-03-09",
		MoodEmoji: "😊",
		Note:      "good day",
	}

	entry, err := wire.ToEntry()
	if err != nil {
		t.Fatalf("ToEntry() error = %v", err)
	}
	if entry.Day != 9 {
		t.Errorf("Day = %d, want 9", entry.Day)
	}
	if entry.Mood != "😊" {
		t.Errorf("Mood = %q, want the emoji", entry.Mood)
	}
	if entry.Notes != "good day" {
		t.Errorf("Notes = %q", entry.Notes)
	}
	if entry.Date != "2025-03-09" {
		t.Errorf("Date = %q", entry.Date)
	}
}

func TestWireToEntryRejectsBadDates(t *testing.T) {
	cases := []string{"", "not-a-date", "2025-13-01", "03/09/2025", "2025-03-09T00:00:00Z"}
	for _, date := range cases {
		wire := CalendarEntryWire{ID: "e1", Date: date}
		if _, err := wire.ToEntry(); err == nil {
			t.Errorf("ToEntry() with date %q: want error, got nil", date)
		}
	}
}

func TestWireToEntryErrorNamesTheEntry(t *testing.T) {
	wire := CalendarEntryWire{ID: "abc123", Date: "bogus"}
	_, err := wire.ToEntry()
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "abc123") {
		t.Errorf("error %q should mention the entry id", err)
	}
}

func TestWireToEntryNormalizesNilRecommendations(t *testing.T) {
	wire := CalendarEntryWire{ID: "e1", Date: "2025-01-31"}
	entry, err := wire.ToEntry()
	if err != nil {
		t.Fatalf("ToEntry() error = %v", err)
	}
	if entry.Recommendations == nil {
		t.Error("Recommendations should be an empty slice, not nil")
	}
	if len(entry.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want empty", entry.Recommendations)
	}
}

func TestWireToEntryKeepsSelectedMovie(t *testing.T) {
	movie := &MovieSummary{ID: "m1", Title: "Arrival"}
	wire := CalendarEntryWire{ID: "e1", Date: "2025-06-15", SelectedMovie: movie}
	entry, err := wire.ToEntry()
	if err != nil {
		t.Fatalf("ToEntry() error = %v", err)
	}
	if entry.SelectedMovie == nil || entry.SelectedMovie.Title != "Arrival" {
		t.Errorf("SelectedMovie = %+v, want Arrival", entry.SelectedMovie)
	}
}
