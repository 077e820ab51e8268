package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"moodflix/models"
)

// ErrLoginRequired is returned by mutations attempted without a session.
var ErrLoginRequired = errors.New("login required")

// AuthState gates calendar loads on the authentication lifecycle.
type AuthState interface {
	IsAuthenticated() bool
	Resolving() bool
	HasStoredCredential() bool
	Resolved() <-chan struct{}
}

// APIClient is the slice of the upstream client the engine uses.
type APIClient interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, params url.Values) error
}

// Service keeps per-month calendar buckets in sync with the upstream API.
// Each bucket moves Absent -> Loading -> Loaded, back to Loading only on a
// forced reload. Months are zero-based throughout the engine; the upstream
// API takes one-based months.
//
// Saves and deletes do not serialize against loads. The per-key dispatch
// sequence makes that race explicit: a fetch response only lands if it is
// still the latest dispatch for its key, and optimistic merges advance the
// sequence so an older in-flight reload cannot clobber them.
type Service struct {
	auth   AuthState
	client APIClient

	mu       sync.Mutex
	buckets  map[string][]models.CalendarEntry
	inflight map[string]struct{}
	seq      map[string]uint64

	cursorYear  int
	cursorMonth int // zero-based

	now func() time.Time
}

// New creates the engine with the cursor on the current month.
func New(auth AuthState, client APIClient) *Service {
	now := time.Now()
	return &Service{
		auth:        auth,
		client:      client,
		buckets:     make(map[string][]models.CalendarEntry),
		inflight:    make(map[string]struct{}),
		seq:         make(map[string]uint64),
		cursorYear:  now.Year(),
		cursorMonth: int(now.Month()) - 1,
		now:         time.Now,
	}
}

func bucketKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// Start completes once auth resolution finishes, then loads the cursor month.
// Loading is gated on resolution rather than retried on a timer.
func (s *Service) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-s.auth.Resolved():
		}
		year, month := s.Cursor()
		if err := s.Load(ctx, year, month, false); err != nil {
			log.Printf("[calendar] initial load failed: %v", err)
		}
	}()
}

// HandleAuthChange reacts to login/logout transitions: logout drops every
// bucket so one user's calendar never leaks into the next session; login
// loads the cursor month.
func (s *Service) HandleAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		s.Reset()
		return
	}
	year, month := s.Cursor()
	if err := s.Load(ctx, year, month, false); err != nil {
		log.Printf("[calendar] load after login failed: %v", err)
	}
}

// Load fetches one month of entries, month zero-based. Duplicate triggers are
// dropped, not queued: the call is a no-op while the user is logged out,
// while auth resolution is pending, while the same month is already in
// flight, or when the bucket is loaded and force is false.
func (s *Service) Load(ctx context.Context, year, month int, force bool) error {
	if !s.auth.IsAuthenticated() && !s.auth.HasStoredCredential() {
		log.Printf("[calendar] not authenticated, skipping load for %s", bucketKey(year, month))
		return nil
	}
	if s.auth.Resolving() {
		log.Printf("[calendar] auth still resolving, skipping load for %s", bucketKey(year, month))
		return nil
	}

	key := bucketKey(year, month)

	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return nil
	}
	if _, loaded := s.buckets[key]; loaded && !force {
		s.mu.Unlock()
		return nil
	}
	s.inflight[key] = struct{}{}
	s.seq[key]++
	dispatch := s.seq[key]
	s.mu.Unlock()

	entries, err := s.fetchMonth(ctx, year, month)

	s.mu.Lock()
	// Cleared unconditionally: a key stuck in flight would starve every
	// future load for that month.
	delete(s.inflight, key)
	if dispatch == s.seq[key] {
		// entries is [] on any failure so the UI settles instead of spinning.
		s.buckets[key] = entries
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("load calendar %s: %w", key, err)
	}
	return nil
}

// fetchMonth calls the upstream month endpoint, converting to its one-based
// month, and transforms the wire entries. Malformed entries are dropped at
// the boundary.
func (s *Service) fetchMonth(ctx context.Context, year, month int) ([]models.CalendarEntry, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("month", strconv.Itoa(month+1))

	var wire []models.CalendarEntryWire
	if err := s.client.Get(ctx, "/api/calendar", params, &wire); err != nil {
		return []models.CalendarEntry{}, err
	}

	entries := make([]models.CalendarEntry, 0, len(wire))
	for _, w := range wire {
		entry, err := w.ToEntry()
		if err != nil {
			log.Printf("[calendar] dropping malformed entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveEntry persists one day upstream and merges the returned entry into its
// month bucket: replace-by-day when the day exists, append otherwise. No full
// month refetch.
func (s *Service) SaveEntry(ctx context.Context, date time.Time, mood, notes string, movie *models.MovieSummary) (*models.CalendarEntry, error) {
	if !s.requireAuth() {
		return nil, ErrLoginRequired
	}

	req := models.SaveEntryRequest{
		Date:      date.Format("2006-01-02"),
		MoodEmoji: mood,
		Note:      notes,
	}
	if movie != nil {
		req.MovieID = &movie.ID
	}

	var wire models.CalendarEntryWire
	if err := s.client.Post(ctx, "/api/calendar/entry", req, &wire); err != nil {
		return nil, fmt.Errorf("save calendar entry: %w", err)
	}
	entry, err := wire.ToEntry()
	if err != nil {
		return nil, err
	}

	key := bucketKey(date.Year(), int(date.Month())-1)

	s.mu.Lock()
	s.seq[key]++ // the merge wins over any reload dispatched earlier
	bucket := s.buckets[key]
	replaced := false
	for i := range bucket {
		if bucket[i].Day == entry.Day {
			bucket[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		bucket = append(bucket, entry)
	}
	s.buckets[key] = bucket
	s.mu.Unlock()

	return &entry, nil
}

// DeleteEntry removes one day upstream and filters it out of the bucket.
func (s *Service) DeleteEntry(ctx context.Context, date time.Time) error {
	if !s.requireAuth() {
		return ErrLoginRequired
	}

	params := url.Values{}
	params.Set("date", date.Format("2006-01-02"))
	if err := s.client.Delete(ctx, "/api/calendar/entry", params); err != nil {
		return fmt.Errorf("delete calendar entry: %w", err)
	}

	key := bucketKey(date.Year(), int(date.Month())-1)
	day := date.Day()

	s.mu.Lock()
	s.seq[key]++
	bucket := s.buckets[key]
	filtered := make([]models.CalendarEntry, 0, len(bucket))
	for _, e := range bucket {
		if e.Day != day {
			filtered = append(filtered, e)
		}
	}
	s.buckets[key] = filtered
	s.mu.Unlock()

	return nil
}

// EntryFor returns the cached entry for a date, or nil.
func (s *Service) EntryFor(date time.Time) *models.CalendarEntry {
	key := bucketKey(date.Year(), int(date.Month())-1)
	day := date.Day()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.buckets[key] {
		if e.Day == day {
			entry := e
			return &entry
		}
	}
	return nil
}

// Month returns a copy of the bucket for a zero-based month and whether it
// has loaded yet.
func (s *Service) Month(year, month int) ([]models.CalendarEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[bucketKey(year, month)]
	if !ok {
		return nil, false
	}
	out := make([]models.CalendarEntry, len(bucket))
	copy(out, bucket)
	return out, true
}

// Cursor returns the current (year, zero-based month) cursor.
func (s *Service) Cursor() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorYear, s.cursorMonth
}

// ChangeMonth moves the cursor and loads the new month under the usual
// no-op rules.
func (s *Service) ChangeMonth(ctx context.Context, year, month int) error {
	s.mu.Lock()
	s.cursorYear, s.cursorMonth = year, month
	s.mu.Unlock()
	return s.Load(ctx, year, month, false)
}

// PreviousMonth moves the cursor one month back.
func (s *Service) PreviousMonth(ctx context.Context) error {
	year, month := s.Cursor()
	t := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return s.ChangeMonth(ctx, t.Year(), int(t.Month())-1)
}

// NextMonth moves the cursor one month forward.
func (s *Service) NextMonth(ctx context.Context) error {
	year, month := s.Cursor()
	t := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return s.ChangeMonth(ctx, t.Year(), int(t.Month())-1)
}

// CurrentMonth moves the cursor to today's month.
func (s *Service) CurrentMonth(ctx context.Context) error {
	now := s.now()
	return s.ChangeMonth(ctx, now.Year(), int(now.Month())-1)
}

// ForceReload reloads the cursor month, bypassing the already-loaded check.
func (s *Service) ForceReload(ctx context.Context) error {
	year, month := s.Cursor()
	return s.Load(ctx, year, month, true)
}

// Reset drops every bucket and invalidates all in-flight dispatches so late
// responses from a previous session cannot repopulate state.
func (s *Service) Reset() {
	s.mu.Lock()
	s.buckets = make(map[string][]models.CalendarEntry)
	for key := range s.seq {
		s.seq[key]++
	}
	s.mu.Unlock()
	log.Printf("[calendar] cleared all month buckets")
}

// requireAuth mirrors the load gate for mutations: a live session or a
// stored credential counts.
func (s *Service) requireAuth() bool {
	return s.auth.IsAuthenticated() || s.auth.HasStoredCredential()
}
