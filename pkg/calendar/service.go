package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/models"
)

const (
	fetchTimeout   = 15 * time.Second
	refreshTimeout = 2 * time.Minute

	// Events are cached for a window wider than the alarm look-ahead so a
	// cached copy stays useful between downloads
	cachePast   = 12 * time.Hour
	cacheFuture = 48 * time.Hour
)

// Calendar describes one configured source as shown to the user
type Calendar struct {
	ID       string
	Name     string
	Color    string
	Events   int
	LastSync time.Time
	Err      error
}

type sourceState struct {
	feedName  string
	feedColor string
	body      []byte
	etag      string
	events    []models.Event
	lastSync  time.Time
	err       error
}

// Service downloads iCal subscriptions and answers event queries from the
// cached result
type Service struct {
	mu                sync.RWMutex
	client            *http.Client
	now               func() time.Time
	onSynced          func()
	sources           []models.ICalSource
	includeUnaccepted bool
	states            map[string]*sourceState

	refreshing atomic.Bool
}

// NewService creates a Service. onSynced, if set, runs after every sync
// attempt, successful or not.
func NewService(onSynced func()) *Service {
	return &Service{
		client:   &http.Client{Timeout: fetchTimeout},
		now:      time.Now,
		onSynced: onSynced,
		states:   make(map[string]*sourceState),
	}
}

// SetOnSynced replaces the post-sync callback
func (s *Service) SetOnSynced(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSynced = fn
}

// Configure replaces the set of sources. Cached data of removed sources is dropped.
func (s *Service) Configure(sources []models.ICalSource, includeUnaccepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = slices.Clone(sources)
	s.includeUnaccepted = includeUnaccepted

	keep := make(map[string]bool, len(sources))
	for _, source := range sources {
		keep[source.ID] = true
	}
	for id := range s.states {
		if !keep[id] {
			delete(s.states, id)
		}
	}
}

// Calendars lists the configured sources in configuration order
func (s *Service) Calendars() []Calendar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calendars := make([]Calendar, 0, len(s.sources))
	for _, source := range s.sources {
		cal := Calendar{ID: source.ID, Name: source.Name, Color: source.Color}
		if state, ok := s.states[source.ID]; ok {
			cal.Name = labelFor(source, state)
			cal.Color = colorFor(source, state)
			cal.Events = len(state.events)
			cal.LastSync = state.lastSync
			cal.Err = state.err
		}
		calendars = append(calendars, cal)
	}
	return calendars
}

// Sync downloads every valid source. A failing source keeps its previous
// events; the failures are returned joined.
func (s *Service) Sync(ctx context.Context) error {
	s.mu.RLock()
	sources := slices.Clone(s.sources)
	onSynced := s.onSynced
	s.mu.RUnlock()

	log.Printf("[SYNC] Syncing %d calendar source(s)", len(sources))

	var errs []error
	for _, source := range sources {
		if !source.Validate() {
			log.Printf("[SYNC] Skipping invalid source %q", source.ID)
			continue
		}
		if err := s.syncSource(ctx, source); err != nil {
			log.Printf("[SYNC] Failed to sync %s: %v", sourceLabel(source), err)
			errs = append(errs, fmt.Errorf("%s: %w", sourceLabel(source), err))
		}
	}

	if onSynced != nil {
		onSynced()
	}

	return errors.Join(errs...)
}

func (s *Service) syncSource(ctx context.Context, source models.ICalSource) error {
	s.mu.RLock()
	var prev sourceState
	if state, ok := s.states[source.ID]; ok {
		prev = *state
	}
	s.mu.RUnlock()

	result, err := s.fetch(ctx, source.URL, prev.etag)
	if err != nil {
		s.recordError(source.ID, err)
		return err
	}

	body := result.body
	if result.notModified {
		log.Printf("[SYNC] %s not modified, re-reading cached copy", sourceLabel(source))
		body = prev.body
	}

	now := s.now()
	window := models.TimeRange{Start: now.Add(-cachePast), End: now.Add(cacheFuture)}
	parsed, err := parseCalendar(body, window)
	if err != nil {
		s.recordError(source.ID, err)
		return err
	}

	state := &sourceState{
		feedName:  parsed.name,
		feedColor: parsed.color,
		body:      body,
		etag:      result.etag,
		lastSync:  now,
	}
	label := labelFor(source, state)
	color := colorFor(source, state)

	eventsWithoutUID := 0
	for i := range parsed.events {
		event := &parsed.events[i]
		event.SourceID = source.ID
		event.CalendarLabel = label
		event.CalendarColor = color
		// Fallback: deterministic ID from start time and title
		if event.ID == "" {
			event.ID = source.ID + "-" + event.StartTime.UTC().Format(time.RFC3339) + "-" + event.Title
			eventsWithoutUID++
		}
	}
	if eventsWithoutUID > 0 {
		log.Printf("[SYNC] Generated fallback IDs for %d events without UID", eventsWithoutUID)
	}
	state.events = parsed.events

	s.mu.Lock()
	s.states[source.ID] = state
	s.mu.Unlock()

	log.Printf("[SYNC] %s: %d events cached", label, len(state.events))
	return nil
}

func (s *Service) recordError(sourceID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[sourceID]; ok {
		state.err = err
		return
	}
	s.states[sourceID] = &sourceState{err: err}
}

// RequestAccess performs the initial sync. Access counts as refused only when
// sources exist and every one of them rejected the credentials.
func (s *Service) RequestAccess(ctx context.Context) bool {
	if err := s.Sync(ctx); err == nil {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	valid, denied := 0, 0
	for _, source := range s.sources {
		if !source.Validate() {
			continue
		}
		valid++
		if state, ok := s.states[source.ID]; ok && errors.Is(state.err, ErrAccessDenied) {
			denied++
		}
	}

	return valid == 0 || denied < valid
}

// RefreshSources syncs in the background. A refresh requested while one is
// running is dropped.
func (s *Service) RefreshSources() {
	if !s.refreshing.CompareAndSwap(false, true) {
		log.Println("[SYNC] Refresh already running")
		return
	}

	go func() {
		defer s.refreshing.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := s.Sync(ctx); err != nil {
			log.Printf("[SYNC] Background refresh finished with errors: %v", err)
		}
	}()
}

// Events returns cached events of the given calendars that overlap window,
// ordered by start time
func (s *Service) Events(calendarIDs []string, window models.TimeRange) []models.Event {
	if len(calendarIDs) == 0 {
		return []models.Event{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []models.Event{}
	seenCalendars := make(map[string]bool, len(calendarIDs))
	for _, id := range calendarIDs {
		if seenCalendars[id] {
			continue
		}
		seenCalendars[id] = true

		state, ok := s.states[id]
		if !ok {
			continue
		}
		for _, event := range state.events {
			if !s.includeUnaccepted && isUnaccepted(event) {
				continue
			}
			if window.Overlaps(event.StartTime, event.EndTime) {
				events = append(events, event)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].ID < events[j].ID
	})

	return events
}

func labelFor(source models.ICalSource, state *sourceState) string {
	if source.Name != "" {
		return source.Name
	}
	if state.feedName != "" {
		return state.feedName
	}
	return source.ID
}

func colorFor(source models.ICalSource, state *sourceState) string {
	if source.Color != "" {
		return source.Color
	}
	return state.feedColor
}

func sourceLabel(source models.ICalSource) string {
	if source.Name != "" {
		return source.Name
	}
	return source.ID
}
