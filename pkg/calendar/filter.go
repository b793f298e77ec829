package calendar

import (
	"log"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/models"
)

const statusNeedsAction = "NEEDS-ACTION"

func shouldIncludeEvent(event models.Event, window models.TimeRange, stats *filterStats) bool {
	// Filter events with missing time information
	if event.StartTime.IsZero() || event.EndTime.IsZero() {
		stats.filteredMissingTime++
		log.Printf("  [FILTERED] Missing time - Event: \"%s\" (Start: %v, End: %v)",
			event.Title, event.StartTime, event.EndTime)
		return false
	}

	if event.Status == "CANCELLED" {
		stats.filteredCancelled++
		log.Printf("  [FILTERED] [Cancelled] - Event: \"%s\" (Start: %s)",
			event.Title, event.StartTime.Format("2006-01-02 15:04"))
		return false
	}

	if isAllDayEvent(event) {
		stats.filteredAllDay++
		return false
	}

	if !window.Overlaps(event.StartTime, event.EndTime) {
		stats.filteredOutsideWindow++
		return false
	}

	return true
}

func isAllDayEvent(event models.Event) bool {
	startDate := event.StartTime.Format("2006-01-02")
	endDate := event.EndTime.Format("2006-01-02")
	duration := event.EndTime.Sub(event.StartTime)

	// An event is considered all-day if it spans multiple days and is >= 24 hours
	return startDate != endDate && duration >= 24*time.Hour
}

// isUnaccepted reports whether the invitation was never answered
func isUnaccepted(event models.Event) bool {
	return event.Status == statusNeedsAction
}

type duplicateSet struct {
	ids  map[string]bool
	keys map[string]bool // title + start time
}

func newDuplicateSet() *duplicateSet {
	return &duplicateSet{ids: make(map[string]bool), keys: make(map[string]bool)}
}

func (d *duplicateSet) isDuplicate(event models.Event, stats *filterStats) bool {
	if d.ids[event.ID] {
		stats.filteredDuplicates++
		log.Printf("  [FILTERED] Duplicate (ID) - Event: \"%s\" (ID: %s)", event.Title, event.ID)
		return true
	}

	eventKey := event.Title + "|" + event.StartTime.UTC().Format(time.RFC3339)
	if d.keys[eventKey] {
		stats.filteredDuplicates++
		log.Printf("  [FILTERED] Duplicate (Title+Time) - Event: \"%s\" (Start: %s)",
			event.Title, event.StartTime.Format("2006-01-02 15:04"))
		return true
	}

	if event.ID != "" {
		d.ids[event.ID] = true
	}
	d.keys[eventKey] = true
	return false
}

type filterStats struct {
	totalComponents       int
	totalEvents           int
	filteredMissingTime   int
	filteredCancelled     int
	filteredAllDay        int
	filteredOutsideWindow int
	filteredDuplicates    int
}

func (s *filterStats) logSummary(includedCount int) {
	totalFiltered := s.filteredMissingTime + s.filteredCancelled + s.filteredAllDay + s.filteredOutsideWindow + s.filteredDuplicates
	log.Printf("  [SUMMARY] Total components: %d, Events: %d, Included: %d, Filtered: %d",
		s.totalComponents, s.totalEvents, includedCount, totalFiltered)
	if totalFiltered > 0 {
		log.Printf("  Filtered breakdown: %d cancelled, %d all-day, %d outside window, %d missing time, %d duplicates",
			s.filteredCancelled, s.filteredAllDay, s.filteredOutsideWindow, s.filteredMissingTime, s.filteredDuplicates)
	}
}
