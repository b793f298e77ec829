package models

import "time"

// Event represents a single calendar event instance
type Event struct {
	ID            string    // Stable identifier (iCal UID, or UID + instance start for recurrences)
	Title         string    // Event title/summary
	StartTime     time.Time // Event start time
	EndTime       time.Time // Event end time
	CalendarLabel string    // Name of the calendar the event belongs to
	CalendarColor string    // Calendar colour as #RRGGBB, display only
	Notes         string    // Event description
	MeetingLink   string    // Meeting link (Zoom, Google Meet, etc.)
	Status        string    // Event status (CONFIRMED, CANCELLED, NEEDS-ACTION)
	SourceID      string    // ID of the calendar this event came from
}

// TimeRange is a half-open interval [Start, End)
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the range
func (r TimeRange) Overlaps(start, end time.Time) bool {
	return start.Before(r.End) && end.After(r.Start)
}
