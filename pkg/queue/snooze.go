package queue

import (
	"sort"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/google/uuid"
)

// SnoozeQueue holds snoozed events ordered by fire time. Snoozing the same
// event twice yields two independent entries.
type SnoozeQueue struct {
	entries []models.SnoozedEvent
}

// NewSnoozeQueue creates an empty queue
func NewSnoozeQueue() *SnoozeQueue {
	return &SnoozeQueue{}
}

// Add schedules the event to come back at fireTime
func (q *SnoozeQueue) Add(event models.Event, fireTime time.Time) models.SnoozedEvent {
	entry := models.SnoozedEvent{
		ID:       uuid.New().String(),
		Event:    event,
		FireTime: fireTime,
	}

	// Insert after every entry with the same or earlier time
	i := sort.Search(len(q.entries), func(i int) bool {
		return q.entries[i].FireTime.After(fireTime)
	})
	q.entries = append(q.entries, models.SnoozedEvent{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = entry

	return entry
}

// PopDue removes and returns every entry with fireTime <= now
func (q *SnoozeQueue) PopDue(now time.Time) []models.SnoozedEvent {
	n := 0
	for n < len(q.entries) && !q.entries[n].FireTime.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}

	due := make([]models.SnoozedEvent, n)
	copy(due, q.entries[:n])
	q.entries = q.entries[n:]
	return due
}

// Next returns the earliest fire time
func (q *SnoozeQueue) Next() (time.Time, bool) {
	if len(q.entries) == 0 {
		return time.Time{}, false
	}
	return q.entries[0].FireTime, true
}

// Entries returns a copy of the queue in fire order
func (q *SnoozeQueue) Entries() []models.SnoozedEvent {
	out := make([]models.SnoozedEvent, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *SnoozeQueue) Len() int {
	return len(q.entries)
}
