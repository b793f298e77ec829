package queue

import "github.com/borgmon/calendar-overlay/pkg/models"

// DisplayQueue holds the event currently presented plus the events waiting
// behind it. At most one event is active; an event ID appears at most once
// across the active slot and the pending list.
type DisplayQueue struct {
	active  *models.Event
	pending []models.Event
}

// NewDisplayQueue creates an empty queue
func NewDisplayQueue() *DisplayQueue {
	return &DisplayQueue{}
}

// Enqueue activates the event if nothing is shown, otherwise appends it.
// Events already active or pending are ignored. Reports whether the active
// slot changed.
func (q *DisplayQueue) Enqueue(event models.Event) bool {
	if q.Contains(event.ID) {
		return false
	}
	if q.active == nil {
		q.active = &event
		return true
	}
	q.pending = append(q.pending, event)
	return false
}

// Dismiss clears the active event and promotes the oldest pending one.
// Reports whether the active slot changed.
func (q *DisplayQueue) Dismiss() bool {
	if q.active == nil {
		return false
	}
	q.active = nil
	if len(q.pending) > 0 {
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.active = &next
	}
	return true
}

// Active returns the event currently shown
func (q *DisplayQueue) Active() (models.Event, bool) {
	if q.active == nil {
		return models.Event{}, false
	}
	return *q.active, true
}

// Pending returns a copy of the waiting events, oldest first
func (q *DisplayQueue) Pending() []models.Event {
	out := make([]models.Event, len(q.pending))
	copy(out, q.pending)
	return out
}

// Contains reports whether the event is active or pending
func (q *DisplayQueue) Contains(eventID string) bool {
	if q.active != nil && q.active.ID == eventID {
		return true
	}
	for _, e := range q.pending {
		if e.ID == eventID {
			return true
		}
	}
	return false
}
