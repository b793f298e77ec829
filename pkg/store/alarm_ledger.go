package store

import (
	"sort"
	"sync"

	"github.com/borgmon/calendar-overlay/pkg/models"
)

// AlarmLedger remembers which alarm keys have already fired
type AlarmLedger struct {
	mu    sync.RWMutex
	fired map[models.AlarmKey]struct{}
}

// NewAlarmLedger creates an empty ledger
func NewAlarmLedger() *AlarmLedger {
	return &AlarmLedger{
		fired: make(map[models.AlarmKey]struct{}),
	}
}

// HasFired reports whether the key was marked and not pruned since
func (l *AlarmLedger) HasFired(key models.AlarmKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.fired[key]
	return ok
}

// MarkFired records the key. Marking twice is a no-op.
func (l *AlarmLedger) MarkFired(key models.AlarmKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fired[key] = struct{}{}
}

// Prune forgets every key whose event ID is not in eventIDs and returns how
// many keys were removed
func (l *AlarmLedger) Prune(eventIDs map[string]struct{}) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key := range l.fired {
		if _, visible := eventIDs[key.EventID()]; !visible {
			delete(l.fired, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of fired keys
func (l *AlarmLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.fired)
}

// Keys returns the fired keys sorted alphabetically
func (l *AlarmLedger) Keys() []models.AlarmKey {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]models.AlarmKey, 0, len(l.fired))
	for key := range l.fired {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
