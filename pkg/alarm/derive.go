package alarm

import (
	"sort"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/models"
)

// Candidate is one reminder instance derived for an event
type Candidate struct {
	Key      models.AlarmKey
	Kind     models.AlarmKind
	FireTime time.Time
}

// Derive returns one candidate per enabled reminder, in before/start/after order
func Derive(event models.Event, cfg models.ReminderConfig) []Candidate {
	candidates := make([]Candidate, 0, 3)

	if cfg.BeforeEnabled {
		candidates = append(candidates, Candidate{
			Key:      models.NewAlarmKey(event.ID, models.AlarmKindBefore),
			Kind:     models.AlarmKindBefore,
			FireTime: event.StartTime.Add(-cfg.BeforeOffset()),
		})
	}
	if cfg.AtStartEnabled {
		candidates = append(candidates, Candidate{
			Key:      models.NewAlarmKey(event.ID, models.AlarmKindStart),
			Kind:     models.AlarmKindStart,
			FireTime: event.StartTime,
		})
	}
	if cfg.AfterEnabled {
		candidates = append(candidates, Candidate{
			Key:      models.NewAlarmKey(event.ID, models.AlarmKindAfter),
			Kind:     models.AlarmKindAfter,
			FireTime: event.StartTime.Add(cfg.AfterOffset()),
		})
	}

	return candidates
}

// SortFires orders fires by time, then event ID, then kind
func SortFires(fires []models.ScheduledFire) {
	sort.Slice(fires, func(i, j int) bool {
		a, b := fires[i], fires[j]
		if !a.FireTime.Equal(b.FireTime) {
			return a.FireTime.Before(b.FireTime)
		}
		if a.Event.ID != b.Event.ID {
			return a.Event.ID < b.Event.ID
		}
		return a.Key.Kind().Order() < b.Key.Kind().Order()
	})
}
