package calendar

import (
	"fmt"
	"log"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/teambition/rrule-go"
)

// maxInstancesPerEvent caps expansion of rules that would otherwise
// produce a huge number of occurrences inside the window
const maxInstancesPerEvent = 500

// expandRecurringEvent expands a recurring event into the instances
// overlapping window, skipping EXDATE occurrences. The rule is evaluated in
// loc, the event's own timezone, so wall-clock times survive DST changes.
func expandRecurringEvent(baseEvent models.Event, rule string, exdates []time.Time, loc *time.Location, window models.TimeRange) ([]models.Event, error) {
	if baseEvent.StartTime.IsZero() {
		return nil, fmt.Errorf("recurring event has no start time")
	}

	option, err := rrule.StrToROptionInLocation(rule, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE %q: %w", rule, err)
	}
	option.Dtstart = baseEvent.StartTime.In(loc)

	r, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE %q: %w", rule, err)
	}

	var set rrule.Set
	set.RRule(r)
	for _, exdate := range exdates {
		set.ExDate(exdate.In(loc))
	}

	// Instances that started before the window can still be running inside it
	duration := baseEvent.EndTime.Sub(baseEvent.StartTime)
	if duration < 0 {
		duration = 0
	}
	starts := set.Between(window.Start.Add(-duration).In(loc), window.End.In(loc), true)
	if len(starts) > maxInstancesPerEvent {
		log.Printf("  [RECURRING] \"%s\" truncated to %d instances", baseEvent.Title, maxInstancesPerEvent)
		starts = starts[:maxInstancesPerEvent]
	}

	events := make([]models.Event, 0, len(starts))
	for _, start := range starts {
		instance := baseEvent
		instance.StartTime = start.In(time.Local)
		instance.EndTime = instance.StartTime.Add(duration)
		instance.ID = instanceID(baseEvent.ID, start)
		events = append(events, instance)
	}

	return events, nil
}
