package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/calendar-overlay/pkg/models"
)

var start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestDeriveAllKinds(t *testing.T) {
	event := models.Event{ID: "multi", StartTime: start}
	cfg := models.ReminderConfig{
		BeforeEnabled:  true,
		BeforeMinutes:  5,
		AtStartEnabled: true,
		AfterEnabled:   true,
		AfterMinutes:   10,
	}

	got := Derive(event, cfg)
	require.Len(t, got, 3)

	assert.Equal(t, models.AlarmKey("multi_before"), got[0].Key)
	assert.Equal(t, start.Add(-5*time.Minute), got[0].FireTime)
	assert.Equal(t, models.AlarmKey("multi_start"), got[1].Key)
	assert.Equal(t, start, got[1].FireTime)
	assert.Equal(t, models.AlarmKey("multi_after"), got[2].Key)
	assert.Equal(t, start.Add(10*time.Minute), got[2].FireTime)
}

func TestDeriveDisabledTogglesProduceNothing(t *testing.T) {
	event := models.Event{ID: "evt", StartTime: start}

	assert.Empty(t, Derive(event, models.ReminderConfig{BeforeMinutes: 5, AfterMinutes: 5}))

	got := Derive(event, models.ReminderConfig{AfterEnabled: true, AfterMinutes: 5})
	require.Len(t, got, 1)
	assert.Equal(t, models.AlarmKindAfter, got[0].Kind)
}

func TestDeriveToleratesZeroAndNegativeOffsets(t *testing.T) {
	event := models.Event{ID: "evt", StartTime: start}
	cfg := models.ReminderConfig{BeforeEnabled: true, BeforeMinutes: 0, AfterEnabled: true, AfterMinutes: -4}

	got := Derive(event, cfg)
	require.Len(t, got, 2)
	assert.Equal(t, start, got[0].FireTime)
	assert.Equal(t, start, got[1].FireTime)
}

func TestSortFiresBreaksTiesByEventThenKind(t *testing.T) {
	later := start.Add(time.Minute)
	fires := []models.ScheduledFire{
		{Key: "b_start", FireTime: start, Event: models.Event{ID: "b"}},
		{Key: "a_after", FireTime: start, Event: models.Event{ID: "a"}},
		{Key: "a_before", FireTime: later, Event: models.Event{ID: "a"}},
		{Key: "a_start", FireTime: start, Event: models.Event{ID: "a"}},
	}

	SortFires(fires)

	keys := make([]models.AlarmKey, 0, len(fires))
	for _, f := range fires {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []models.AlarmKey{"a_start", "a_after", "b_start", "a_before"}, keys)
}
