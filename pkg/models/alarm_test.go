package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlarmKeyParts(t *testing.T) {
	key := NewAlarmKey("evt1", AlarmKindBefore)
	assert.Equal(t, AlarmKey("evt1_before"), key)
	assert.Equal(t, "evt1", key.EventID())
	assert.Equal(t, AlarmKindBefore, key.Kind())
}

func TestAlarmKeySplitsAtLastSeparator(t *testing.T) {
	key := NewAlarmKey("team_sync", AlarmKindStart)
	assert.Equal(t, "team_sync", key.EventID())
	assert.Equal(t, AlarmKindStart, key.Kind())

	// Known ambiguity: an ID that already ends in a kind suffix.
	ambiguous := AlarmKey("standup_after")
	assert.Equal(t, "standup", ambiguous.EventID())
}

func TestAlarmKindOrder(t *testing.T) {
	assert.Less(t, AlarmKindBefore.Order(), AlarmKindStart.Order())
	assert.Less(t, AlarmKindStart.Order(), AlarmKindAfter.Order())
	assert.False(t, AlarmKind("later").IsValid())
}

func TestReminderOffsetsClampNegative(t *testing.T) {
	cfg := ReminderConfig{BeforeMinutes: -3, AfterMinutes: 7}
	assert.Equal(t, time.Duration(0), cfg.BeforeOffset())
	assert.Equal(t, 7*time.Minute, cfg.AfterOffset())
}

func TestTimeRangeOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	r := TimeRange{Start: base, End: base.Add(24 * time.Hour)}

	assert.True(t, r.Overlaps(base.Add(-time.Hour), base.Add(time.Minute)), "ongoing event")
	assert.True(t, r.Overlaps(base.Add(2*time.Hour), base.Add(3*time.Hour)))
	assert.False(t, r.Overlaps(base.Add(-2*time.Hour), base), "ended exactly at range start")
	assert.False(t, r.Overlaps(base.Add(24*time.Hour), base.Add(25*time.Hour)))
}

func TestConfigCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SelectedCalendarIDs = []string{"work"}

	snapshot := cfg.Clone()
	cfg.SelectedCalendarIDs[0] = "home"

	assert.Equal(t, []string{"work"}, snapshot.SelectedCalendarIDs)
	assert.True(t, snapshot.IsCalendarSelected("work"))
	assert.True(t, snapshot.Reminders.AtStartEnabled)
}
