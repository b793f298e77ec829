package store

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/calendar-overlay/pkg/models"
)

func TestConfigStoreDefaultsOnFirstRun(t *testing.T) {
	cs := NewConfigStore(test.NewApp())

	cfg := cs.Load()
	require.NotNil(t, cfg)
	assert.Equal(t, models.DefaultConfig(), cfg)
	assert.True(t, cfg.NeedsConfiguration())
}

func TestConfigStoreRoundTrip(t *testing.T) {
	cs := NewConfigStore(test.NewApp())

	cfg := models.DefaultConfig()
	cfg.AutoStart = true
	cfg.SnoozeTime = 10
	cfg.ICalSources = []models.ICalSource{{ID: "work", Name: "Work", URL: "https://example.com/work.ics", Color: "#3366ff"}}
	cfg.SelectedCalendarIDs = []string{"work"}
	cfg.Reminders = models.ReminderConfig{BeforeEnabled: true, BeforeMinutes: 15, AfterEnabled: true, AfterMinutes: 2}
	cs.Save(cfg)

	assert.Equal(t, cfg, cs.Load())
}

func TestConfigStoreIgnoresMalformedLists(t *testing.T) {
	app := test.NewApp()
	app.Preferences().SetString("ical_sources", "{not json")

	cfg := NewConfigStore(app).Load()
	assert.Empty(t, cfg.ICalSources)
	assert.NotNil(t, cfg.ICalSources)
}
