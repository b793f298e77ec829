package store

import (
	"encoding/json"
	"log"

	"fyne.io/fyne/v2"
	"github.com/borgmon/calendar-overlay/pkg/models"
)

// ConfigStore handles configuration persistence using Fyne preferences
type ConfigStore struct {
	app fyne.App
}

// NewConfigStore creates a new ConfigStore instance
func NewConfigStore(app fyne.App) *ConfigStore {
	return &ConfigStore{app: app}
}

// Load loads configuration from preferences, falling back to defaults
func (cs *ConfigStore) Load() *models.Config {
	prefs := cs.app.Preferences()
	defaults := models.DefaultConfig()

	config := &models.Config{
		AutoStart:        prefs.BoolWithFallback("auto_start", defaults.AutoStart),
		UpdateInterval:   prefs.IntWithFallback("update_interval", defaults.UpdateInterval),
		SnoozeTime:       prefs.IntWithFallback("snooze_time", defaults.SnoozeTime),
		NotifyUnaccepted: prefs.BoolWithFallback("notify_unaccepted", defaults.NotifyUnaccepted),
		HoldTimeSeconds:  prefs.IntWithFallback("hold_time_seconds", defaults.HoldTimeSeconds),
		Reminders: models.ReminderConfig{
			BeforeEnabled:  prefs.BoolWithFallback("reminder_before_enabled", defaults.Reminders.BeforeEnabled),
			BeforeMinutes:  prefs.IntWithFallback("reminder_before_minutes", defaults.Reminders.BeforeMinutes),
			AtStartEnabled: prefs.BoolWithFallback("reminder_at_start_enabled", defaults.Reminders.AtStartEnabled),
			AfterEnabled:   prefs.BoolWithFallback("reminder_after_enabled", defaults.Reminders.AfterEnabled),
			AfterMinutes:   prefs.IntWithFallback("reminder_after_minutes", defaults.Reminders.AfterMinutes),
		},
	}

	// Lists are stored as JSON strings
	config.ICalSources = loadJSONList(prefs, "ical_sources", []models.ICalSource{})
	config.SelectedCalendarIDs = loadJSONList(prefs, "selected_calendar_ids", []string{})

	return config
}

// Save saves configuration to preferences
func (cs *ConfigStore) Save(config *models.Config) {
	prefs := cs.app.Preferences()

	prefs.SetBool("auto_start", config.AutoStart)
	prefs.SetInt("update_interval", config.UpdateInterval)
	prefs.SetInt("snooze_time", config.SnoozeTime)
	prefs.SetBool("notify_unaccepted", config.NotifyUnaccepted)
	prefs.SetInt("hold_time_seconds", config.HoldTimeSeconds)

	prefs.SetBool("reminder_before_enabled", config.Reminders.BeforeEnabled)
	prefs.SetInt("reminder_before_minutes", config.Reminders.BeforeMinutes)
	prefs.SetBool("reminder_at_start_enabled", config.Reminders.AtStartEnabled)
	prefs.SetBool("reminder_after_enabled", config.Reminders.AfterEnabled)
	prefs.SetInt("reminder_after_minutes", config.Reminders.AfterMinutes)

	saveJSONList(prefs, "ical_sources", config.ICalSources)
	saveJSONList(prefs, "selected_calendar_ids", config.SelectedCalendarIDs)
}

func loadJSONList[T any](prefs fyne.Preferences, key string, fallback []T) []T {
	raw := prefs.String(key)
	if raw == "" {
		return fallback
	}

	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("Ignoring malformed preference %q: %v", key, err)
		return fallback
	}
	if out == nil {
		return fallback
	}
	return out
}

func saveJSONList[T any](prefs fyne.Preferences, key string, values []T) {
	if values == nil {
		values = []T{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		log.Printf("Failed to encode preference %q: %v", key, err)
		return
	}
	prefs.SetString(key, string(data))
}
