package models

import "slices"

// Config holds application configuration
type Config struct {
	AutoStart           bool           `json:"auto_start"`
	ICalSources         []ICalSource   `json:"ical_sources"`
	SelectedCalendarIDs []string       `json:"selected_calendar_ids"`
	UpdateInterval      int            `json:"update_interval"`   // minutes
	SnoozeTime          int            `json:"snooze_time"`       // minutes
	NotifyUnaccepted    bool           `json:"notify_unaccepted"` // notify for unaccepted events
	HoldTimeSeconds     int            `json:"hold_time_seconds"` // button hold time
	Reminders           ReminderConfig `json:"reminders"`
}

// ICalSource represents a named iCal calendar source
type ICalSource struct {
	ID    string `json:"id"`    // Unique identifier, also the calendar ID
	Name  string `json:"name"`  // Display name
	URL   string `json:"url"`   // iCal URL
	Color string `json:"color"` // Optional #RRGGBB override
}

// DefaultConfig returns the configuration used on first run
func DefaultConfig() *Config {
	return &Config{
		ICalSources:         []ICalSource{},
		SelectedCalendarIDs: []string{},
		UpdateInterval:      30,
		SnoozeTime:          5,
		HoldTimeSeconds:     3,
		Reminders: ReminderConfig{
			BeforeMinutes:  5,
			AtStartEnabled: true,
			AfterMinutes:   5,
		},
	}
}

// NeedsConfiguration returns true if the config needs initial setup
func (c *Config) NeedsConfiguration() bool {
	return len(c.ICalSources) == 0
}

// IsCalendarSelected reports whether the calendar with the given ID is selected
func (c *Config) IsCalendarSelected(id string) bool {
	return slices.Contains(c.SelectedCalendarIDs, id)
}

// Clone returns a deep copy that can be read without further locking
func (c *Config) Clone() Config {
	out := *c
	out.ICalSources = slices.Clone(c.ICalSources)
	out.SelectedCalendarIDs = slices.Clone(c.SelectedCalendarIDs)
	return out
}

// Validate checks if the iCal source has required fields. Name is optional;
// the calendar's own X-WR-CALNAME is used when it is empty.
func (s *ICalSource) Validate() bool {
	return s.ID != "" && s.URL != ""
}
