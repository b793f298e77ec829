package models

import (
	"fmt"
	"strings"
	"time"
)

// AlarmKind identifies which reminder of an event an alarm belongs to
type AlarmKind string

const (
	AlarmKindBefore AlarmKind = "before"
	AlarmKindStart  AlarmKind = "start"
	AlarmKindAfter  AlarmKind = "after"
)

const alarmKeySeparator = "_"

// Order returns the tie-break rank of the kind (before < start < after)
func (k AlarmKind) Order() int {
	switch k {
	case AlarmKindBefore:
		return 0
	case AlarmKindStart:
		return 1
	case AlarmKindAfter:
		return 2
	default:
		return 3
	}
}

func (k AlarmKind) IsValid() bool {
	return k.Order() < 3
}

// AlarmKey is the deduplication token for one reminder of one event.
// Format: "<eventID>_<kind>".
type AlarmKey string

// NewAlarmKey joins an event ID and kind into a key
func NewAlarmKey(eventID string, kind AlarmKind) AlarmKey {
	return AlarmKey(fmt.Sprintf("%s%s%s", eventID, alarmKeySeparator, kind))
}

// EventID returns everything before the last separator.
// An event ID that itself ends in "_<kind>" cannot be told apart from a key.
func (k AlarmKey) EventID() string {
	s := string(k)
	if i := strings.LastIndex(s, alarmKeySeparator); i >= 0 {
		return s[:i]
	}
	return s
}

// Kind returns everything after the last separator
func (k AlarmKey) Kind() AlarmKind {
	s := string(k)
	if i := strings.LastIndex(s, alarmKeySeparator); i >= 0 {
		return AlarmKind(s[i+len(alarmKeySeparator):])
	}
	return ""
}

// ScheduledFire is a future alarm that has not fired yet
type ScheduledFire struct {
	Key      AlarmKey
	FireTime time.Time
	Event    Event
}

// SnoozedEvent is an event the user pushed back by a number of minutes
type SnoozedEvent struct {
	ID       string // Unique identifier for the snooze (UUID)
	Event    Event
	FireTime time.Time
}

// ReminderConfig holds the three reminder toggles
type ReminderConfig struct {
	BeforeEnabled  bool `json:"before_enabled"`
	BeforeMinutes  int  `json:"before_minutes"`
	AtStartEnabled bool `json:"at_start_enabled"`
	AfterEnabled   bool `json:"after_enabled"`
	AfterMinutes   int  `json:"after_minutes"`
}

// BeforeOffset returns the "before" lead time, treating negative minutes as 0
func (r ReminderConfig) BeforeOffset() time.Duration {
	return minutesToDuration(r.BeforeMinutes)
}

// AfterOffset returns the "after" delay, treating negative minutes as 0
func (r ReminderConfig) AfterOffset() time.Duration {
	return minutesToDuration(r.AfterMinutes)
}

func minutesToDuration(minutes int) time.Duration {
	if minutes < 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}
