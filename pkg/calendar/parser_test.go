package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

var testWindow = models.TimeRange{Start: base.Add(-cachePast), End: base.Add(cacheFuture)}

// calendarBody wraps VEVENT blocks into a CRLF terminated VCALENDAR
func calendarBody(header []string, events ...string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//calendar-overlay//test//EN"}
	lines = append(lines, header...)
	for _, event := range events {
		lines = append(lines, "BEGIN:VEVENT", "DTSTAMP:20260301T000000Z")
		lines = append(lines, strings.Split(strings.TrimSpace(event), "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func eventIDs(events []models.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestParseCalendarSingleEvent(t *testing.T) {
	body := calendarBody(nil, `
UID:e1
SUMMARY:Standup
DESCRIPTION:Join https://example.zoom.us/j/123 now
DTSTART:20260302T120000Z
DTEND:20260302T123000Z
STATUS:CONFIRMED`)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	require.Len(t, parsed.events, 1)

	event := parsed.events[0]
	assert.Equal(t, "e1", event.ID)
	assert.Equal(t, "Standup", event.Title)
	assert.WithinDuration(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), event.StartTime, 0)
	assert.WithinDuration(t, time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC), event.EndTime, 0)
	assert.Equal(t, "Join https://example.zoom.us/j/123 now", event.Notes)
	assert.Equal(t, "https://example.zoom.us/j/123", event.MeetingLink)
	assert.Equal(t, "CONFIRMED", event.Status)
}

func TestParseCalendarReadsFeedNameAndColor(t *testing.T) {
	body := calendarBody([]string{"X-WR-CALNAME:Team", "X-APPLE-CALENDAR-COLOR:#ff8800FF"})

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	assert.Equal(t, "Team", parsed.name)
	assert.Equal(t, "#FF8800", parsed.color)
	assert.Empty(t, parsed.events)
}

func TestParseCalendarMeetingLinkFromLocation(t *testing.T) {
	body := calendarBody(nil, `
UID:e1
SUMMARY:Review
LOCATION:https://meet.google.com/abc-defg-hij
DTSTART:20260302T120000Z
DTEND:20260302T123000Z`)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	require.Len(t, parsed.events, 1)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", parsed.events[0].MeetingLink)
}

func TestParseCalendarDurationInsteadOfEnd(t *testing.T) {
	body := calendarBody(nil, `
UID:e1
SUMMARY:Focus
DTSTART:20260302T120000Z
DURATION:PT45M`)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	require.Len(t, parsed.events, 1)
	assert.Equal(t, 45*time.Minute, parsed.events[0].EndTime.Sub(parsed.events[0].StartTime))
}

func TestParseCalendarFilters(t *testing.T) {
	body := calendarBody(nil,
		`
UID:keep
SUMMARY:Keep me
DTSTART:20260302T120000Z
DTEND:20260302T130000Z`,
		`
UID:cancelled
SUMMARY:Planning
STATUS:CANCELLED
DTSTART:20260302T120000Z
DTEND:20260302T130000Z`,
		`
UID:cancelled-title
SUMMARY:Cancelled: Planning
DTSTART:20260302T140000Z
DTEND:20260302T150000Z`,
		`
UID:allday
SUMMARY:Holiday
DTSTART;VALUE=DATE:20260302
DTEND;VALUE=DATE:20260303`,
		`
UID:no-end
SUMMARY:Broken
DTSTART:20260302T120000Z`,
		`
UID:far
SUMMARY:Next month
DTSTART:20260401T120000Z
DTEND:20260401T130000Z`,
		`
UID:keep
SUMMARY:Keep me again
DTSTART:20260302T160000Z
DTEND:20260302T170000Z`,
		`
UID:other
SUMMARY:Keep me
DTSTART:20260302T120000Z
DTEND:20260302T130000Z`,
	)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, eventIDs(parsed.events))
}

func TestParseCalendarExpandsRecurrenceWithExdate(t *testing.T) {
	body := calendarBody(nil, `
UID:daily-1
SUMMARY:Daily
DTSTART:20260301T090000Z
DTEND:20260301T093000Z
RRULE:FREQ=DAILY;COUNT=10
EXDATE:20260303T090000Z`)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"daily-1-2026-03-02T09:00:00Z",
		"daily-1-2026-03-04T09:00:00Z",
	}, eventIDs(parsed.events))

	for _, event := range parsed.events {
		assert.Equal(t, 30*time.Minute, event.EndTime.Sub(event.StartTime))
		assert.Equal(t, "Daily", event.Title)
	}
}

func TestParseCalendarAppliesRecurrenceOverride(t *testing.T) {
	body := calendarBody(nil,
		`
UID:daily-1
SUMMARY:Daily
DTSTART:20260301T090000Z
DTEND:20260301T093000Z
RRULE:FREQ=DAILY;COUNT=10`,
		`
UID:daily-1
RECURRENCE-ID:20260302T090000Z
SUMMARY:Moved
DTSTART:20260302T150000Z
DTEND:20260302T153000Z`,
	)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)

	byID := make(map[string]models.Event)
	for _, event := range parsed.events {
		byID[event.ID] = event
	}
	require.Len(t, byID, 3)

	moved, ok := byID["daily-1-2026-03-02T09:00:00Z"]
	require.True(t, ok)
	assert.Equal(t, "Moved", moved.Title)
	assert.WithinDuration(t, time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), moved.StartTime, 0)

	assert.Contains(t, byID, "daily-1-2026-03-03T09:00:00Z")
	assert.Contains(t, byID, "daily-1-2026-03-04T09:00:00Z")
}

func TestParseCalendarRecurrenceKeepsWallClockAcrossDST(t *testing.T) {
	body := calendarBody(nil, `
UID:weekly
SUMMARY:Weekly sync
DTSTART;TZID=America/New_York:20260305T090000
DTEND;TZID=America/New_York:20260305T100000
RRULE:FREQ=WEEKLY`)

	window := models.TimeRange{
		Start: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	}
	parsed, err := parseCalendar(body, window)
	require.NoError(t, err)
	require.Len(t, parsed.events, 1)

	// 09:00 EDT after the March 8 switch
	assert.WithinDuration(t, time.Date(2026, 3, 12, 13, 0, 0, 0, time.UTC), parsed.events[0].StartTime, 0)
}

func TestParseCalendarNormalizesWindowsTimezones(t *testing.T) {
	body := calendarBody(nil, `
UID:win
SUMMARY:Outlook meeting
DTSTART;TZID=Pacific Standard Time:20260302T090000
DTEND;TZID=Pacific Standard Time:20260302T100000`)

	parsed, err := parseCalendar(body, testWindow)
	require.NoError(t, err)
	require.Len(t, parsed.events, 1)
	assert.WithinDuration(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), parsed.events[0].StartTime, 0)
}

func TestParseCalendarRejectsGarbage(t *testing.T) {
	_, err := parseCalendar([]byte("BEGIN:VCALENDAR\r\nthis is not ical\r\n"), testWindow)
	assert.Error(t, err)
}

func TestValidateICalFormat(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"calendar", "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", false},
		{"leading whitespace and BOM", "\ufeff\r\nBEGIN:VCALENDAR\r\n", false},
		{"html login page", "<!DOCTYPE html><html></html>", true},
		{"html without doctype", "<html><body>Sign in</body></html>", true},
		{"json", `{"error":"nope"}`, true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateICalFormat(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/cal.ics", normalizeURL("webcal://example.com/cal.ics"))
	assert.Equal(t, "https://example.com/cal.ics", normalizeURL("WEBCAL://example.com/cal.ics"))
	assert.Equal(t, "https://example.com/cal.ics", normalizeURL("webcals://example.com/cal.ics"))
	assert.Equal(t, "http://localhost/cal.ics", normalizeURL("http://localhost/cal.ics"))
}

func TestExtractMeetingLinkPrefersKnownPlatforms(t *testing.T) {
	text := "Agenda at https://docs.example.com/a then https://teams.microsoft.com/l/meetup-join/xyz"
	assert.Equal(t, "https://teams.microsoft.com/l/meetup-join/xyz", extractMeetingLink(text))
	assert.Equal(t, "https://docs.example.com/a", extractMeetingLink("see https://docs.example.com/a"))
	assert.Empty(t, extractMeetingLink("no links here"))
}

func TestIsCancelledTitle(t *testing.T) {
	assert.True(t, isCancelledTitle("Cancelled: Planning"))
	assert.True(t, isCancelledTitle("[CANCELED] Planning"))
	assert.False(t, isCancelledTitle("Planning (not cancelled)"))
}
