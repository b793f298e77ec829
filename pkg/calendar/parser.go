package calendar

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/emersion/go-ical"
)

const (
	propCalendarName  = "X-WR-CALNAME"
	propCalendarColor = "X-APPLE-CALENDAR-COLOR"
)

var (
	urlRegex       = regexp.MustCompile(`https?://[^\s<>"{}|\\^[\]` + "`" + `]+`)
	nonAlnumRegex  = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	hexColorRegex  = regexp.MustCompile(`^#[0-9a-fA-F]{6}`)
	meetingDomains = []string{"zoom", "meet.google", "teams.microsoft", "webex", "gotomeeting"}
)

// feed is the decoded content of one iCal document
type feed struct {
	name   string
	color  string
	events []models.Event
}

// parseCalendar decodes an iCal document and returns the event instances
// overlapping window, with recurrences expanded
func parseCalendar(body []byte, window models.TimeRange) (feed, error) {
	decoder := ical.NewDecoder(bytes.NewReader(bytes.TrimPrefix(body, []byte("\ufeff"))))
	result := feed{events: []models.Event{}}
	seen := newDuplicateSet()
	stats := &filterStats{}

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return feed{}, fmt.Errorf("failed to decode calendar: %w", err)
		}

		if result.name == "" {
			result.name = propText(cal.Props.Get(propCalendarName))
		}
		if result.color == "" {
			result.color = normalizeColor(propText(cal.Props.Get(propCalendarColor)))
		}

		// Overrides of single recurrence instances replace the generated one
		overridden := make(map[string]bool)
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			normalizeComponentTimezones(comp)
			if rid := comp.Props.Get(ical.PropRecurrenceID); rid != nil {
				uid := propText(comp.Props.Get(ical.PropUID))
				if t, err := parseDateTimeProperty(rid, getTimezoneFromComponent(comp)); err == nil {
					overridden[instanceID(uid, t)] = true
				}
			}
		}

		for _, comp := range cal.Children {
			stats.totalComponents++
			if comp.Name != ical.CompEvent {
				continue
			}
			stats.totalEvents++

			event := parseEvent(comp)

			if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil && comp.Props.Get(ical.PropRecurrenceID) == nil {
				instances, err := expandRecurringEvent(event, rruleProp.Value, exceptionDates(comp), getTimezoneFromComponent(comp), window)
				if err != nil {
					log.Printf("  [RECURRING] Skipping \"%s\": %v", event.Title, err)
					continue
				}
				for _, instance := range instances {
					if overridden[instance.ID] {
						continue
					}
					if shouldIncludeEvent(instance, window, stats) && !seen.isDuplicate(instance, stats) {
						result.events = append(result.events, instance)
					}
				}
				continue
			}

			if shouldIncludeEvent(event, window, stats) && !seen.isDuplicate(event, stats) {
				result.events = append(result.events, event)
			}
		}
	}

	stats.logSummary(len(result.events))

	return result, nil
}

func parseEvent(comp *ical.Component) models.Event {
	event := models.Event{}
	loc := getTimezoneFromComponent(comp)

	// iCal UID is the stable identity of the event
	event.ID = propText(comp.Props.Get(ical.PropUID))
	event.Title = propText(comp.Props.Get(ical.PropSummary))

	if desc := propText(comp.Props.Get(ical.PropDescription)); desc != "" {
		event.Notes = desc
		event.MeetingLink = extractMeetingLink(desc)
	}

	if startProp := comp.Props.Get(ical.PropDateTimeStart); startProp != nil {
		if t, err := parseDateTimeProperty(startProp, loc); err == nil {
			event.StartTime = t
		}
	}

	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if t, err := parseDateTimeProperty(endProp, loc); err == nil {
			event.EndTime = t
		}
	} else if durProp := comp.Props.Get(ical.PropDuration); durProp != nil && !event.StartTime.IsZero() {
		if d, err := durProp.Duration(); err == nil {
			event.EndTime = event.StartTime.Add(d)
		}
	}

	// RECURRENCE-ID overrides share the UID of their series
	if ridProp := comp.Props.Get(ical.PropRecurrenceID); ridProp != nil {
		if rid, err := parseDateTimeProperty(ridProp, loc); err == nil {
			event.ID = instanceID(event.ID, rid)
		}
	}

	event.Status = strings.ToUpper(propText(comp.Props.Get(ical.PropStatus)))

	// Polyfill: some providers only prefix the title instead of setting STATUS
	if event.Status != "CANCELLED" && isCancelledTitle(event.Title) {
		event.Status = "CANCELLED"
	}

	if event.MeetingLink == "" {
		event.MeetingLink = extractMeetingLink(propText(comp.Props.Get(ical.PropLocation)))
	}

	return event
}

func parseDateTimeProperty(prop *ical.Prop, loc *time.Location) (time.Time, error) {
	if t, err := prop.DateTime(loc); err == nil {
		return t.In(time.Local), nil
	}

	value := prop.Value
	formats := []string{
		"20060102T150405",     // Basic format: YYYYMMDDTHHMMSS
		"20060102T150405Z",    // UTC format
		"20060102",            // Date only
		time.RFC3339,          // Standard RFC3339
		"2006-01-02T15:04:05", // ISO 8601 without timezone
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t.In(time.Local), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", value)
}

// exceptionDates collects EXDATE values, which may be comma separated
func exceptionDates(comp *ical.Component) []time.Time {
	loc := getTimezoneFromComponent(comp)
	var dates []time.Time

	for _, exdate := range comp.Props.Values(ical.PropExceptionDates) {
		for _, value := range strings.Split(exdate.Value, ",") {
			single := exdate
			single.Value = strings.TrimSpace(value)
			if t, err := parseDateTimeProperty(&single, loc); err == nil {
				dates = append(dates, t)
			}
		}
	}

	return dates
}

func instanceID(uid string, start time.Time) string {
	return uid + "-" + start.UTC().Format(time.RFC3339)
}

func propText(prop *ical.Prop) string {
	if prop == nil {
		return ""
	}
	if text, err := prop.Text(); err == nil {
		return text
	}
	return prop.Value
}

func normalizeColor(value string) string {
	if match := hexColorRegex.FindString(strings.TrimSpace(value)); match != "" {
		return strings.ToUpper(match)
	}
	return ""
}

func extractMeetingLink(text string) string {
	matches := urlRegex.FindAllString(text, -1)

	// Prioritize known meeting platforms
	for _, match := range matches {
		lower := strings.ToLower(match)
		for _, domain := range meetingDomains {
			if strings.Contains(lower, domain) {
				return match
			}
		}
	}

	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}

func isCancelledTitle(title string) bool {
	cleanTitle := nonAlnumRegex.ReplaceAllString(strings.ToLower(title), "")
	return strings.HasPrefix(cleanTitle, "canceled") || strings.HasPrefix(cleanTitle, "cancelled")
}
