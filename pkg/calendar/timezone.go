package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// Map of common Windows timezone names to IANA timezone names
var windowsToIANA = map[string]string{
	"Pacific Standard Time":          "America/Los_Angeles",
	"Mountain Standard Time":         "America/Denver",
	"Central Standard Time":          "America/Chicago",
	"Eastern Standard Time":          "America/New_York",
	"Atlantic Standard Time":         "America/Halifax",
	"Alaskan Standard Time":          "America/Anchorage",
	"Hawaiian Standard Time":         "Pacific/Honolulu",
	"GMT Standard Time":              "Europe/London",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Romance Standard Time":          "Europe/Paris",
	"Central Europe Standard Time":   "Europe/Budapest",
	"Central European Standard Time": "Europe/Warsaw",
	"China Standard Time":            "Asia/Shanghai",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"Korea Standard Time":            "Asia/Seoul",
	"India Standard Time":            "Asia/Kolkata",
	"Singapore Standard Time":        "Asia/Singapore",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"UTC":                            "UTC",
}

// Properties whose TZID parameter has to be readable by time.LoadLocation
var zonedProps = []string{
	ical.PropDateTimeStart,
	ical.PropDateTimeEnd,
	ical.PropRecurrenceID,
	ical.PropExceptionDates,
	ical.PropRecurrenceDates,
}

// normalizeComponentTimezones rewrites Windows timezone names to IANA names in place
func normalizeComponentTimezones(comp *ical.Component) {
	for _, name := range zonedProps {
		props := comp.Props[name]
		for i := range props {
			if tzid := props[i].Params.Get(ical.ParamTimezoneID); tzid != "" {
				if ianaName, ok := windowsToIANA[tzid]; ok {
					props[i].Params.Set(ical.ParamTimezoneID, ianaName)
				}
			}
		}
	}
}

// getTimezoneFromComponent tries to determine the timezone for a component
func getTimezoneFromComponent(comp *ical.Component) *time.Location {
	if dtstart := comp.Props.Get(ical.PropDateTimeStart); dtstart != nil {
		if tzid := dtstart.Params.Get(ical.ParamTimezoneID); tzid != "" {
			if ianaName, ok := windowsToIANA[tzid]; ok {
				tzid = ianaName
			}
			if loc, err := time.LoadLocation(tzid); err == nil {
				return loc
			}
		}

		if strings.HasSuffix(dtstart.Value, "Z") {
			return time.UTC
		}
	}

	// Floating times are read in the local timezone
	return time.Local
}
