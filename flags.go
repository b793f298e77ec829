package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/google/uuid"
)

// unset marks an int flag that was not given
const unset = -1

type sourceFlags []models.ICalSource

func (s *sourceFlags) String() string {
	names := make([]string, 0, len(*s))
	for _, source := range *s {
		names = append(names, source.Name)
	}
	return strings.Join(names, ",")
}

func (s *sourceFlags) Set(value string) error {
	name, url, ok := strings.Cut(value, "=")
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if !ok || url == "" {
		return errors.New("expected NAME=URL")
	}
	*s = append(*s, models.ICalSource{Name: name, URL: url})
	return nil
}

type options struct {
	sources       sourceFlags
	remindBefore  int
	remindAfter   int
	noRemindStart bool
	snooze        int
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("calendar-overlay", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Var(&opts.sources, "ical", "subscribe to an iCal feed, as NAME=URL (repeatable)")
	fs.IntVar(&opts.remindBefore, "remind-before", unset, "alarm `N` minutes before start, 0 to turn off")
	fs.IntVar(&opts.remindAfter, "remind-after", unset, "alarm `N` minutes after start, 0 to turn off")
	fs.BoolVar(&opts.noRemindStart, "no-remind-start", false, "no alarm when an event starts")
	fs.IntVar(&opts.snooze, "snooze", unset, "snooze length in `minutes`, 0 hides the snooze button")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.remindBefore < unset || opts.remindAfter < unset || opts.snooze < unset {
		return nil, errors.New("minute values must not be negative")
	}

	return opts, nil
}

// apply merges the command line into cfg and reports whether anything changed
func (o *options) apply(cfg *models.Config) bool {
	changed := false

	for _, source := range o.sources {
		id := ""
		for i := range cfg.ICalSources {
			if cfg.ICalSources[i].URL != source.URL {
				continue
			}
			id = cfg.ICalSources[i].ID
			if source.Name != "" && cfg.ICalSources[i].Name != source.Name {
				cfg.ICalSources[i].Name = source.Name
				changed = true
			}
			break
		}

		if id == "" {
			id = uuid.New().String()
			source.ID = id
			cfg.ICalSources = append(cfg.ICalSources, source)
			changed = true
		}

		if !cfg.IsCalendarSelected(id) {
			cfg.SelectedCalendarIDs = append(cfg.SelectedCalendarIDs, id)
			changed = true
		}
	}

	reminders := cfg.Reminders
	if o.remindBefore != unset {
		reminders.BeforeEnabled = o.remindBefore > 0
		if o.remindBefore > 0 {
			reminders.BeforeMinutes = o.remindBefore
		}
	}
	if o.remindAfter != unset {
		reminders.AfterEnabled = o.remindAfter > 0
		if o.remindAfter > 0 {
			reminders.AfterMinutes = o.remindAfter
		}
	}
	if o.noRemindStart {
		reminders.AtStartEnabled = false
	}
	if reminders != cfg.Reminders {
		cfg.Reminders = reminders
		changed = true
	}

	if o.snooze != unset && o.snooze != cfg.SnoozeTime {
		cfg.SnoozeTime = o.snooze
		changed = true
	}

	return changed
}
