package main

import (
	"fmt"
	"log"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/borgmon/calendar-overlay/pkg/calendar"
	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/borgmon/calendar-overlay/pkg/platform"
)

const upcomingLimit = 5

func (co *CalendarOverlay) setupSystemTray() {
	co.updateSystemTrayMenu()
}

func (co *CalendarOverlay) updateSystemTrayMenu() {
	desk, ok := co.app.(desktop.App)
	if !ok {
		return
	}

	co.mu.RLock()
	upcoming := upcomingFires(co.upcoming, upcomingLimit)
	cfg := co.config.Clone()
	denied := co.accessDenied
	co.mu.RUnlock()

	menuItems := []*fyne.MenuItem{}

	// Upcoming alarms at the top, unless something blocks them
	if status := trayStatus(denied, cfg, len(upcoming)); status != "" {
		menuItems = append(menuItems, disabledItem(status))
	} else {
		menuItems = append(menuItems, disabledItem("Upcoming:"))
		for _, fire := range upcoming {
			menuItems = append(menuItems, disabledItem(upcomingLabel(fire)))
		}
	}

	if snoozed := len(co.monitor.Snoozed()); snoozed > 0 {
		menuItems = append(menuItems, disabledItem(fmt.Sprintf("Snoozed: %d", snoozed)))
	}

	menuItems = append(menuItems, fyne.NewMenuItemSeparator())

	if calendars := co.calendars.Calendars(); len(calendars) > 0 {
		menuItems = append(menuItems, disabledItem("Calendars:"))
		for _, cal := range calendars {
			item := fyne.NewMenuItem(calendarLabel(cal), func() {
				co.toggleCalendar(cal.ID)
			})
			item.Checked = cfg.IsCalendarSelected(cal.ID)
			menuItems = append(menuItems, item)
		}
		menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	}

	startAtLogin := fyne.NewMenuItem("Start at Login", func() {
		co.toggleAutoStart()
	})
	startAtLogin.Checked = cfg.AutoStart

	menuItems = append(menuItems,
		fyne.NewMenuItem("Sync Now", func() {
			go co.syncNow()
		}),
		fyne.NewMenuItem("Test Overlay", func() {
			go co.monitor.TestOverlay()
		}),
		startAtLogin,
	)

	menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	menuItems = append(menuItems, fyne.NewMenuItem("Quit", func() {
		co.quit()
	}))

	menu := fyne.NewMenu("Calendar Overlay", menuItems...)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.HistoryIcon())
}

func (co *CalendarOverlay) toggleAutoStart() {
	enable := !co.configSnapshot().AutoStart
	if err := platform.SetupAutostart(enable); err != nil {
		log.Printf("Failed to change start at login: %v", err)
		return
	}

	co.updateConfig(func(cfg *models.Config) {
		cfg.AutoStart = enable
	})
	co.updateSystemTrayMenu()
}

// toggleCalendar adds or removes a calendar from the alarm selection
func (co *CalendarOverlay) toggleCalendar(id string) {
	co.updateConfig(func(cfg *models.Config) {
		cfg.SelectedCalendarIDs = toggleSelection(cfg.SelectedCalendarIDs, id)
	})
	go co.monitor.Poll()
	co.updateSystemTrayMenu()
}

func toggleSelection(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

// trayStatus explains why no upcoming alarms are listed. Empty when the
// upcoming list should be shown.
func trayStatus(accessDenied bool, cfg models.Config, upcoming int) string {
	switch {
	case accessDenied:
		return "Calendar access needed"
	case len(cfg.ICalSources) == 0:
		return "Add a calendar with -ical NAME=URL"
	case len(cfg.SelectedCalendarIDs) == 0:
		return "Select calendars below"
	case upcoming == 0:
		return "No upcoming alarms"
	}
	return ""
}

// upcomingFires returns at most limit fires, one per event
func upcomingFires(fires []models.ScheduledFire, limit int) []models.ScheduledFire {
	seen := make(map[string]bool)
	out := []models.ScheduledFire{}

	for _, fire := range fires {
		if seen[fire.Event.ID] {
			continue
		}
		seen[fire.Event.ID] = true
		out = append(out, fire)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func upcomingLabel(fire models.ScheduledFire) string {
	return fmt.Sprintf("  %s - %s",
		fire.FireTime.Local().Format(timeOfDay(fire.FireTime)),
		truncateString(fire.Event.Title, 35))
}

// timeOfDay includes the weekday for alarms that are not today
func timeOfDay(t time.Time) string {
	now := time.Now()
	y, m, d := t.Local().Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && d == nd {
		return "3:04 PM"
	}
	return "Mon 3:04 PM"
}

func calendarLabel(cal calendar.Calendar) string {
	name := truncateString(cal.Name, 30)
	if cal.Err != nil {
		return fmt.Sprintf("  %s (sync failed)", name)
	}
	if cal.LastSync.IsZero() {
		return fmt.Sprintf("  %s (not synced)", name)
	}
	return fmt.Sprintf("  %s (%d events)", name, cal.Events)
}

func disabledItem(label string) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, nil)
	item.Disabled = true
	return item
}

// truncateString truncates a string to maxLen characters, adding "..." if needed
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
