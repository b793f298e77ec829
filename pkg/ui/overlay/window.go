package overlay

import (
	"fmt"
	"image/color"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/calendar-overlay/pkg/audio"
	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/borgmon/calendar-overlay/pkg/platform"
	"github.com/borgmon/calendar-overlay/pkg/ui/components"
)

const focusCheckInterval = 500 * time.Millisecond

type overlayWindow struct {
	app           fyne.App
	event         models.Event
	actions       Actions
	snoozeMinutes int
	holdDuration  time.Duration

	// Only touched on the UI thread
	window        fyne.Window
	dismiss       *components.HoldButton
	snooze        *components.HoldButton
	snoozeChoices []*components.HoldButton

	mu     sync.Mutex
	closed bool
	player *audio.Player
	stop   chan struct{}
}

func (w *overlayWindow) open() {
	fyne.Do(func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}

		w.window = w.app.NewWindow("Calendar Overlay")
		w.window.SetFullScreen(true)
		// Only the buttons may end the overlay
		w.window.SetCloseIntercept(func() {
			log.Println("[OVERLAY] Window close ignored - dismiss or snooze instead")
		})
		w.window.SetContent(w.buildUI())
		w.window.Show()
		w.window.RequestFocus()
	})

	go w.keepInFront()
}

func (w *overlayWindow) buildUI() fyne.CanvasObject {
	event := w.event

	title := canvas.NewText(event.Title, theme.Color(theme.ColorNameForeground))
	title.TextSize = 32
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	timeLabel := widget.NewLabel(formatTimeRange(event.StartTime.Local(), event.EndTime.Local()))
	timeLabel.Alignment = fyne.TextAlignCenter

	content := container.NewVBox(
		container.NewPadded(title),
		timeLabel,
	)

	if event.CalendarLabel != "" {
		swatch := canvas.NewRectangle(swatchColor(event.CalendarColor))
		swatch.SetMinSize(fyne.NewSize(14, 14))
		swatch.CornerRadius = 3
		content.Add(container.NewCenter(container.NewHBox(
			container.NewCenter(swatch),
			widget.NewLabel(event.CalendarLabel),
		)))
	}

	content.Add(widget.NewSeparator())

	if notes := strings.TrimSpace(event.Notes); notes != "" {
		description := widget.NewLabel(notes)
		description.Wrapping = fyne.TextWrapWord
		description.Alignment = fyne.TextAlignCenter
		content.Add(container.NewPadded(description))
	}

	if event.MeetingLink != "" {
		linkButton := widget.NewButton("Join Meeting", func() {
			if u, err := url.Parse(event.MeetingLink); err == nil {
				if err := w.app.OpenURL(u); err != nil {
					log.Printf("[OVERLAY] Failed to open meeting link: %v", err)
				}
			}
		})
		linkButton.Importance = widget.HighImportance
		content.Add(container.NewCenter(linkButton))
	}

	content.Add(widget.NewSeparator())

	holdSeconds := int(w.holdDuration / time.Second)
	buttonRow := container.NewHBox()
	if w.snoozeMinutes > 0 {
		w.snooze = components.NewHoldButton(
			fmt.Sprintf("Snooze %dm (Hold %ds)", w.snoozeMinutes, holdSeconds),
			w.holdDuration,
			w.onSnooze,
		)
		buttonRow.Add(w.snooze)
	}
	w.dismiss = components.NewHoldButton(
		fmt.Sprintf("Dismiss (Hold %ds)", holdSeconds),
		w.holdDuration,
		w.onDismiss,
	)
	buttonRow.Add(w.dismiss)
	content.Add(container.NewCenter(buttonRow))

	if w.snoozeMinutes > 0 {
		content.Add(w.buildSnoozeChoices())
	}

	return container.NewPadded(container.NewCenter(content))
}

// buildSnoozeChoices lays the other snooze lengths out in two rows
func (w *overlayWindow) buildSnoozeChoices() fyne.CanvasObject {
	rows := container.NewVBox()
	row := container.NewHBox()

	for i, choice := range snoozeChoices {
		button := components.NewHoldButton(choice.label, w.holdDuration, func() {
			w.snoozeFor(choice.minutes(time.Now()))
		})
		button.Compact = true
		w.snoozeChoices = append(w.snoozeChoices, button)
		row.Add(button)

		if (i+1)%5 == 0 || i == len(snoozeChoices)-1 {
			rows.Add(container.NewCenter(row))
			row = container.NewHBox()
		}
	}

	return rows
}

// Button callbacks run on the hold button's own goroutine, never under the
// monitor's lock, so they may call straight into it
func (w *overlayWindow) onDismiss() {
	if w.actions == nil {
		log.Println("[OVERLAY] Dismiss pressed with nothing to report to")
		return
	}
	w.actions.Dismiss()
}

func (w *overlayWindow) onSnooze() {
	w.snoozeFor(w.snoozeMinutes)
}

func (w *overlayWindow) snoozeFor(minutes int) {
	if w.actions == nil {
		log.Println("[OVERLAY] Snooze pressed with nothing to report to")
		return
	}
	w.actions.Snooze(minutes)
}

func (w *overlayWindow) startSound(sound []byte) {
	go func() {
		player, err := audio.Play(sound)
		if err != nil {
			log.Printf("[AUDIO] Alarm sound unavailable: %v", err)
			return
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			go player.Stop()
			return
		}
		w.player = player
	}()
}

// keepInFront blocks Cmd+Q and pulls the overlay back whenever another app
// takes focus. Both are no-ops outside macOS.
func (w *overlayWindow) keepInFront() {
	release := platform.BlockQuitShortcut()
	defer func() {
		if release != nil {
			release()
		}
	}()

	ticker := time.NewTicker(focusCheckInterval)
	defer ticker.Stop()

	wasActive := true
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			active := platform.IsAppActive()

			if wasActive && !active && release != nil {
				log.Println("[PLATFORM] Overlay lost focus - releasing Cmd+Q")
				release()
				release = nil
			} else if !wasActive && active && release == nil {
				log.Println("[PLATFORM] Overlay regained focus - blocking Cmd+Q")
				release = platform.BlockQuitShortcut()
			}

			if !active {
				platform.ActivateApp()
				fyne.Do(func() {
					if w.window != nil {
						w.window.Show()
						w.window.RequestFocus()
					}
				})
			}

			wasActive = active
		}
	}
}

func (w *overlayWindow) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	player := w.player
	w.player = nil
	close(w.stop)
	w.mu.Unlock()

	if player != nil {
		go player.Stop()
	}

	fyne.Do(func() {
		if w.window != nil {
			w.window.Close()
		}
	})
}

func formatTimeRange(start, end time.Time) string {
	const clock = "3:04 PM"
	const day = "Mon, Jan 2"

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return fmt.Sprintf("%s, %s - %s", start.Format(day), start.Format(clock), end.Format(clock))
	}
	return fmt.Sprintf("%s %s - %s %s", start.Format(day), start.Format(clock), end.Format(day), end.Format(clock))
}

// swatchColor turns a #RRGGBB calendar colour into a fill, falling back to
// the theme's primary colour
func swatchColor(hex string) color.Color {
	if c, ok := parseHexColor(hex); ok {
		return c
	}
	return theme.Color(theme.ColorNamePrimary)
}

func parseHexColor(hex string) (color.NRGBA, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
