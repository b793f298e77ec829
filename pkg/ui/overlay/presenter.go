package overlay

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/borgmon/calendar-overlay/pkg/audio"
	"github.com/borgmon/calendar-overlay/pkg/models"
)

// Actions are the operations the overlay buttons trigger
type Actions interface {
	Dismiss()
	Snooze(minutes int)
}

// Options configures a Presenter
type Options struct {
	App     fyne.App
	Actions Actions
	// Config returns the current settings; snooze length and hold time are
	// read each time an overlay opens
	Config func() models.Config
	// Sound is the WAV looped while an overlay is shown. Defaults to the chime.
	Sound []byte
	// Silent disables the alarm sound
	Silent bool
}

// Presenter shows the active event as a full-screen window. Present is meant
// to be the monitor's active event handler.
type Presenter struct {
	app     fyne.App
	actions Actions
	config  func() models.Config
	sound   []byte
	silent  bool

	mu      sync.Mutex
	current *overlayWindow
}

// NewPresenter creates a Presenter
func NewPresenter(opts Options) *Presenter {
	if opts.Config == nil {
		opts.Config = func() models.Config { return *models.DefaultConfig() }
	}
	if opts.Sound == nil {
		opts.Sound = audio.Chime()
	}

	return &Presenter{
		app:     opts.App,
		actions: opts.Actions,
		config:  opts.Config,
		sound:   opts.Sound,
		silent:  opts.Silent,
	}
}

// SetActions sets the receiver of button presses. Used when the presenter has
// to exist before the monitor it reports to.
func (p *Presenter) SetActions(actions Actions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.actions = actions
}

// Present replaces the current overlay with one for event, or closes it when
// event is nil. It never blocks on the UI thread.
func (p *Presenter) Present(event *models.Event) {
	p.mu.Lock()
	prev := p.current
	p.current = nil

	var next *overlayWindow
	if event != nil {
		cfg := p.config()
		next = &overlayWindow{
			app:           p.app,
			event:         *event,
			actions:       p.actions,
			snoozeMinutes: cfg.SnoozeTime,
			holdDuration:  time.Duration(max(cfg.HoldTimeSeconds, 0)) * time.Second,
			stop:          make(chan struct{}),
		}
		p.current = next
	}
	p.mu.Unlock()

	if prev != nil {
		prev.close()
	}

	if next == nil {
		log.Println("[OVERLAY] Closed")
		return
	}

	log.Printf("[OVERLAY] Showing \"%s\"", event.Title)
	next.open()
	if !p.silent {
		next.startSound(p.sound)
	}
}

// Close tears down any open overlay, e.g. on quit
func (p *Presenter) Close() {
	p.mu.Lock()
	prev := p.current
	p.current = nil
	p.mu.Unlock()

	if prev != nil {
		prev.close()
	}
}

// Showing returns the id of the event on screen
func (p *Presenter) Showing() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return "", false
	}
	return p.current.event.ID, true
}
