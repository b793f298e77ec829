package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/borgmon/calendar-overlay/pkg/calendar"
	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/borgmon/calendar-overlay/pkg/monitor"
	"github.com/borgmon/calendar-overlay/pkg/platform"
	"github.com/borgmon/calendar-overlay/pkg/store"
	"github.com/borgmon/calendar-overlay/pkg/ui/overlay"
)

const appID = "com.borgmon.calendar-overlay"

type CalendarOverlay struct {
	app         fyne.App
	configStore *store.ConfigStore
	calendars   *calendar.Service
	monitor     *monitor.Monitor
	presenter   *overlay.Presenter
	syncTicker  *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.RWMutex
	config       *models.Config
	upcoming     []models.ScheduledFire
	accessDenied bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	co := &CalendarOverlay{
		app: app.NewWithID(appID),
	}

	if err := co.initialize(opts); err != nil {
		log.Fatal(err)
	}

	co.run()
}

func (co *CalendarOverlay) initialize(opts *options) error {
	co.ctx, co.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	co.configStore = store.NewConfigStore(co.app)
	co.config = co.configStore.Load()
	if opts.apply(co.config) {
		log.Println("Settings updated from command line")
	}

	// Sync autostart state with config on startup
	if err := platform.SetupAutostart(co.config.AutoStart); err != nil {
		log.Printf("Warning: failed to setup autostart: %v", err)
	}

	co.configStore.Save(co.config)

	co.calendars = calendar.NewService(nil)
	co.calendars.Configure(co.config.ICalSources, co.config.NotifyUnaccepted)

	co.presenter = overlay.NewPresenter(overlay.Options{
		App:    co.app,
		Config: co.configSnapshot,
	})

	co.monitor = monitor.New(monitor.Options{
		Source:               co.calendars,
		Config:               co.configSnapshot,
		OnActiveEventChanged: co.onActiveEventChanged,
		OnScheduleChanged:    co.onScheduleChanged,
	})
	co.presenter.SetActions(co.monitor)

	// Fresh downloads are evaluated right away
	co.calendars.SetOnSynced(co.monitor.Poll)

	co.setupSystemTray()

	if co.config.NeedsConfiguration() {
		log.Println("No iCal sources configured, add one with -ical NAME=URL")
	}

	go co.startMonitor()
	co.startBackgroundSync()

	go func() {
		<-co.ctx.Done()
		fyne.Do(co.quit)
	}()

	return nil
}

func (co *CalendarOverlay) run() {
	co.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
	})
	co.app.Run()
}

func (co *CalendarOverlay) configSnapshot() models.Config {
	co.mu.RLock()
	defer co.mu.RUnlock()
	return co.config.Clone()
}

func (co *CalendarOverlay) updateConfig(update func(cfg *models.Config)) {
	co.mu.Lock()
	update(co.config)
	co.configStore.Save(co.config)
	co.mu.Unlock()
}

// startMonitor starts the scheduler. Start downloads every feed first, so it
// can take a while. A denied start is retried on the next sync.
func (co *CalendarOverlay) startMonitor() {
	err := co.monitor.Start(co.ctx)
	if err != nil {
		log.Printf("Alarms are disabled: %v", err)
	}

	co.mu.Lock()
	co.accessDenied = errors.Is(err, monitor.ErrAccessDenied)
	co.mu.Unlock()

	co.refreshTray()
}

// syncNow re-downloads the feeds, retrying the scheduler start when access
// was refused earlier
func (co *CalendarOverlay) syncNow() {
	if !co.monitor.Running() {
		co.startMonitor()
		return
	}
	co.monitor.Sync()
}

func (co *CalendarOverlay) startBackgroundSync() {
	interval := time.Duration(max(co.configSnapshot().UpdateInterval, 1)) * time.Minute
	co.syncTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-co.ctx.Done():
				return
			case <-co.syncTicker.C:
				if co.monitor.Running() {
					co.calendars.RefreshSources()
				} else {
					co.startMonitor()
				}
			}
		}
	}()
}

// onActiveEventChanged runs under the monitor's lock
func (co *CalendarOverlay) onActiveEventChanged(event *models.Event) {
	co.presenter.Present(event)
	co.refreshTray()
}

// onScheduleChanged runs under the monitor's lock
func (co *CalendarOverlay) onScheduleChanged(fires []models.ScheduledFire) {
	co.mu.Lock()
	co.upcoming = fires
	co.mu.Unlock()

	co.refreshTray()
}

func (co *CalendarOverlay) refreshTray() {
	fyne.Do(co.updateSystemTrayMenu)
}

func (co *CalendarOverlay) quit() {
	log.Println("Shutting down")

	if co.syncTicker != nil {
		co.syncTicker.Stop()
	}
	co.cancel()
	co.monitor.Stop()
	co.presenter.Close()
	co.app.Quit()
}
