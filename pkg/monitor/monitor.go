package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/alarm"
	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/borgmon/calendar-overlay/pkg/queue"
	"github.com/borgmon/calendar-overlay/pkg/store"
	"github.com/google/uuid"
)

const (
	// DueWindow is how far in the past a fire time may be and still fire.
	// Older fire times are dropped for good.
	DueWindow = 60 * time.Second
	// DriftTolerance lets the fine timer collect fires due just after it woke up
	DriftTolerance = time.Second

	DefaultLookAhead       = 24 * time.Hour
	DefaultRefreshInterval = 60 * time.Second
)

// ErrAccessDenied is returned by Start when the calendar source refuses access
var ErrAccessDenied = errors.New("monitor: calendar access not granted")

// CalendarSource yields the events alarms are computed from
type CalendarSource interface {
	RequestAccess(ctx context.Context) bool
	// Events returns events from the given calendars overlapping window.
	// An empty calendar list returns nothing.
	Events(calendarIDs []string, window models.TimeRange) []models.Event
	// RefreshSources asks the source to pick up remote changes in the background
	RefreshSources()
}

// Options configures a Monitor
type Options struct {
	Source CalendarSource
	// Config returns a snapshot of the current settings; read once per pass
	Config func() models.Config
	Clock  Clock

	// OnActiveEventChanged receives the new active event, or nil when the
	// overlay should close. It runs while the monitor is locked and must not
	// call back into the monitor synchronously.
	OnActiveEventChanged func(event *models.Event)
	// OnScheduleChanged receives the pending fires after they change. Same
	// locking rule as OnActiveEventChanged.
	OnScheduleChanged func(fires []models.ScheduledFire)

	RefreshInterval time.Duration
	LookAhead       time.Duration
}

// Monitor turns calendar events into alarms. A coarse ticker re-evaluates
// everything periodically and a single fine timer wakes up for the next
// pending fire or snooze.
type Monitor struct {
	mu sync.Mutex

	source          CalendarSource
	config          func() models.Config
	clock           Clock
	refreshInterval time.Duration
	lookAhead       time.Duration
	onActive        func(*models.Event)
	onSchedule      func([]models.ScheduledFire)

	ledger  *store.AlarmLedger
	snoozes *queue.SnoozeQueue
	display *queue.DisplayQueue
	fires   []models.ScheduledFire
	wake    wakeup

	running bool
	// denied is set while the last Start was refused; nothing is evaluated
	denied bool
	// stopped is set once a started monitor ends; the wake-up stays disarmed
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a monitor. It does nothing until Start or Poll is called.
func New(opts Options) *Monitor {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Config == nil {
		opts.Config = func() models.Config { return *models.DefaultConfig() }
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.LookAhead <= 0 {
		opts.LookAhead = DefaultLookAhead
	}

	return &Monitor{
		source:          opts.Source,
		config:          opts.Config,
		clock:           opts.Clock,
		refreshInterval: opts.RefreshInterval,
		lookAhead:       opts.LookAhead,
		onActive:        opts.OnActiveEventChanged,
		onSchedule:      opts.OnScheduleChanged,
		ledger:          store.NewAlarmLedger(),
		snoozes:         queue.NewSnoozeQueue(),
		display:         queue.NewDisplayQueue(),
		wake:            wakeup{clock: opts.Clock},
	}
}

// Start requests calendar access and, if granted, runs a first pass and
// starts the periodic re-evaluation. The loop ends on Stop or when ctx is
// cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if !m.source.RequestAccess(ctx) {
		m.mu.Lock()
		m.denied = true
		m.wake.cancel()
		m.mu.Unlock()

		log.Println("[MONITOR] Calendar access not granted, alarms disabled")
		return ErrAccessDenied
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.denied = false
	m.stopped = false
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	log.Printf("[MONITOR] Started, re-evaluating every %s", m.refreshInterval)
	m.Poll()
	go m.refreshLoop(ctx, stopCh, doneCh)

	return nil
}

// Stop ends the periodic re-evaluation and cancels the pending wake-up
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.stopped = true
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	<-doneCh

	m.mu.Lock()
	m.wake.cancel()
	m.mu.Unlock()

	log.Println("[MONITOR] Stopped")
}

func (m *Monitor) refreshLoop(ctx context.Context, stopCh chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer m.loopExited(stopCh)

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll()
		}
	}
}

// loopExited marks the monitor stopped when the loop ends on its own, so a
// later Start begins a fresh loop
func (m *Monitor) loopExited(stopCh chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopCh != stopCh || !m.running {
		return
	}
	m.running = false
	m.stopped = true
	m.wake.cancel()
	log.Println("[MONITOR] Context cancelled, stopped")
}

// Poll runs one full evaluation pass. It does nothing while calendar access
// is denied.
func (m *Monitor) Poll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.denied {
		return
	}

	now := m.clock.Now()
	cfg := m.config()

	// Snoozes resolve even when no calendar is selected
	m.resolveSnoozes(now)

	if len(cfg.SelectedCalendarIDs) == 0 {
		m.rearm()
		return
	}

	window := models.TimeRange{Start: now, End: now.Add(m.lookAhead)}
	events := m.source.Events(cfg.SelectedCalendarIDs, window)

	visible := make(map[string]struct{}, len(events))
	for _, event := range events {
		visible[event.ID] = struct{}{}
	}
	if pruned := m.ledger.Prune(visible); pruned > 0 {
		log.Printf("[ALARM] Forgot %d fired alarms for events no longer visible", pruned)
	}

	future := make([]models.ScheduledFire, 0)
	fired, missed := 0, 0

	for _, event := range events {
		for _, c := range alarm.Derive(event, cfg.Reminders) {
			if m.ledger.HasFired(c.Key) {
				continue
			}

			switch {
			case c.FireTime.After(now):
				future = append(future, models.ScheduledFire{Key: c.Key, FireTime: c.FireTime, Event: event})
			case now.Sub(c.FireTime) < DueWindow:
				m.ledger.MarkFired(c.Key)
				log.Printf("[ALARM] Firing %s for \"%s\"", c.Key, event.Title)
				m.enqueue(event)
				fired++
			default:
				missed++
			}
		}
	}

	alarm.SortFires(future)
	m.fires = future

	if fired > 0 || missed > 0 {
		log.Printf("[ALARM] Pass: %d events, %d fired, %d scheduled, %d missed",
			len(events), fired, len(future), missed)
	}

	m.rearm()
	m.notifySchedule()
}

// handleFire runs when the fine timer expires
func (m *Monitor) handleFire(token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.wake.current(token) || m.denied {
		return
	}

	now := m.clock.Now()
	m.resolveSnoozes(now)

	deadline := now.Add(DriftTolerance)
	drained := 0
	for len(m.fires) > 0 && !m.fires[0].FireTime.After(deadline) {
		fire := m.fires[0]
		m.fires = m.fires[1:]
		drained++

		if m.ledger.HasFired(fire.Key) {
			continue
		}
		m.ledger.MarkFired(fire.Key)
		log.Printf("[ALARM] Firing %s for \"%s\"", fire.Key, fire.Event.Title)
		m.enqueue(fire.Event)
	}

	m.rearm()
	if drained > 0 {
		m.notifySchedule()
	}
}

// Sync asks the source to refresh and re-evaluates with what it has now
func (m *Monitor) Sync() {
	m.source.RefreshSources()
	m.Poll()
}

// Enqueue shows the event now, or after whatever is already shown
func (m *Monitor) Enqueue(event models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enqueue(event)
}

// TestOverlay enqueues a throwaway event so the overlay can be previewed
func (m *Monitor) TestOverlay() {
	now := m.clock.Now()
	m.Enqueue(models.Event{
		ID:            "test-" + uuid.New().String(),
		Title:         "Test Event",
		StartTime:     now,
		EndTime:       now.Add(time.Hour),
		CalendarLabel: "Test Calendar",
		CalendarColor: "#4D80FF",
	})
}

// Dismiss closes the active event and shows the next queued one
func (m *Monitor) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dismiss()
}

// Snooze brings the active event back after the given number of minutes,
// then behaves like Dismiss
func (m *Monitor) Snooze(minutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if active, ok := m.display.Active(); ok {
		if minutes < 0 {
			minutes = 0
		}
		fireTime := m.clock.Now().Add(time.Duration(minutes) * time.Minute)
		m.snoozes.Add(active, fireTime)
		log.Printf("[ALARM] Snoozed \"%s\" until %s", active.Title, fireTime.Format(time.RFC3339))
		m.rearm()
	}

	m.dismiss()
}

// ScheduledFires returns the pending fires in firing order
func (m *Monitor) ScheduledFires() []models.ScheduledFire {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ScheduledFire, len(m.fires))
	copy(out, m.fires)
	return out
}

// Snoozed returns the pending snoozes in firing order
func (m *Monitor) Snoozed() []models.SnoozedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snoozes.Entries()
}

// Running reports whether the periodic re-evaluation is active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// ActiveEvent returns the event currently presented
func (m *Monitor) ActiveEvent() (models.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.display.Active()
}

// PendingEvents returns the events waiting behind the active one
func (m *Monitor) PendingEvents() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.display.Pending()
}

// NextWakeup returns the instant the fine timer is armed for
func (m *Monitor) NextWakeup() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.wake.next()
}

// FiredCount returns how many alarm keys are remembered as fired
func (m *Monitor) FiredCount() int {
	return m.ledger.Len()
}

func (m *Monitor) resolveSnoozes(now time.Time) {
	for _, snoozed := range m.snoozes.PopDue(now) {
		log.Printf("[ALARM] Snooze over for \"%s\"", snoozed.Event.Title)
		m.enqueue(snoozed.Event)
	}
}

func (m *Monitor) rearm() {
	next, ok := m.nextFireTime()
	if !ok || m.stopped {
		m.wake.cancel()
		return
	}
	m.wake.arm(next, m.handleFire)
}

func (m *Monitor) nextFireTime() (time.Time, bool) {
	var next time.Time
	found := false

	if len(m.fires) > 0 {
		next = m.fires[0].FireTime
		found = true
	}
	if snooze, ok := m.snoozes.Next(); ok && (!found || snooze.Before(next)) {
		next = snooze
		found = true
	}

	return next, found
}

func (m *Monitor) enqueue(event models.Event) {
	if m.display.Enqueue(event) {
		m.notifyActive()
	}
}

func (m *Monitor) dismiss() {
	if m.display.Dismiss() {
		m.notifyActive()
	}
}

func (m *Monitor) notifyActive() {
	if m.onActive == nil {
		return
	}
	if active, ok := m.display.Active(); ok {
		m.onActive(&active)
		return
	}
	m.onActive(nil)
}

func (m *Monitor) notifySchedule() {
	if m.onSchedule == nil {
		return
	}
	fires := make([]models.ScheduledFire, len(m.fires))
	copy(fires, m.fires)
	m.onSchedule(fires)
}
