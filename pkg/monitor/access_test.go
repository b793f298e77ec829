package monitor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/borgmon/calendar-overlay/pkg/calendar"
	"github.com/borgmon/calendar-overlay/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icalFeed(uid string, start time.Time) string {
	const layout = "20060102T150405Z"
	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//calendar-overlay//test//EN",
		"BEGIN:VEVENT",
		"DTSTAMP:" + start.UTC().Format(layout),
		"UID:" + uid,
		"SUMMARY:Standup",
		"DTSTART:" + start.UTC().Format(layout),
		"DTEND:" + start.Add(30*time.Minute).UTC().Format(layout),
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"
}

func TestDeniedFeedFiresNothingUntilStarted(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusUnauthorized)

	// Started a few seconds ago, so the at-start alarm is inside the due window
	body := icalFeed("e1", time.Now().Add(-5*time.Second).Truncate(time.Second))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	svc := calendar.NewService(nil)
	svc.Configure([]models.ICalSource{{ID: "work", Name: "Work", URL: server.URL}}, false)

	cfg := *models.DefaultConfig()
	cfg.SelectedCalendarIDs = []string{"work"}
	cfg.Reminders = models.ReminderConfig{AtStartEnabled: true}

	var mu sync.Mutex
	var shown []string
	m := New(Options{
		Source: svc,
		Config: func() models.Config { return cfg },
		OnActiveEventChanged: func(event *models.Event) {
			if event == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			shown = append(shown, event.ID)
		},
	})
	svc.SetOnSynced(m.Poll)
	t.Cleanup(m.Stop)

	ctx := context.Background()
	require.ErrorIs(t, m.Start(ctx), ErrAccessDenied)
	assert.False(t, m.Running())

	// The feed recovers; a background sync alone must not fire anything
	status.Store(http.StatusOK)
	require.NoError(t, svc.Sync(ctx))

	_, active := m.ActiveEvent()
	assert.False(t, active)
	_, armed := m.NextWakeup()
	assert.False(t, armed)
	assert.Zero(t, m.FiredCount())

	require.NoError(t, m.Start(ctx))
	assert.True(t, m.Running())

	mu.Lock()
	assert.Equal(t, []string{"e1"}, shown)
	mu.Unlock()
}
