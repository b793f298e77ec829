package monitor

import "time"

// wakeup owns the single fine-grained timer. Every arm invalidates the
// previous token, so an expiry that raced with a rearm is recognised as
// stale and ignored.
type wakeup struct {
	clock Clock
	timer Timer
	token uint64
	at    time.Time
	armed bool
}

// arm cancels any pending timer and schedules fire(token) at the given instant
func (w *wakeup) arm(at time.Time, fire func(token uint64)) {
	w.cancel()

	w.token++
	token := w.token
	delay := at.Sub(w.clock.Now())
	if delay < 0 {
		delay = 0
	}

	w.at = at
	w.armed = true
	w.timer = w.clock.AfterFunc(delay, func() { fire(token) })
}

// cancel stops the pending timer, if any, and invalidates its token
func (w *wakeup) cancel() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.token++
	w.armed = false
	w.at = time.Time{}
}

// current reports whether token belongs to the timer that is still armed
func (w *wakeup) current(token uint64) bool {
	return w.armed && token == w.token
}

// next returns the instant the timer is armed for
func (w *wakeup) next() (time.Time, bool) {
	return w.at, w.armed
}
