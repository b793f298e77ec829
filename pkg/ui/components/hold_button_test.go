package components

import (
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestHoldButtonConfirmsAfterHold(t *testing.T) {
	test.NewApp()

	var confirmed atomic.Int32
	b := NewHoldButton("Dismiss", 100*time.Millisecond, func() { confirmed.Add(1) })

	b.MouseDown(&desktop.MouseEvent{})

	assert.Eventually(t, func() bool { return confirmed.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, b.Progress())

	// A finished hold does not fire again on release
	b.MouseUp(&desktop.MouseEvent{})
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), confirmed.Load())
}

func TestHoldButtonReleaseCancels(t *testing.T) {
	test.NewApp()

	var confirmed atomic.Int32
	b := NewHoldButton("Snooze", 200*time.Millisecond, func() { confirmed.Add(1) })

	b.MouseDown(&desktop.MouseEvent{})
	b.MouseUp(&desktop.MouseEvent{})

	time.Sleep(350 * time.Millisecond)
	assert.Zero(t, confirmed.Load())
	assert.Zero(t, b.Progress())
}

func TestHoldButtonMouseOutCancels(t *testing.T) {
	test.NewApp()

	var confirmed atomic.Int32
	b := NewHoldButton("Snooze", 200*time.Millisecond, func() { confirmed.Add(1) })

	b.MouseIn(&desktop.MouseEvent{})
	b.MouseDown(&desktop.MouseEvent{})
	b.MouseOut()

	time.Sleep(350 * time.Millisecond)
	assert.Zero(t, confirmed.Load())
}

func TestHoldButtonProgressAdvances(t *testing.T) {
	test.NewApp()

	b := NewHoldButton("Dismiss", time.Second, nil)
	b.MouseDown(&desktop.MouseEvent{})
	defer b.MouseUp(&desktop.MouseEvent{})

	assert.Eventually(t, func() bool { return b.Progress() > 0 }, 500*time.Millisecond, 10*time.Millisecond)
	assert.Less(t, b.Progress(), 1.0)
}
