package components

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const holdTick = 50 * time.Millisecond

// HoldButton is a button that only fires after being held down for
// HoldDuration. Releasing or leaving the button early resets it.
type HoldButton struct {
	widget.BaseWidget
	Text         string
	HoldDuration time.Duration
	OnConfirmed  func()
	// Compact shrinks the minimum size for rows of several buttons
	Compact bool

	mu       sync.Mutex
	holding  bool
	hovered  bool
	progress float64
	hold     uint64 // bumped on every press and release
}

// NewHoldButton creates a new HoldButton
func NewHoldButton(text string, holdDuration time.Duration, onConfirmed func()) *HoldButton {
	b := &HoldButton{
		Text:         text,
		HoldDuration: holdDuration,
		OnConfirmed:  onConfirmed,
	}
	b.ExtendBaseWidget(b)
	return b
}

// CreateRenderer implements fyne.Widget
func (b *HoldButton) CreateRenderer() fyne.WidgetRenderer {
	text := canvas.NewText(b.Text, theme.Color(theme.ColorNameForeground))
	text.Alignment = fyne.TextAlignCenter
	text.TextStyle = fyne.TextStyle{Bold: true}

	bg := canvas.NewRectangle(theme.Color(theme.ColorNameButton))
	progressBar := canvas.NewRectangle(theme.Color(theme.ColorNamePrimary))

	return &holdButtonRenderer{
		button:      b,
		text:        text,
		bg:          bg,
		progressBar: progressBar,
	}
}

// Progress returns how far the current hold has got, from 0 to 1
func (b *HoldButton) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

func (b *HoldButton) setProgress(hold uint64, progress float64) {
	b.mu.Lock()
	if hold != b.hold {
		b.mu.Unlock()
		return
	}
	b.progress = progress
	b.mu.Unlock()

	b.Refresh()
}

// Tapped implements fyne.Tappable
func (b *HoldButton) Tapped(*fyne.PointEvent) {}

// TappedSecondary implements fyne.SecondaryTappable
func (b *HoldButton) TappedSecondary(*fyne.PointEvent) {}

// MouseIn implements desktop.Hoverable
func (b *HoldButton) MouseIn(*desktop.MouseEvent) {
	b.mu.Lock()
	b.hovered = true
	b.mu.Unlock()
	b.Refresh()
}

// MouseMoved implements desktop.Hoverable
func (b *HoldButton) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable
func (b *HoldButton) MouseOut() {
	b.mu.Lock()
	b.hovered = false
	b.mu.Unlock()

	b.release()
}

// MouseDown implements desktop.Mouseable
func (b *HoldButton) MouseDown(*desktop.MouseEvent) {
	b.mu.Lock()
	if b.holding {
		b.mu.Unlock()
		return
	}
	b.holding = true
	b.hold++
	b.progress = 0
	hold := b.hold
	b.mu.Unlock()

	b.Refresh()
	go b.track(hold, time.Now())
}

// MouseUp implements desktop.Mouseable
func (b *HoldButton) MouseUp(*desktop.MouseEvent) {
	b.release()
}

func (b *HoldButton) release() {
	b.mu.Lock()
	if !b.holding {
		b.mu.Unlock()
		return
	}
	b.holding = false
	b.hold++
	b.progress = 0
	b.mu.Unlock()

	b.Refresh()
}

// track advances the progress bar until the hold completes or is abandoned
func (b *HoldButton) track(hold uint64, started time.Time) {
	ticker := time.NewTicker(holdTick)
	defer ticker.Stop()

	for range ticker.C {
		b.mu.Lock()
		if hold != b.hold {
			b.mu.Unlock()
			return
		}
		progress := 1.0
		if b.HoldDuration > 0 {
			progress = min(1.0, float64(time.Since(started))/float64(b.HoldDuration))
		}
		done := progress >= 1.0
		if done {
			b.holding = false
			b.hold++
			b.progress = 0
		}
		b.mu.Unlock()

		if done {
			fyne.Do(b.Refresh)
			if b.OnConfirmed != nil {
				b.OnConfirmed()
			}
			return
		}

		fyne.Do(func() { b.setProgress(hold, progress) })
	}
}

type holdButtonRenderer struct {
	button      *HoldButton
	text        *canvas.Text
	bg          *canvas.Rectangle
	progressBar *canvas.Rectangle
}

func (r *holdButtonRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.text.Resize(size)

	// Progress bar fills from left to right
	progressWidth := size.Width * float32(r.button.Progress())
	r.progressBar.Resize(fyne.NewSize(progressWidth, size.Height))
	r.progressBar.Move(fyne.NewPos(0, 0))
}

func (r *holdButtonRenderer) MinSize() fyne.Size {
	textSize := r.text.MinSize()
	width, height := float32(300), float32(80)
	if r.button.Compact {
		width, height = 110, 44
	}
	minWidth := max(textSize.Width+theme.Padding()*4, width)
	minHeight := max(textSize.Height+theme.Padding()*2, height)

	return fyne.NewSize(minWidth, minHeight)
}

func (r *holdButtonRenderer) Refresh() {
	r.button.mu.Lock()
	hovered := r.button.hovered
	r.button.mu.Unlock()

	r.text.Text = r.button.Text
	r.text.Color = theme.Color(theme.ColorNameForeground)

	if hovered {
		r.bg.FillColor = theme.Color(theme.ColorNameHover)
	} else {
		r.bg.FillColor = theme.Color(theme.ColorNameButton)
	}

	size := r.bg.Size()
	progressWidth := size.Width * float32(r.button.Progress())
	r.progressBar.Resize(fyne.NewSize(progressWidth, size.Height))

	r.bg.Refresh()
	r.progressBar.Refresh()
	r.text.Refresh()
}

func (r *holdButtonRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.progressBar, r.text}
}

func (r *holdButtonRenderer) Destroy() {}

func (r *holdButtonRenderer) BackgroundColor() color.Color {
	return theme.Color(theme.ColorNameButton)
}
