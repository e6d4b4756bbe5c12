// Package window mirrors a trellis display into a desktop window and turns
// key presses into button events.
package window

import (
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/trellis"
)

// DefaultKeys maps keyboard keys to buttons.
var DefaultKeys = map[ebiten.Key]trellis.Button{
	ebiten.KeyArrowLeft:  trellis.ButtonLeft,
	ebiten.KeyArrowRight: trellis.ButtonRight,
	ebiten.KeyArrowUp:    trellis.ButtonUp,
	ebiten.KeyArrowDown:  trellis.ButtonDown,
	ebiten.KeyEnter:      trellis.ButtonOK,
	ebiten.KeySpace:      trellis.ButtonOK,
	ebiten.KeyEscape:     trellis.ButtonCancel,
	ebiten.KeyBackspace:  trellis.ButtonCancel,
	ebiten.KeyM:          trellis.ButtonMenu,
	ebiten.KeyTab:        trellis.ButtonMenu,
}

// Config configures the window.
type Config struct {
	Title string
	Scale int                          // integer zoom, 0 = 2
	Keys  map[ebiten.Key]trellis.Button // nil = DefaultKeys
}

// Window is an ebiten game that shows the display's frames. It is a
// trellis.Sink: register it with Display.AddSink and call Run on the main
// goroutine.
type Window struct {
	display *trellis.Display
	title   string
	scale   int
	keys    map[ebiten.Key]trellis.Button
	size    trellis.Size

	mu    sync.Mutex
	frame []byte
	fresh bool
	img   *ebiten.Image

	closed bool
}

// New creates a window for d.
func New(d *trellis.Display, cfg Config) *Window {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.Keys == nil {
		cfg.Keys = DefaultKeys
	}
	if cfg.Title == "" {
		cfg.Title = "trellis"
	}
	return &Window{
		display: d,
		title:   cfg.Title,
		scale:   cfg.Scale,
		keys:    cfg.Keys,
		size:    d.Size(),
	}
}

// Name implements trellis.Sink.
func (w *Window) Name() string { return "window" }

// Publish implements trellis.Sink. It copies the frame; the window thread
// uploads it on its next Draw.
func (w *Window) Publish(frame *image.RGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return trellis.ErrSinkClosed
	}
	if len(w.frame) != len(frame.Pix) {
		w.frame = make([]byte, len(frame.Pix))
	}
	copy(w.frame, frame.Pix)
	w.fresh = true
	return nil
}

// Update implements ebiten.Game. Key transitions become button events.
func (w *Window) Update() error {
	for key, b := range w.keys {
		if inpututil.IsKeyJustPressed(key) {
			w.display.ButtonDown(b)
		}
		if inpututil.IsKeyJustReleased(key) {
			w.display.ButtonUp(b)
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || ebiten.IsWindowBeingClosed() {
		w.closed = true
		return ebiten.Termination
	}
	return nil
}

// Close makes Run return on the next update. Later publishes fail with
// trellis.ErrSinkClosed.
func (w *Window) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	if w.img == nil {
		w.img = ebiten.NewImage(w.size.Width, w.size.Height)
	}
	if w.fresh && len(w.frame) == 4*w.size.Width*w.size.Height {
		w.img.WritePixels(w.frame)
		w.fresh = false
	}
	w.mu.Unlock()

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.img, &op)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(_, _ int) (int, int) {
	return w.size.Width * w.scale, w.size.Height * w.scale
}

// Run opens the window and blocks until it is closed. It must be called on
// the main goroutine. Closing the window returns nil.
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.size.Width*w.scale, w.size.Height*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(w)
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
