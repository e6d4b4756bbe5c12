package trellis

import (
	"image"
	"io"
	"log/slog"
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDisplay returns a display driven by a manual scheduler whose clock
// also feeds the widgets.
func newTestDisplay(t *testing.T) (*Display, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler(testEpoch)
	d := NewDisplay(DisplayConfig{
		Scheduler: sched,
		Logger:    discardLogger(),
		Now:       sched.Now,
	})
	return d, sched
}

// newTestRoot returns a standalone 320x240 root with a manual scheduler.
func newTestRoot(t *testing.T) *Widget {
	t.Helper()
	ctx := NewContext(NewManualScheduler(testEpoch), discardLogger())
	return NewRootContainer(ctx, "root", Size{DefaultWidth, DefaultHeight})
}

func newTestSurface(size Size) (*Surface, *image.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	return NewSurface(img), img
}

// paintAll paints a standalone root into a fresh buffer.
func paintAll(t *testing.T, root *Widget) *image.RGBA {
	t.Helper()
	s, img := newTestSurface(root.Size())
	root.Paint(s)
	return img
}

// countingWidget is a custom widget that counts its paints.
func countingWidget(parent *Widget, name string, r Rect, count *int) *Widget {
	w := NewCustom(parent, name, func(*Widget, *Surface) { *count++ })
	w.SetRect(r)
	return w
}

func mustPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("%s: expected panic", what)
		}
	}()
	fn()
}
