package trellis

import (
	"fmt"
	"time"
)

// NewStatsOverlay creates a small overlay in the top-right corner of parent
// showing frames painted per second and the last paint duration. It is
// refreshed every interval and painted on top of its siblings.
func NewStatsOverlay(parent *Widget, interval time.Duration) *Widget {
	mustParent(parent, "stats overlay")
	d := parent.ctx.Display()
	if d == nil {
		panic("trellis: stats overlay needs a display")
	}
	w := NewText(parent, "stats", "fps: -", Font{Family: FontMono, Size: 10})
	// Overlays repaint over their own last frame, so the fill is opaque.
	w.SetColors(ColorBlack, ColorYellow)
	w.SetLayer(LayerOverlay + 1)
	w.SetAlign(HAlignRight, VAlignTop)
	w.SetRectAt(parent.rect.Size().Position(AnchorTopRight), Size{96, 24})

	var lastFrames uint64
	var last time.Time
	w.setRefresh(interval, func() {
		d.Update(func() {
			now := time.Now()
			st := d.stats
			if !last.IsZero() {
				fps := float64(st.Frames-lastFrames) / now.Sub(last).Seconds()
				w.SetText(fmt.Sprintf("fps: %.1f\npaint: %s", fps, st.PaintTime.Round(10*time.Microsecond)))
			}
			lastFrames, last = st.Frames, now
		})
	})
	return w
}
