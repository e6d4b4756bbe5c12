package trellis

import (
	"image"
	"math"
	"time"
)

// Orientation is the axis of a line widget.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// lineThickness is the preferred cross-axis size of a line widget. The line
// itself is one pixel drawn in the middle.
const lineThickness = 3

// NewLine creates a separator spanning the parent along the given axis.
func NewLine(parent *Widget, name string, o Orientation) *Widget {
	mustParent(parent, "line")
	w := newWidget(parent, KindLine, name)
	w.line = o
	w.place()
	return w
}

func (w *Widget) linePreferredSize() Size {
	var ps Size
	if w.parent != nil {
		ps = w.parent.rect.Size()
	}
	if w.line == Vertical {
		return Size{lineThickness, ps.Height}
	}
	return Size{ps.Width, lineThickness}
}

func (w *Widget) paintLine(s *Surface) {
	size := s.Size()
	if w.line == Vertical {
		s.FillRect(Rect{X: size.Width / 2, Width: 1, Height: size.Height}, w.foreground)
		return
	}
	s.FillRect(Rect{Y: size.Height / 2, Width: size.Width, Height: 1}, w.foreground)
}

// --- Bar ---

// BarDirection is the direction in which a bar grows.
type BarDirection uint8

const (
	BarLeftToRight BarDirection = iota
	BarRightToLeft
	BarBottomToTop
	BarTopToBottom
)

// BarSegment is one stacked value of a bar. A zero Color falls back to the
// widget's foreground.
type BarSegment struct {
	Value float64
	Color Color
}

// BarStyle configures the frame of a bar.
type BarStyle struct {
	Direction    BarDirection
	Border       Color // zero = no border
	BorderWidth  float64
	CornerRadius float64
	// Max is the full-scale value. Zero scales to the sum of the segments.
	Max float64
}

type barState struct {
	style    BarStyle
	segments []BarSegment
	natural  Size
}

// NewBar creates a segmented bar with the given natural size.
func NewBar(parent *Widget, name string, natural Size, style BarStyle) *Widget {
	mustParent(parent, "bar")
	w := newWidget(parent, KindBar, name)
	w.bar = &barState{style: style, natural: natural}
	w.place()
	return w
}

// BarValues returns a copy of the bar's segments.
func (w *Widget) BarValues() []BarSegment {
	w.mustKind(KindBar, "BarValues")
	return append([]BarSegment(nil), w.bar.segments...)
}

// SetBarValues replaces the bar's segments.
func (w *Widget) SetBarValues(segments ...BarSegment) {
	w.mustKind(KindBar, "SetBarValues")
	if equalSegments(w.bar.segments, segments) {
		return
	}
	w.bar.segments = append(w.bar.segments[:0], segments...)
	w.SetDirty()
}

// SetBarStyle replaces the bar's style.
func (w *Widget) SetBarStyle(style BarStyle) {
	w.mustKind(KindBar, "SetBarStyle")
	if w.bar.style == style {
		return
	}
	w.bar.style = style
	w.SetDirty()
}

func equalSegments(a, b []BarSegment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (w *Widget) paintBar(s *Surface) {
	st := w.bar.style
	bounds := s.Bounds()
	if st.CornerRadius > 0 {
		s.ClipRoundedRect(bounds, st.CornerRadius)
	}
	total := st.Max
	if total <= 0 {
		for _, seg := range w.bar.segments {
			total += max(seg.Value, 0)
		}
	}
	if total > 0 {
		horizontal := st.Direction == BarLeftToRight || st.Direction == BarRightToLeft
		length := bounds.Height
		if horizontal {
			length = bounds.Width
		}
		offset := 0.0
		for _, seg := range w.bar.segments {
			if seg.Value <= 0 {
				continue
			}
			c := seg.Color
			if c == (Color{}) {
				c = w.foreground
			}
			from := int(math.Round(offset / total * float64(length)))
			offset += seg.Value
			to := int(math.Round(min(offset, total) / total * float64(length)))
			if to <= from {
				continue
			}
			s.FillRect(barSpan(st.Direction, bounds, from, to), c)
		}
	}
	if st.Border != (Color{}) && st.BorderWidth > 0 {
		s.StrokeRect(bounds, st.BorderWidth, st.CornerRadius, st.Border)
	}
}

// barSpan maps the [from, to) pixel span along the bar axis to a rect.
func barSpan(d BarDirection, b Rect, from, to int) Rect {
	switch d {
	case BarRightToLeft:
		return Rect{X: b.Width - to, Width: to - from, Height: b.Height}
	case BarBottomToTop:
		return Rect{Y: b.Height - to, Width: b.Width, Height: to - from}
	case BarTopToBottom:
		return Rect{Y: from, Width: b.Width, Height: to - from}
	default:
		return Rect{X: from, Width: to - from, Height: b.Height}
	}
}

// --- Analog clock ---

const clockSize = 100

// NewClock creates an analog clock face repainted every second.
func NewClock(parent *Widget, name string) *Widget {
	mustParent(parent, "clock")
	w := newWidget(parent, KindClock, name)
	w.place()
	w.RepaintEvery(time.Second)
	return w
}

// RepaintEvery marks the widget dirty on every tick of the context
// scheduler. It returns the task handle so the caller can cancel it.
func (w *Widget) RepaintEvery(interval time.Duration) TaskHandle {
	return w.ctx.Scheduler.Schedule(interval, func() {
		w.ctx.Do(w.SetDirty)
	})
}

func (w *Widget) paintClock(s *Surface) {
	size := s.Size()
	cx, cy := float64(size.Width)/2, float64(size.Height)/2
	r := math.Min(cx, cy) - 1
	if r <= 0 {
		return
	}
	fg := w.foreground
	s.Circle(cx, cy, r, 1, fg)
	for i := 0; i < 12; i++ {
		a := float64(i) * math.Pi / 6
		inner := r * 0.85
		if i%3 == 0 {
			inner = r * 0.75
		}
		s.Line(cx+inner*math.Sin(a), cy-inner*math.Cos(a), cx+r*math.Sin(a), cy-r*math.Cos(a), 1, fg)
	}

	now := w.ctx.now()
	sec := float64(now.Second())
	mins := float64(now.Minute()) + sec/60
	hours := float64(now.Hour()%12) + mins/60
	hand := func(frac, length, width float64) {
		a := frac * 2 * math.Pi
		s.Line(cx, cy, cx+length*math.Sin(a), cy-length*math.Cos(a), width, fg)
	}
	hand(hours/12, r*0.5, 3)
	hand(mins/60, r*0.75, 2)
	hand(sec/60, r*0.9, 1)
	s.FillCircle(cx, cy, 2, fg)
}

// --- Image ---

// NewImage creates a widget showing img scaled to fit, keeping the aspect
// ratio. img may be nil and set later.
func NewImage(parent *Widget, name string, img image.Image) *Widget {
	mustParent(parent, "image widget")
	w := newWidget(parent, KindImage, name)
	w.image = img
	w.place()
	return w
}

// Image returns the image shown by an image widget.
func (w *Widget) Image() image.Image {
	w.mustKind(KindImage, "Image")
	return w.image
}

// SetImage replaces the image of an image widget.
func (w *Widget) SetImage(img image.Image) {
	w.mustKind(KindImage, "SetImage")
	if w.image == img {
		return
	}
	w.image = img
	w.SetDirty()
}

func (w *Widget) paintImage(s *Surface) {
	if w.image == nil {
		return
	}
	b := w.image.Bounds()
	if b.Empty() {
		return
	}
	size := s.Size()
	scale := math.Min(float64(size.Width)/float64(b.Dx()), float64(size.Height)/float64(b.Dy()))
	dw, dh := float64(b.Dx())*scale, float64(b.Dy())*scale
	x := (float64(size.Width) - dw) / 2
	y := (float64(size.Height) - dh) / 2
	s.Image(w.image, x-float64(b.Min.X)*scale, y-float64(b.Min.Y)*scale, scale, scale)
}
