package trellis

import (
	"strings"
	"time"
)

// textBlock holds text content, formatting, and cached line layout.
type textBlock struct {
	content   string
	font      Font
	hAlign    HAlign
	vAlign    VAlign
	wrapWidth int // 0 = break only on newlines

	layoutDirty bool
	lines       []string
}

// NewText creates a text widget sized to its content and centered on parent.
func NewText(parent *Widget, name, content string, font Font) *Widget {
	mustParent(parent, "text widget")
	w := newWidget(parent, KindText, name)
	w.text = &textBlock{
		content:     content,
		font:        font,
		hAlign:      HAlignCenter,
		vAlign:      VAlignCenter,
		layoutDirty: true,
	}
	w.place()
	return w
}

// NewAutoText creates a text widget whose content is refreshed from supply
// every interval through the context scheduler. The update runs under the
// display frame lock. Refreshing stops while the widget is detached from
// its parent and resumes when it is added to a container again.
func NewAutoText(parent *Widget, name string, font Font, interval time.Duration, supply func() string) *Widget {
	w := NewText(parent, name, supply(), font)
	w.setRefresh(interval, func() {
		s := supply()
		w.ctx.Do(func() { w.SetText(s) })
	})
	return w
}

// refreshTask is a periodic task owned by a widget.
type refreshTask struct {
	interval time.Duration
	fn       func()
	handle   TaskHandle
}

func (w *Widget) setRefresh(interval time.Duration, fn func()) {
	w.stopRefresh()
	w.refresh = &refreshTask{interval: interval, fn: fn}
	if w.parent != nil {
		w.startRefresh()
	}
}

// Refreshing reports whether the widget's periodic refresh is scheduled.
func (w *Widget) Refreshing() bool { return w.refresh != nil && w.refresh.handle != 0 }

func (w *Widget) startRefresh() {
	r := w.refresh
	if r == nil || r.handle != 0 || w.ctx == nil {
		return
	}
	r.handle = w.ctx.Scheduler.Schedule(r.interval, r.fn)
}

func (w *Widget) stopRefresh() {
	r := w.refresh
	if r == nil || r.handle == 0 {
		return
	}
	w.ctx.Scheduler.Cancel(r.handle)
	r.handle = 0
}

// NewDateTime creates an auto text showing the current time formatted with
// a time layout, refreshed every interval.
func NewDateTime(parent *Widget, name, layout string, font Font, interval time.Duration) *Widget {
	mustParent(parent, "date widget")
	ctx := parent.ctx
	return NewAutoText(parent, name, font, interval, func() string {
		return ctx.now().Format(layout)
	})
}

func (w *Widget) mustKind(k WidgetKind, op string) {
	if w.Kind != k {
		panic("trellis: " + op + " on " + w.Kind.String() + " widget " + w.Name)
	}
}

// Text returns the content of a text widget.
func (w *Widget) Text() string {
	w.mustKind(KindText, "Text")
	return w.text.content
}

// SetText replaces the content of a text widget.
func (w *Widget) SetText(s string) {
	w.mustKind(KindText, "SetText")
	if w.text.content == s {
		return
	}
	w.text.content = s
	w.text.layoutDirty = true
	w.SetDirty()
}

// Font returns the font of a text widget.
func (w *Widget) Font() Font {
	w.mustKind(KindText, "Font")
	return w.text.font
}

// SetFont changes the font of a text widget.
func (w *Widget) SetFont(f Font) {
	w.mustKind(KindText, "SetFont")
	if w.text.font == f {
		return
	}
	w.text.font = f
	w.text.layoutDirty = true
	w.SetDirty()
}

// SetAlign sets the horizontal and vertical alignment of the text block
// within the widget.
func (w *Widget) SetAlign(h HAlign, v VAlign) {
	w.mustKind(KindText, "SetAlign")
	if w.text.hAlign == h && w.text.vAlign == v {
		return
	}
	w.text.hAlign = h
	w.text.vAlign = v
	w.SetDirty()
}

// SetWrapWidth enables greedy word wrapping at the given pixel width.
// Zero disables wrapping.
func (w *Widget) SetWrapWidth(px int) {
	w.mustKind(KindText, "SetWrapWidth")
	if w.text.wrapWidth == px {
		return
	}
	w.text.wrapWidth = px
	w.text.layoutDirty = true
	w.SetDirty()
}

// FitFontSize scales the font so the text fits into target, growing or
// shrinking as needed, then steps down until the measured block fits.
func (w *Widget) FitFontSize(target Size) {
	w.mustKind(KindText, "FitFontSize")
	if target.Width <= 0 || target.Height <= 0 {
		return
	}
	pref := w.textPreferredSize()
	if pref.Width == 0 || pref.Height == 0 {
		return
	}
	sx := float64(pref.Width) / float64(target.Width)
	sy := float64(pref.Height) / float64(target.Height)
	f := w.text.font
	f.Size /= max(sx, sy)
	fonts := w.fonts()
	for f.Size > 1 {
		s := fonts.Measure(f, w.layoutWith(f))
		if s.Width <= target.Width && s.Height <= target.Height {
			break
		}
		f.Size -= 0.5
	}
	w.SetFont(f)
}

func (w *Widget) fonts() *FontCache {
	if w.ctx == nil || w.ctx.Fonts == nil {
		panic("trellis: text widget " + w.Name + " has no font cache")
	}
	return w.ctx.Fonts
}

// textLines returns the cached line layout, recomputing it if needed.
func (w *Widget) textLines() []string {
	tb := w.text
	if tb.layoutDirty {
		tb.lines = w.layoutWith(tb.font)
		tb.layoutDirty = false
	}
	return tb.lines
}

// layoutWith splits the content into lines for font f.
func (w *Widget) layoutWith(f Font) []string {
	tb := w.text
	paragraphs := strings.Split(tb.content, "\n")
	if tb.wrapWidth <= 0 {
		return paragraphs
	}
	fonts := w.fonts()
	var lines []string
	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			candidate := cur + " " + word
			if fonts.LineWidth(f, candidate) > tb.wrapWidth {
				lines = append(lines, cur)
				cur = word
				continue
			}
			cur = candidate
		}
		lines = append(lines, cur)
	}
	return lines
}

func (w *Widget) textPreferredSize() Size {
	return w.fonts().Measure(w.text.font, w.textLines())
}

// paintText draws each line aligned within the widget.
func (w *Widget) paintText(s *Surface) {
	tb := w.text
	lines := w.textLines()
	if len(lines) == 0 {
		return
	}
	fonts := w.fonts()
	m := fonts.Metrics(tb.font)
	face := fonts.Face(tb.font)
	size := s.Size()
	block := len(lines)*m.LineHeight - m.Descent

	top := 0
	switch tb.vAlign {
	case VAlignCenter:
		top = (size.Height - block) / 2
	case VAlignBottom:
		top = size.Height - block
	}
	for i, line := range lines {
		x := 0
		switch tb.hAlign {
		case HAlignCenter:
			x = (size.Width - fonts.LineWidth(tb.font, line)) / 2
		case HAlignRight:
			x = size.Width - fonts.LineWidth(tb.font, line)
		}
		baseline := top + i*m.LineHeight + m.Ascent
		s.Text(face, line, float64(x), float64(baseline), w.foreground)
	}
}
