package trellis

import (
	"fmt"
	"runtime/debug"
)

// paint draws the widget into s, which is already translated and clipped to
// the widget's rect. Order: background, children, foreground. The dirty
// flag is cleared at the end unless the widget is an overlay.
func (w *Widget) paint(s *Surface) {
	if w.ctx != nil {
		w.ctx.stats.painted++
	}
	w.paintBackground(s)
	if w.Kind.IsContainer() {
		w.paintChildren(s)
	}
	w.paintForeground(s)
	w.clearDirty()
}

// paintBackground fills the widget's area. Containers only fill what needs
// erasing: everything after a cascade, otherwise the damage left by hidden
// or moved children. Leaf widgets always fill unless transparent.
func (w *Widget) paintBackground(s *Surface) {
	if !w.Kind.IsContainer() {
		if !w.transparent {
			s.Fill(w.background)
		}
		return
	}
	if w.erase {
		w.erase = false
		if !w.transparent {
			s.Fill(w.background)
		}
		w.clearDamage()
		return
	}
	if len(w.damage) == 0 {
		return
	}
	for _, d := range w.damage {
		if !w.transparent {
			s.FillRect(d.rect, w.background)
		}
		for _, c := range w.children {
			if !c.visible || !c.rect.Intersects(d.rect) {
				continue
			}
			c.dirty.Store(true)
			if c.Kind.IsContainer() {
				// Hand the damage down in the child's coordinates so its
				// clean descendants under the area repaint too.
				r := d.rect.Intersect(c.rect).Moved(Vector{-c.rect.X, -c.rect.Y})
				c.damage = append(c.damage, damageRegion{rect: r})
			}
		}
	}
	w.clearDamage()
}

// clearDamage drops recorded damage. Hidden children whose disappearance
// has now been painted are clean again.
func (w *Widget) clearDamage() {
	for _, d := range w.damage {
		if d.from != nil && !d.from.visible && d.from.parent == w {
			d.from.dirty.Store(false)
		}
	}
	clear(w.damage)
	w.damage = w.damage[:0]
}

// paintChildren repaints every dirty and visible child in layer order, each
// in a sub-surface translated and clipped to the child's rect. A child whose
// paint panics is logged and marked clean so the rest of the frame still
// renders.
func (w *Widget) paintChildren(s *Surface) {
	for _, c := range w.PaintOrder() {
		if !c.IsDirty() || !c.IsVisible() {
			continue
		}
		s.Within(c.rect, func(sub *Surface) {
			c.paintRecover(sub)
		})
	}
}

func (w *Widget) paintRecover(s *Surface) {
	defer func() {
		if r := recover(); r != nil {
			w.dirty.Store(false)
			if w.ctx == nil {
				return
			}
			w.ctx.stats.recovered++
			w.ctx.Logger.Error("widget paint failed",
				"widget", w.Name,
				"kind", w.Kind.String(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	w.paint(s)
}

// paintForeground draws the kind-specific content.
func (w *Widget) paintForeground(s *Surface) {
	switch w.Kind {
	case KindText:
		w.paintText(s)
	case KindLine:
		w.paintLine(s)
	case KindBar:
		w.paintBar(s)
	case KindClock:
		w.paintClock(s)
	case KindImage:
		w.paintImage(s)
	case KindCustom:
		if w.PaintFunc != nil {
			w.PaintFunc(w, s)
		}
	}
}

// Paint repaints the dirty parts of the tree rooted at w into s. It is the
// entry point for standalone trees; a Display calls it on its root.
func (w *Widget) Paint(s *Surface) {
	if !w.IsDirty() {
		return
	}
	if w.parent != nil {
		panic(fmt.Sprintf("trellis: Paint called on non-root widget %q", w.Name))
	}
	w.paint(s)
}
