package trellis

import (
	"fmt"
	"image"
	"sync/atomic"
)

// LayerOverlay is the lowest layer treated as a persistent overlay. Overlays
// are painted on top of their siblings on every repaint of their parent.
const LayerOverlay = 1000

var widgetIDCounter atomic.Uint32

func nextWidgetID() uint32 {
	return widgetIDCounter.Add(1)
}

// Widget is the fundamental scene graph element. A single flat struct is
// used for every kind; kind-specific state lives in the payload fields and
// Kind decides which of them are meaningful.
//
// A widget's rect is relative to its parent. Mutators mark the widget dirty
// only when a value actually changes, and dirtiness propagates up to the
// root so the display knows a frame is due.
type Widget struct {
	// Identity
	ID   uint32
	Name string
	Kind WidgetKind

	// Hierarchy. parent is a non-owning back-reference.
	parent   *Widget
	children []*Widget
	ctx      *Context
	screen   *Screen

	rect Rect

	// Appearance
	background  Color
	foreground  Color
	visible     bool
	transparent bool
	layer       int
	overlay     bool

	dirty atomic.Bool

	// Container state
	erase          bool
	damage         []damageRegion
	childrenSorted bool
	sortedChildren []*Widget

	// Payloads
	text  *textBlock
	line  Orientation
	bar   *barState
	image image.Image

	// refresh is the periodic task of auto-refreshing widgets.
	refresh *refreshTask

	// PaintFunc draws the foreground of KindCustom widgets.
	PaintFunc func(w *Widget, s *Surface)
	// SizeFunc overrides PreferredSize when set.
	SizeFunc func(w *Widget) Size

	// UserData is free for application use.
	UserData any
}

// damageRegion is an area of a container uncovered by a hidden child.
type damageRegion struct {
	rect Rect
	from *Widget
}

// newWidget creates a widget of the given kind. With a parent, the context,
// screen and colors are inherited and the widget is appended to the
// parent's children, centered on the parent at its preferred size.
func newWidget(parent *Widget, kind WidgetKind, name string) *Widget {
	w := &Widget{
		ID:             nextWidgetID(),
		Name:           name,
		Kind:           kind,
		visible:        true,
		background:     ColorBlack,
		foreground:     ColorWhite,
		childrenSorted: true,
		erase:          kind.IsContainer(),
	}
	w.dirty.Store(true)
	if parent != nil {
		w.ctx = parent.ctx
		w.background = parent.background
		w.foreground = parent.foreground
		parent.AddChild(w)
	}
	return w
}

// place sizes w to its preferred size, centered on its parent.
func (w *Widget) place() {
	if w.parent == nil {
		return
	}
	center := w.parent.rect.Size().Position(AnchorCenter)
	w.rect = RectAt(center, w.PreferredSize())
}

// NewRootContainer creates a parentless container that acts as the root of a
// standalone tree. A nil ctx gets a fresh NewContext.
func NewRootContainer(ctx *Context, name string, size Size) *Widget {
	if ctx == nil {
		ctx = NewContext(nil, nil)
	}
	w := newWidget(nil, KindRoot, name)
	w.ctx = ctx
	w.rect = RectAt(Pt(0, 0, AnchorTopLeft), size)
	return w
}

// NewContainer creates a group widget under parent filling the parent.
func NewContainer(parent *Widget, name string) *Widget {
	mustParent(parent, "container")
	w := newWidget(parent, KindContainer, name)
	w.rect = Rect{Width: parent.rect.Width, Height: parent.rect.Height}
	return w
}

// NewCustom creates a widget whose foreground is drawn by paint.
func NewCustom(parent *Widget, name string, paint func(w *Widget, s *Surface)) *Widget {
	mustParent(parent, "custom widget")
	w := newWidget(parent, KindCustom, name)
	w.PaintFunc = paint
	w.place()
	return w
}

func mustParent(parent *Widget, what string) {
	if parent == nil {
		panic("trellis: " + what + " needs a parent")
	}
}

// --- Accessors ---

// Context returns the shared context.
func (w *Widget) Context() *Context { return w.ctx }

// Parent returns the parent widget, or nil.
func (w *Widget) Parent() *Widget { return w.parent }

// Screen returns the screen this widget belongs to, or nil.
func (w *Widget) Screen() *Screen { return w.screen }

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (w *Widget) Children() []*Widget { return w.children }

// Background returns the background color.
func (w *Widget) Background() Color { return w.background }

// Foreground returns the foreground color.
func (w *Widget) Foreground() Color { return w.foreground }

// Layer returns the z-order layer.
func (w *Widget) Layer() int { return w.layer }

// Transparent reports whether the background fill is skipped.
func (w *Widget) Transparent() bool { return w.transparent }

// IsOverlay reports whether the widget is a persistent overlay, either by
// layer or by the explicit flag.
func (w *Widget) IsOverlay() bool { return w.overlay || w.layer >= LayerOverlay }

// IsDirty reports whether the widget needs repainting.
func (w *Widget) IsDirty() bool { return w.dirty.Load() }

// --- Appearance mutators ---

// SetBackground changes the background color.
func (w *Widget) SetBackground(c Color) {
	if w.background == c {
		return
	}
	w.background = c
	w.SetDirty()
}

// SetForeground changes the foreground color.
func (w *Widget) SetForeground(c Color) {
	if w.foreground == c {
		return
	}
	w.foreground = c
	w.SetDirty()
}

// SetColors changes both colors at once.
func (w *Widget) SetColors(bg, fg Color) {
	w.SetBackground(bg)
	w.SetForeground(fg)
}

// SetTransparent controls whether the background fill is skipped.
func (w *Widget) SetTransparent(t bool) {
	if w.transparent == t {
		return
	}
	w.transparent = t
	w.SetDirty()
}

// SetLayer sets the z-order among siblings and marks the parent's children
// as unsorted.
func (w *Widget) SetLayer(layer int) {
	if w.layer == layer {
		return
	}
	w.layer = layer
	if w.parent != nil {
		w.parent.childrenSorted = false
	}
	w.SetDirty()
}

// SetOverlay marks the widget as a persistent overlay regardless of layer.
func (w *Widget) SetOverlay(overlay bool) {
	if w.overlay == overlay {
		return
	}
	w.overlay = overlay
	w.SetDirty()
}

// Visible reports the widget's own visibility flag.
func (w *Widget) Visible() bool { return w.visible }

// IsVisible reports whether the widget should be painted: its own flag is
// set and, for screen-scoped widgets, its screen is the current one.
func (w *Widget) IsVisible() bool {
	if !w.visible {
		return false
	}
	return w.screen == nil || w.screen.IsCurrent()
}

// SetVisible shows or hides the widget. Hiding records the uncovered area
// on the parent so it is repainted with the parent's background.
func (w *Widget) SetVisible(v bool) {
	if w.visible == v {
		return
	}
	w.visible = v
	if !v && w.parent != nil {
		w.parent.damage = append(w.parent.damage, damageRegion{rect: w.rect, from: w})
	}
	if v && w.Kind.IsContainer() {
		markSubtreeDirty(w)
	}
	w.invalidate()
}

// --- Dirty tracking ---

// SetDirty marks the widget for repaint. Propagation to the parent happens
// once, on the clean-to-dirty transition. Overlays always forward because
// painting never clears their own flag.
func (w *Widget) SetDirty() {
	if w.dirty.CompareAndSwap(false, true) || w.IsOverlay() {
		if w.parent != nil {
			w.parent.SetDirty()
		}
	}
}

// invalidate marks the widget dirty and always notifies the parent. Used
// where the widget may already be dirty but was skipped while hidden.
func (w *Widget) invalidate() {
	w.dirty.Store(true)
	if w.parent != nil {
		w.parent.SetDirty()
	}
}

// clearDirty is called at the end of paint. Overlays stay dirty.
func (w *Widget) clearDirty() {
	if !w.IsOverlay() {
		w.dirty.Store(false)
	}
}

// --- Geometry ---

// Rect returns the rect relative to the parent.
func (w *Widget) Rect() Rect { return w.rect }

// Size returns the widget's size.
func (w *Widget) Size() Size { return w.rect.Size() }

// AbsRect returns the rect in display coordinates by adding the top-left
// offsets of all ancestors. Root, screen and detached container widgets
// treat their rect as absolute. Panics for detached leaf widgets.
func (w *Widget) AbsRect() Rect {
	if w.parent == nil {
		if !w.Kind.IsContainer() {
			panic(fmt.Sprintf("trellis: %s widget %q has no parent", w.Kind, w.Name))
		}
		return w.rect
	}
	return w.rect.Moved(w.parent.AbsRect().TopLeft())
}

// SetRect sets the parent-relative rect. A resize relayouts text blocks; a moved
// container repaints its whole subtree.
func (w *Widget) SetRect(r Rect) {
	if r.Width < 0 || r.Height < 0 {
		panic(fmt.Sprintf("trellis: negative rect size %dx%d", r.Width, r.Height))
	}
	if w.rect == r {
		return
	}
	old := w.rect
	if w.parent != nil && w.visible {
		// The area left behind must be repainted by the parent.
		w.parent.damage = append(w.parent.damage, damageRegion{rect: old})
	}
	w.rect = r
	if w.Kind.IsContainer() {
		markSubtreeDirty(w)
		w.invalidate()
		return
	}
	w.SetDirty()
}

// SetRectAt places the widget with anchor point p and size s.
func (w *Widget) SetRectAt(p AnchoredPoint, s Size) { w.SetRect(RectAt(p, s)) }

// SetRectBetween places the widget between an anchored point and a second
// point.
func (w *Widget) SetRectBetween(from AnchoredPoint, to Vector) { w.SetRect(RectBetween(from, to)) }

// SetPosition moves the widget so its anchor point lies at p.
func (w *Widget) SetPosition(p AnchoredPoint) { w.SetRect(w.rect.WithPosition(p)) }

// SetSize resizes the widget keeping the anchor point a fixed.
func (w *Widget) SetSize(s Size, a Anchor) { w.SetRect(w.rect.WithSize(s, a)) }

// SetWidth changes the width keeping the horizontal anchor h fixed.
func (w *Widget) SetWidth(width int, h HAnchor) { w.SetRect(w.rect.WithWidth(width, h)) }

// SetHeight changes the height keeping the vertical anchor v fixed.
func (w *Widget) SetHeight(height int, v VAnchor) { w.SetRect(w.rect.WithHeight(height, v)) }

// Position returns the parent-relative point of the widget at anchor a.
func (w *Widget) Position(a Anchor) AnchoredPoint { return w.rect.Position(a) }

// Pack resizes the widget to its preferred size keeping anchor a fixed.
func (w *Widget) Pack(a Anchor) { w.SetSize(w.PreferredSize(), a) }

// PreferredSize returns the natural size of the widget's content.
func (w *Widget) PreferredSize() Size {
	if w.SizeFunc != nil {
		return w.SizeFunc(w)
	}
	switch w.Kind {
	case KindText:
		return w.textPreferredSize()
	case KindLine:
		return w.linePreferredSize()
	case KindBar:
		return w.bar.natural
	case KindClock:
		return Size{clockSize, clockSize}
	case KindImage:
		if w.image != nil {
			b := w.image.Bounds()
			return Size{b.Dx(), b.Dy()}
		}
	}
	return Size{}
}

func (w *Widget) String() string {
	return fmt.Sprintf("%s %q %s", w.Kind, w.Name, w.rect)
}
