package trellis

import (
	"slices"
	"testing"
)

// --- Construction ---

func TestNewWidgetInheritsFromParent(t *testing.T) {
	root := newTestRoot(t)
	root.SetColors(ColorGray20, ColorYellow)
	c := NewContainer(root, "c")

	if c.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if c.Parent() != root {
		t.Error("parent not set")
	}
	if c.Context() != root.Context() {
		t.Error("context not inherited")
	}
	if c.Background() != ColorGray20 || c.Foreground() != ColorYellow {
		t.Errorf("colors = %v/%v, want inherited", c.Background(), c.Foreground())
	}
	if !c.Visible() || !c.IsDirty() {
		t.Error("new widget should be visible and dirty")
	}
	if c.Rect() != (Rect{0, 0, DefaultWidth, DefaultHeight}) {
		t.Errorf("container rect = %v, want parent-filling", c.Rect())
	}

	// Later parent changes do not flow down.
	root.SetBackground(ColorBlue)
	if c.Background() != ColorGray20 {
		t.Error("colors are inherited by value")
	}
}

func TestUniqueIDs(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	b := NewContainer(root, "b")
	if a.ID == b.ID {
		t.Errorf("IDs should differ, both %d", a.ID)
	}
}

func TestConstructorsNeedParent(t *testing.T) {
	mustPanic(t, "NewContainer(nil)", func() { NewContainer(nil, "c") })
	mustPanic(t, "NewText(nil)", func() { NewText(nil, "t", "x", DefaultFont) })
	mustPanic(t, "NewLine(nil)", func() { NewLine(nil, "l", Horizontal) })
}

// --- Coordinates ---

func TestAbsRectComposesAncestors(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	a.SetRect(Rect{10, 10, 200, 200})
	b := NewContainer(a, "b")
	b.SetRect(Rect{20, 10, 150, 150})
	c := NewCustom(b, "c", nil)
	c.SetRect(Rect{20, 20, 100, 100})

	if got := c.AbsRect(); got != (Rect{50, 40, 100, 100}) {
		t.Errorf("AbsRect = %v, want (50,40 100x100)", got)
	}
	if got := c.Rect(); got != (Rect{20, 20, 100, 100}) {
		t.Errorf("Rect = %v, relative rect must be unchanged", got)
	}
	if got := root.AbsRect(); got != root.Rect() {
		t.Errorf("root AbsRect = %v", got)
	}
}

func TestAbsRectDetachedLeafPanics(t *testing.T) {
	root := newTestRoot(t)
	w := NewCustom(root, "w", nil)
	root.RemoveChild(w)
	mustPanic(t, "AbsRect on detached leaf", func() { w.AbsRect() })

	c := NewContainer(root, "c")
	c.SetRect(Rect{5, 6, 10, 10})
	root.RemoveChild(c)
	if got := c.AbsRect(); got != (Rect{5, 6, 10, 10}) {
		t.Errorf("detached container AbsRect = %v", got)
	}
}

func TestSetRectNegativePanics(t *testing.T) {
	root := newTestRoot(t)
	w := NewCustom(root, "w", nil)
	mustPanic(t, "negative width", func() { w.SetRect(Rect{0, 0, -1, 4}) })
}

func TestSetPositionKeepsSize(t *testing.T) {
	root := newTestRoot(t)
	w := NewCustom(root, "w", nil)
	w.SetRect(Rect{0, 0, 20, 10})
	w.SetPosition(Pt(100, 100, AnchorBottomRight))
	if w.Rect() != (Rect{80, 90, 20, 10}) {
		t.Errorf("rect = %v", w.Rect())
	}
	if p := w.Position(AnchorCenter); p.Vector != (Vector{90, 95}) {
		t.Errorf("center = %v", p.Vector)
	}
}

// --- Tree ---

func TestAddChildPanics(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	b := NewContainer(a, "b")
	text := NewText(root, "t", "x", DefaultFont)

	mustPanic(t, "nil child", func() { root.AddChild(nil) })
	mustPanic(t, "child on text", func() { text.AddChild(NewContainer(root, "x")) })
	mustPanic(t, "self", func() { a.AddChild(a) })
	mustPanic(t, "ancestor", func() { b.AddChild(root) })
	mustPanic(t, "grandparent", func() { b.AddChild(a) })
}

func TestAddChildReparents(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	b := NewContainer(root, "b")
	w := NewCustom(a, "w", nil)

	b.AddChild(w)
	if w.Parent() != b {
		t.Error("parent not updated")
	}
	if a.NumChildren() != 0 || b.NumChildren() != 1 {
		t.Errorf("children a=%d b=%d, want 0 and 1", a.NumChildren(), b.NumChildren())
	}
}

func TestRemoveChildWrongParentPanics(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	w := NewCustom(root, "w", nil)
	mustPanic(t, "RemoveChild of foreign widget", func() { a.RemoveChild(w) })
}

func TestRemoveChildrenDetachesAll(t *testing.T) {
	root := newTestRoot(t)
	a := NewCustom(root, "a", nil)
	b := NewCustom(root, "b", nil)
	paintAll(t, root)

	root.RemoveChildren()
	if root.NumChildren() != 0 {
		t.Errorf("NumChildren = %d", root.NumChildren())
	}
	if a.Parent() != nil || b.Parent() != nil {
		t.Error("children should be detached")
	}
	if !root.IsDirty() || !root.erase {
		t.Error("container should be dirty and erase fully")
	}
}

func TestFind(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	deep := NewText(NewContainer(a, "inner"), "label", "x", DefaultFont)
	if got := root.Find("label"); got != deep {
		t.Errorf("Find = %v", got)
	}
	if root.Find("missing") != nil {
		t.Error("Find should return nil for unknown names")
	}
}

func TestPaintOrderByLayer(t *testing.T) {
	root := newTestRoot(t)
	layers := []struct {
		name  string
		layer int
	}{{"5", 5}, {"1a", 1}, {"1b", 1}, {"3", 3}}
	for _, l := range layers {
		NewCustom(root, l.name, nil).SetLayer(l.layer)
	}

	var got []string
	for _, c := range root.PaintOrder() {
		got = append(got, c.Name)
	}
	if want := []string{"1a", "1b", "3", "5"}; !slices.Equal(got, want) {
		t.Errorf("PaintOrder = %v, want %v", got, want)
	}

	var inserted []string
	for _, c := range root.Children() {
		inserted = append(inserted, c.Name)
	}
	if want := []string{"5", "1a", "1b", "3"}; !slices.Equal(inserted, want) {
		t.Errorf("Children = %v, insertion order must be kept", inserted)
	}

	// Relayering re-sorts.
	root.Find("5").SetLayer(0)
	if first := root.PaintOrder()[0].Name; first != "5" {
		t.Errorf("after SetLayer(0) first = %q, want 5", first)
	}
}

// --- Dirty tracking ---

func TestDirtyPropagatesToRoot(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	b := NewContainer(a, "b")
	leaf := NewCustom(b, "leaf", nil)
	sibling := NewCustom(a, "sibling", nil)
	paintAll(t, root)

	for _, w := range []*Widget{root, a, b, leaf, sibling} {
		if w.IsDirty() {
			t.Fatalf("%s dirty after paint", w.Name)
		}
	}

	leaf.SetBackground(ColorRed)
	for _, w := range []*Widget{root, a, b, leaf} {
		if !w.IsDirty() {
			t.Errorf("%s should be dirty", w.Name)
		}
	}
	if sibling.IsDirty() {
		t.Error("sibling should stay clean")
	}
}

func TestMutatorsIgnoreUnchangedValues(t *testing.T) {
	root := newTestRoot(t)
	w := NewText(root, "t", "hello", DefaultFont)
	paintAll(t, root)

	w.SetText("hello")
	w.SetBackground(w.Background())
	w.SetLayer(0)
	w.SetVisible(true)
	w.SetRect(w.Rect())
	if w.IsDirty() || root.IsDirty() {
		t.Error("no-op mutations must not mark dirty")
	}

	w.SetText("world")
	if !w.IsDirty() || !root.IsDirty() {
		t.Error("SetText should mark dirty")
	}
}

func TestOverlayStaysDirtyAndForwards(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	ov := NewCustom(a, "overlay", nil)
	ov.SetLayer(LayerOverlay)
	flagged := NewCustom(a, "flagged", nil)
	flagged.SetOverlay(true)
	paintAll(t, root)

	if !ov.IsDirty() || !flagged.IsDirty() {
		t.Fatal("overlays must stay dirty after paint")
	}
	if root.IsDirty() || a.IsDirty() {
		t.Fatal("ancestors of overlays are cleared by paint")
	}

	ov.SetDirty()
	if !a.IsDirty() || !root.IsDirty() {
		t.Error("SetDirty on an already dirty overlay must still reach the root")
	}
}

func TestSetDirtyCascade(t *testing.T) {
	root := newTestRoot(t)
	a := NewContainer(root, "a")
	inner := NewContainer(a, "inner")
	leaf := NewCustom(inner, "leaf", nil)
	paintAll(t, root)

	a.SetDirtyCascade(false)
	if leaf.IsDirty() || !a.IsDirty() || !root.IsDirty() {
		t.Error("cascade without children marks only the widget and ancestors")
	}
	paintAll(t, root)

	a.SetDirtyCascade(true)
	if !leaf.IsDirty() || !inner.IsDirty() || !inner.erase {
		t.Error("cascade should mark every descendant and erase containers")
	}
}

// --- Preferred size ---

func TestPreferredSize(t *testing.T) {
	root := newTestRoot(t)
	box := NewContainer(root, "box")
	box.SetRect(Rect{0, 0, 200, 50})

	if got := NewClock(box, "clock").PreferredSize(); got != (Size{100, 100}) {
		t.Errorf("clock = %v", got)
	}
	if got := NewLine(box, "h", Horizontal).PreferredSize(); got != (Size{200, 3}) {
		t.Errorf("horizontal line = %v", got)
	}
	if got := NewLine(box, "v", Vertical).PreferredSize(); got != (Size{3, 50}) {
		t.Errorf("vertical line = %v", got)
	}
	if got := NewContainer(box, "empty").PreferredSize(); got != (Size{}) {
		t.Errorf("container = %v, want zero", got)
	}
	custom := NewCustom(box, "custom", nil)
	custom.SizeFunc = func(*Widget) Size { return Size{7, 9} }
	if got := custom.PreferredSize(); got != (Size{7, 9}) {
		t.Errorf("SizeFunc override = %v", got)
	}
	custom.Pack(AnchorTopLeft)
	if custom.Size() != (Size{7, 9}) {
		t.Errorf("Pack size = %v", custom.Size())
	}
}
