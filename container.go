package trellis

import "fmt"

// --- Tree manipulation ---

// AddChild appends child to this widget's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil, this widget cannot hold children, or child is an
// ancestor of this widget (cycle).
func (w *Widget) AddChild(child *Widget) {
	if child == nil {
		panic("trellis: cannot add nil child")
	}
	if !w.Kind.IsContainer() {
		panic(fmt.Sprintf("trellis: cannot add child to %s widget %q", w.Kind, w.Name))
	}
	if isAncestor(child, w) {
		panic("trellis: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
		child.parent.childrenSorted = false
	}
	child.parent = w
	if child.ctx == nil {
		child.ctx = w.ctx
	}
	if child.Kind != KindScreen {
		setSubtreeScreen(child, w.screen)
	}
	w.children = append(w.children, child)
	w.childrenSorted = false
	if child.Kind.IsContainer() {
		markSubtreeDirty(child)
	}
	child.invalidate()
	startSubtreeRefresh(child)
}

// RemoveChild detaches child from this widget. The area it covered is
// repainted with this widget's background on the next frame.
// Panics if child's parent is not this widget.
func (w *Widget) RemoveChild(child *Widget) {
	if child.parent != w {
		panic("trellis: child's parent is not this widget")
	}
	w.removeChildByPtr(child)
	child.parent = nil
	stopSubtreeRefresh(child)
	w.childrenSorted = false
	w.damage = append(w.damage, damageRegion{rect: child.rect})
	w.SetDirty()
}

// RemoveChildren detaches all children. It is the full child-list
// replacement used by screen switches and dynamic re-layout; the whole
// container is erased on its next paint.
func (w *Widget) RemoveChildren() {
	for _, child := range w.children {
		child.parent = nil
		stopSubtreeRefresh(child)
	}
	clear(w.children)
	w.children = w.children[:0]
	w.sortedChildren = w.sortedChildren[:0]
	w.childrenSorted = true
	w.damage = w.damage[:0]
	w.erase = true
	w.SetDirty()
}

// NumChildren returns the number of children.
func (w *Widget) NumChildren() int { return len(w.children) }

// ChildAt returns the child at the given insertion index.
func (w *Widget) ChildAt(index int) *Widget { return w.children[index] }

// Find returns the first descendant with the given name, depth first.
func (w *Widget) Find(name string) *Widget {
	for _, c := range w.children {
		if c.Name == name {
			return c
		}
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// SetDirtyCascade marks this widget dirty and, when includeChildren is set,
// every descendant as well. Containers reached by the cascade erase their
// whole area on the next paint.
func (w *Widget) SetDirtyCascade(includeChildren bool) {
	if includeChildren {
		markSubtreeDirty(w)
	}
	w.SetDirty()
	if w.parent != nil {
		w.parent.SetDirty()
	}
}

// PaintOrder returns the children sorted by ascending layer, ties broken by
// insertion order. The returned slice MUST NOT be mutated by the caller.
func (w *Widget) PaintOrder() []*Widget {
	if !w.childrenSorted {
		w.rebuildSortedChildren()
	}
	return w.sortedChildren
}

// rebuildSortedChildren rebuilds the layer-sorted paint order.
// Insertion sort: stable, no allocations once the buffer has grown, and O(n)
// for the usual nearly sorted child lists.
func (w *Widget) rebuildSortedChildren() {
	nc := len(w.children)
	if cap(w.sortedChildren) < nc {
		w.sortedChildren = make([]*Widget, nc)
	}
	w.sortedChildren = w.sortedChildren[:nc]
	copy(w.sortedChildren, w.children)
	for i := 1; i < nc; i++ {
		key := w.sortedChildren[i]
		j := i - 1
		for j >= 0 && w.sortedChildren[j].layer > key.layer {
			w.sortedChildren[j+1] = w.sortedChildren[j]
			j--
		}
		w.sortedChildren[j+1] = key
	}
	w.childrenSorted = true
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of widget (or the
// widget itself).
func isAncestor(candidate, widget *Widget) bool {
	for p := widget; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from w.children without clearing
// child.parent.
func (w *Widget) removeChildByPtr(child *Widget) {
	for i, c := range w.children {
		if c == child {
			copy(w.children[i:], w.children[i+1:])
			w.children[len(w.children)-1] = nil
			w.children = w.children[:len(w.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets the dirty flag on widget and all its descendants.
// Containers are flagged for a full erase.
func markSubtreeDirty(widget *Widget) {
	widget.dirty.Store(true)
	if widget.Kind.IsContainer() {
		widget.erase = true
	}
	for _, child := range widget.children {
		markSubtreeDirty(child)
	}
}

// startSubtreeRefresh and stopSubtreeRefresh tie periodic refreshes to
// attachment. Screens are detached on every switch but stay registered, so
// the walk does not enter them.
func startSubtreeRefresh(widget *Widget) {
	if widget.Kind == KindScreen {
		return
	}
	widget.startRefresh()
	for _, child := range widget.children {
		startSubtreeRefresh(child)
	}
}

func stopSubtreeRefresh(widget *Widget) {
	if widget.Kind == KindScreen {
		return
	}
	widget.stopRefresh()
	for _, child := range widget.children {
		stopSubtreeRefresh(child)
	}
}

// setSubtreeScreen assigns the owning screen to widget and its descendants.
// Screens keep themselves as owner.
func setSubtreeScreen(widget *Widget, s *Screen) {
	if widget.Kind == KindScreen {
		return
	}
	widget.screen = s
	for _, child := range widget.children {
		setSubtreeScreen(child, s)
	}
}
