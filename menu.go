package trellis

// MenuEntry is one selectable line of a Menu.
type MenuEntry struct {
	Label    string
	OnSelect func()
}

// Menu is a vertical list of text entries with one selected entry, shown
// with swapped colors. It wraps a container widget (Menu.Widget).
type Menu struct {
	widget   *Widget
	font     Font
	entries  []MenuEntry
	items    []*Widget
	selected int
}

// NewMenu creates a menu filling parent.
func NewMenu(parent *Widget, name string, font Font, entries []MenuEntry) *Menu {
	m := &Menu{widget: NewContainer(parent, name), font: font}
	m.SetEntries(entries)
	return m
}

// Widget returns the container holding the entries.
func (m *Menu) Widget() *Widget { return m.widget }

// Selected returns the index of the selected entry.
func (m *Menu) Selected() int { return m.selected }

// Entries returns the menu entries.
func (m *Menu) Entries() []MenuEntry { return m.entries }

// SetEntries replaces every entry and rebuilds the item widgets. The
// selection is clamped to the new list.
func (m *Menu) SetEntries(entries []MenuEntry) {
	m.entries = append(m.entries[:0], entries...)
	m.widget.RemoveChildren()
	m.items = m.items[:0]
	if len(entries) == 0 {
		m.selected = 0
		return
	}
	lh := m.widget.ctx.Fonts.Metrics(m.font).LineHeight + 4
	width := m.widget.rect.Width
	for i, e := range entries {
		item := NewText(m.widget, e.Label, e.Label, m.font)
		item.SetAlign(HAlignLeft, VAlignCenter)
		item.SetRect(Rect{X: 0, Y: i * lh, Width: width, Height: lh})
		m.items = append(m.items, item)
	}
	m.selected = min(max(m.selected, 0), len(entries)-1)
	m.highlight()
}

// Select moves the selection to index i, wrapping around.
func (m *Menu) Select(i int) {
	if len(m.entries) == 0 {
		return
	}
	n := len(m.entries)
	m.selected = ((i % n) + n) % n
	m.highlight()
}

// Next selects the following entry.
func (m *Menu) Next() { m.Select(m.selected + 1) }

// Prev selects the preceding entry.
func (m *Menu) Prev() { m.Select(m.selected - 1) }

// Activate runs the selected entry's callback.
func (m *Menu) Activate() {
	if m.selected < len(m.entries) && m.entries[m.selected].OnSelect != nil {
		m.entries[m.selected].OnSelect()
	}
}

// HandleButton maps up/down to selection and ok to activation. It reports
// whether the button was used.
func (m *Menu) HandleButton(b Button) bool {
	switch b {
	case ButtonUp:
		m.Prev()
	case ButtonDown:
		m.Next()
	case ButtonOK:
		m.Activate()
	default:
		return false
	}
	return true
}

func (m *Menu) highlight() {
	bg, fg := m.widget.background, m.widget.foreground
	for i, item := range m.items {
		if i == m.selected {
			item.SetColors(fg, bg)
		} else {
			item.SetColors(bg, fg)
		}
	}
}
