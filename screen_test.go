package trellis

import (
	"errors"
	"testing"
	"time"
)

type hookCall struct {
	hook  string
	other ScreenID
	nilOK bool
}

// recordHooks records OnShow and OnHide calls of s.
func recordHooks(s *Screen, calls *[]hookCall) {
	record := func(hook string, other *Screen) {
		c := hookCall{hook: hook + ":" + s.Name, nilOK: other == nil}
		if other != nil {
			c.other = other.ID
		}
		*calls = append(*calls, c)
	}
	s.OnShow = func(_ *Screen, prev *Screen) { record("show", prev) }
	s.OnHide = func(_ *Screen, next *Screen) { record("hide", next) }
}

func TestScreenSwitchContract(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	b := NewScreen(d, 2, "B")
	var calls []hookCall
	recordHooks(a, &calls)
	recordHooks(b, &calls)

	if d.Current() != nil {
		t.Fatal("no screen should be current before the first switch")
	}
	if err := d.SwitchTo(1); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}
	if len(calls) != 1 || calls[0].hook != "show:A" || !calls[0].nilOK {
		t.Fatalf("first switch calls = %+v, want show:A with nil prev", calls)
	}
	if a.State() != ScreenShowing || !a.BannerVisible() || !a.EraseAll() {
		t.Errorf("A state=%v banner=%v erase=%v", a.State(), a.BannerVisible(), a.EraseAll())
	}
	if kids := d.Root().Children(); len(kids) != 1 || kids[0] != a.Widget() {
		t.Errorf("root children = %v, want only A", kids)
	}

	calls = nil
	if err := d.SwitchTo(2); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}
	want := []hookCall{{hook: "hide:A", other: 2}, {hook: "show:B", other: 1}}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Errorf("calls = %+v, want %+v", calls, want)
	}
	if a.State() != ScreenHidden || a.BannerVisible() {
		t.Errorf("A after hide: state=%v banner=%v", a.State(), a.BannerVisible())
	}
	if kids := d.Root().Children(); len(kids) != 1 || kids[0] != b.Widget() {
		t.Errorf("root children = %v, want only B", kids)
	}
	if !b.Widget().IsDirty() || !d.Dirty() {
		t.Error("switch must invalidate the new screen")
	}
}

func TestSwitchInvalidatesWholeScreen(t *testing.T) {
	d, _ := newTestDisplay(t)
	NewScreen(d, 1, "A")
	b := NewScreen(d, 2, "B")
	grid := NewContainer(b.Widget(), "grid")
	col := NewContainer(grid, "col")
	NewText(col, "label", "x", DefaultFont)
	NewCustom(grid, "leaf", nil)

	d.SwitchTo(2)
	d.Tick()
	d.SwitchTo(1)
	d.Tick()
	d.SwitchTo(2)

	var walk func(w *Widget)
	walk = func(w *Widget) {
		if !w.IsDirty() {
			t.Errorf("%s not dirty after switch", w.Name)
		}
		for _, c := range w.Children() {
			walk(c)
		}
	}
	walk(b.Widget())
}

func TestSwitchToCurrentIsNoop(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	var calls []hookCall
	recordHooks(a, &calls)

	d.SwitchTo(1)
	d.Tick()
	d.SwitchTo(1)
	if len(calls) != 1 {
		t.Errorf("calls = %+v, want a single show", calls)
	}
	if d.Dirty() {
		t.Error("switching to the current screen must not invalidate")
	}
}

func TestSwitchToUnknownScreen(t *testing.T) {
	d, _ := newTestDisplay(t)
	NewScreen(d, 1, "A")
	err := d.SwitchTo(9)
	if !errors.Is(err, ErrUnknownScreen) {
		t.Errorf("err = %v, want ErrUnknownScreen", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	d, _ := newTestDisplay(t)
	NewScreen(d, 1, "A")
	mustPanic(t, "duplicate screen id", func() { NewScreen(d, 1, "again") })
}

func TestScreenWidgetsVisibleOnlyWhenCurrent(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	NewScreen(d, 2, "B")
	label := NewText(a.Widget(), "label", "on A", DefaultFont)

	if label.Screen() != a {
		t.Fatal("widget should belong to screen A")
	}
	if label.IsVisible() {
		t.Error("widget of a hidden screen must not be visible")
	}
	d.SwitchTo(1)
	if !label.IsVisible() {
		t.Error("widget of the current screen should be visible")
	}
	d.SwitchTo(2)
	if label.IsVisible() || !label.Visible() {
		t.Error("leaving the screen hides its widgets without touching their flags")
	}
}

func TestBannerTimeoutDismisses(t *testing.T) {
	d, sched := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	d.SwitchTo(1)
	d.Tick()

	sched.Advance(DefaultBannerTimeout - time.Millisecond)
	if a.State() != ScreenShowing {
		t.Fatalf("state = %v before timeout, want showing", a.State())
	}
	sched.Advance(time.Millisecond)
	if a.State() != ScreenShown || a.BannerVisible() {
		t.Fatalf("state = %v banner=%v after timeout", a.State(), a.BannerVisible())
	}
	if !d.Dirty() {
		t.Error("dismissal must schedule a repaint")
	}
	d.Tick()
	if a.Banner().IsDirty() {
		t.Error("hidden banner should be clean after its erase was painted")
	}
}

func TestBannerTimerOfEarlierShowIsIgnored(t *testing.T) {
	d, sched := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	NewScreen(d, 2, "B")

	d.SwitchTo(1)
	sched.Advance(time.Second)
	d.SwitchTo(2)
	d.SwitchTo(1)
	sched.Advance(time.Second)
	if a.State() != ScreenShowing {
		t.Fatalf("state = %v, the first show's timer must not dismiss the second", a.State())
	}
	sched.Advance(time.Second)
	if a.State() != ScreenShown {
		t.Errorf("state = %v, want shown after a full timeout", a.State())
	}
}

func TestButtonUpDismissesBannerOnce(t *testing.T) {
	d, sched := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	d.SwitchTo(1)
	d.Tick()
	if d.Dirty() {
		t.Fatal("display should be clean after the first frame")
	}

	d.ButtonUp(ButtonOK)
	if a.State() != ScreenShown || a.BannerVisible() {
		t.Fatalf("state = %v banner=%v, want dismissed", a.State(), a.BannerVisible())
	}
	if !a.Banner().IsDirty() || !d.Dirty() {
		t.Fatal("dismissal must mark the banner for repaint")
	}
	d.Tick()
	if a.Banner().IsDirty() || d.Dirty() {
		t.Fatal("banner and display should be clean after the repaint")
	}

	d.ButtonUp(ButtonOK)
	if a.Banner().IsDirty() || d.Dirty() {
		t.Error("a second button-up must not touch the banner")
	}
	sched.Advance(DefaultBannerTimeout)
	if d.Dirty() {
		t.Error("the cancelled banner timer must not fire")
	}
}

func TestBannerPixels(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	d.SwitchTo(1)
	d.Tick()

	r := a.Banner().Rect()
	x, y := r.X+1, r.Y+1
	assertPixel(t, d.Frame(), x, y, ColorWhite)

	d.ButtonUp(ButtonOK)
	d.Tick()
	assertPixel(t, d.Frame(), x, y, ColorBlack)
}

func TestBannerDismissRepaintsContainerContent(t *testing.T) {
	d, sched := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	grid := NewContainer(a.Widget(), "grid")
	col := NewContainer(grid, "col")
	col.SetBackground(ColorBlue)
	NewText(col, "label", "", DefaultFont)

	d.SwitchTo(1)
	d.Tick()
	r := a.Banner().Rect()
	assertPixel(t, d.Frame(), r.X+1, r.Y+1, ColorWhite)

	sched.Advance(DefaultBannerTimeout + time.Second)
	if a.BannerVisible() {
		t.Fatal("banner should be dismissed")
	}
	d.Tick()
	frame := d.Frame()
	stale := 0
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if frame.RGBAAt(x, y) != rgba(ColorBlue) {
				stale++
			}
		}
	}
	if stale != 0 {
		t.Errorf("%d of %d banner pixels not repainted", stale, r.Width*r.Height)
	}
}

func TestButtonDownKeepsBanner(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := NewScreen(d, 1, "A")
	var downs []Button
	a.OnButtonDown = func(_ *Screen, b Button) bool {
		downs = append(downs, b)
		return true
	}
	d.SwitchTo(1)
	d.ButtonDown(ButtonLeft)
	if len(downs) != 1 || downs[0] != ButtonLeft {
		t.Errorf("downs = %v", downs)
	}
	if a.State() != ScreenShowing {
		t.Errorf("state = %v, button-down must not dismiss the banner", a.State())
	}
}

func TestScreenStateString(t *testing.T) {
	if ScreenShowing.String() != "showing" || ScreenState(9).String() != "unknown" {
		t.Errorf("String = %q/%q", ScreenShowing.String(), ScreenState(9).String())
	}
}
