package trellis

import "time"

// ScreenID identifies a registered screen.
type ScreenID uint16

// ScreenState is the lifecycle state of a screen.
type ScreenState uint8

const (
	// ScreenHidden: not the current screen.
	ScreenHidden ScreenState = iota
	// ScreenShowing: current, name banner displayed.
	ScreenShowing
	// ScreenShown: current, banner dismissed.
	ScreenShown
)

var screenStateNames = [...]string{"hidden", "showing", "shown"}

func (s ScreenState) String() string {
	if int(s) < len(screenStateNames) {
		return screenStateNames[s]
	}
	return "unknown"
}

// DefaultBannerTimeout is how long the name banner stays up after a screen
// is shown.
const DefaultBannerTimeout = 2 * time.Second

// bannerFont is the font of the screen name banner.
var bannerFont = Font{Family: FontBold, Size: 20}

// Screen is one full-size page of the UI. It wraps a KindScreen widget that
// holds the page's content, plus a name banner overlay that is displayed for
// a short time whenever the screen becomes current.
//
// Hooks run on the display goroutine under the frame lock. They may mutate
// widgets freely but must not call Display methods that lock; use Navigate
// to request a screen switch.
type Screen struct {
	ID   ScreenID
	Name string

	// OnShow runs after the screen became current. prev is nil on the first
	// switch.
	OnShow func(s *Screen, prev *Screen)
	// OnHide runs before the screen stops being current.
	OnHide func(s *Screen, next *Screen)
	// OnButtonDown and OnButtonUp report whether they handled the button.
	OnButtonDown func(s *Screen, b Button) bool
	OnButtonUp   func(s *Screen, b Button) bool

	widget        *Widget
	display       *Display
	banner        *Widget
	state         ScreenState
	bannerVisible bool
	bannerTimer   TaskHandle
	showSeq       uint64
}

// NewScreen creates a screen sized to the display and registers it under id.
// Panics if id is already registered.
func NewScreen(d *Display, id ScreenID, name string) *Screen {
	s := &Screen{ID: id, Name: name, display: d}
	w := newWidget(nil, KindScreen, name)
	w.ctx = d.ctx
	w.rect = d.root.rect
	w.background = d.root.background
	w.foreground = d.root.foreground
	w.screen = s
	s.widget = w

	s.banner = NewText(w, name+".banner", name, bannerFont)
	s.banner.SetColors(w.foreground, w.background)
	s.banner.SetLayer(LayerOverlay)
	s.banner.SetRect(RectAt(w.rect.Size().Position(AnchorCenter), s.bannerSize()))
	s.banner.visible = false

	d.Register(s)
	return s
}

func (s *Screen) bannerSize() Size {
	p := s.banner.PreferredSize()
	return Size{min(p.Width+16, s.widget.rect.Width), min(p.Height+8, s.widget.rect.Height)}
}

// Widget returns the container holding the screen's content.
func (s *Screen) Widget() *Widget { return s.widget }

// Banner returns the name banner overlay.
func (s *Screen) Banner() *Widget { return s.banner }

// Display returns the display the screen is registered with.
func (s *Screen) Display() *Display { return s.display }

// State returns the lifecycle state.
func (s *Screen) State() ScreenState { return s.state }

// BannerVisible reports whether the name banner is up.
func (s *Screen) BannerVisible() bool { return s.bannerVisible }

// EraseAll reports whether the next paint clears the whole screen.
func (s *Screen) EraseAll() bool { return s.widget.erase }

// IsCurrent reports whether this is the display's current screen.
func (s *Screen) IsCurrent() bool {
	return s.display != nil && s.display.current == s
}

// Navigate requests a switch to another screen. From a hook the switch is
// applied as soon as the hook returns; elsewhere it is applied on the next
// display tick.
func (s *Screen) Navigate(id ScreenID) {
	s.display.requestNavigation(id)
}

// onShow enters the Showing state: the banner goes up, the whole screen is
// invalidated and the banner timeout is armed.
func (s *Screen) onShow(prev *Screen) {
	s.state = ScreenShowing
	s.bannerVisible = true
	s.banner.SetVisible(true)
	s.widget.SetDirtyCascade(true)

	s.cancelBannerTimer()
	s.showSeq++
	seq := s.showSeq
	ctx := s.widget.ctx
	s.bannerTimer = ctx.Scheduler.ScheduleOnce(s.display.bannerTimeout, func() {
		ctx.Do(func() {
			// A stale timer from an earlier show must not dismiss this one.
			if s.showSeq == seq {
				s.dismissBanner()
			}
		})
	})

	if s.OnShow != nil {
		s.OnShow(s, prev)
	}
}

// onHide leaves the current-screen role and drops any pending banner timer.
func (s *Screen) onHide(next *Screen) {
	if s.OnHide != nil {
		s.OnHide(s, next)
	}
	s.cancelBannerTimer()
	s.showSeq++
	s.state = ScreenHidden
	s.bannerVisible = false
	s.banner.visible = false
}

// dismissBanner performs the Showing -> Shown transition. It is a no-op in
// any other state.
func (s *Screen) dismissBanner() bool {
	if s.state != ScreenShowing {
		return false
	}
	s.state = ScreenShown
	s.bannerVisible = false
	s.cancelBannerTimer()
	s.banner.SetVisible(false)
	return true
}

func (s *Screen) cancelBannerTimer() {
	if s.bannerTimer != 0 {
		s.widget.ctx.Scheduler.Cancel(s.bannerTimer)
		s.bannerTimer = 0
	}
}

func (s *Screen) buttonDown(b Button) bool {
	if s.OnButtonDown != nil {
		return s.OnButtonDown(s, b)
	}
	return false
}

// buttonUp dismisses the banner first, then runs the hook.
func (s *Screen) buttonUp(b Button) bool {
	s.dismissBanner()
	if s.OnButtonUp != nil {
		return s.OnButtonUp(s, b)
	}
	return false
}
