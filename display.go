package trellis

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"
)

// Default render target geometry and frame pacing.
const (
	DefaultWidth         = 320
	DefaultHeight        = 240
	DefaultFrameInterval = 40 * time.Millisecond
)

// maxHistory bounds the navigation history used by Back.
const maxHistory = 16

// maxNavigationHops stops screens that navigate from OnShow in a cycle.
const maxNavigationHops = 8

// ErrUnknownScreen is returned when a screen id is not registered.
var ErrUnknownScreen = errors.New("trellis: unknown screen")

// DisplayConfig configures a Display. Zero fields get defaults.
type DisplayConfig struct {
	Width, Height int

	Background Color // zero = black
	Foreground Color // zero = white

	Scheduler Scheduler    // nil = manual scheduler (nothing fires by itself)
	Logger    *slog.Logger // nil = slog.Default()
	Fonts     *FontCache   // nil = bundled fonts

	// BannerTimeout is how long a screen's name banner stays up.
	BannerTimeout time.Duration
	// FrameInterval is the tick period used by Start and the step applied
	// to animations on every Tick.
	FrameInterval time.Duration

	// Now overrides the wall clock used by clocks and date widgets.
	Now func() time.Time

	// Debug logs per-frame paint statistics at debug level.
	Debug bool
}

// Display is the root of the widget tree. It owns the render buffer, the
// screen registry and the current screen, and serializes every read or
// mutation of the tree behind one frame lock.
type Display struct {
	mu sync.Mutex

	ctx     *Context
	root    *Widget
	buffer  *image.RGBA
	surface *Surface
	logger  *slog.Logger

	screens map[ScreenID]*Screen
	current *Screen
	history []ScreenID
	menu    ScreenID
	hasMenu bool

	navMu      sync.Mutex
	navPending bool
	navTarget  ScreenID

	sinks       []Sink
	sinkFailing map[string]bool
	tweens      []*Tween
	injected    []buttonEvent
	script      *ScriptRunner

	bannerTimeout time.Duration
	frameInterval time.Duration
	tickHandle    TaskHandle
	debug         bool
	stats         FrameStats
}

// FrameStats summarizes the display's painting activity.
type FrameStats struct {
	Ticks     uint64
	Frames    uint64        // ticks that painted
	Painted   int           // widgets painted in the last frame
	Recovered int           // widget paints that panicked in the last frame
	PaintTime time.Duration // duration of the last paint
}

// NewDisplay creates a display with an empty root and a cleared buffer.
func NewDisplay(cfg DisplayConfig) *Display {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Background == (Color{}) {
		cfg.Background = ColorBlack
	}
	if cfg.Foreground == (Color{}) {
		cfg.Foreground = ColorWhite
	}
	if cfg.BannerTimeout <= 0 {
		cfg.BannerTimeout = DefaultBannerTimeout
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	ctx := NewContext(cfg.Scheduler, cfg.Logger)
	if cfg.Fonts != nil {
		ctx.Fonts = cfg.Fonts
	}
	if cfg.Now != nil {
		ctx.Now = cfg.Now
	}

	d := &Display{
		ctx:           ctx,
		logger:        ctx.Logger,
		buffer:        image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		screens:       make(map[ScreenID]*Screen),
		sinkFailing:   make(map[string]bool),
		bannerTimeout: cfg.BannerTimeout,
		frameInterval: cfg.FrameInterval,
		debug:         cfg.Debug,
	}
	ctx.display = d
	d.surface = NewSurface(d.buffer)
	d.root = NewRootContainer(ctx, "root", Size{cfg.Width, cfg.Height})
	d.root.SetColors(cfg.Background, cfg.Foreground)
	return d
}

// Context returns the shared widget context.
func (d *Display) Context() *Context { return d.ctx }

// Root returns the root widget. Its only child is the current screen.
func (d *Display) Root() *Widget { return d.root }

// Size returns the render target size.
func (d *Display) Size() Size { return d.root.rect.Size() }

// Register adds a screen to the registry. NewScreen calls it; screens are
// registered once at startup. Panics on a duplicate id.
func (d *Display) Register(s *Screen) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.screens[s.ID]; ok {
		panic(fmt.Sprintf("trellis: screen %d registered twice", s.ID))
	}
	s.display = d
	d.screens[s.ID] = s
}

// Screen looks up a registered screen.
func (d *Display) Screen(id ScreenID) (*Screen, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.screens[id]
	return s, ok
}

// Current returns the current screen, or nil before the first switch.
func (d *Display) Current() *Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SetMenuScreen sets the screen opened by an unhandled menu button.
func (d *Display) SetMenuScreen(id ScreenID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.menu = id
	d.hasMenu = true
}

// SwitchTo makes the screen with the given id current. Switching to the
// current screen is a no-op.
func (d *Display) SwitchTo(id ScreenID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, ok := d.screens[id]
	if !ok {
		return fmt.Errorf("switch to %d: %w", id, ErrUnknownScreen)
	}
	d.switchToLocked(next, true)
	d.flushNavigationLocked()
	return nil
}

// Back returns to the previous screen in the navigation history. It reports
// whether there was one.
func (d *Display) Back() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok := d.backLocked()
	d.flushNavigationLocked()
	return ok
}

func (d *Display) backLocked() bool {
	for len(d.history) > 0 {
		id := d.history[len(d.history)-1]
		d.history = d.history[:len(d.history)-1]
		if prev, ok := d.screens[id]; ok && prev != d.current {
			d.switchToLocked(prev, false)
			return true
		}
	}
	return false
}

// switchToLocked performs the screen switch contract: hide the old screen,
// replace the root's children, show the new screen and invalidate it.
func (d *Display) switchToLocked(next *Screen, record bool) {
	if next == d.current {
		return
	}
	prev := d.current
	if prev != nil {
		prev.onHide(next)
		if record {
			d.history = append(d.history, prev.ID)
			if len(d.history) > maxHistory {
				d.history = d.history[len(d.history)-maxHistory:]
			}
		}
	}
	d.root.RemoveChildren()
	d.current = next
	d.root.AddChild(next.widget)
	next.onShow(prev)
	next.widget.SetDirtyCascade(true)
	d.logger.Debug("screen switched", "from", screenName(prev), "to", next.Name)
}

func screenName(s *Screen) string {
	if s == nil {
		return ""
	}
	return s.Name
}

// requestNavigation records a pending switch. Safe from any goroutine.
func (d *Display) requestNavigation(id ScreenID) {
	d.navMu.Lock()
	d.navPending = true
	d.navTarget = id
	d.navMu.Unlock()
}

func (d *Display) takeNavigation() (ScreenID, bool) {
	d.navMu.Lock()
	defer d.navMu.Unlock()
	if !d.navPending {
		return 0, false
	}
	d.navPending = false
	return d.navTarget, true
}

// flushNavigationLocked applies navigation requested by hooks.
func (d *Display) flushNavigationLocked() {
	for range maxNavigationHops {
		id, ok := d.takeNavigation()
		if !ok {
			return
		}
		next, ok := d.screens[id]
		if !ok {
			d.logger.Warn("navigation to unknown screen ignored", "screen", int(id))
			continue
		}
		d.switchToLocked(next, true)
	}
	if _, ok := d.takeNavigation(); ok {
		d.logger.Warn("navigation loop stopped", "hops", maxNavigationHops)
	}
}

// ButtonDown forwards a button press to the current screen.
func (d *Display) ButtonDown(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buttonDownLocked(b)
	d.flushNavigationLocked()
}

// ButtonUp forwards a button release to the current screen. The screen
// dismisses its banner first. Unhandled menu and cancel buttons open the
// menu screen and go back, respectively.
func (d *Display) ButtonUp(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buttonUpLocked(b)
	d.flushNavigationLocked()
}

func (d *Display) buttonDownLocked(b Button) {
	if d.current != nil {
		d.current.buttonDown(b)
	}
}

func (d *Display) buttonUpLocked(b Button) {
	if d.current == nil {
		return
	}
	if d.current.buttonUp(b) {
		return
	}
	switch b {
	case ButtonMenu:
		if d.hasMenu {
			if menu, ok := d.screens[d.menu]; ok && menu != d.current {
				d.switchToLocked(menu, true)
			}
		}
	case ButtonCancel:
		d.backLocked()
	}
}

// Update runs fn under the frame lock. Background goroutines use it to
// mutate widgets.
func (d *Display) Update(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
	d.flushNavigationLocked()
}

// Dirty reports whether a frame is due. It does not take the frame lock.
func (d *Display) Dirty() bool { return d.root.IsDirty() }

// Tick runs one frame: injected input, scripted steps, animations and
// pending navigation are processed, then the tree is painted and published
// if anything is dirty. It reports whether a frame was painted.
func (d *Display) Tick() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Ticks++

	d.processInjectedLocked()
	if d.script != nil {
		d.script.step(d)
	}
	d.advanceTweensLocked(d.frameInterval)
	d.flushNavigationLocked()

	if !d.root.IsDirty() {
		return false
	}
	d.paintLocked()
	d.publishLocked()
	return true
}

func (d *Display) paintLocked() {
	start := time.Now()
	d.ctx.stats = paintStats{}
	d.root.Paint(d.surface)
	d.stats.Frames++
	d.stats.Painted = d.ctx.stats.painted
	d.stats.Recovered = d.ctx.stats.recovered
	d.stats.PaintTime = time.Since(start)
	d.debugLog()
}

func (d *Display) publishLocked() {
	for _, s := range d.sinks {
		name := s.Name()
		if err := s.Publish(d.buffer); err != nil {
			if !d.sinkFailing[name] {
				d.logger.Warn("sink publish failed", "sink", name, "err", err)
				d.sinkFailing[name] = true
			}
			continue
		}
		if d.sinkFailing[name] {
			d.logger.Info("sink recovered", "sink", name)
			delete(d.sinkFailing, name)
		}
	}
}

// AddSink registers an output for painted frames. The sink immediately
// receives the current buffer.
func (d *Display) AddSink(s Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
	if err := s.Publish(d.buffer); err != nil {
		d.logger.Warn("sink unavailable, rendering continues", "sink", s.Name(), "err", err)
		d.sinkFailing[s.Name()] = true
	}
}

// Frame returns a copy of the render buffer.
func (d *Display) Frame() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	img := image.NewRGBA(d.buffer.Rect)
	copy(img.Pix, d.buffer.Pix)
	return img
}

// Stats returns the frame statistics.
func (d *Display) Stats() FrameStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Start ticks the display every frame interval on the context scheduler.
func (d *Display) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tickHandle != 0 {
		return
	}
	d.tickHandle = d.ctx.Scheduler.Schedule(d.frameInterval, func() { d.Tick() })
}

// Stop cancels the tick task started by Start.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tickHandle != 0 {
		d.ctx.Scheduler.Cancel(d.tickHandle)
		d.tickHandle = 0
	}
}

// SetDebugMode enables or disables per-frame debug logging.
func (d *Display) SetDebugMode(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debug = enabled
}
