package trellis

import (
	"log/slog"
	"time"
)

// Context is the shared handle every widget carries. It replaces global
// application state: widgets reach the display, the scheduler, the font
// cache and the logger through it.
type Context struct {
	Scheduler Scheduler
	Fonts     *FontCache
	Logger    *slog.Logger

	// Now returns the wall-clock time used by clocks and date widgets.
	// Tests replace it with a fixed time.
	Now func() time.Time

	display *Display
	stats   paintStats
}

// paintStats counts work done during the current frame.
type paintStats struct {
	painted   int
	recovered int
}

// NewContext creates a standalone context. Nil arguments get defaults: a
// manual scheduler that never fires on its own and the default slog logger.
func NewContext(sched Scheduler, logger *slog.Logger) *Context {
	if sched == nil {
		sched = NewManualScheduler(time.Now())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Scheduler: sched,
		Fonts:     NewFontCache(),
		Logger:    logger,
		Now:       time.Now,
	}
}

// Display returns the display this context belongs to, or nil for
// standalone trees.
func (c *Context) Display() *Display {
	return c.display
}

// Do runs fn under the display frame lock. Standalone trees have no lock
// and run fn directly.
func (c *Context) Do(fn func()) {
	if c.display != nil {
		c.display.Update(fn)
		return
	}
	fn()
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
