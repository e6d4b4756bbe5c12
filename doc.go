// Package trellis is a retained-mode widget scene graph for small,
// fixed-size pixel displays.
//
// A [Display] owns a render buffer (320x240 by default) and a tree of
// [Widget] values. Widgets are positioned with parent-relative rectangles
// built from a 9-point anchor algebra ([Rect], [AnchoredPoint], [Anchor])
// and repaint incrementally: a mutation marks the widget dirty, dirtiness
// propagates to the root, and the next [Display.Tick] repaints only the
// dirty, visible widgets, each clipped to its own rectangle.
//
// # Screens
//
// The UI is a set of [Screen] pages registered with the display. Exactly one
// is current. [Display.SwitchTo] hides the old screen, swaps the root's
// children and shows the new one, which displays its name banner until the
// banner timeout elapses or a button is released. Button events are
// forwarded to the current screen's hooks:
//
//	d := trellis.NewDisplay(trellis.DisplayConfig{Scheduler: sched})
//	main := trellis.NewScreen(d, 0, "Main")
//	trellis.NewText(main.Widget(), "hello", "Hello", trellis.DefaultFont)
//	main.OnButtonUp = func(s *trellis.Screen, b trellis.Button) bool {
//		if b == trellis.ButtonRight {
//			s.Navigate(1)
//			return true
//		}
//		return false
//	}
//	_ = d.SwitchTo(0)
//	d.Start()
//
// # Concurrency
//
// Layout and painting are single-threaded under the display's frame lock.
// Background producers publish values through a [Provider]; widgets bound
// with [BindText] or [BindFunc] apply those values through [Display.Update],
// the one synchronization point. Periodic work runs on a [Scheduler]:
// [TaskScheduler] aligns periodic tasks to wall-clock multiples of their
// interval, [ManualScheduler] steps time deterministically in tests.
//
// # Output
//
// Painted frames are published to every registered [Sink]. [PNGSink]
// writes them to disk; the window subpackage mirrors them into an ebiten
// window and turns key presses into button events.
package trellis
