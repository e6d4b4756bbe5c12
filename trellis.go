package trellis

import "fmt"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication happens in RGBA, which makes Color usable wherever a
// color.Color is expected.
type Color struct {
	R, G, B, A float64
}

// Named colors, including the gray ramp the dashboard screens use.
var (
	ColorBlack   = Color{0, 0, 0, 1}
	ColorWhite   = Color{1, 1, 1, 1}
	ColorRed     = Color{1, 0, 0, 1}
	ColorGreen   = Color{0, 1, 0, 1}
	ColorBlue    = Color{0, 0, 1, 1}
	ColorYellow  = Color{1, 1, 0, 1}
	ColorMagenta = Color{1, 0, 1, 1}
	ColorCyan    = Color{0, 1, 1, 1}
	ColorGray20  = Color{0.2, 0.2, 0.2, 1}
	ColorGray33  = Color{1.0 / 3, 1.0 / 3, 1.0 / 3, 1}
	ColorGray50  = Color{0.5, 0.5, 0.5, 1}
	ColorGray67  = Color{2.0 / 3, 2.0 / 3, 2.0 / 3, 1}
	ColorGray80  = Color{0.8, 0.8, 0.8, 1}
)

// RGB returns an opaque color.
func RGB(r, g, b float64) Color { return Color{r, g, b, 1} }

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(clamp01(c.A)*0xffff + 0.5)
	r = uint32(clamp01(c.R)*clamp01(c.A)*0xffff + 0.5)
	g = uint32(clamp01(c.G)*clamp01(c.A)*0xffff + 0.5)
	b = uint32(clamp01(c.B)*clamp01(c.A)*0xffff + 0.5)
	return r, g, b, a
}

// Scale multiplies the color channels by f, clamping to [0, 1]. Alpha is kept.
func (c Color) Scale(f float64) Color {
	return Color{clamp01(c.R * f), clamp01(c.G * f), clamp01(c.B * f), c.A}
}

// WithAlpha returns c with the given alpha.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WidgetKind distinguishes painting and layout behavior for a Widget.
type WidgetKind uint8

const (
	KindRoot      WidgetKind = iota // display root, holds the current screen
	KindScreen                      // one full-size page of the UI
	KindContainer                   // group widget, paints only its children
	KindText                        // renders a TextBlock
	KindLine                        // horizontal or vertical separator
	KindBar                         // segmented progress bar
	KindClock                       // analog clock face
	KindImage                       // renders an image.Image scaled to fit
	KindCustom                      // paints through Widget.PaintFunc
)

var kindNames = [...]string{"root", "screen", "container", "text", "line", "bar", "clock", "image", "custom"}

func (k WidgetKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("WidgetKind(%d)", uint8(k))
}

// IsContainer reports whether widgets of this kind may own children.
func (k WidgetKind) IsContainer() bool {
	return k == KindRoot || k == KindScreen || k == KindContainer
}

// Button is one of the seven logical input buttons.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonOK
	ButtonCancel
	ButtonUp
	ButtonDown
	ButtonMenu
)

// Buttons lists every logical button.
var Buttons = [7]Button{ButtonLeft, ButtonRight, ButtonOK, ButtonCancel, ButtonUp, ButtonDown, ButtonMenu}

var buttonNames = [7]string{"left", "right", "ok", "cancel", "up", "down", "menu"}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// ParseButton resolves a lower-case button name as produced by String.
func ParseButton(name string) (Button, error) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("trellis: unknown button %q", name)
}

// HAlign controls horizontal text alignment within a widget.
type HAlign uint8

const (
	HAlignLeft HAlign = iota
	HAlignCenter
	HAlignRight
)

// VAlign controls vertical text alignment within a widget.
type VAlign uint8

const (
	VAlignTop VAlign = iota
	VAlignCenter
	VAlignBottom
)
