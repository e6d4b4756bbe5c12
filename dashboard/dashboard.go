// Package dashboard builds the screens of the desktop dashboard: an
// overview, system statistics, a large clock, the weather forecast and a
// navigation menu.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/phanxgames/trellis"
	"github.com/phanxgames/trellis/imagecache"
	"github.com/phanxgames/trellis/sysinfo"
	"github.com/phanxgames/trellis/weather"
)

// Screen ids.
const (
	ScreenMain trellis.ScreenID = iota
	ScreenSystem
	ScreenTime
	ScreenWeather
	ScreenMenu
)

var screenNames = map[string]trellis.ScreenID{
	"main":    ScreenMain,
	"system":  ScreenSystem,
	"time":    ScreenTime,
	"weather": ScreenWeather,
	"menu":    ScreenMenu,
}

// ParseScreen resolves a screen name as used in the configuration.
func ParseScreen(name string) (trellis.ScreenID, error) {
	id, ok := screenNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown screen %q", name)
	}
	return id, nil
}

// carousel is the left/right navigation order.
var carousel = []trellis.ScreenID{ScreenMain, ScreenSystem, ScreenWeather, ScreenTime}

// iconLifetime keeps weather icons for a month.
const iconLifetime = 30 * 24 * time.Hour

var (
	fontSmall = trellis.Font{Family: trellis.FontRegular, Size: 12}
	fontMono  = trellis.Font{Family: trellis.FontMono, Size: 10}
	fontLarge = trellis.Font{Family: trellis.FontBold, Size: 28}
)

// Sources are the data producers the screens bind to. Nil sources leave
// their widgets showing placeholders.
type Sources struct {
	System  *sysinfo.Sampler
	Weather *trellis.Provider[*weather.Forecast]
	Images  *imagecache.Cache
	// Exit is run by the menu's exit entry.
	Exit func()
}

// Dashboard holds the built screens.
type Dashboard struct {
	Display *trellis.Display
	Screens map[trellis.ScreenID]*trellis.Screen
	Menu    *trellis.Menu
}

// Build creates and registers every screen on d and sets the menu screen.
// Call it before starting the producers in src.
func Build(d *trellis.Display, src Sources) *Dashboard {
	db := &Dashboard{Display: d, Screens: make(map[trellis.ScreenID]*trellis.Screen)}
	db.Screens[ScreenMain] = buildMain(d, src)
	db.Screens[ScreenSystem] = buildSystem(d, src)
	db.Screens[ScreenTime] = buildTime(d)
	db.Screens[ScreenWeather] = buildWeather(d, src)
	db.Screens[ScreenMenu], db.Menu = buildMenu(d, src)
	for id, s := range db.Screens {
		if id != ScreenMenu {
			s.OnButtonUp = carouselNavigation
		}
	}
	db.Screens[ScreenMain].OnButtonUp = func(s *trellis.Screen, b trellis.Button) bool {
		switch b {
		case trellis.ButtonUp:
			s.Navigate(ScreenTime)
		case trellis.ButtonDown:
			s.Navigate(ScreenSystem)
		default:
			return carouselNavigation(s, b)
		}
		return true
	}
	d.SetMenuScreen(ScreenMenu)
	return db
}

// carouselNavigation cycles through the carousel with left and right.
func carouselNavigation(s *trellis.Screen, b trellis.Button) bool {
	step := 0
	switch b {
	case trellis.ButtonLeft:
		step = -1
	case trellis.ButtonRight:
		step = 1
	default:
		return false
	}
	i := 0
	for j, id := range carousel {
		if id == s.ID {
			i = j
			break
		}
	}
	n := len(carousel)
	s.Navigate(carousel[((i+step)%n+n)%n])
	return true
}

// formatCPUTwoLines splits the CPU line for narrow columns.
func formatCPUTwoLines(c sysinfo.CPU) string {
	f := strings.Fields(sysinfo.FormatCPU(c))
	if len(f) < 4 {
		return strings.Join(f, " ")
	}
	return f[0] + " " + f[1] + "\n" + f[2] + " " + f[3]
}

func buildMain(d *trellis.Display, src Sources) *trellis.Screen {
	s := trellis.NewScreen(d, ScreenMain, "Main")
	sw := s.Widget()
	size := d.Size()
	w := size.Width

	date := trellis.NewDateTime(sw, "date", "Mon 02.01.2006", fontSmall, time.Minute)
	date.SetRectAt(trellis.Pt(w/2, 2, trellis.AnchorTopCenter), trellis.Size{Width: w, Height: 18})

	sep := trellis.NewLine(sw, "sep.top", trellis.Horizontal)
	sep.SetRectAt(trellis.Pt(0, 20, trellis.AnchorTopLeft), trellis.Size{Width: w, Height: 3})

	clock := trellis.NewClock(sw, "clock")
	clock.SetRectAt(trellis.Pt(4, 26, trellis.AnchorTopLeft), clock.PreferredSize())

	right := clock.Position(trellis.AnchorTopRight).X + 4
	t := trellis.NewDateTime(sw, "time", "15:04:05", fontLarge, time.Second)
	t.SetRectBetween(trellis.Pt(right, 26, trellis.AnchorTopLeft), trellis.Vector{X: w - 4, Y: 76})

	cpu := trellis.NewText(sw, "cpu", "CPU -", fontMono)
	cpu.SetRectBetween(trellis.Pt(right, 80, trellis.AnchorTopLeft), trellis.Vector{X: w - 4, Y: 124})
	if src.System != nil {
		trellis.BindText(cpu, src.System.CPU, formatCPUTwoLines)
	}

	sep2 := trellis.NewLine(sw, "sep.weather", trellis.Horizontal)
	sep2.SetRectAt(trellis.Pt(0, 128, trellis.AnchorTopLeft), trellis.Size{Width: w, Height: 3})

	strip := trellis.NewContainer(sw, "weather.strip")
	strip.SetRectBetween(trellis.Pt(0, 132, trellis.AnchorTopLeft), trellis.Vector{X: w, Y: size.Height})
	cols := newForecastColumns(strip, 4, src.Images)
	if src.Weather != nil {
		trellis.BindFunc(d.Context(), src.Weather, func(fc *weather.Forecast) {
			cols.show(fc, 3)
		})
	}
	return s
}

func buildSystem(d *trellis.Display, src Sources) *trellis.Screen {
	s := trellis.NewScreen(d, ScreenSystem, "System")
	sw := s.Widget()
	size := d.Size()
	w := size.Width

	barStyle := trellis.BarStyle{
		Direction:    trellis.BarLeftToRight,
		Border:       trellis.ColorGray50,
		BorderWidth:  1,
		CornerRadius: 3,
		Max:          100,
	}
	cpuBar := trellis.NewBar(sw, "cpu.bar", trellis.Size{Width: w - 8, Height: 14}, barStyle)
	cpuBar.SetRectAt(trellis.Pt(4, 4, trellis.AnchorTopLeft), cpuBar.PreferredSize())
	cpuBar.SetBarValues(
		trellis.BarSegment{Color: trellis.ColorGreen},
		trellis.BarSegment{Color: trellis.ColorRed},
		trellis.BarSegment{Color: trellis.ColorYellow},
		trellis.BarSegment{Color: trellis.ColorBlue},
	)
	cpuText := trellis.NewText(sw, "cpu.text", "CPU -", fontMono)
	cpuText.SetRectBetween(trellis.Pt(4, 20, trellis.AnchorTopLeft), trellis.Vector{X: w - 4, Y: 34})
	cpuText.SetAlign(trellis.HAlignLeft, trellis.VAlignCenter)

	memBar := trellis.NewBar(sw, "mem.bar", trellis.Size{Width: w - 8, Height: 14}, barStyle)
	memBar.SetRectAt(trellis.Pt(4, 38, trellis.AnchorTopLeft), memBar.PreferredSize())
	memBar.SetBarValues(trellis.BarSegment{Color: trellis.ColorCyan})
	memText := trellis.NewText(sw, "mem.text", "MEM -", fontMono)
	memText.SetRectBetween(trellis.Pt(4, 54, trellis.AnchorTopLeft), trellis.Vector{X: w - 4, Y: 68})
	memText.SetAlign(trellis.HAlignLeft, trellis.VAlignCenter)

	loadText := trellis.NewText(sw, "load.text", "LOAD -", fontMono)
	loadText.SetRectBetween(trellis.Pt(4, 70, trellis.AnchorTopLeft), trellis.Vector{X: w - 4, Y: 84})
	loadText.SetAlign(trellis.HAlignLeft, trellis.VAlignCenter)

	sep := trellis.NewLine(sw, "sep", trellis.Horizontal)
	sep.SetRectAt(trellis.Pt(0, 86, trellis.AnchorTopLeft), trellis.Size{Width: w, Height: 3})

	procs := trellis.NewText(sw, "procs", "", fontMono)
	procs.SetRectBetween(trellis.Pt(4, 92, trellis.AnchorTopLeft), trellis.Vector{X: w - 4, Y: size.Height - 2})
	procs.SetAlign(trellis.HAlignLeft, trellis.VAlignTop)

	if src.System == nil {
		return s
	}
	ctx := d.Context()
	trellis.BindFunc(ctx, src.System.CPU, func(c sysinfo.CPU) {
		cpuText.SetText(sysinfo.FormatCPU(c))
		to := []float64{c.User + c.Nice, c.System, c.IRQ + c.SoftIRQ, c.IOWait}
		if disp := ctx.Display(); disp != nil && s.IsCurrent() {
			disp.Animate(trellis.TweenBar(cpuBar, to, 300*time.Millisecond, nil))
			return
		}
		segs := cpuBar.BarValues()
		for i := range segs {
			segs[i].Value = to[i]
		}
		cpuBar.SetBarValues(segs...)
	})
	trellis.BindFunc(ctx, src.System.Memory, func(m sysinfo.Memory) {
		memText.SetText("MEM " + sysinfo.FormatMemory(m))
		memBar.SetBarValues(trellis.BarSegment{Value: m.UsedPercent, Color: trellis.ColorCyan})
	})
	trellis.BindText(loadText, src.System.Load, func(l sysinfo.Load) string {
		return "LOAD " + sysinfo.FormatLoad(l)
	})
	trellis.BindText(procs, src.System.Processes, func(ps []sysinfo.Process) string {
		lines := make([]string, 0, len(ps))
		for _, p := range ps {
			lines = append(lines, sysinfo.FormatProcess(p))
		}
		return strings.Join(lines, "\n")
	})
	return s
}

func buildTime(d *trellis.Display) *trellis.Screen {
	s := trellis.NewScreen(d, ScreenTime, "Time")
	sw := s.Widget()
	size := d.Size()

	face := min(size.Width, size.Height) - 60
	clock := trellis.NewClock(sw, "clock")
	clock.SetRectAt(trellis.Pt(size.Width/2, 6, trellis.AnchorTopCenter), trellis.Size{Width: face, Height: face})

	t := trellis.NewDateTime(sw, "time", "15:04:05", fontLarge, time.Second)
	t.SetRectBetween(trellis.Pt(0, face+10, trellis.AnchorTopLeft), trellis.Vector{X: size.Width, Y: size.Height - 2})
	t.FitFontSize(t.Size())
	return s
}

func buildWeather(d *trellis.Display, src Sources) *trellis.Screen {
	s := trellis.NewScreen(d, ScreenWeather, "Weather")
	sw := s.Widget()
	size := d.Size()

	loc := trellis.NewText(sw, "location", "no forecast", fontSmall)
	loc.SetRectAt(trellis.Pt(size.Width/2, 2, trellis.AnchorTopCenter), trellis.Size{Width: size.Width, Height: 18})

	sep := trellis.NewLine(sw, "sep", trellis.Horizontal)
	sep.SetRectAt(trellis.Pt(0, 20, trellis.AnchorTopLeft), trellis.Size{Width: size.Width, Height: 3})

	grid := trellis.NewContainer(sw, "forecast")
	grid.SetRectBetween(trellis.Pt(0, 24, trellis.AnchorTopLeft), trellis.Vector{X: size.Width, Y: size.Height})
	cols := newForecastColumns(grid, 4, src.Images)
	if src.Weather != nil {
		trellis.BindFunc(d.Context(), src.Weather, func(fc *weather.Forecast) {
			if fc != nil && fc.Location != "" {
				loc.SetText(fc.Location)
			}
			cols.show(fc, 6)
		})
	}
	return s
}

func buildMenu(d *trellis.Display, src Sources) (*trellis.Screen, *trellis.Menu) {
	s := trellis.NewScreen(d, ScreenMenu, "Menu")
	entry := func(label string, id trellis.ScreenID) trellis.MenuEntry {
		return trellis.MenuEntry{Label: label, OnSelect: func() { s.Navigate(id) }}
	}
	entries := []trellis.MenuEntry{
		entry("Main", ScreenMain),
		entry("System", ScreenSystem),
		entry("Time", ScreenTime),
		entry("Weather", ScreenWeather),
	}
	if src.Exit != nil {
		entries = append(entries, trellis.MenuEntry{Label: "Exit", OnSelect: src.Exit})
	}
	m := trellis.NewMenu(s.Widget(), "menu", trellis.Font{Family: trellis.FontRegular, Size: 16}, entries)
	s.OnButtonUp = func(_ *trellis.Screen, b trellis.Button) bool {
		return m.HandleButton(b)
	}
	return s, m
}
