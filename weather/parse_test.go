package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phanxgames/trellis"
	"github.com/phanxgames/trellis/imagecache"
)

var testNow = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

// forecastPage renders a page shaped like a wetter.com hourly forecast
// with the given number of diagram rows.
func forecastPage(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	b.WriteString(`<h2 class="delta mb">Wetter München</h2>`)
	b.WriteString(`<h3>Mittwoch, 05.03.2024</h3>`)
	b.WriteString(`<div id="vhs-detail-diagram"><table>`)
	for r := 0; r < rows; r++ {
		b.WriteString("<tr>")
		for i := 0; i < NumPeriods; i++ {
			b.WriteString("<td>")
			b.WriteString(cell(r, i))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</table></div></body></html>`)
	return b.String()
}

func cell(row, i int) string {
	switch row {
	case rowHours:
		return fmt.Sprintf("%02d Uhr", (14+i)%24)
	case rowWeather:
		return fmt.Sprintf(`<img data-single-src="https://icons.example.com/d_%d.png" alt="sonnig %d" title="Sonnig und warm %d">`, i, i, i)
	case rowTemp:
		return fmt.Sprintf("%d°", 10+i)
	case rowPOP:
		return "30 %"
	case rowRainfall:
		return "0,5 l/m²"
	case rowWindDirection:
		if i%2 == 0 {
			return "NW <span>Böen 40 km/h</span>"
		}
		return "S"
	case rowWindSpeed:
		return "15 km/h"
	case rowPressure:
		return "1013 hPa"
	case rowHumidity:
		return "70 %"
	case rowCloudiness:
		return "6/8"
	}
	return ""
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(forecastPage(20)), testNow)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Location != "Wetter München" {
		t.Errorf("Location = %q", f.Location)
	}
	if len(f.Periods) != NumPeriods {
		t.Fatalf("periods = %d, want %d", len(f.Periods), NumPeriods)
	}

	p := f.Periods[0]
	wantStart := time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) || p.Duration() != time.Hour {
		t.Errorf("first period = %v + %v, want %v + 1h", p.Start, p.Duration(), wantStart)
	}
	if got := f.Periods[NumPeriods-1].End; !got.Equal(wantStart.Add(NumPeriods * time.Hour)) {
		t.Errorf("last end = %v", got)
	}

	checks := []struct {
		name      string
		got, want any
	}{
		{"icon", p.Icon, "https://icons.example.com/d_0.png"},
		{"short", p.ShortText, "sonnig 0"},
		{"long", p.LongText, "Sonnig und warm 0"},
		{"temp", p.Temp, 10},
		{"pop", p.POP, 30},
		{"rainfall", p.Rainfall, 0.5},
		{"direction", p.WindDirection, "NW"},
		{"wind", p.WindSpeed, 15},
		{"squall", p.WindSquallSpeed, 40},
		{"pressure", p.Pressure, 1013},
		{"humidity", p.Humidity, 70},
		{"cloudiness", p.Cloudiness, 6},
		{"temp[5]", f.Periods[5].Temp, 15},
		{"direction[1]", f.Periods[1].WindDirection, "S"},
		{"squall[1]", f.Periods[1].WindSquallSpeed, 15},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestParseUsesNowWithoutDate(t *testing.T) {
	page := strings.Replace(forecastPage(20), "05.03.2024", "morgen", 1)
	f, err := Parse(strings.NewReader(page), testNow)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)
	if !f.Periods[0].Start.Equal(want) {
		t.Errorf("start = %v, want %v", f.Periods[0].Start, want)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("<html><body><p>maintenance</p></body></html>"), testNow); err != ErrNoDiagram {
		t.Errorf("no diagram: err = %v, want ErrNoDiagram", err)
	}
	if _, err := Parse(strings.NewReader(forecastPage(10)), testNow); err == nil {
		t.Error("short diagram: expected error")
	}
	bad := strings.Replace(forecastPage(20), "14 Uhr", "xx Uhr", 1)
	if _, err := Parse(strings.NewReader(bad), testNow); err == nil {
		t.Error("bad start hour: expected error")
	}
}

func hourPeriod(start time.Time, temp, pop, wind int, dir string) Period {
	return Period{
		Start:         start,
		End:           start.Add(time.Hour),
		Temp:          temp,
		POP:           pop,
		Rainfall:      0.25,
		WindDirection: dir,
		WindSpeed:     wind,
		Pressure:      1000,
		Humidity:      50,
		Cloudiness:    4,
	}
}

func TestPeriodAdd(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	a := hourPeriod(t0, 10, 20, 10, "N")
	a.Icon = "first.png"
	b := hourPeriod(t0.Add(time.Hour), 13, 50, 30, "W")

	for _, order := range []struct {
		name string
		x, y Period
	}{{"forward", a, b}, {"reverse", b, a}} {
		t.Run(order.name, func(t *testing.T) {
			c, err := order.x.Add(order.y)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if !c.Start.Equal(t0) || c.Duration() != 2*time.Hour {
				t.Errorf("span = %v + %v", c.Start, c.Duration())
			}
			if c.Icon != "first.png" {
				t.Errorf("Icon = %q, want earlier period's", c.Icon)
			}
			// (10 + 13) / 2 rounds half away from zero.
			if c.Temp != 12 {
				t.Errorf("Temp = %d, want 12", c.Temp)
			}
			// 100 - 0.8*0.5*100
			if c.POP != 60 {
				t.Errorf("POP = %d, want 60", c.POP)
			}
			if c.Rainfall != 0.5 {
				t.Errorf("Rainfall = %v", c.Rainfall)
			}
			if c.WindDirection != "W" || c.WindSpeed != 20 {
				t.Errorf("wind = %s %d, want W 20", c.WindDirection, c.WindSpeed)
			}
		})
	}

	far := hourPeriod(t0.Add(3*time.Hour), 0, 0, 0, "")
	if _, err := a.Add(far); err == nil {
		t.Error("non-adjacent periods: expected error")
	}
}

func TestForecastMerge(t *testing.T) {
	f, err := Parse(strings.NewReader(forecastPage(20)), testNow)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		n, count int
		last     time.Duration
	}{
		{1, 24, time.Hour},
		{3, 8, 3 * time.Hour},
		{5, 5, 4 * time.Hour},
		{6, 4, 6 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			got, err := f.Merge(tt.n)
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if len(got) != tt.count {
				t.Fatalf("len = %d, want %d", len(got), tt.count)
			}
			if d := got[len(got)-1].Duration(); d != tt.last {
				t.Errorf("last duration = %v, want %v", d, tt.last)
			}
			if !got[0].Start.Equal(f.Periods[0].Start) {
				t.Errorf("first start = %v", got[0].Start)
			}
		})
	}

	got, _ := f.Merge(1)
	got[0].Temp = -99
	if f.Periods[0].Temp == -99 {
		t.Error("Merge(1) must return a copy")
	}
}

func TestFetcherPublishes(t *testing.T) {
	page := forecastPage(20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bayern/DE0001.html" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, page)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache, err := imagecache.New(t.TempDir(), imagecache.WithClient(srv.Client()), imagecache.WithLogger(logger))
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cache.Run(ctx)

	f := NewFetcher("bayern/DE0001", cache, logger)
	f.BaseURL = srv.URL + "/"
	f.now = func() time.Time { return testNow }
	if got := f.URL(); got != srv.URL+"/bayern/DE0001.html" {
		t.Errorf("URL = %q", got)
	}

	got := make(chan *Forecast, 1)
	f.Provider().AddListener(func(fc *Forecast) { got <- fc })

	sched := trellis.NewManualScheduler(testNow)
	if h := f.Start(sched, 10*time.Minute); h == 0 {
		t.Fatal("Start returned zero handle")
	}
	select {
	case fc := <-got:
		if fc.Location != "Wetter München" || len(fc.Periods) != NumPeriods {
			t.Errorf("forecast = %q with %d periods", fc.Location, len(fc.Periods))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("forecast not published")
	}
	if f.Provider().Data() == nil {
		t.Error("provider should hold the forecast")
	}

	// The page is cached now; a refresh publishes synchronously.
	f.Refresh()
	select {
	case <-got:
	default:
		t.Error("cached refresh did not publish")
	}
}
