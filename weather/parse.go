package weather

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// NumPeriods is the number of hourly periods on a forecast page.
const NumPeriods = 24

// Row positions inside the forecast diagram table.
const (
	rowHours         = 2
	rowWeather       = 4
	rowTemp          = 6
	rowPOP           = 8
	rowRainfall      = 10
	rowWindDirection = 12
	rowWindSpeed     = 13
	rowPressure      = 15
	rowHumidity      = 17
	rowCloudiness    = 19
)

// ErrNoDiagram is returned when the page has no forecast table.
var ErrNoDiagram = errors.New("weather: forecast diagram not found")

var (
	dateRe = regexp.MustCompile(`[0-3][0-9]\.[0-1][0-9]\.20[0-9][0-9]`)
	intRe  = regexp.MustCompile(`-?\d+`)
)

// Parse reads a wetter.com forecast page. now supplies the date when the
// page carries none. Cells that fail to parse are left zero.
func Parse(r io.Reader, now time.Time) (*Forecast, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("weather: parse html: %w", err)
	}
	f := &Forecast{}
	if h := htmlquery.FindOne(doc, `//h2[contains(concat(' ', normalize-space(@class), ' '), ' delta ')]`); h != nil {
		f.Location = strings.TrimSpace(htmlquery.InnerText(h))
	}

	diagram := htmlquery.FindOne(doc, `//*[@id='vhs-detail-diagram']`)
	if diagram == nil {
		return nil, ErrNoDiagram
	}
	rows := htmlquery.Find(diagram, `.//tr`)
	if len(rows) <= rowCloudiness {
		return nil, fmt.Errorf("weather: forecast diagram has %d rows, want %d", len(rows), rowCloudiness+1)
	}

	date := now
	for _, h3 := range htmlquery.Find(doc, `//h3`) {
		if m := dateRe.FindString(htmlquery.InnerText(h3)); m != "" {
			if d, err := time.ParseInLocation("02.01.2006", m, now.Location()); err == nil {
				date = d
				break
			}
		}
	}

	first := htmlquery.FindOne(rows[rowHours], `./*[1]`)
	if first == nil {
		return nil, fmt.Errorf("weather: no start hour")
	}
	hourText := strings.TrimSpace(htmlquery.InnerText(first))
	if len(hourText) > 2 {
		hourText = hourText[:2]
	}
	startHour, err := strconv.Atoi(strings.TrimSpace(hourText))
	if err != nil {
		return nil, fmt.Errorf("weather: start hour %q: %w", hourText, err)
	}
	t := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, now.Location()).Add(-time.Hour)
	f.Periods = make([]Period, NumPeriods)
	for i := range f.Periods {
		f.Periods[i].Start = t
		t = t.Add(time.Hour)
		f.Periods[i].End = t
	}

	parseRow(f.Periods, rows[rowWeather], parseWeather)
	parseRow(f.Periods, rows[rowTemp], func(p *Period, td *html.Node) { p.Temp = firstInt(td) })
	parseRow(f.Periods, rows[rowPOP], func(p *Period, td *html.Node) { p.POP = firstInt(td) })
	parseRow(f.Periods, rows[rowRainfall], parseRainfall)
	parseRow(f.Periods, rows[rowWindSpeed], func(p *Period, td *html.Node) { p.WindSpeed = firstInt(td) })
	parseRow(f.Periods, rows[rowWindDirection], parseWindDirection)
	parseRow(f.Periods, rows[rowPressure], func(p *Period, td *html.Node) { p.Pressure = firstInt(td) })
	parseRow(f.Periods, rows[rowHumidity], func(p *Period, td *html.Node) { p.Humidity = firstInt(td) })
	parseRow(f.Periods, rows[rowCloudiness], parseCloudiness)
	return f, nil
}

func parseRow(periods []Period, tr *html.Node, job func(*Period, *html.Node)) {
	for i, td := range htmlquery.Find(tr, `./td`) {
		if i >= len(periods) {
			return
		}
		job(&periods[i], td)
	}
}

func parseWeather(p *Period, td *html.Node) {
	img := htmlquery.FindOne(td, `.//img`)
	if img == nil {
		return
	}
	p.Icon = htmlquery.SelectAttr(img, "data-single-src")
	p.ShortText = htmlquery.SelectAttr(img, "alt")
	p.LongText = htmlquery.SelectAttr(img, "title")
}

func parseRainfall(p *Period, td *html.Node) {
	s := strings.ReplaceAll(strings.TrimSpace(htmlquery.InnerText(td)), ",", ".")
	if f := strings.Fields(s); len(f) > 0 {
		p.Rainfall, _ = strconv.ParseFloat(f[0], 64)
	}
}

// parseWindDirection reads the direction from the cell's own text and the
// squall speed from a nested element, if any. Without a squall value the
// squall speed equals the wind speed, so the wind speed row must be parsed
// first.
func parseWindDirection(p *Period, td *html.Node) {
	p.WindSquallSpeed = p.WindSpeed
	seenText := false
	for c := td.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if s := strings.TrimSpace(c.Data); s != "" && !seenText {
				p.WindDirection = s
				seenText = true
			}
		case html.ElementNode:
			if !seenText {
				continue
			}
			if m := intRe.FindString(htmlquery.InnerText(c)); m != "" {
				p.WindSquallSpeed, _ = strconv.Atoi(m)
				return
			}
		}
	}
}

func parseCloudiness(p *Period, td *html.Node) {
	s := strings.TrimSpace(htmlquery.InnerText(td))
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		p.Cloudiness = int(s[0] - '0')
	}
}

func firstInt(n *html.Node) int {
	v, _ := strconv.Atoi(intRe.FindString(htmlquery.InnerText(n)))
	return v
}
