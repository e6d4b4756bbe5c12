// Package weather scrapes hourly forecasts from wetter.com.
package weather

import (
	"fmt"
	"math"
	"time"
)

// Period is the forecast for one time span.
type Period struct {
	Start, End      time.Time
	ShortText       string
	LongText        string
	Icon            string // icon URL
	Temp            int    // °C
	POP             int    // probability of precipitation, percent
	Rainfall        float64
	WindDirection   string
	WindSpeed       int // km/h
	WindSquallSpeed int // km/h
	Pressure        int // hPa
	Humidity        int // percent
	Cloudiness      int // eighths
}

// Duration returns End - Start.
func (p Period) Duration() time.Duration { return p.End.Sub(p.Start) }

// Add merges two adjacent periods into one spanning both. Order does not
// matter, but one period must end where the other starts. Averages are
// weighted by duration; the probability of precipitation combines as
// independent events; rainfall sums; the wind direction is taken from the
// windier period.
func (p Period) Add(o Period) (Period, error) {
	a, b := p, o
	if a.Start.After(b.Start) {
		a, b = b, a
	}
	if !a.End.Equal(b.Start) {
		return Period{}, fmt.Errorf("weather: periods %s-%s and %s-%s are not adjacent",
			a.Start.Format(time.DateTime), a.End.Format(time.DateTime),
			b.Start.Format(time.DateTime), b.End.Format(time.DateTime))
	}
	c := Period{
		Start:     a.Start,
		End:       b.End,
		ShortText: a.ShortText,
		LongText:  a.LongText,
		Icon:      a.Icon,
	}
	ad, bd, cd := a.Duration().Seconds(), b.Duration().Seconds(), c.Duration().Seconds()
	weighted := func(x, y int) int {
		if cd == 0 {
			return (x + y) / 2
		}
		return int(math.Round((float64(x)*ad + float64(y)*bd) / cd))
	}
	c.Temp = weighted(a.Temp, b.Temp)
	c.POP = int(math.Round(100 - float64(100-a.POP)*float64(100-b.POP)/100))
	c.Rainfall = a.Rainfall + b.Rainfall
	if a.WindSpeed > b.WindSpeed {
		c.WindDirection = a.WindDirection
	} else {
		c.WindDirection = b.WindDirection
	}
	c.WindSpeed = weighted(a.WindSpeed, b.WindSpeed)
	c.WindSquallSpeed = max(a.WindSquallSpeed, b.WindSquallSpeed)
	c.Pressure = weighted(a.Pressure, b.Pressure)
	c.Humidity = weighted(a.Humidity, b.Humidity)
	c.Cloudiness = weighted(a.Cloudiness, b.Cloudiness)
	return c, nil
}

// Forecast is a parsed forecast page.
type Forecast struct {
	Location string
	Periods  []Period
}

// Merge combines consecutive periods in groups of n, e.g. n=3 turns an
// hourly forecast into 3-hour blocks. A trailing partial group is merged
// as far as it goes.
func (f *Forecast) Merge(n int) ([]Period, error) {
	if n <= 1 {
		return append([]Period(nil), f.Periods...), nil
	}
	var out []Period
	for i := 0; i < len(f.Periods); i += n {
		acc := f.Periods[i]
		for j := i + 1; j < min(i+n, len(f.Periods)); j++ {
			var err error
			if acc, err = acc.Add(f.Periods[j]); err != nil {
				return nil, err
			}
		}
		out = append(out, acc)
	}
	return out, nil
}
