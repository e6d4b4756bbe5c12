package weather

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/phanxgames/trellis"
	"github.com/phanxgames/trellis/imagecache"
)

// DefaultBaseURL is the wetter.com page prefix; the location id and
// ".html" are appended.
const DefaultBaseURL = "https://www.wetter.com/deutschland/"

// pageLifetime keeps refreshes from hitting the site more than once per
// forecast update.
const pageLifetime = 9 * time.Minute

// Fetcher periodically downloads a forecast page through the download
// cache and publishes parsed forecasts. On errors the last forecast stays
// published.
type Fetcher struct {
	LocationID string
	BaseURL    string

	cache    *imagecache.Cache
	provider *trellis.Provider[*Forecast]
	logger   *slog.Logger
	now      func() time.Time
}

// NewFetcher creates a fetcher for a wetter.com location id such as
// "bayern/muenchen/DE0006515".
func NewFetcher(locationID string, cache *imagecache.Cache, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		LocationID: locationID,
		BaseURL:    DefaultBaseURL,
		cache:      cache,
		provider:   trellis.NewProvider[*Forecast](nil),
		logger:     logger.With("component", "weather"),
		now:        time.Now,
	}
}

// Provider publishes parsed forecasts. The initial value is nil.
func (f *Fetcher) Provider() *trellis.Provider[*Forecast] { return f.provider }

// URL returns the page URL.
func (f *Fetcher) URL() string { return f.BaseURL + f.LocationID + ".html" }

// Refresh requests the page. A cached page is parsed and published right
// away; otherwise publication happens when the download completes.
func (f *Fetcher) Refresh() {
	data, ok := f.cache.Get(f.URL(), pageLifetime, func(data []byte, err error) {
		if err != nil {
			f.logger.Warn("forecast download failed, keeping last forecast", "err", err)
			return
		}
		f.publish(data)
	})
	if ok {
		f.publish(data)
	}
}

func (f *Fetcher) publish(data []byte) {
	fc, err := Parse(bytes.NewReader(data), f.now())
	if err != nil {
		f.logger.Error("forecast parse failed, keeping last forecast", "err", err)
		return
	}
	f.logger.Debug("forecast updated", "location", fc.Location, "periods", len(fc.Periods))
	f.provider.Update(fc)
}

// Start refreshes now and then every interval on sched.
func (f *Fetcher) Start(sched trellis.Scheduler, interval time.Duration) trellis.TaskHandle {
	f.Refresh()
	return sched.Schedule(interval, f.Refresh)
}
