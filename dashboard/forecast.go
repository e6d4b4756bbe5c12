package dashboard

import (
	"fmt"
	"image"

	"github.com/phanxgames/trellis"
	"github.com/phanxgames/trellis/imagecache"
	"github.com/phanxgames/trellis/weather"
)

// forecastColumn shows one merged forecast period.
type forecastColumn struct {
	span, temp, detail *trellis.Widget
	icon               *trellis.Widget
	iconURL            string
}

// forecastColumns lays out n equal columns across parent.
type forecastColumns struct {
	cols   []*forecastColumn
	images *imagecache.Cache
}

func newForecastColumns(parent *trellis.Widget, n int, images *imagecache.Cache) *forecastColumns {
	fc := &forecastColumns{images: images}
	size := parent.Size()
	cw := size.Width / n
	iconH := max(size.Height-3*16, 0)
	for i := range n {
		box := trellis.NewContainer(parent, fmt.Sprintf("col%d", i))
		box.SetRect(trellis.Rect{X: i * cw, Width: cw, Height: size.Height})

		col := &forecastColumn{}
		col.span = trellis.NewText(box, "span", "--", fontMono)
		col.span.SetRectAt(trellis.Pt(cw/2, 0, trellis.AnchorTopCenter), trellis.Size{Width: cw, Height: 16})
		col.icon = trellis.NewImage(box, "icon", nil)
		col.icon.SetRectAt(trellis.Pt(cw/2, 16, trellis.AnchorTopCenter), trellis.Size{Width: cw, Height: iconH})
		col.temp = trellis.NewText(box, "temp", "", fontSmall)
		col.temp.SetRectAt(trellis.Pt(cw/2, 16+iconH, trellis.AnchorTopCenter), trellis.Size{Width: cw, Height: 16})
		col.detail = trellis.NewText(box, "detail", "", fontMono)
		col.detail.SetRectAt(trellis.Pt(cw/2, size.Height, trellis.AnchorBottomCenter), trellis.Size{Width: cw, Height: 16})
		fc.cols = append(fc.cols, col)
	}
	return fc
}

// show fills the columns with periods merged in groups of hours. It runs
// under the frame lock.
func (fc *forecastColumns) show(f *weather.Forecast, hours int) {
	if f == nil {
		return
	}
	periods, err := f.Merge(hours)
	if err != nil {
		for _, c := range fc.cols {
			c.detail.SetText("n/a")
		}
		return
	}
	for i, c := range fc.cols {
		if i >= len(periods) {
			c.span.SetText("--")
			c.temp.SetText("")
			c.detail.SetText("")
			c.icon.SetImage(nil)
			continue
		}
		p := periods[i]
		c.span.SetText(fmt.Sprintf("%02d-%02d", p.Start.Hour(), p.End.Hour()))
		c.temp.SetText(fmt.Sprintf("%d°C", p.Temp))
		c.detail.SetText(fmt.Sprintf("%d%% %s", p.POP, p.WindDirection))
		fc.loadIcon(c, p.Icon)
	}
}

func (fc *forecastColumns) loadIcon(c *forecastColumn, url string) {
	if fc.images == nil || url == "" || url == c.iconURL {
		return
	}
	c.iconURL = url
	icon := c.icon
	img, ok := fc.images.GetImage(url, iconLifetime, func(img image.Image, err error) {
		if err != nil {
			return
		}
		icon.Context().Do(func() {
			if c.iconURL == url {
				icon.SetImage(img)
			}
		})
	})
	if ok {
		icon.SetImage(img)
	}
}
