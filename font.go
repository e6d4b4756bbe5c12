package trellis

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily selects one of the bundled Go fonts.
type FontFamily uint8

const (
	FontRegular FontFamily = iota
	FontBold
	FontMono
)

// Font is a family at a point size (72 DPI, so points equal pixels).
type Font struct {
	Family FontFamily
	Size   float64
}

// DefaultFont is used by text widgets created without an explicit font.
var DefaultFont = Font{Family: FontRegular, Size: 12}

// WithSize returns f at a different size.
func (f Font) WithSize(size float64) Font {
	f.Size = size
	return f
}

// fontKey quantizes sizes so fitting loops don't grow the cache unbounded.
type fontKey struct {
	family FontFamily
	size   int // tenths of a point
}

// FontCache parses the bundled TrueType fonts once and hands out faces per
// family and size. It is the measurement context for text layout.
type FontCache struct {
	mu    sync.Mutex
	fonts map[FontFamily]*truetype.Font
	faces map[fontKey]font.Face
}

// NewFontCache parses the bundled fonts. Parsing embedded data cannot fail in
// practice, so errors are programming errors and panic.
func NewFontCache() *FontCache {
	c := &FontCache{
		fonts: make(map[FontFamily]*truetype.Font, 3),
		faces: make(map[fontKey]font.Face),
	}
	for fam, data := range map[FontFamily][]byte{
		FontRegular: goregular.TTF,
		FontBold:    gobold.TTF,
		FontMono:    gomono.TTF,
	} {
		f, err := truetype.Parse(data)
		if err != nil {
			panic(fmt.Sprintf("trellis: parse bundled font %d: %v", fam, err))
		}
		c.fonts[fam] = f
	}
	return c
}

// Face returns the cached face for f.
func (c *FontCache) Face(f Font) font.Face {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.faceLocked(f)
}

func (c *FontCache) faceLocked(f Font) font.Face {
	size := f.Size
	if size < 1 {
		size = 1
	}
	key := fontKey{family: f.Family, size: int(math.Round(size * 10))}
	if face, ok := c.faces[key]; ok {
		return face
	}
	ttf, ok := c.fonts[f.Family]
	if !ok {
		ttf = c.fonts[FontRegular]
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(key.size) / 10,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[key] = face
	return face
}

// TextMetrics describes the vertical metrics of a face in whole pixels.
type TextMetrics struct {
	LineHeight int
	Ascent     int
	Descent    int
}

// Metrics returns the vertical metrics for f.
func (c *FontCache) Metrics(f Font) TextMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.faceLocked(f).Metrics()
	return TextMetrics{
		LineHeight: m.Height.Ceil(),
		Ascent:     m.Ascent.Ceil(),
		Descent:    m.Descent.Ceil(),
	}
}

// LineWidth returns the advance width of a single line of text.
func (c *FontCache) LineWidth(f Font, line string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return font.MeasureString(c.faceLocked(f), line).Ceil()
}

// Measure returns the size of a block of lines: the widest line by the line
// count times the line height, minus the descent below the last baseline.
func (c *FontCache) Measure(f Font, lines []string) Size {
	if len(lines) == 0 {
		return Size{}
	}
	m := c.Metrics(f)
	w := 0
	for _, l := range lines {
		w = max(w, c.LineWidth(f, l))
	}
	h := len(lines)*m.LineHeight - m.Descent
	return Size{Width: w, Height: max(h, 0)}
}
