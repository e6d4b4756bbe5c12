package trellis

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Surface is a drawing target in widget-local coordinates. The origin is the
// widget's top-left corner and drawing is clipped to the widget's bounds.
// All sub-surfaces of one frame share a single gg context and its state
// stack.
type Surface struct {
	dc   *gg.Context
	size Size
}

// NewSurface wraps an RGBA buffer. Drawing goes straight into img.
func NewSurface(img *image.RGBA) *Surface {
	b := img.Bounds()
	return &Surface{
		dc:   gg.NewContextForRGBA(img),
		size: Size{b.Dx(), b.Dy()},
	}
}

// Size returns the drawable area.
func (s *Surface) Size() Size { return s.size }

// Bounds returns the drawable area as a local rect at the origin.
func (s *Surface) Bounds() Rect { return Rect{Width: s.size.Width, Height: s.size.Height} }

// Within runs fn with a sub-surface translated to r and clipped to it. r is
// in this surface's coordinates. The graphics state is restored even if fn
// panics.
func (s *Surface) Within(r Rect, fn func(*Surface)) {
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.Translate(float64(r.X), float64(r.Y))
	s.dc.DrawRectangle(0, 0, float64(r.Width), float64(r.Height))
	s.dc.Clip()
	fn(&Surface{dc: s.dc, size: r.Size()})
}

// FillRect fills r with c.
func (s *Surface) FillRect(r Rect, c color.Color) {
	if r.Empty() {
		return
	}
	s.dc.SetColor(c)
	s.dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
	s.dc.Fill()
}

// Fill fills the whole surface with c.
func (s *Surface) Fill(c color.Color) {
	s.FillRect(s.Bounds(), c)
}

// FillRoundedRect fills r with rounded corners of the given radius.
func (s *Surface) FillRoundedRect(r Rect, radius float64, c color.Color) {
	if r.Empty() {
		return
	}
	s.dc.SetColor(c)
	s.dc.DrawRoundedRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height), radius)
	s.dc.Fill()
}

// StrokeRect outlines r with a line of width w drawn inside the rect.
func (s *Surface) StrokeRect(r Rect, w float64, radius float64, c color.Color) {
	if r.Empty() || w <= 0 {
		return
	}
	s.dc.SetColor(c)
	s.dc.SetLineWidth(w)
	x, y := float64(r.X)+w/2, float64(r.Y)+w/2
	rw, rh := float64(r.Width)-w, float64(r.Height)-w
	if radius > 0 {
		s.dc.DrawRoundedRectangle(x, y, rw, rh, radius)
	} else {
		s.dc.DrawRectangle(x, y, rw, rh)
	}
	s.dc.Stroke()
}

// ClipRoundedRect narrows the clip of the current surface to a rounded rect.
// Use it inside Within so the clip is dropped with the sub-surface.
func (s *Surface) ClipRoundedRect(r Rect, radius float64) {
	s.dc.DrawRoundedRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height), radius)
	s.dc.Clip()
}

// Line strokes a line between two points.
func (s *Surface) Line(x0, y0, x1, y1, width float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawLine(x0, y0, x1, y1)
	s.dc.Stroke()
}

// Circle strokes a circle outline.
func (s *Surface) Circle(cx, cy, r, width float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawCircle(cx, cy, r)
	s.dc.Stroke()
}

// FillCircle fills a disc.
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawCircle(cx, cy, r)
	s.dc.Fill()
}

// Text draws a single line with its baseline at (x, y).
func (s *Surface) Text(face font.Face, text string, x, y float64, c color.Color) {
	s.dc.SetFontFace(face)
	s.dc.SetColor(c)
	s.dc.DrawString(text, x, y)
}

// Image draws img scaled by (sx, sy) with its top-left corner at (x, y).
func (s *Surface) Image(img image.Image, x, y, sx, sy float64) {
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.Translate(x, y)
	s.dc.Scale(sx, sy)
	s.dc.DrawImage(img, 0, 0)
}
