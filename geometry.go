package trellis

import "fmt"

// Anchor names one of the nine reference points of a rectangle: the four
// corners, the four edge midpoints and the center.
type Anchor uint8

const (
	AnchorTopLeft Anchor = iota
	AnchorTopCenter
	AnchorTopRight
	AnchorCenterLeft
	AnchorCenter
	AnchorCenterRight
	AnchorBottomLeft
	AnchorBottomCenter
	AnchorBottomRight
)

// Anchors lists every anchor in declaration order.
var Anchors = [9]Anchor{
	AnchorTopLeft, AnchorTopCenter, AnchorTopRight,
	AnchorCenterLeft, AnchorCenter, AnchorCenterRight,
	AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight,
}

// HAnchor is the horizontal half of an Anchor.
type HAnchor uint8

const (
	HAnchorLeft HAnchor = iota
	HAnchorCenter
	HAnchorRight
)

// VAnchor is the vertical half of an Anchor.
type VAnchor uint8

const (
	VAnchorTop VAnchor = iota
	VAnchorCenter
	VAnchorBottom
)

// CombineAnchor builds an Anchor from its vertical and horizontal halves.
func CombineAnchor(v VAnchor, h HAnchor) Anchor {
	return Anchor(uint8(v)*3 + uint8(h))
}

// H returns the horizontal half of a.
func (a Anchor) H() HAnchor { return HAnchor(a % 3) }

// V returns the vertical half of a.
func (a Anchor) V() VAnchor { return VAnchor(a / 3) }

var anchorNames = [9]string{
	"TopLeft", "TopCenter", "TopRight",
	"CenterLeft", "Center", "CenterRight",
	"BottomLeft", "BottomCenter", "BottomRight",
}

func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("Anchor(%d)", uint8(a))
}

// Vector is an integer 2D offset or point.
type Vector struct {
	X, Y int
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }

// Reversed returns -v.
func (v Vector) Reversed() Vector { return Vector{-v.X, -v.Y} }

// Anchored tags v with an anchor.
func (v Vector) Anchored(a Anchor) AnchoredPoint {
	return AnchoredPoint{Vector: v, Anchor: a}
}

// Size is a non-negative width/height pair.
type Size struct {
	Width, Height int
}

// NewSize returns a Size and panics on negative dimensions.
func NewSize(w, h int) Size {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("trellis: negative size %dx%d", w, h))
	}
	return Size{w, h}
}

// SizeBetween returns the unsigned extent spanned by two points.
func SizeBetween(a, b Vector) Size {
	return Size{abs(a.X - b.X), abs(a.Y - b.Y)}
}

// Position returns the anchor point of a rectangle of this size placed at
// the origin.
func (s Size) Position(a Anchor) AnchoredPoint {
	return Rect{Width: s.Width, Height: s.Height}.Position(a)
}

// Vector returns the size as a vector from the origin.
func (s Size) Vector() Vector { return Vector{s.Width, s.Height} }

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// AnchoredPoint is a point interpreted as a given anchor of a rectangle.
type AnchoredPoint struct {
	Vector
	Anchor Anchor
}

// Pt is shorthand for an AnchoredPoint.
func Pt(x, y int, a Anchor) AnchoredPoint {
	return AnchoredPoint{Vector: Vector{x, y}, Anchor: a}
}

// Add translates p by v, keeping the anchor.
func (p AnchoredPoint) Add(v Vector) AnchoredPoint {
	return AnchoredPoint{Vector: p.Vector.Add(v), Anchor: p.Anchor}
}

// Anchored re-tags the point with a different anchor.
func (p AnchoredPoint) Anchored(a Anchor) AnchoredPoint {
	return AnchoredPoint{Vector: p.Vector, Anchor: a}
}

// Rect is an integer rectangle stored as top-left corner plus size. The
// origin is the top-left of the surface with Y increasing downward.
type Rect struct {
	X, Y, Width, Height int
}

// NewRect returns a top-left anchored Rect and panics on negative size.
func NewRect(x, y, w, h int) Rect {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("trellis: negative rect size %dx%d", w, h))
	}
	return Rect{x, y, w, h}
}

// RectAt builds the rectangle of the given size whose anchor point p.Anchor
// lies at p.
func RectAt(p AnchoredPoint, s Size) Rect {
	if s.Width < 0 || s.Height < 0 {
		panic(fmt.Sprintf("trellis: negative rect size %dx%d", s.Width, s.Height))
	}
	x, y := p.X, p.Y
	switch p.Anchor.H() {
	case HAnchorCenter:
		x -= s.Width / 2
	case HAnchorRight:
		x -= s.Width
	}
	switch p.Anchor.V() {
	case VAnchorCenter:
		y -= s.Height / 2
	case VAnchorBottom:
		y -= s.Height
	}
	return Rect{x, y, s.Width, s.Height}
}

// RectBetween builds the rectangle anchored at from whose size is the extent
// between from and to.
func RectBetween(from AnchoredPoint, to Vector) Rect {
	return RectAt(from, SizeBetween(from.Vector, to))
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// TopLeft returns the canonical corner as a vector.
func (r Rect) TopLeft() Vector { return Vector{r.X, r.Y} }

// Left, Right, Top and Bottom return the edge coordinates.
func (r Rect) Left() int   { return r.X }
func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Top() int    { return r.Y }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Position returns the point of r at anchor a.
func (r Rect) Position(a Anchor) AnchoredPoint {
	x, y := r.X, r.Y
	switch a.H() {
	case HAnchorCenter:
		x += r.Width / 2
	case HAnchorRight:
		x += r.Width
	}
	switch a.V() {
	case VAnchorCenter:
		y += r.Height / 2
	case VAnchorBottom:
		y += r.Height
	}
	return Pt(x, y, a)
}

// WithPosition keeps the size and places the rectangle at p.
func (r Rect) WithPosition(p AnchoredPoint) Rect {
	return RectAt(p, r.Size())
}

// Moved translates r by v without resizing.
func (r Rect) Moved(v Vector) Rect {
	return Rect{r.X + v.X, r.Y + v.Y, r.Width, r.Height}
}

// WithSize resizes r so that the point at anchor a stays fixed.
func (r Rect) WithSize(s Size, a Anchor) Rect {
	return RectAt(r.Position(a), s)
}

// WithWidth changes only the width, pinning the given horizontal anchor.
func (r Rect) WithWidth(w int, h HAnchor) Rect {
	return r.WithSize(NewSize(w, r.Height), CombineAnchor(VAnchorTop, h))
}

// WithHeight changes only the height, pinning the given vertical anchor.
func (r Rect) WithHeight(height int, v VAnchor) Rect {
	return r.WithSize(NewSize(r.Width, height), CombineAnchor(v, HAnchorLeft))
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive, matching pixel coverage.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
