package trellis

import "testing"

func TestAnchorHalves(t *testing.T) {
	for _, a := range Anchors {
		if got := CombineAnchor(a.V(), a.H()); got != a {
			t.Errorf("CombineAnchor(%v.V(), %v.H()) = %v", a, a, got)
		}
	}
	if AnchorBottomRight.H() != HAnchorRight || AnchorBottomRight.V() != VAnchorBottom {
		t.Errorf("BottomRight halves = %v/%v", AnchorBottomRight.H(), AnchorBottomRight.V())
	}
}

func TestAnchorRoundTrip(t *testing.T) {
	points := []Vector{{0, 0}, {50, 50}, {-7, 13}}
	sizes := []Size{{0, 0}, {1, 1}, {20, 10}, {21, 11}, {7, 30}}
	for _, a := range Anchors {
		t.Run(a.String(), func(t *testing.T) {
			for _, p := range points {
				for _, s := range sizes {
					got := RectAt(Pt(p.X, p.Y, a), s).Position(a)
					if got.Vector != p || got.Anchor != a {
						t.Errorf("RectAt(%v, %v).Position = %v", p, s, got)
					}
				}
			}
		})
	}
}

func TestRectAt(t *testing.T) {
	size := Size{20, 10}
	tests := []struct {
		anchor Anchor
		want   Rect
	}{
		{AnchorTopLeft, Rect{50, 50, 20, 10}},
		{AnchorTopCenter, Rect{40, 50, 20, 10}},
		{AnchorCenter, Rect{40, 45, 20, 10}},
		{AnchorBottomRight, Rect{30, 40, 20, 10}},
		{AnchorCenterLeft, Rect{50, 45, 20, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.anchor.String(), func(t *testing.T) {
			got := RectAt(Pt(50, 50, tt.anchor), size)
			if got != tt.want {
				t.Errorf("RectAt = %v, want %v", got, tt.want)
			}
			if p := got.Position(tt.anchor); p.Vector != (Vector{50, 50}) {
				t.Errorf("Position(%v) = %v, want (50,50)", tt.anchor, p.Vector)
			}
		})
	}
}

func TestRectAtNegativeSizePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for negative size")
		}
	}()
	RectAt(Pt(0, 0, AnchorTopLeft), Size{-1, 5})
}

func TestRectBetween(t *testing.T) {
	r := RectBetween(Pt(10, 20, AnchorTopLeft), Vector{40, 60})
	if r != (Rect{10, 20, 30, 40}) {
		t.Errorf("RectBetween = %v", r)
	}
	// The second point may lie on either side of the first.
	r = RectBetween(Pt(40, 60, AnchorBottomRight), Vector{10, 20})
	if r != (Rect{10, 20, 30, 40}) {
		t.Errorf("RectBetween reversed = %v", r)
	}
}

func TestRectResizePinsAnchor(t *testing.T) {
	r := Rect{40, 0, 20, 10}
	if got := r.WithWidth(2, HAnchorCenter); got.X != 49 || got.Width != 2 {
		t.Errorf("WithWidth center = %v, want x=49 w=2", got)
	}
	if got := r.WithWidth(10, HAnchorRight); got.Right() != 60 {
		t.Errorf("WithWidth right keeps right edge, got %v", got)
	}
	if got := r.WithHeight(4, VAnchorBottom); got.Bottom() != 10 || got.Y != 6 {
		t.Errorf("WithHeight bottom = %v", got)
	}
	if got := r.WithSize(Size{10, 4}, AnchorCenter); got != (Rect{45, 3, 10, 4}) {
		t.Errorf("WithSize center = %v", got)
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	tests := []struct {
		name string
		b    Rect
		want Rect
	}{
		{"overlap", Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"inside", Rect{2, 2, 3, 3}, Rect{2, 2, 3, 3}},
		{"touching edge", Rect{10, 0, 5, 5}, Rect{}},
		{"disjoint", Rect{20, 20, 5, 5}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect = %v, want %v", got, tt.want)
			}
			if a.Intersects(tt.b) != !tt.want.Empty() {
				t.Errorf("Intersects disagrees with Intersect")
			}
		})
	}
}

func TestRectContainsExclusiveEdges(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	if !r.Contains(0, 0) || !r.Contains(9, 9) {
		t.Error("expected corners inside")
	}
	if r.Contains(10, 5) || r.Contains(5, 10) {
		t.Error("right and bottom edges should be exclusive")
	}
}

func TestSizeBetween(t *testing.T) {
	if got := SizeBetween(Vector{5, 30}, Vector{15, 10}); got != (Size{10, 20}) {
		t.Errorf("SizeBetween = %v", got)
	}
}

func TestParseButton(t *testing.T) {
	for _, b := range Buttons {
		got, err := ParseButton(b.String())
		if err != nil || got != b {
			t.Errorf("ParseButton(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := ParseButton("start"); err == nil {
		t.Error("expected error for unknown button")
	}
}
