package trellis

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates up to 4 float64 values of a widget simultaneously. Create
// one with TweenBar, TweenForeground or TweenBackground and hand it to
// Display.Animate, which advances it on every Tick. A tween whose widget
// has been detached from the tree stops immediately.
type Tween struct {
	tweens [4]*gween.Tween
	values [4]float64
	count  int
	target *Widget
	apply  func(values []float64)
	Done   bool
}

func newTween(target *Widget, from, to []float64, duration time.Duration, fn ease.TweenFunc, apply func([]float64)) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{count: min(len(from), len(to), 4), target: target, apply: apply}
	for i := 0; i < t.count; i++ {
		t.tweens[i] = gween.New(float32(from[i]), float32(to[i]), float32(duration.Seconds()), fn)
		t.values[i] = from[i]
	}
	return t
}

// Update advances all values by dt, applies them to the widget and marks it
// dirty.
func (t *Tween) Update(dt time.Duration) {
	if t.Done {
		return
	}
	if t.target != nil && t.target.parent == nil && !t.target.Kind.IsContainer() {
		t.Done = true
		return
	}
	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(float32(dt.Seconds()))
		t.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	t.Done = allDone
	t.apply(t.values[:t.count])
}

// TweenBar animates the values of the first segments of a bar (up to 4)
// towards to. Segment colors are kept.
func TweenBar(w *Widget, to []float64, duration time.Duration, fn ease.TweenFunc) *Tween {
	w.mustKind(KindBar, "TweenBar")
	segs := w.BarValues()
	n := min(len(segs), len(to), 4)
	from := make([]float64, n)
	for i := range from {
		from[i] = segs[i].Value
	}
	return newTween(w, from, to[:n], duration, fn, func(v []float64) {
		cur := w.BarValues()
		for i := range v {
			if i < len(cur) {
				cur[i].Value = v[i]
			}
		}
		w.SetBarValues(cur...)
	})
}

// TweenForeground fades the foreground color towards to.
func TweenForeground(w *Widget, to Color, duration time.Duration, fn ease.TweenFunc) *Tween {
	c := w.foreground
	return newTween(w, []float64{c.R, c.G, c.B, c.A}, []float64{to.R, to.G, to.B, to.A}, duration, fn,
		func(v []float64) { w.SetForeground(Color{v[0], v[1], v[2], v[3]}) })
}

// TweenBackground fades the background color towards to.
func TweenBackground(w *Widget, to Color, duration time.Duration, fn ease.TweenFunc) *Tween {
	c := w.background
	return newTween(w, []float64{c.R, c.G, c.B, c.A}, []float64{to.R, to.G, to.B, to.A}, duration, fn,
		func(v []float64) { w.SetBackground(Color{v[0], v[1], v[2], v[3]}) })
}

// Animate registers a tween to be advanced on every Tick until done. Call
// it from a hook or inside Update.
func (d *Display) Animate(t *Tween) {
	d.tweens = append(d.tweens, t)
}

func (d *Display) advanceTweensLocked(dt time.Duration) {
	if len(d.tweens) == 0 {
		return
	}
	live := d.tweens[:0]
	for _, t := range d.tweens {
		t.Update(dt)
		if !t.Done {
			live = append(live, t)
		}
	}
	clear(d.tweens[len(live):])
	d.tweens = live
}
