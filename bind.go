package trellis

// BindText keeps a text widget in sync with a provider. The widget shows
// format(p.Data()) immediately and is updated under the display frame lock
// on every provider update.
//
// Bind before the provider's producer starts: a listener waiting on the
// frame lock while holding the provider lock must not meet a caller that
// holds the frame lock and waits on the provider lock.
func BindText[T any](w *Widget, p *Provider[T], format func(T) string) ListenerHandle {
	w.mustKind(KindText, "BindText")
	w.SetText(format(p.Data()))
	h, _ := p.AddListener(func(v T) {
		s := format(v)
		w.ctx.Do(func() { w.SetText(s) })
	})
	return h
}

// BindFunc calls apply with the current value and on every update, always
// under the display frame lock. Use it for widgets other than text or for
// updating several widgets from one value.
func BindFunc[T any](ctx *Context, p *Provider[T], apply func(T)) ListenerHandle {
	apply(p.Data())
	h, _ := p.AddListener(func(v T) {
		ctx.Do(func() { apply(v) })
	})
	return h
}

// NewDataText creates a text widget bound to a provider.
func NewDataText[T any](parent *Widget, name string, font Font, p *Provider[T], format func(T) string) (*Widget, ListenerHandle) {
	w := NewText(parent, name, format(p.Data()), font)
	return w, BindText(w, p, format)
}
