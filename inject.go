package trellis

// buttonEvent is a single injected button transition.
type buttonEvent struct {
	button  Button
	pressed bool
}

// InjectPress queues a button press. Injected events are consumed one per
// Tick, before anything else in that frame.
func (d *Display) InjectPress(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.injected = append(d.injected, buttonEvent{button: b, pressed: true})
}

// InjectRelease queues a button release.
func (d *Display) InjectRelease(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.injected = append(d.injected, buttonEvent{button: b})
}

// InjectClick queues a press followed by a release. Consumes two frames.
func (d *Display) InjectClick(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.injectClickLocked(b)
}

func (d *Display) injectClickLocked(b Button) {
	d.injected = append(d.injected,
		buttonEvent{button: b, pressed: true},
		buttonEvent{button: b})
}

// processInjectedLocked pops one event from the inject queue and feeds it
// through the regular button path.
func (d *Display) processInjectedLocked() bool {
	if len(d.injected) == 0 {
		return false
	}
	evt := d.injected[0]
	copy(d.injected, d.injected[1:])
	d.injected = d.injected[:len(d.injected)-1]
	if evt.pressed {
		d.buttonDownLocked(evt.button)
	} else {
		d.buttonUpLocked(evt.button)
	}
	d.flushNavigationLocked()
	return true
}
