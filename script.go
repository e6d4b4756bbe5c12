package trellis

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in an input script.
type scriptStep struct {
	Action string `json:"action"`
	Button string `json:"button,omitempty"`
	Label  string `json:"label,omitempty"`
	Screen int    `json:"screen,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// inputScript is the top-level JSON structure for an input script.
type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays button input, screen switches and snapshots across
// frames, for demos and automated visual checks. Attach it to a Display
// with SetScript.
//
// Supported actions: "press", "release" and "click" (with "button"),
// "wait" (with "frames"), "snapshot" (with "label") and "switch" (with
// "screen").
type ScriptRunner struct {
	steps     []scriptStep
	buttons   []Button
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadScript parses a JSON input script. Button names are validated up
// front.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var script inputScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	r := &ScriptRunner{steps: script.Steps, buttons: make([]Button, len(script.Steps))}
	for i, st := range script.Steps {
		switch st.Action {
		case "press", "release", "click":
			b, err := ParseButton(st.Button)
			if err != nil {
				return nil, fmt.Errorf("parse input script: step %d: %w", i, err)
			}
			r.buttons[i] = b
		case "wait", "snapshot", "switch":
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return r, nil
}

// SetScript attaches a runner. Its step method is called at the start of
// every Tick.
func (d *Display) SetScript(r *ScriptRunner) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = r
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool { return r.done }

// Err returns the first error encountered while running, such as a switch
// to an unknown screen.
func (r *ScriptRunner) Err() error { return r.err }

// step advances the runner by one frame. Called from Display.Tick with the
// frame lock held.
func (r *ScriptRunner) step(d *Display) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(d.injected) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	i := r.cursor
	st := r.steps[i]
	r.cursor++

	switch st.Action {
	case "press":
		d.injected = append(d.injected, buttonEvent{button: r.buttons[i], pressed: true})
	case "release":
		d.injected = append(d.injected, buttonEvent{button: r.buttons[i]})
	case "click":
		d.injectClickLocked(r.buttons[i])
	case "snapshot":
		d.snapshotLocked(st.Label)
	case "switch":
		next, ok := d.screens[ScreenID(st.Screen)]
		if !ok {
			if r.err == nil {
				r.err = fmt.Errorf("script step %d: switch to %d: %w", i, st.Screen, ErrUnknownScreen)
			}
			break
		}
		d.switchToLocked(next, true)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(d.injected) == 0 {
		r.done = true
	}
}
