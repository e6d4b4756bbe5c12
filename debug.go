package trellis

// debugLog reports the last frame's paint statistics at debug level.
// Only active when the display is in debug mode.
func (d *Display) debugLog() {
	if !d.debug {
		return
	}
	d.logger.Debug("frame painted",
		"frame", d.stats.Frames,
		"widgets", d.stats.Painted,
		"recovered", d.stats.Recovered,
		"paint", d.stats.PaintTime)
	d.debugCheckTree(d.root, 0)
}

// debugMaxTreeDepth and debugMaxChildCount are the thresholds for tree shape
// warnings in debug mode.
const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTree warns when the tree grows suspiciously deep or wide, which
// usually means widgets are created on every update instead of reused.
func (d *Display) debugCheckTree(w *Widget, depth int) {
	if depth > debugMaxTreeDepth {
		d.logger.Warn("widget tree too deep", "widget", w.Name, "depth", depth, "threshold", debugMaxTreeDepth)
		return
	}
	if len(w.children) > debugMaxChildCount {
		d.logger.Warn("widget has too many children", "widget", w.Name, "children", len(w.children), "threshold", debugMaxChildCount)
	}
	for _, c := range w.children {
		d.debugCheckTree(c, depth+1)
	}
}
