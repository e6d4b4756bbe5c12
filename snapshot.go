package trellis

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Sink receives every painted frame. Publish is called under the display
// frame lock, so implementations must copy what they keep and must not call
// back into the display.
type Sink interface {
	Name() string
	Publish(frame *image.RGBA) error
}

// Snapshotter is implemented by sinks that can store a labeled copy of the
// next published frame.
type Snapshotter interface {
	Snapshot(label string)
}

// ErrSinkClosed is returned by Publish after a sink was closed.
var ErrSinkClosed = errors.New("trellis: sink closed")

// PNGSink writes frames as PNG files. The most recent frame is kept in
// current.png (written through a temporary file and renamed so readers never
// see a partial image); labeled snapshots get a timestamped file name.
type PNGSink struct {
	dir string
	// MinInterval throttles rewrites of current.png. Snapshots are never
	// throttled.
	MinInterval time.Duration

	mu        sync.Mutex
	queue     []string
	lastWrite time.Time
	closed    bool
}

// NewPNGSink creates the output directory and returns the sink.
func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("png sink: mkdir %s: %w", dir, err)
	}
	return &PNGSink{dir: dir, MinInterval: time.Second}, nil
}

// Name implements Sink.
func (p *PNGSink) Name() string { return "png:" + p.dir }

// Dir returns the output directory.
func (p *PNGSink) Dir() string { return p.dir }

// Snapshot queues a labeled snapshot of the next published frame.
func (p *PNGSink) Snapshot(label string) {
	p.mu.Lock()
	p.queue = append(p.queue, label)
	p.mu.Unlock()
}

// Close stops the sink. Later publishes fail with ErrSinkClosed.
func (p *PNGSink) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Publish implements Sink.
func (p *PNGSink) Publish(frame *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrSinkClosed
	}
	now := time.Now()
	var errs []error
	if len(p.queue) > 0 {
		stamp := now.Format("20060102_150405")
		for _, label := range p.queue {
			path := filepath.Join(p.dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
			if err := writePNG(path, frame); err != nil {
				errs = append(errs, err)
			}
		}
		p.queue = p.queue[:0]
	}
	if p.MinInterval <= 0 || now.Sub(p.lastWrite) >= p.MinInterval {
		if err := p.writeCurrent(frame); err != nil {
			errs = append(errs, err)
		} else {
			p.lastWrite = now
		}
	}
	return errors.Join(errs...)
}

func (p *PNGSink) writeCurrent(frame *image.RGBA) error {
	tmp := filepath.Join(p.dir, ".current.png.tmp")
	if err := writePNG(tmp, frame); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(p.dir, "current.png")); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Snapshot asks every sink that supports it to store a labeled copy of the
// next published frame. The next Tick repaints even if nothing is dirty.
func (d *Display) Snapshot(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshotLocked(label)
}

func (d *Display) snapshotLocked(label string) {
	found := false
	for _, s := range d.sinks {
		if sn, ok := s.(Snapshotter); ok {
			sn.Snapshot(label)
			found = true
		}
	}
	if !found {
		d.logger.Warn("snapshot requested but no sink supports it", "label", label)
		return
	}
	d.root.SetDirty()
}
