package trellis

import (
	"sync"
	"sync/atomic"
)

// Provider holds the latest value of some data source and notifies
// listeners when it changes. Producers call Update from their own
// goroutines; listeners run synchronously on the producer's goroutine while
// the notification lock is held. A listener may add or remove listeners,
// including itself; changes apply from the next Update.
type Provider[T any] struct {
	dataMu sync.RWMutex
	data   T

	notifyMu sync.Mutex

	mu        sync.Mutex
	listeners []*providerListener[T]
	nextID    uint32
}

type providerListener[T any] struct {
	id      uint32
	fn      func(T)
	removed atomic.Bool
}

// ListenerHandle removes a listener added with AddListener.
type ListenerHandle struct {
	id     uint32
	remove func(id uint32) bool
}

// Remove unregisters the listener. It reports whether the listener was
// still registered. A removed listener is not called again, even by an
// Update already in progress.
func (h ListenerHandle) Remove() bool {
	if h.remove == nil {
		return false
	}
	return h.remove(h.id)
}

// NewProvider creates a provider holding initial.
func NewProvider[T any](initial T) *Provider[T] {
	return &Provider[T]{data: initial}
}

// Data returns the most recent value.
func (p *Provider[T]) Data() T {
	p.dataMu.RLock()
	defer p.dataMu.RUnlock()
	return p.data
}

// AddListener registers fn. The bool is false when fn is nil.
func (p *Provider[T]) AddListener(fn func(T)) (ListenerHandle, bool) {
	if fn == nil {
		return ListenerHandle{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.listeners = append(p.listeners, &providerListener[T]{id: p.nextID, fn: fn})
	return ListenerHandle{id: p.nextID, remove: p.removeListener}, true
}

func (p *Provider[T]) removeListener(id uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, l := range p.listeners {
		if l.id == id {
			l.removed.Store(true)
			p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// NumListeners returns the number of registered listeners.
func (p *Provider[T]) NumListeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Update stores v and calls every listener with it. Concurrent updates are
// serialized so listeners observe values in update order.
func (p *Provider[T]) Update(v T) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.dataMu.Lock()
	p.data = v
	p.dataMu.Unlock()

	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()
	for _, l := range listeners {
		if !l.removed.Load() {
			l.fn(v)
		}
	}
}
