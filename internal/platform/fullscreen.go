// Package platform exposes windowing-system events to interested components.
package platform

import "sync"

// FullscreenNotifier fans platform fullscreen-change events out to
// subscribers. The app layer feeds it from the window event pump; viewer
// controllers subscribe so they stay consistent when fullscreen is exited
// by a mechanism outside their own control (e.g. the desktop escape key).
type FullscreenNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(fullscreen bool)
}

// NewFullscreenNotifier creates an empty notifier.
func NewFullscreenNotifier() *FullscreenNotifier {
	return &FullscreenNotifier{subs: make(map[int]func(bool))}
}

// Subscribe registers fn and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (n *FullscreenNotifier) Subscribe(fn func(fullscreen bool)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Notify delivers a fullscreen-change event to all current subscribers.
func (n *FullscreenNotifier) Notify(fullscreen bool) {
	n.mu.Lock()
	fns := make([]func(bool), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(fullscreen)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (n *FullscreenNotifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
