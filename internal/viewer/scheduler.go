package viewer

import (
	"sync"
	"time"
)

// Scheduler defers a card's viewer activation until the app reports an idle
// frame, bounded by a ceiling so a busy frame loop cannot postpone activation
// forever. Without an idle channel it falls back to a short fixed delay.
//
// Start and Cancel may be called from any goroutine. Once Cancel returns the
// callback is guaranteed not to start.
type Scheduler struct {
	// Idle delivers a signal when the frame loop had nothing to do.
	// Nil selects the fallback delay path.
	Idle <-chan struct{}

	Ceiling  time.Duration
	Fallback time.Duration

	mu     sync.Mutex
	done   bool
	stopCh chan struct{}
	timer  *time.Timer
}

// Start arms the scheduler. fn fires at most once, on whichever comes first
// of an idle signal or the ceiling (or after Fallback when no idle source is
// wired). Calling Start twice is a no-op.
func (s *Scheduler) Start(fn func()) {
	s.mu.Lock()
	if s.done || s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})

	if s.Idle == nil {
		s.timer = time.AfterFunc(s.Fallback, func() { s.fire(fn) })
		s.mu.Unlock()
		return
	}

	idle := s.Idle
	stop := s.stopCh
	ceiling := time.NewTimer(s.Ceiling)
	s.mu.Unlock()

	go func() {
		defer ceiling.Stop()
		select {
		case <-idle:
		case <-ceiling.C:
		case <-stop:
			return
		}
		s.fire(fn)
	}()
}

// Cancel disarms the scheduler. Safe to call before Start, after the
// callback already ran, and repeatedly.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.stopCh != nil {
		close(s.stopCh)
	}
}

func (s *Scheduler) fire(fn func()) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()
	fn()
}
