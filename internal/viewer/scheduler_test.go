package viewer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/luzcry/showroom/internal/viewer"
)

func waitFired(t *testing.T, fired *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fired.Load() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("fired = %d, want %d", fired.Load(), want)
}

func TestSchedulerFallbackDelay(t *testing.T) {
	var fired atomic.Int32
	s := &viewer.Scheduler{Fallback: 10 * time.Millisecond}
	s.Start(func() { fired.Add(1) })
	waitFired(t, &fired, 1)
}

func TestSchedulerFiresOnIdle(t *testing.T) {
	idle := make(chan struct{}, 1)
	var fired atomic.Int32
	s := &viewer.Scheduler{Idle: idle, Ceiling: 5 * time.Second}
	s.Start(func() { fired.Add(1) })

	idle <- struct{}{}
	waitFired(t, &fired, 1)
}

func TestSchedulerCeilingBoundsWait(t *testing.T) {
	idle := make(chan struct{}) // never signaled
	var fired atomic.Int32
	s := &viewer.Scheduler{Idle: idle, Ceiling: 20 * time.Millisecond}

	start := time.Now()
	s.Start(func() { fired.Add(1) })
	waitFired(t, &fired, 1)
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("fired after %v, before the ceiling", elapsed)
	}
}

func TestSchedulerCancelPreventsFire(t *testing.T) {
	for _, tc := range []struct {
		name string
		s    *viewer.Scheduler
	}{
		{"fallback", &viewer.Scheduler{Fallback: 20 * time.Millisecond}},
		{"ceiling", &viewer.Scheduler{Idle: make(chan struct{}), Ceiling: 20 * time.Millisecond}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var fired atomic.Int32
			tc.s.Start(func() { fired.Add(1) })
			tc.s.Cancel()

			time.Sleep(60 * time.Millisecond)
			if fired.Load() != 0 {
				t.Error("callback fired after cancel")
			}
		})
	}
}

func TestSchedulerFiresAtMostOnce(t *testing.T) {
	idle := make(chan struct{}, 2)
	var fired atomic.Int32
	s := &viewer.Scheduler{Idle: idle, Ceiling: 10 * time.Millisecond}
	s.Start(func() { fired.Add(1) })
	s.Start(func() { fired.Add(1) }) // second arm is a no-op

	idle <- struct{}{}
	idle <- struct{}{}
	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("fired = %d, want 1", fired.Load())
	}
}

func TestSchedulerCancelBeforeStart(t *testing.T) {
	var fired atomic.Int32
	s := &viewer.Scheduler{Fallback: 5 * time.Millisecond}
	s.Cancel()
	s.Start(func() { fired.Add(1) })

	time.Sleep(40 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("callback fired on a cancelled scheduler")
	}
	s.Cancel() // repeat is safe
}
