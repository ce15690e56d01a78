package engine

import "github.com/charmbracelet/harmonica"

// fader drives the mount crossfade: incoming assets fade in from zero, and a
// retiring asset fades back to zero before its GPU resources are released.
type fader struct {
	spring harmonica.Spring
	value  float64
	vel    float64
	out    bool
}

func newFader() fader {
	return fader{spring: harmonica.NewSpring(harmonica.FPS(60), 5.0, 0.9)}
}

// retire directs the fade toward zero ahead of disposal.
func (f *fader) retire() { f.out = true }

// restart snaps the fade to zero so a freshly mounted asset fades in.
func (f *fader) restart() { f.value, f.vel, f.out = 0, 0, false }

// step advances the spring one frame. visible is whether an asset is
// mounted. It reports true exactly once per retire, when the outgoing fade
// has settled and disposal may proceed.
func (f *fader) step(visible bool) bool {
	target := 0.0
	if visible && !f.out {
		target = 1.0
	}
	f.value, f.vel = f.spring.Update(f.value, f.vel, target)
	if f.out && f.value < 0.02 {
		f.value, f.vel, f.out = 0, 0, false
		return true
	}
	return false
}
