package viewer

import (
	"sync"

	"github.com/veandco/go-sdl2/sdl"
)

var (
	probeOnce   sync.Once
	probeResult bool
)

// Probe checks whether the platform can hand us an OpenGL 4.1 core context.
// It creates a hidden 1x1 window, asks for a context, and tears both down.
// The result is stable for the process lifetime, so callers normally go
// through ProbeOnce instead.
func Probe() (ok bool) {
	// A broken GL driver can panic inside the cgo bindings; treat that as
	// an unsupported platform rather than a crash.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return false
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	win, err := sdl.CreateWindow(
		"capability-probe",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		1, 1,
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN,
	)
	if err != nil {
		return false
	}
	defer win.Destroy()

	ctx, err := win.GLCreateContext()
	if err != nil {
		return false
	}
	sdl.GLDeleteContext(ctx)
	return true
}

// ProbeOnce memoizes Probe. Capability does not change mid-session; every
// card shares the first result instead of opening throwaway windows.
func ProbeOnce() bool {
	probeOnce.Do(func() {
		probeResult = Probe()
	})
	return probeResult
}
