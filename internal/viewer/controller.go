package viewer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/assets"
	"github.com/luzcry/showroom/internal/catalog"
	"github.com/luzcry/showroom/internal/logger"
	"github.com/luzcry/showroom/internal/platform"
)

// Options wires a Controller to its collaborators. Probe, Loader and
// Renderer are injectable so the state machine is testable without a GPU;
// zero-value fields fall back to production defaults where one exists.
type Options struct {
	// Probe reports platform 3D capability. Defaults to ProbeOnce.
	Probe func() bool

	Loader   Loader
	Renderer Renderer

	// Notifier delivers platform fullscreen changes (user pressed Esc,
	// window manager intervened). The subscription is released on Close.
	Notifier *platform.FullscreenNotifier

	// SetFullscreen performs the platform-side fullscreen switch.
	SetFullscreen func(on bool) error

	// Scheduler, when set, defers the first activation; Start hands it
	// the Activate callback. Without one, Start activates immediately.
	Scheduler *Scheduler

	// OnLoad fires after a load resolves into Ready. OnError fires when a
	// load or mount fails. OnTransition fires on every status change.
	// All three are invoked outside the controller lock.
	OnLoad       func()
	OnError      func(error)
	OnTransition func(from, to Status)

	Log *zap.Logger
}

// Controller runs the viewer state machine for a single card. All methods
// are safe for concurrent use. Loads run on their own goroutines and carry a
// generation number; a resolution whose generation is stale by the time it
// lands is discarded without touching state.
type Controller struct {
	mu   sync.Mutex
	opts Options
	log  *zap.Logger

	state State
	desc  *catalog.ModelDescriptor

	activated bool
	probed    bool
	supported bool
	closed    bool

	gen    uint64
	cancel context.CancelFunc

	unsub func()
}

func NewController(opts Options) *Controller {
	if opts.Probe == nil {
		opts.Probe = ProbeOnce
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("viewer")
	}
	c := &Controller{
		opts:  opts,
		log:   log,
		state: State{Status: StatusNoModel},
	}
	if opts.Notifier != nil {
		c.unsub = opts.Notifier.Subscribe(c.onFullscreenEvent)
	}
	return c
}

// Start arms the activation scheduler, or activates immediately when none is
// configured.
func (c *Controller) Start() {
	if c.opts.Scheduler != nil {
		c.opts.Scheduler.Start(c.Activate)
		return
	}
	c.Activate()
}

// State returns a snapshot of the viewer.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Descriptor returns the current descriptor, nil when none is set.
func (c *Controller) Descriptor() *catalog.ModelDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.desc == nil {
		return nil
	}
	d := *c.desc
	return &d
}

// SetDescriptor points the viewer at a model. A nil descriptor clears the
// viewer back to NoModel, cancelling any in-flight load and unmounting the
// renderer. Setting the same URL again is a no-op; a different URL starts a
// fresh load (after the capability probe, on first use). Before activation
// the descriptor is only recorded.
func (c *Controller) SetDescriptor(desc *catalog.ModelDescriptor) {
	var calls []func()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	switch {
	case desc == nil:
		c.desc = nil
		c.resetLocked(&calls)
	case c.desc != nil && c.desc.URL == desc.URL:
		d := *desc
		c.desc = &d
	default:
		d := *desc
		c.desc = &d
		if !c.activated {
			break
		}
		switch c.state.Status {
		case StatusUnsupported:
			// The capability verdict holds for the controller's lifetime;
			// swapping models cannot make the context usable.
		case StatusLoading, StatusReady, StatusError:
			// Fresh load, no return to probing.
			c.startLoadLocked(&calls)
		default:
			c.beginLocked(&calls)
		}
	}
	c.mu.Unlock()
	for _, f := range calls {
		f()
	}
}

// ClearDescriptor is SetDescriptor(nil).
func (c *Controller) ClearDescriptor() { c.SetDescriptor(nil) }

// Activate releases the viewer from its pre-activation hold. Called by the
// scheduler; idempotent.
func (c *Controller) Activate() {
	var calls []func()
	c.mu.Lock()
	if c.closed || c.activated {
		c.mu.Unlock()
		return
	}
	c.activated = true
	if c.desc != nil && c.state.Status == StatusNoModel {
		c.beginLocked(&calls)
	}
	c.mu.Unlock()
	for _, f := range calls {
		f()
	}
}

// Retry restarts the load after a failure. A no-op in every other status;
// repeated failures always leave another Retry available.
func (c *Controller) Retry() {
	var calls []func()
	c.mu.Lock()
	if c.closed || c.state.Status != StatusError || c.desc == nil {
		c.mu.Unlock()
		return
	}
	c.startLoadLocked(&calls)
	c.mu.Unlock()
	for _, f := range calls {
		f()
	}
}

// ToggleAutoRotate flips the turntable flag. Only honored while Ready; the
// mounted model is not reloaded.
func (c *Controller) ToggleAutoRotate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Status != StatusReady {
		return
	}
	c.state.AutoRotate = !c.state.AutoRotate
	if c.opts.Renderer != nil {
		c.opts.Renderer.SetAutoRotate(c.state.AutoRotate)
	}
}

// ToggleWireframe flips wireframe drawing. Only honored while Ready; the
// mounted model is not reloaded.
func (c *Controller) ToggleWireframe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Status != StatusReady {
		return
	}
	c.state.Wireframe = !c.state.Wireframe
	if c.opts.Renderer != nil {
		c.opts.Renderer.SetWireframe(c.state.Wireframe)
	}
}

// ToggleFullscreen flips fullscreen presentation. Only honored while Ready.
// The flag tracks the platform: if the platform switch fails the flag stays
// put, and a platform-initiated exit clears it via the notifier.
func (c *Controller) ToggleFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Status != StatusReady {
		return
	}
	next := !c.state.Fullscreen
	if c.opts.SetFullscreen != nil {
		if err := c.opts.SetFullscreen(next); err != nil {
			c.log.Warn("fullscreen switch failed", zap.Bool("on", next), zap.Error(err))
			return
		}
	}
	c.state.Fullscreen = next
}

// Close tears the viewer down: pending activation is cancelled, an in-flight
// load is abandoned, the fullscreen subscription is released, and the
// renderer is unmounted and closed. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	unsub := c.unsub
	c.unsub = nil
	r := c.opts.Renderer
	c.state = State{Status: StatusNoModel}
	c.mu.Unlock()

	if c.opts.Scheduler != nil {
		c.opts.Scheduler.Cancel()
	}
	if unsub != nil {
		unsub()
	}
	if r != nil {
		r.Unmount()
		r.Close()
	}
}

// beginLocked runs the capability gate, then starts loading. It is the entry
// from NoModel: first activation and any descriptor set after a clear. The
// probe itself runs once per controller; later passes reuse its verdict.
func (c *Controller) beginLocked(calls *[]func()) {
	if c.desc == nil {
		return
	}
	c.setStatusLocked(StatusProbing, calls)
	if !c.probed {
		c.supported = c.opts.Probe()
		c.probed = true
	}
	if !c.supported {
		c.setStatusLocked(StatusUnsupported, calls)
		return
	}
	c.startLoadLocked(calls)
}

func (c *Controller) startLoadLocked(calls *[]func()) {
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.state.Err = nil
	c.state.LoadedModelURL = ""
	c.state.LoadedModelName = ""
	c.setStatusLocked(StatusLoading, calls)

	desc := *c.desc
	c.log.Debug("load start", zap.String("url", desc.URL), zap.Uint64("gen", gen))
	go func() {
		m, err := c.opts.Loader.RequestLoad(ctx, desc)
		c.finishLoad(gen, desc, m, err)
	}()
}

func (c *Controller) finishLoad(gen uint64, desc catalog.ModelDescriptor, m *assets.Model, err error) {
	var calls []func()
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("load superseded", zap.String("url", desc.URL), zap.Uint64("gen", gen))
		return
	}
	c.cancel = nil

	if err == nil && c.opts.Renderer != nil {
		if merr := c.opts.Renderer.Mount(m); merr != nil {
			err = &RenderError{Reason: "mount " + desc.Name, Err: merr}
		}
	}
	if err != nil {
		// A previously mounted asset must not outlive its Ready status.
		if c.opts.Renderer != nil {
			c.opts.Renderer.Unmount()
		}
		c.state.Err = err
		c.state.LoadedModelURL = ""
		c.state.LoadedModelName = ""
		c.setStatusLocked(StatusError, &calls)
		if cb := c.opts.OnError; cb != nil {
			e := err
			calls = append(calls, func() { cb(e) })
		}
	} else {
		if c.opts.Renderer != nil {
			c.opts.Renderer.SetWireframe(c.state.Wireframe)
			c.opts.Renderer.SetAutoRotate(c.state.AutoRotate)
		}
		c.state.LoadedModelURL = desc.URL
		c.state.LoadedModelName = desc.Name
		c.setStatusLocked(StatusReady, &calls)
		if cb := c.opts.OnLoad; cb != nil {
			calls = append(calls, cb)
		}
	}
	c.mu.Unlock()
	for _, f := range calls {
		f()
	}
}

// resetLocked returns the viewer to NoModel: the in-flight load generation is
// invalidated, the renderer unmounted, and fullscreen exited. Wireframe and
// auto-rotate survive as user preferences.
func (c *Controller) resetLocked(calls *[]func()) {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.opts.Renderer != nil {
		c.opts.Renderer.Unmount()
	}
	if c.state.Fullscreen {
		if c.opts.SetFullscreen != nil {
			if err := c.opts.SetFullscreen(false); err != nil {
				c.log.Warn("fullscreen exit failed", zap.Error(err))
			}
		}
		c.state.Fullscreen = false
	}
	c.state.Err = nil
	c.state.LoadedModelURL = ""
	c.state.LoadedModelName = ""
	c.setStatusLocked(StatusNoModel, calls)
}

func (c *Controller) onFullscreenEvent(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if !on && c.state.Fullscreen {
		c.state.Fullscreen = false
		c.log.Debug("fullscreen exited by platform")
	}
}

func (c *Controller) setStatusLocked(to Status, calls *[]func()) {
	from := c.state.Status
	if from == to {
		return
	}
	c.state.Status = to
	c.log.Debug("transition", zap.Stringer("from", from), zap.Stringer("to", to))
	if cb := c.opts.OnTransition; cb != nil {
		*calls = append(*calls, func() { cb(from, to) })
	}
}
