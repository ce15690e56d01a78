package app

import (
	"fmt"
	"image"
	"sync"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/catalog"
	"github.com/luzcry/showroom/internal/config"
	"github.com/luzcry/showroom/internal/engine"
	"github.com/luzcry/showroom/internal/platform"
	"github.com/luzcry/showroom/internal/viewer"
)

// cardDeps is the shared plumbing a card hangs off: one boundary and one
// fullscreen notifier serve every card, while each card gets its own idle
// channel so a single idle frame can activate all pending schedulers.
type cardDeps struct {
	boundary      *viewer.Boundary
	notifier      *platform.FullscreenNotifier
	cfg           config.ViewerConfig
	setFullscreen func(c *Card, on bool) error
	log           *zap.Logger
}

// Card is one product tile in the listing grid. Products with a model
// descriptor carry a full viewer stack (renderer, controller, shell); plain
// products only render their poster and text.
type Card struct {
	product  catalog.ProductRecord
	renderer *engine.ModelRenderer
	ctrl     *viewer.Controller
	shell    *viewer.Shell
	idle     chan struct{}
	poster   *backend.Texture
	log      *zap.Logger

	preloadOnce sync.Once
	preload     func()
}

// newCard builds the card and, for 3D products, starts its activation
// scheduler. Must run on the UI thread with a current GL context.
func newCard(product catalog.ProductRecord, deps cardDeps) (*Card, error) {
	c := &Card{
		product: product,
		log:     deps.log.With(zap.String("product", product.ID)),
	}
	c.loadPoster(deps.cfg)

	if product.Model == nil {
		return c, nil
	}
	desc := *product.Model

	renderer, err := engine.NewModelRenderer(
		int32(deps.cfg.PreviewWidth),
		int32(deps.cfg.PreviewHeight),
		float32(deps.cfg.AutoRotateSpeed),
	)
	if err != nil {
		return nil, fmt.Errorf("renderer for %s: %w", product.ID, err)
	}
	c.renderer = renderer

	c.idle = make(chan struct{}, 1)
	sched := &viewer.Scheduler{
		Idle:     c.idle,
		Ceiling:  deps.cfg.IdleCeiling,
		Fallback: deps.cfg.FallbackDelay,
	}

	c.ctrl = viewer.NewController(viewer.Options{
		Loader:    deps.boundary,
		Renderer:  renderer,
		Notifier:  deps.notifier,
		Scheduler: sched,
		SetFullscreen: func(on bool) error {
			return deps.setFullscreen(c, on)
		},
		OnLoad: func() {
			c.log.Info("model ready", zap.String("url", desc.URL))
		},
		OnError: func(err error) {
			c.log.Warn("model load failed", zap.Error(err))
		},
		Log: c.log,
	})

	c.shell = viewer.NewShell(viewer.ShellOptions{
		Controller: c.ctrl,
		Preview:    product.Preview,
		Frame:      renderer.Frame,
		Orbit:      renderer.Orbit,
		Zoom:       renderer.Zoom,
		Width:      float32(deps.cfg.PreviewWidth),
		Height:     float32(deps.cfg.PreviewHeight),
	})
	if c.poster != nil {
		c.shell.SetPoster(c.poster)
	}

	c.preload = func() { deps.boundary.Preload(desc) }

	c.ctrl.SetDescriptor(&desc)
	c.ctrl.Start()
	return c, nil
}

func (c *Card) loadPoster(cfg config.ViewerConfig) {
	path := c.product.Preview.FallbackImage
	if path == "" {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		c.log.Warn("poster image unreadable", zap.String("path", path), zap.Error(err))
		return
	}
	fitted := imaging.Fit(img, cfg.PreviewWidth, cfg.PreviewHeight, imaging.Lanczos)

	bounds := fitted.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, fitted.At(x, y))
		}
	}
	c.poster = backend.NewTextureFromRgba(rgba)
}

// notifyIdle forwards one idle-frame signal to the card's scheduler.
func (c *Card) notifyIdle() {
	if c.idle == nil {
		return
	}
	select {
	case c.idle <- struct{}{}:
	default:
	}
}

// render draws the card tile. dt is the frame delta in seconds.
func (c *Card) render(dt float32, size imgui.Vec2) {
	if imgui.BeginChildStrV("card##"+c.product.ID, size, imgui.ChildFlagsBorders, 0) {
		imgui.Text(c.product.Name)
		imgui.TextDisabled(c.product.Price)
		imgui.Separator()

		if c.shell != nil {
			c.shell.Render(dt)
		} else {
			c.renderPosterOnly(size)
		}
	}
	imgui.EndChild()

	// Hover hints intent: warm the asset cache before activation.
	if c.preload != nil && imgui.IsItemHovered() {
		c.preloadOnce.Do(c.preload)
	}
}

func (c *Card) renderPosterOnly(size imgui.Vec2) {
	if c.poster == nil {
		col := catalog.ParseColor(c.product.Preview.PreviewColor)
		imgui.TextColored(imgui.NewVec4(col[0], col[1], col[2], 1), c.product.Preview.ProductName)
		return
	}
	imgui.ImageWithBgV(
		c.poster.ID,
		imgui.NewVec2(size.X-16, size.Y*0.5),
		imgui.NewVec2(0, 0),
		imgui.NewVec2(1, 1),
		imgui.NewVec4(0.12, 0.12, 0.12, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)
}

// renderFullscreen draws only the viewer, sized to the work area.
func (c *Card) renderFullscreen(dt float32) {
	if c.shell != nil {
		c.shell.Render(dt)
	}
}

func (c *Card) close() {
	if c.ctrl != nil {
		c.ctrl.Close()
	}
}
