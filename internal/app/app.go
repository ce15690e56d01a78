// Package app wires the product listing window: the imgui/SDL backend, the
// card grid, the shared asset boundary and the fullscreen overlay.
package app

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/assets"
	"github.com/luzcry/showroom/internal/catalog"
	"github.com/luzcry/showroom/internal/config"
	"github.com/luzcry/showroom/internal/engine"
	"github.com/luzcry/showroom/internal/logger"
	"github.com/luzcry/showroom/internal/platform"
	"github.com/luzcry/showroom/internal/viewer"
)

const cardWidth = 360

// App is the product listing application.
type App struct {
	backend  backend.Backend[sdlbackend.SDLWindowFlags]
	cfg      *config.Config
	fetcher  *assets.Fetcher
	boundary *viewer.Boundary
	notifier *platform.FullscreenNotifier
	cards    []*Card

	// fullscreen is the card currently presented over the whole work
	// area, nil when the grid is showing.
	fullscreen *Card

	lastFrame time.Time
	log       *zap.Logger
}

// New creates the window and builds one card per catalog product. Must run
// on the main thread.
func New(cfg *config.Config, cat *catalog.Catalog) (*App, error) {
	a := &App{
		cfg:      cfg,
		notifier: platform.NewFullscreenNotifier(),
		log:      logger.Named("app"),
	}
	a.fetcher = assets.NewFetcher(cfg.Viewer.FetchTimeout)
	a.boundary = viewer.NewBoundary(a.fetcher, engine.Acquire)

	bk, err := backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	a.backend = bk
	a.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	if cfg.Graphics.Fullscreen {
		a.backend.SetWindowFlags(sdlbackend.SDLWindowFlagsFullScreen, 1)
	}
	a.backend.CreateWindow("Showroom", cfg.Graphics.Width, cfg.Graphics.Height)

	swap := sdlbackend.SDLSwapIntervalVsync
	if !cfg.Graphics.VSync {
		swap = sdlbackend.SDLSwapIntervalImmediate
	}
	if err := a.backend.SetSwapInterval(swap); err != nil {
		a.log.Warn("swap interval not applied", zap.Bool("vsync", cfg.Graphics.VSync), zap.Error(err))
	}

	if err := engine.Acquire(); err != nil {
		return nil, err
	}

	deps := cardDeps{
		boundary:      a.boundary,
		notifier:      a.notifier,
		cfg:           cfg.Viewer,
		setFullscreen: a.setCardFullscreen,
		log:           a.log,
	}
	for _, p := range cat.Products {
		card, err := newCard(p, deps)
		if err != nil {
			a.log.Warn("card skipped", zap.String("product", p.ID), zap.Error(err))
			continue
		}
		a.cards = append(a.cards, card)
	}
	a.log.Info("listing ready", zap.Int("cards", len(a.cards)))
	return a, nil
}

// Run enters the frame loop and blocks until the window closes.
func (a *App) Run() {
	a.lastFrame = time.Now()
	a.backend.Run(a.render)
}

// Close tears down every card. Must run on the main thread.
func (a *App) Close() {
	for _, c := range a.cards {
		c.close()
	}
	a.cards = nil
}

func (a *App) render() {
	now := time.Now()
	dt := float32(now.Sub(a.lastFrame).Seconds())
	a.lastFrame = now
	if dt > 0.25 {
		dt = 0.25
	}

	if a.idleFrame() {
		for _, c := range a.cards {
			c.notifyIdle()
		}
	}

	if a.fullscreen != nil {
		a.renderFullscreenOverlay(dt)
		return
	}
	a.renderGrid(dt)
}

// idleFrame reports whether the user did nothing this frame. Used to release
// pending card activations at a quiet moment.
func (a *App) idleFrame() bool {
	io := imgui.CurrentIO()
	delta := io.MouseDelta()
	if delta.X != 0 || delta.Y != 0 {
		return false
	}
	if imgui.IsAnyItemActive() || imgui.IsAnyMouseDown() {
		return false
	}
	return true
}

func (a *App) renderGrid(dt float32) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoCollapse | imgui.WindowFlagsNoTitleBar

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(workSize)
	if imgui.BeginV("Products", nil, flags) {
		columns := int(workSize.X) / cardWidth
		if columns < 1 {
			columns = 1
		}
		cardSize := imgui.NewVec2(cardWidth-16, workSize.Y*0.55)

		for i, c := range a.cards {
			if i%columns != 0 {
				imgui.SameLine()
			}
			c.render(dt, cardSize)
		}
	}
	imgui.End()
}

func (a *App) renderFullscreenOverlay(dt float32) {
	// Esc exits, mirroring a platform-driven fullscreen exit: every
	// subscribed controller hears it and drops its flag.
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyEscape)) {
		a.fullscreen = nil
		a.notifier.Notify(false)
		return
	}

	viewport := imgui.MainViewport()
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoCollapse | imgui.WindowFlagsNoTitleBar |
		imgui.WindowFlagsNoScrollbar

	imgui.SetNextWindowPos(viewport.WorkPos())
	imgui.SetNextWindowSize(viewport.WorkSize())
	if imgui.BeginV("Fullscreen3D", nil, flags) {
		imgui.Text(a.fullscreen.product.Name)
		imgui.SameLine()
		imgui.TextDisabled("(Esc to exit)")
		a.fullscreen.renderFullscreen(dt)
	}
	imgui.End()
}

// setCardFullscreen is the platform action handed to each controller.
func (a *App) setCardFullscreen(c *Card, on bool) error {
	if on {
		a.fullscreen = c
		return nil
	}
	if a.fullscreen == c {
		a.fullscreen = nil
	}
	return nil
}
