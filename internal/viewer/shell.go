package viewer

import (
	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/luzcry/showroom/internal/catalog"
)

// ShellOptions configures a Shell.
type ShellOptions struct {
	Controller *Controller
	Preview    catalog.ProductPreviewConfig

	// Frame draws the mounted model to the offscreen target and returns
	// its color texture. Required for the Ready presentation.
	Frame func(dt float32) uint32

	// Orbit and Zoom forward viewport mouse input to the renderer.
	Orbit func(dx, dy float32)
	Zoom  func(delta float32)

	// Width and Height are the offscreen render dimensions, used to keep
	// the displayed aspect ratio.
	Width, Height float32
}

// Shell draws the viewer region of a product card: the rendered model when
// Ready, and the poster, loading, unsupported or error presentation
// otherwise. One Shell per card; Render is called every frame from the UI
// loop.
type Shell struct {
	opts ShellOptions

	// poster is the uploaded fallback image, nil when the product ships
	// without one.
	poster *backend.Texture

	lastMouse imgui.Vec2
}

func NewShell(opts ShellOptions) *Shell {
	return &Shell{opts: opts}
}

// SetPoster installs the fallback image shown while no model is presented.
func (s *Shell) SetPoster(tex *backend.Texture) { s.poster = tex }

// Render draws the shell for the controller's current state. dt is the
// frame delta in seconds.
func (s *Shell) Render(dt float32) {
	st := s.opts.Controller.State()
	switch st.Status {
	case StatusReady:
		s.renderViewport(st, dt)
	case StatusProbing, StatusLoading:
		s.renderPoster()
		imgui.TextDisabled("Preparing 3D view...")
	case StatusUnsupported:
		s.renderPoster()
		imgui.TextDisabled("3D view is not available on this device")
	case StatusError:
		s.renderPoster()
		s.renderError(st)
	default:
		s.renderPoster()
	}
}

func (s *Shell) renderViewport(st State, dt float32) {
	textureID := s.opts.Frame(dt)

	viewerW := s.opts.Width
	viewerH := s.opts.Height

	avail := imgui.ContentRegionAvail()
	displayH := viewerH
	if displayH > avail.Y*0.7 {
		displayH = avail.Y * 0.7
	}
	displayW := displayH * (viewerW / viewerH)
	if displayW > avail.X {
		displayW = avail.X
		displayH = displayW * (viewerH / viewerW)
	}

	startX := imgui.CursorPosX()
	if displayW < avail.X {
		imgui.SetCursorPosX(startX + (avail.X-displayW)/2)
	}

	// Flip V: the offscreen target is an OpenGL texture.
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(displayW, displayH),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.12, 0.12, 0.12, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) && s.opts.Orbit != nil {
			s.opts.Orbit(mousePos.X-s.lastMouse.X, mousePos.Y-s.lastMouse.Y)
		}
		s.lastMouse = mousePos

		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 && s.opts.Zoom != nil {
			s.opts.Zoom(wheel)
		}
	}

	if st.LoadedModelName != "" {
		imgui.TextDisabled(st.LoadedModelName)
	}

	autoRotate := st.AutoRotate
	if imgui.Checkbox("Auto-rotate", &autoRotate) {
		s.opts.Controller.ToggleAutoRotate()
	}
	imgui.SameLine()
	wireframe := st.Wireframe
	if imgui.Checkbox("Wireframe", &wireframe) {
		s.opts.Controller.ToggleWireframe()
	}
	imgui.SameLine()
	label := "Fullscreen"
	if st.Fullscreen {
		label = "Exit Fullscreen"
	}
	if imgui.Button(label) {
		s.opts.Controller.ToggleFullscreen()
	}
	if imgui.IsItemHovered() {
		imgui.SetTooltip("Present the model fullscreen")
	}
}

func (s *Shell) renderPoster() {
	avail := imgui.ContentRegionAvail()
	size := imgui.NewVec2(avail.X, avail.Y*0.5)

	if s.poster != nil {
		imgui.ImageWithBgV(
			s.poster.ID,
			size,
			imgui.NewVec2(0, 0),
			imgui.NewVec2(1, 1),
			imgui.NewVec4(0.12, 0.12, 0.12, 1.0),
			imgui.NewVec4(1, 1, 1, 1),
		)
		return
	}

	c := catalog.ParseColor(s.opts.Preview.PreviewColor)
	imgui.PushStyleColorVec4(imgui.ColChildBg, imgui.NewVec4(c[0], c[1], c[2], 1.0))
	if imgui.BeginChildStrV("ProductPoster", size, imgui.ChildFlagsBorders, 0) {
		imgui.Spacing()
		imgui.TextWrapped(s.opts.Preview.ProductName)
	}
	imgui.EndChild()
	imgui.PopStyleColor()
}

func (s *Shell) renderError(st State) {
	msg := "the 3D view failed to load"
	if st.Err != nil {
		msg = st.Err.Error()
	}
	imgui.TextColored(imgui.NewVec4(0.9, 0.35, 0.3, 1), "3D view unavailable")
	imgui.TextWrapped(msg)
	if imgui.Button("Retry") {
		s.opts.Controller.Retry()
	}
}
