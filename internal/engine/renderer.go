package engine

import (
	"bytes"
	"fmt"
	gomath "math"
	"sync"
	"unsafe"

	"github.com/disintegration/imaging"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/assets"
	"github.com/luzcry/showroom/internal/logger"
	"github.com/luzcry/showroom/pkg/math"
)

// ModelRenderer draws one mounted model into an offscreen framebuffer whose
// color texture is handed to the UI for display. Mount, Unmount and the flag
// setters may be called from any goroutine; the GPU work they request is
// applied at the start of the next Frame. Frame and Close must run on the
// render thread.
type ModelRenderer struct {
	log *zap.Logger

	mu           sync.Mutex
	pendingMount *assets.Model
	pendingClear bool
	wireframe    bool
	autoRotate   bool

	// Render-thread state below.
	width, height int32

	fbo          uint32
	colorTexture uint32
	depthRBO     uint32

	program       uint32
	locModel      int32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locTexture    int32
	locFade       int32

	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	modelTexture    uint32
	fallbackTexture uint32

	model    *assets.Model
	animTime float32
	autoYaw  float32

	rotationX float32
	rotationY float32
	distance  float32

	autoRotateSpeed float32

	// Mounted models fade in instead of popping, and an outgoing model
	// fades back out before its buffers are released. queued holds the
	// replacement while the outgoing fade settles.
	fade   fader
	queued *assets.Model
}

// NewModelRenderer creates the offscreen target and shader program. Requires
// a current GL context; call after Acquire succeeded.
func NewModelRenderer(width, height int32, autoRotateSpeed float32) (*ModelRenderer, error) {
	r := &ModelRenderer{
		log:             logger.Named("renderer"),
		width:           width,
		height:          height,
		rotationX:       0.3,
		rotationY:       0.5,
		distance:        3.0,
		autoRotateSpeed: autoRotateSpeed,
		fade:            newFader(),
	}

	if err := r.createFramebuffer(); err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}

	program, err := linkProgram(modelVertexShader, modelFragmentShader)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("shader: %w", err)
	}
	r.program = program
	r.locModel = uniform(program, "uModel")
	r.locView = uniform(program, "uView")
	r.locProjection = uniform(program, "uProjection")
	r.locLightDir = uniform(program, "uLightDir")
	r.locAmbient = uniform(program, "uAmbient")
	r.locDiffuse = uniform(program, "uDiffuse")
	r.locTexture = uniform(program, "uTexture")
	r.locFade = uniform(program, "uFade")

	r.createFallbackTexture()
	return r, nil
}

func (r *ModelRenderer) createFramebuffer() error {
	gl.GenFramebuffers(1, &r.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)

	gl.GenTextures(1, &r.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, r.width, r.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.colorTexture, 0)

	gl.GenRenderbuffers(1, &r.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, r.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, r.width, r.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, r.depthRBO)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (r *ModelRenderer) createFallbackTexture() {
	gl.GenTextures(1, &r.fallbackTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fallbackTexture)
	white := []uint8{230, 230, 230, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// Mount schedules m to replace the current model on the next Frame.
func (r *ModelRenderer) Mount(m *assets.Model) error {
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("model has no geometry")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingMount = m
	r.pendingClear = false
	return nil
}

// Unmount schedules release of the current model's GPU resources. The model
// fades out over a few frames before the buffers are freed.
func (r *ModelRenderer) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingMount = nil
	r.pendingClear = true
}

func (r *ModelRenderer) SetWireframe(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wireframe = on
}

func (r *ModelRenderer) SetAutoRotate(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoRotate = on
}

// Orbit rotates the camera by a mouse drag delta in pixels.
func (r *ModelRenderer) Orbit(dx, dy float32) {
	r.rotationY += dx * 0.01
	r.rotationX += dy * 0.01
	if r.rotationX > 1.5 {
		r.rotationX = 1.5
	}
	if r.rotationX < -1.5 {
		r.rotationX = -1.5
	}
}

// Zoom moves the camera along the view axis by a wheel delta.
func (r *ModelRenderer) Zoom(delta float32) {
	r.distance -= delta * 0.1 * r.distance
	if r.distance < 0.1 {
		r.distance = 0.1
	}
	if r.distance > 100 {
		r.distance = 100
	}
}

// Frame applies pending mount/unmount work, advances animation and draws the
// model to the offscreen target. dt is the frame delta in seconds. Returns
// the color texture for the UI to display.
func (r *ModelRenderer) Frame(dt float32) uint32 {
	r.mu.Lock()
	mount := r.pendingMount
	unmount := r.pendingClear
	r.pendingMount = nil
	r.pendingClear = false
	wireframe := r.wireframe
	autoRotate := r.autoRotate
	r.mu.Unlock()

	if unmount || mount != nil {
		if r.model == nil {
			if mount != nil {
				r.mountNow(mount)
			}
		} else {
			// The outgoing model keeps animating and fades to zero;
			// its buffers are released only once the fade settles.
			r.queued = mount
			r.fade.retire()
		}
	}

	if r.fade.step(r.model != nil) {
		r.clearModel()
		if m := r.queued; m != nil {
			r.queued = nil
			r.mountNow(m)
		}
	}

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	var prevViewport [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	gl.Viewport(0, 0, r.width, r.height)
	gl.ClearColor(0.12, 0.12, 0.14, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.model == nil || r.vao == 0 {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
		return r.colorTexture
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	if autoRotate {
		r.autoYaw += r.autoRotateSpeed * dt
	}

	gl.UseProgram(r.program)

	aspect := float32(r.width) / float32(r.height)
	projection := math.Perspective(0.785398, aspect, 0.05, 1000.0)

	center := r.model.Center()
	eye := r.cameraPosition(center)
	view := math.LookAt(eye, center, math.Vec3{X: 0, Y: 1, Z: 0})
	rot := r.rotationMatrix(dt)

	toOrigin := math.Translate(-center.X, -center.Y, -center.Z)
	model := math.Translate(center.X, center.Y, center.Z).Mul(rot).Mul(toOrigin)

	// Mesh flattened onto the bottom of its bounding box, drawn dark
	// before the lit pass.
	shadow := math.Translate(center.X, r.model.Min[1], center.Z).
		Mul(math.Scale(1, 0.02, 1)).
		Mul(rot).
		Mul(toOrigin)

	gl.UniformMatrix4fv(r.locProjection, 1, false, projection.Ptr())
	gl.UniformMatrix4fv(r.locView, 1, false, view.Ptr())
	gl.Uniform3f(r.locLightDir, 0.5, 1.0, 0.5)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)
	tex := r.fallbackTexture
	if r.modelTexture != 0 {
		tex = r.modelTexture
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.BindVertexArray(r.vao)

	if !wireframe {
		gl.UniformMatrix4fv(r.locModel, 1, false, shadow.Ptr())
		gl.Uniform3f(r.locAmbient, 0, 0, 0)
		gl.Uniform3f(r.locDiffuse, 0, 0, 0)
		gl.Uniform1f(r.locFade, float32(0.35*r.fade.value))
		gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	}

	if wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())
	gl.Uniform3f(r.locAmbient, 0.4, 0.4, 0.4)
	gl.Uniform3f(r.locDiffuse, 0.6, 0.6, 0.6)
	gl.Uniform1f(r.locFade, float32(r.fade.value))
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	if wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])

	return r.colorTexture
}

// rotationMatrix combines the auto-rotate turntable with the first animation
// clip's rotation track and advances the clip by dt.
func (r *ModelRenderer) rotationMatrix(dt float32) math.Mat4 {
	rot := math.RotateY(r.autoYaw)

	if r.model.HasAnimation() {
		clip := &r.model.Clips[0]
		r.animTime += dt
		if clip.Duration > 0 {
			for r.animTime >= clip.Duration {
				r.animTime -= clip.Duration
			}
		}
		rot = rot.Mul(clip.Sample(r.animTime).ToMat4())
	}
	return rot
}

func (r *ModelRenderer) cameraPosition(center math.Vec3) math.Vec3 {
	cosX := float32(gomath.Cos(float64(r.rotationX)))
	sinX := float32(gomath.Sin(float64(r.rotationX)))
	cosY := float32(gomath.Cos(float64(r.rotationY)))
	sinY := float32(gomath.Sin(float64(r.rotationY)))

	return math.Vec3{
		X: center.X + r.distance*cosX*sinY,
		Y: center.Y + r.distance*sinX,
		Z: center.Z + r.distance*cosX*cosY,
	}
}

func (r *ModelRenderer) mountNow(m *assets.Model) {
	r.clearModel()
	r.uploadModel(m)
	r.model = m
	r.animTime = 0
	r.autoYaw = 0
	r.fade.restart()
	r.fitCamera(m)
}

func (r *ModelRenderer) fitCamera(m *assets.Model) {
	r.rotationX = 0.3
	r.rotationY = 0.5
	r.distance = m.Radius() * 2.5
	if r.distance < 0.5 {
		r.distance = 0.5
	}
}

func (r *ModelRenderer) uploadModel(m *assets.Model) {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(unsafe.Sizeof(assets.Vertex{})), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	stride := int32(unsafe.Sizeof(assets.Vertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	r.indexCount = int32(len(m.Indices))

	if len(m.Texture) > 0 {
		if tex, err := uploadTexture(m.Texture); err != nil {
			r.log.Warn("texture decode failed", zap.String("model", m.Name), zap.Error(err))
		} else {
			r.modelTexture = tex
		}
	}
}

func uploadTexture(data []byte) (uint32, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	rgba := imaging.Clone(img)

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(rgba.Bounds().Dx()), int32(rgba.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return texID, nil
}

func (r *ModelRenderer) clearModel() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	if r.modelTexture != 0 {
		gl.DeleteTextures(1, &r.modelTexture)
		r.modelTexture = 0
	}
	r.indexCount = 0
	r.model = nil
	r.animTime = 0
}

// Close releases all GPU resources. Must run on the render thread.
func (r *ModelRenderer) Close() {
	r.queued = nil
	r.clearModel()
	if r.fallbackTexture != 0 {
		gl.DeleteTextures(1, &r.fallbackTexture)
		r.fallbackTexture = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
		r.fbo = 0
	}
	if r.colorTexture != 0 {
		gl.DeleteTextures(1, &r.colorTexture)
		r.colorTexture = 0
	}
	if r.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &r.depthRBO)
		r.depthRBO = 0
	}
}
