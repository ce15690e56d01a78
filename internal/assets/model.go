// Package assets handles fetching, decoding and caching of 3D model assets.
package assets

import (
	"bytes"
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"

	"github.com/luzcry/showroom/pkg/math"
)

// Vertex is the interleaved vertex format uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Clip is one animation clip. Only the rotation track of the clip's first
// rotation channel is retained; it drives the preview model's transform.
type Clip struct {
	Name      string
	Duration  float32 // seconds
	Times     []float32
	Rotations []math.Quat
}

// Model is a decoded, render-ready 3D asset.
type Model struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32

	// Clips in document order. The first clip is the one played on mount.
	Clips []Clip

	// First embedded texture image (PNG/JPEG bytes), nil if none.
	Texture []byte

	Min, Max [3]float32
}

// HasAnimation reports whether the model carries a playable clip.
func (m *Model) HasAnimation() bool {
	for _, c := range m.Clips {
		if len(c.Times) > 0 {
			return true
		}
	}
	return false
}

// Center returns the midpoint of the bounding box.
func (m *Model) Center() math.Vec3 {
	return math.Vec3{
		X: (m.Min[0] + m.Max[0]) / 2,
		Y: (m.Min[1] + m.Max[1]) / 2,
		Z: (m.Min[2] + m.Max[2]) / 2,
	}
}

// Radius returns half the largest bounding-box extent, used to fit the camera.
func (m *Model) Radius() float32 {
	r := m.Max[0] - m.Min[0]
	if d := m.Max[1] - m.Min[1]; d > r {
		r = d
	}
	if d := m.Max[2] - m.Min[2]; d > r {
		r = d
	}
	return r / 2
}

// Sample returns the clip rotation at time t (seconds), clamping outside the
// track range and slerping between surrounding keys.
func (c *Clip) Sample(t float32) math.Quat {
	if len(c.Times) == 0 {
		return math.QuatIdentity()
	}
	if t <= c.Times[0] {
		return c.Rotations[0]
	}
	last := len(c.Times) - 1
	if t >= c.Times[last] {
		return c.Rotations[last]
	}

	i := 0
	for i < last && c.Times[i+1] < t {
		i++
	}

	span := c.Times[i+1] - c.Times[i]
	if span <= 0 {
		return c.Rotations[i]
	}
	frac := (t - c.Times[i]) / span
	return c.Rotations[i].Slerp(c.Rotations[i+1], frac)
}

// DecodeGLB decodes a binary glTF asset into a Model.
func DecodeGLB(name string, data []byte) (*Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glb: %w", err)
	}
	return decodeDocument(name, doc)
}

// decodeDocument extracts geometry, the first embedded texture and the
// animation clips from a parsed glTF document.
func decodeDocument(name string, doc *gltf.Document) (*Model, error) {
	m := &Model{
		Name: name,
		Min:  [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max:  [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}

	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			if err := appendPrimitive(doc, prim, m); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
			}
		}
	}

	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("asset %q contains no triangle geometry", name)
	}

	m.Texture = firstEmbeddedTexture(doc)

	clips, err := decodeClips(doc)
	if err != nil {
		return nil, err
	}
	m.Clips = clips

	return m, nil
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, m *Model) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}

	positions, err := readVec3(doc, posIdx)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = readVec3(doc, idx); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = readVec2(doc, idx); err != nil {
			return fmt.Errorf("uvs: %w", err)
		}
	}

	base := uint32(len(m.Vertices))
	for i, p := range positions {
		v := Vertex{Position: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// glTF uses a top-left UV origin, GL expects bottom-left.
			v.TexCoord = [2]float32{uvs[i][0], 1 - uvs[i][1]}
		}
		for j := 0; j < 3; j++ {
			if p[j] < m.Min[j] {
				m.Min[j] = p[j]
			}
			if p[j] > m.Max[j] {
				m.Max[j] = p[j]
			}
		}
		m.Vertices = append(m.Vertices, v)
	}

	if prim.Indices != nil {
		indices, err := readScalars(doc, *prim.Indices)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		for _, idx := range indices {
			m.Indices = append(m.Indices, base+idx)
		}
	} else {
		for i := range positions {
			m.Indices = append(m.Indices, base+uint32(i))
		}
	}

	return nil
}

// decodeClips extracts one Clip per document animation, preserving document
// order so "first clip" is deterministic.
func decodeClips(doc *gltf.Document) ([]Clip, error) {
	clips := make([]Clip, 0, len(doc.Animations))

	for i, anim := range doc.Animations {
		clip := Clip{Name: anim.Name}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("clip-%d", i)
		}

		for _, ch := range anim.Channels {
			if ch.Target.Path != gltf.TRSRotation {
				continue
			}
			sampler := anim.Samplers[ch.Sampler]

			times, err := readFloats(doc, int(sampler.Input))
			if err != nil {
				return nil, fmt.Errorf("clip %q: input: %w", clip.Name, err)
			}
			rots, err := readVec4(doc, int(sampler.Output))
			if err != nil {
				return nil, fmt.Errorf("clip %q: output: %w", clip.Name, err)
			}

			n := len(times)
			if len(rots) < n {
				n = len(rots)
			}
			clip.Times = times[:n]
			clip.Rotations = make([]math.Quat, n)
			for j := 0; j < n; j++ {
				clip.Rotations[j] = math.Quat{X: rots[j][0], Y: rots[j][1], Z: rots[j][2], W: rots[j][3]}
			}
			if n > 0 {
				clip.Duration = clip.Times[n-1]
			}
			break // one rotation track per clip
		}

		clips = append(clips, clip)
	}

	return clips, nil
}

func firstEmbeddedTexture(doc *gltf.Document) []byte {
	for _, img := range doc.Images {
		if img.BufferView == nil {
			continue
		}
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			continue
		}
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			continue
		}
		return buf.Data[bv.ByteOffset:end]
	}
	return nil
}

// accessorBytes resolves an accessor to its backing bytes plus element stride.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, fmt.Errorf("external buffers not supported")
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + acc.ByteOffset
	need := start + (acc.Count-1)*stride + elemSize
	if acc.Count == 0 {
		need = start
	}
	if need > len(buf.Data) {
		return nil, 0, fmt.Errorf("accessor out of buffer bounds")
	}
	return buf.Data[start:], stride, nil
}

func readVec3(doc *gltf.Document, accessorIdx int) ([][3]float32, error) {
	acc := doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", acc.Type, acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, 12)
	if err != nil {
		return nil, err
	}

	out := make([][3]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := i * stride
		for j := 0; j < 3; j++ {
			out[i][j] = readFloat32(data[off+j*4:])
		}
	}
	return out, nil
}

func readVec2(doc *gltf.Document, accessorIdx int) ([][2]float32, error) {
	acc := doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorVec2 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC2, got %v/%v", acc.Type, acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, 8)
	if err != nil {
		return nil, err
	}

	out := make([][2]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := i * stride
		out[i][0] = readFloat32(data[off:])
		out[i][1] = readFloat32(data[off+4:])
	}
	return out, nil
}

func readVec4(doc *gltf.Document, accessorIdx int) ([][4]float32, error) {
	acc := doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorVec4 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC4, got %v/%v", acc.Type, acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, 16)
	if err != nil {
		return nil, err
	}

	out := make([][4]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := i * stride
		for j := 0; j < 4; j++ {
			out[i][j] = readFloat32(data[off+j*4:])
		}
	}
	return out, nil
}

func readFloats(doc *gltf.Document, accessorIdx int) ([]float32, error) {
	acc := doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorScalar || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float SCALAR, got %v/%v", acc.Type, acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, 4)
	if err != nil {
		return nil, err
	}

	out := make([]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		out[i] = readFloat32(data[i*stride:])
	}
	return out, nil
}

// readScalars reads index data of any supported component width as uint32.
func readScalars(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	acc := doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", acc.Type)
	}

	var elemSize int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		elemSize = 1
	case gltf.ComponentUshort:
		elemSize = 2
	case gltf.ComponentUint:
		elemSize = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %v", acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, elemSize)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := i * stride
		switch elemSize {
		case 1:
			out[i] = uint32(data[off])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(data[off:])
		}
	}
	return out, nil
}

func readFloat32(b []byte) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b))
}
