package assets

import (
	"bytes"
	"encoding/binary"
	gomath "math"
	"strconv"
	"testing"

	"github.com/luzcry/showroom/pkg/math"
)

// buildTestGLB assembles a minimal binary glTF asset: one triangle plus,
// optionally, two animation clips with rotation tracks.
func buildTestGLB(t *testing.T, withAnimation bool) []byte {
	t.Helper()

	var bin bytes.Buffer
	writeF32 := func(vals ...float32) {
		for _, v := range vals {
			binary.Write(&bin, binary.LittleEndian, v)
		}
	}

	// Positions: unit triangle in the XY plane (36 bytes).
	writeF32(0, 0, 0, 1, 0, 0, 0, 1, 0)
	// Indices: 3 x uint32 (12 bytes).
	binary.Write(&bin, binary.LittleEndian, []uint32{0, 1, 2})
	// Keyframe times: 2 x float (8 bytes).
	writeF32(0, 2)
	// Rotations: identity -> 180 degrees around Y (32 bytes).
	writeF32(0, 0, 0, 1)
	writeF32(0, 1, 0, 0)

	jsonDoc := `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": ` + strconv.Itoa(bin.Len()) + `}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 12},
			{"buffer": 0, "byteOffset": 48, "byteLength": 8},
			{"buffer": 0, "byteOffset": 56, "byteLength": 32}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5125, "count": 3, "type": "SCALAR"},
			{"bufferView": 2, "componentType": 5126, "count": 2, "type": "SCALAR"},
			{"bufferView": 3, "componentType": 5126, "count": 2, "type": "VEC4"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "mode": 4}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]`
	if withAnimation {
		jsonDoc += `,
		"animations": [
			{"name": "spin",
			 "channels": [{"sampler": 0, "target": {"node": 0, "path": "rotation"}}],
			 "samplers": [{"input": 2, "output": 3, "interpolation": "LINEAR"}]},
			{"name": "wobble",
			 "channels": [{"sampler": 0, "target": {"node": 0, "path": "rotation"}}],
			 "samplers": [{"input": 2, "output": 3, "interpolation": "LINEAR"}]}
		]`
	}
	jsonDoc += `}`

	return assembleGLB(t, []byte(jsonDoc), bin.Bytes())
}

func assembleGLB(t *testing.T, jsonChunk, binChunk []byte) []byte {
	t.Helper()

	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)

	binary.Write(&out, binary.LittleEndian, uint32(0x46546C67)) // "glTF"
	binary.Write(&out, binary.LittleEndian, uint32(2))
	binary.Write(&out, binary.LittleEndian, uint32(total))

	binary.Write(&out, binary.LittleEndian, uint32(len(jsonChunk)))
	binary.Write(&out, binary.LittleEndian, uint32(0x4E4F534A)) // "JSON"
	out.Write(jsonChunk)

	binary.Write(&out, binary.LittleEndian, uint32(len(binChunk)))
	binary.Write(&out, binary.LittleEndian, uint32(0x004E4942)) // "BIN\0"
	out.Write(binChunk)

	return out.Bytes()
}

func TestDecodeGLBGeometry(t *testing.T) {
	model, err := DecodeGLB("triangle", buildTestGLB(t, false))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(model.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(model.Vertices))
	}
	if len(model.Indices) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(model.Indices))
	}
	if model.Vertices[1].Position != [3]float32{1, 0, 0} {
		t.Errorf("unexpected vertex 1 position: %v", model.Vertices[1].Position)
	}

	if model.Min != [3]float32{0, 0, 0} {
		t.Errorf("unexpected min bounds: %v", model.Min)
	}
	if model.Max != [3]float32{1, 1, 0} {
		t.Errorf("unexpected max bounds: %v", model.Max)
	}

	if model.HasAnimation() {
		t.Error("expected no animation clips")
	}
}

func TestDecodeGLBClipOrdering(t *testing.T) {
	model, err := DecodeGLB("triangle", buildTestGLB(t, true))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(model.Clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(model.Clips))
	}
	// Clips must keep document order so "first clip" is deterministic.
	if model.Clips[0].Name != "spin" || model.Clips[1].Name != "wobble" {
		t.Errorf("clips out of order: %q, %q", model.Clips[0].Name, model.Clips[1].Name)
	}
	if model.Clips[0].Duration != 2 {
		t.Errorf("expected clip duration 2s, got %f", model.Clips[0].Duration)
	}
	if !model.HasAnimation() {
		t.Error("expected HasAnimation to be true")
	}
}

func TestDecodeGLBNoGeometry(t *testing.T) {
	jsonDoc := `{"asset": {"version": "2.0"}, "buffers": [{"byteLength": 4}]}`
	data := assembleGLB(t, []byte(jsonDoc), []byte{0, 0, 0, 0})

	if _, err := DecodeGLB("empty", data); err == nil {
		t.Error("expected error for asset without geometry")
	}
}

func TestDecodeGLBGarbage(t *testing.T) {
	if _, err := DecodeGLB("garbage", []byte("not a glb file")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestClipSample(t *testing.T) {
	clip := Clip{
		Name:     "spin",
		Duration: 2,
		Times:    []float32{0, 2},
		Rotations: []math.Quat{
			{X: 0, Y: 0, Z: 0, W: 1},
			{X: 0, Y: 1, Z: 0, W: 0},
		},
	}

	// Before the first key: clamp to first.
	if got := clip.Sample(-1); got != clip.Rotations[0] {
		t.Errorf("Sample(-1): got %v, want first key", got)
	}
	// After the last key: clamp to last.
	if got := clip.Sample(5); got != clip.Rotations[1] {
		t.Errorf("Sample(5): got %v, want last key", got)
	}

	// Midpoint: halfway rotation around Y (90 degrees).
	mid := clip.Sample(1)
	want := float32(gomath.Sqrt2 / 2)
	if gomath.Abs(float64(mid.Y-want)) > 1e-4 || gomath.Abs(float64(mid.W-want)) > 1e-4 {
		t.Errorf("Sample(1): got %+v, want Y=W=%f", mid, want)
	}
}

func TestClipSampleEmpty(t *testing.T) {
	var clip Clip
	if got := clip.Sample(1); got != math.QuatIdentity() {
		t.Errorf("empty clip should sample identity, got %v", got)
	}
}

func TestModelCenterRadius(t *testing.T) {
	m := &Model{Min: [3]float32{-1, 0, -2}, Max: [3]float32{1, 4, 2}}

	if c := m.Center(); c != (math.Vec3{X: 0, Y: 2, Z: 0}) {
		t.Errorf("unexpected center: %v", c)
	}
	if r := m.Radius(); r != 2 {
		t.Errorf("unexpected radius: got %f, want 2", r)
	}
}
