package math

import (
	gomath "math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateYQuarterTurn(t *testing.T) {
	m := RotateY(float32(gomath.Pi / 2))
	result := m.TransformPoint([3]float32{1, 0, 0})

	// Rotating +X by 90 degrees around Y lands on -Z.
	if gomath.Abs(float64(result[0])) > 1e-5 ||
		gomath.Abs(float64(result[1])) > 1e-5 ||
		gomath.Abs(float64(result[2]+1)) > 1e-5 {
		t.Errorf("RotateY(pi/2) * (1,0,0): got %v, want (0,0,-1)", result)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}.Normalize()
	if gomath.Abs(float64(v.Length()-1)) > 1e-6 {
		t.Errorf("normalized length: got %f, want 1", v.Length())
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("normalizing zero vector: got %v, want zero", zero)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	if z != (Vec3{0, 0, 1}) {
		t.Errorf("X cross Y: got %v, want (0,0,1)", z)
	}
}

func TestLookAtEyeMapsToOrigin(t *testing.T) {
	eye := Vec3{0, 0, 10}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})
	p := m.TransformPoint([3]float32{eye.X, eye.Y, eye.Z})

	for i, c := range p {
		if gomath.Abs(float64(c)) > 1e-5 {
			t.Errorf("eye should map to origin, component %d = %f", i, c)
		}
	}
}
