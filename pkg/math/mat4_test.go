package math

import (
	"math"
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

func TestTranslateScaleOrder(t *testing.T) {
	// Unit quad corner (1,1) mapped onto a footprint centered at (100,200) with size 64.
	m := Translate(100, 200, 0).Mul(Scale(32, 32, 1))
	got := m.TransformVec3(Vec3{1, 1, 5})
	want := Vec3{132, 232, 5}
	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}

	got = m.TransformVec3(Vec3{-1, -1, 0})
	want = Vec3{68, 168, 0}
	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 2)
	m := Perspective(fov, 1.0, 0.1, 100)

	if math.Abs(float64(m[0]-1)) > 1e-5 || math.Abs(float64(m[5]-1)) > 1e-5 {
		t.Errorf("Perspective focal terms: got (%f, %f), want (1, 1)", m[0], m[5])
	}
	if m[11] != -1 {
		t.Errorf("Perspective m[11] = %f, want -1", m[11])
	}
}

func TestHorizontalFOV(t *testing.T) {
	fov := float32(math.Pi / 3)
	if got := HorizontalFOV(fov, 1); math.Abs(float64(got-fov)) > 1e-5 {
		t.Errorf("HorizontalFOV(aspect=1) = %f, want %f", got, fov)
	}
	if got := HorizontalFOV(fov, 16.0/9.0); got <= fov {
		t.Errorf("HorizontalFOV(aspect>1) = %f, want > %f", got, fov)
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, -10, 0}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 0, 1}
	m := LookAt(eye, center, up)

	// The look target ends up on the negative view Z axis.
	p := m.TransformVec3(center)
	if math.Abs(float64(p.X)) > 1e-5 || math.Abs(float64(p.Y)) > 1e-5 {
		t.Errorf("LookAt center should be on view axis, got %v", p)
	}
	if math.Abs(float64(p.Z+10)) > 1e-4 {
		t.Errorf("LookAt center depth = %f, want -10", p.Z)
	}
}
