package math

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity() {
		t.Error("IsIdentity should be true for Identity()")
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

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation lives in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(vec3d.T{1, 2, 3})

	expected := vec3d.T{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointLargeCoordinates(t *testing.T) {
	// ECEF-sized translations must survive without float32 rounding.
	m := Translate(6378137.125, -1234567.0625, 42)
	result := m.TransformPoint(vec3d.T{0.001, 0, 0})

	if math.Abs(result[0]-6378137.126) > 1e-6 {
		t.Errorf("TransformPoint lost precision: got %.6f", result[0])
	}
}

func TestYUpToZUp(t *testing.T) {
	up := YUpToZUp().TransformPoint(vec3d.T{0, 1, 0})
	if up != (vec3d.T{0, 0, 1}) {
		t.Errorf("Y axis should map to Z, got %v", up)
	}
	forward := YUpToZUp().TransformPoint(vec3d.T{0, 0, 1})
	if forward != (vec3d.T{0, -1, 0}) {
		t.Errorf("Z axis should map to -Y, got %v", forward)
	}
}

func TestXUpToZUp(t *testing.T) {
	up := XUpToZUp().TransformPoint(vec3d.T{1, 0, 0})
	if up != (vec3d.T{0, 0, 1}) {
		t.Errorf("X axis should map to Z, got %v", up)
	}
}

func TestFromTRS(t *testing.T) {
	tests := []struct {
		name        string
		translation [3]float64
		rotation    [4]float64
		scale       [3]float64
		point       vec3d.T
		want        vec3d.T
	}{
		{
			name:  "zero rotation and scale default to identity",
			point: vec3d.T{1, 2, 3},
			want:  vec3d.T{1, 2, 3},
		},
		{
			name:        "translate then scale order",
			translation: [3]float64{10, 0, 0},
			rotation:    [4]float64{0, 0, 0, 1},
			scale:       [3]float64{2, 2, 2},
			point:       vec3d.T{1, 0, 0},
			want:        vec3d.T{12, 0, 0},
		},
		{
			name:     "90 degrees around Z",
			rotation: [4]float64{0, 0, math.Sin(math.Pi / 4), math.Cos(math.Pi / 4)},
			scale:    [3]float64{1, 1, 1},
			point:    vec3d.T{1, 0, 0},
			want:     vec3d.T{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromTRS(tt.translation, tt.rotation, tt.scale)
			got := m.TransformPoint(tt.point)
			for i := 0; i < 3; i++ {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDeterminant3(t *testing.T) {
	if d := Scale(1, 1, -1).Determinant3(); d >= 0 {
		t.Errorf("mirrored scale should have negative determinant, got %f", d)
	}
	if d := Scale(2, 3, 4).Determinant3(); d != 24 {
		t.Errorf("Determinant3: got %f, want 24", d)
	}
}

func TestFloat32(t *testing.T) {
	f := Translate(1.5, 2.5, 3.5).Float32()
	if f[12] != 1.5 || f[13] != 2.5 || f[14] != 3.5 || f[15] != 1 {
		t.Errorf("Float32 translation: got %v", f[12:])
	}
}
