package math

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()

	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)
	if math.Abs(length-1.0) > 1e-12 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}

	if (Quat{}).Normalize() != QuatIdentity() {
		t.Error("zero quaternion should normalize to identity")
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		axis  vec3d.T
		angle float64
		in    vec3d.T
		want  vec3d.T
	}{
		{"quarter turn about Z", vec3d.T{0, 0, 1}, math.Pi / 2, vec3d.T{1, 0, 0}, vec3d.T{0, 1, 0}},
		{"half turn about Z", vec3d.T{0, 0, 1}, math.Pi, vec3d.T{1, 0, 0}, vec3d.T{-1, 0, 0}},
		{"quarter turn about X", vec3d.T{1, 0, 0}, math.Pi / 2, vec3d.T{0, 1, 0}, vec3d.T{0, 0, 1}},
		{"zero angle", vec3d.T{0, 1, 0}, 0, vec3d.T{1, 2, 3}, vec3d.T{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromAxisAngle(tt.axis, tt.angle).ToMat4().TransformPoint(tt.in)
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestQuatToMat4(t *testing.T) {
	m := QuatIdentity().ToMat4()
	if !m.ApproxEqual(Identity(), 1e-12) {
		t.Errorf("Identity quat should produce identity matrix, got %v", m)
	}
}
