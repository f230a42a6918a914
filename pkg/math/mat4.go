// Package math provides double precision transforms for tile-space geometry.
package math

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// DMat4 is a 4x4 double precision matrix in column-major order (glTF compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type DMat4 [16]float64

// Identity returns an identity matrix.
func Identity() DMat4 {
	return DMat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) DMat4 {
	return DMat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) DMat4 {
	return DMat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// YUpToZUp rotates a Y-up frame (glTF) into a Z-up frame (ECEF tiles).
// It is a +90 degree rotation around X: (x, y, z) -> (x, -z, y).
func YUpToZUp() DMat4 {
	return DMat4{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, -1, 0, 0,
		0, 0, 0, 1,
	}
}

// XUpToZUp rotates an X-up frame into a Z-up frame: (x, y, z) -> (-z, y, x).
func XUpToZUp() DMat4 {
	return DMat4{
		0, 0, 1, 0,
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 0, 1,
	}
}

// FromTRS builds translation * rotation * scale, the glTF node order.
// A zero quaternion is treated as identity and a zero scale as (1, 1, 1).
func FromTRS(translation [3]float64, rotation [4]float64, scale [3]float64) DMat4 {
	q := Quat{X: rotation[0], Y: rotation[1], Z: rotation[2], W: rotation[3]}
	if q == (Quat{}) {
		q = QuatIdentity()
	}
	if scale == ([3]float64{}) {
		scale = [3]float64{1, 1, 1}
	}
	return Translate(translation[0], translation[1], translation[2]).
		Mul(q.ToMat4()).
		Mul(Scale(scale[0], scale[1], scale[2]))
}

// Mul multiplies this matrix by another (m * other).
func (m DMat4) Mul(other DMat4) DMat4 {
	var result DMat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point by this matrix (assumes w=1).
func (m DMat4) TransformPoint(p vec3d.T) vec3d.T {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return vec3d.T{x / w, y / w, z / w}
	}
	return vec3d.T{x, y, z}
}

// Translation returns the translation column.
func (m DMat4) Translation() vec3d.T {
	return vec3d.T{m[12], m[13], m[14]}
}

// IsIdentity reports whether m equals the identity matrix exactly.
func (m DMat4) IsIdentity() bool {
	return m == Identity()
}

// IsZero reports whether every element is zero.
func (m DMat4) IsZero() bool {
	return m == DMat4{}
}

// Determinant3 returns the determinant of the upper-left 3x3 block.
// A negative value means the transform mirrors geometry.
func (m DMat4) Determinant3() float64 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}

// Float32 narrows the matrix for GPU upload.
func (m DMat4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// ApproxEqual compares two matrices element-wise within eps.
func (m DMat4) ApproxEqual(other DMat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}
