package physics

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/google/uuid"
)

// degenerateArea is the smallest doubled triangle area that still cooks.
const degenerateArea = 1e-10

// meshData is the backend independent result of cooking.
type meshData struct {
	id        uuid.UUID
	vertices  [][3]float32
	triangles [][3]uint32
	bounds    Bounds
}

// cook validates triangles, drops degenerate ones and compacts the vertex
// buffer to the vertices that are still referenced.
func cook(positions [][3]float32, indices []uint32) (*meshData, error) {
	n := uint32(len(positions))
	remap := make(map[uint32]uint32)
	var (
		vertices  [][3]float32
		triangles [][3]uint32
	)

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		if a == b || b == c || a == c {
			continue
		}
		if triangleArea2(positions[a], positions[b], positions[c]) < degenerateArea {
			continue
		}

		var tri [3]uint32
		for k, idx := range [3]uint32{a, b, c} {
			mapped, ok := remap[idx]
			if !ok {
				mapped = uint32(len(vertices))
				remap[idx] = mapped
				vertices = append(vertices, positions[idx])
			}
			tri[k] = mapped
		}
		triangles = append(triangles, tri)
	}

	if len(triangles) == 0 {
		return nil, ErrNoTriangles
	}

	return &meshData{
		id:        uuid.Must(uuid.NewV7()),
		vertices:  vertices,
		triangles: triangles,
		bounds:    computeBounds(vertices),
	}, nil
}

// triangleArea2 returns twice the area of the triangle.
func triangleArea2(p0, p1, p2 [3]float32) float64 {
	a := toVec(p0)
	b := toVec(p1)
	c := toVec(p2)
	e1 := vec3d.Sub(&b, &a)
	e2 := vec3d.Sub(&c, &a)
	n := vec3d.Cross(&e1, &e2)
	return n.Length()
}

func computeBounds(vertices [][3]float32) Bounds {
	b := Bounds{Min: vec3d.MaxVal, Max: vec3d.MinVal}
	for _, v := range vertices {
		p := toVec(v)
		b.Min = vec3d.Min(&b.Min, &p)
		b.Max = vec3d.Max(&b.Max, &p)
	}
	return b
}

func toVec(p [3]float32) vec3d.T {
	return vec3d.T{float64(p[0]), float64(p[1]), float64(p[2])}
}
