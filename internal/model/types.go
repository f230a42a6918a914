// Package model holds the staged form of one glTF primitive: render data,
// material, textures, collision mesh and water mask.
package model

import "fmt"

// MaxUVChannels is the number of texture coordinate sets a vertex carries.
const MaxUVChannels = 4

// Vertex is one render vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [4]float32
	UV       [MaxUVChannels][2]float32
}

// Bounds holds an axis-aligned bounding box in primitive space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Empty reports whether no point has been added to the box.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e30, 1e30, 1e30},
		Max: [3]float32{-1e30, -1e30, -1e30},
	}
}

// AlphaMode mirrors the glTF material alpha mode.
type AlphaMode uint8

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaOpaque:
		return "OPAQUE"
	case AlphaMask:
		return "MASK"
	case AlphaBlend:
		return "BLEND"
	default:
		return fmt.Sprintf("AlphaMode(%d)", m)
	}
}

// Material holds the scalar material factors. Textures live on LoadedModel.
type Material struct {
	BaseColorFactor [4]float64
	MetallicFactor  float64
	RoughnessFactor float64
	EmissiveFactor  [3]float64
	AlphaMode       AlphaMode
	AlphaCutoff     float64
	DoubleSided     bool
}

// DefaultMaterial is the glTF default material.
func DefaultMaterial() Material {
	return Material{
		BaseColorFactor: [4]float64{1, 1, 1, 1},
		MetallicFactor:  1,
		RoughnessFactor: 1,
		AlphaCutoff:     0.5,
	}
}

// RenderData is a primitive ready for GPU upload. It is owned by exactly one
// LoadedModel.
type RenderData struct {
	Vertices       []Vertex
	Indices        []uint32
	Bounds         Bounds
	UVChannelCount int
	Material       Material
}

// TriangleCount returns the number of triangles in the index buffer.
func (r *RenderData) TriangleCount() int {
	if r == nil {
		return 0
	}
	return len(r.Indices) / 3
}

// Positions returns vertex positions in vertex order.
func (r *RenderData) Positions() [][3]float32 {
	out := make([][3]float32, len(r.Vertices))
	for i := range r.Vertices {
		out[i] = r.Vertices[i].Position
	}
	return out
}

// Release drops the vertex and index buffers.
func (r *RenderData) Release() {
	if r == nil {
		return
	}
	r.Vertices = nil
	r.Indices = nil
}

// Topology is the primitive assembly mode of the input indices.
type Topology uint8

const (
	Triangles Topology = iota
	TriangleStrip
	TriangleFan
)

// PrimitiveData is the raw attribute data read from one glTF primitive.
// UVs is indexed by UV channel, not by TEXCOORD set.
type PrimitiveData struct {
	Positions [][3]float32
	Normals   [][3]float32
	Colors    [][4]float32
	UVs       [][][2]float32
	Indices   []uint32
	Topology  Topology
}

// BuildOptions controls Build.
type BuildOptions struct {
	// FlipWinding reverses triangle winding (mirroring transforms).
	FlipWinding bool
	// ComputeFlatNormals ignores supplied normals and generates face normals.
	ComputeFlatNormals bool
	// SmoothNormals averages generated normals at shared positions.
	SmoothNormals bool
}
