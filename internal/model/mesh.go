package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Build errors.
var (
	ErrNoPositions     = errors.New("primitive has no positions")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrAttributeCount  = errors.New("attribute count does not match positions")
	ErrTooManyUVs      = errors.New("too many UV channels")
)

// Build creates render data from one primitive's attributes.
//
// Strips and fans are expanded to triangle lists and missing indices are
// replaced by a sequential list. When normals are absent (or
// ComputeFlatNormals is set) the mesh is un-indexed so every triangle gets
// its own face normal.
func Build(in PrimitiveData, opts BuildOptions) (*RenderData, error) {
	n := len(in.Positions)
	if n == 0 {
		return nil, ErrNoPositions
	}
	if len(in.UVs) > MaxUVChannels {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyUVs, len(in.UVs), MaxUVChannels)
	}
	if err := checkCount("NORMAL", len(in.Normals), n); err != nil {
		return nil, err
	}
	if err := checkCount("COLOR", len(in.Colors), n); err != nil {
		return nil, err
	}
	for ch, uvs := range in.UVs {
		if err := checkCount(fmt.Sprintf("UV channel %d", ch), len(uvs), n); err != nil {
			return nil, err
		}
	}

	indices := in.Indices
	if indices == nil {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i, idx := range indices {
		if int(idx) >= n {
			return nil, fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexOutOfRange, i, idx, n)
		}
	}

	switch in.Topology {
	case TriangleStrip:
		indices = StripToList(indices)
	case TriangleFan:
		indices = FanToList(indices)
	default:
		indices = indices[:len(indices)-len(indices)%3]
	}
	if opts.FlipWinding {
		indices = flipWinding(indices)
	}

	rd := &RenderData{
		Bounds:         emptyBounds(),
		UVChannelCount: len(in.UVs),
		Material:       DefaultMaterial(),
	}

	vertexAt := func(i uint32) Vertex {
		v := Vertex{Position: in.Positions[i], Color: [4]float32{1, 1, 1, 1}}
		if in.Normals != nil {
			v.Normal = in.Normals[i]
		}
		if in.Colors != nil {
			v.Color = in.Colors[i]
		}
		for ch, uvs := range in.UVs {
			if len(uvs) > 0 {
				v.UV[ch] = uvs[i]
			}
		}
		return v
	}

	if in.Normals == nil || opts.ComputeFlatNormals {
		rd.Vertices = make([]Vertex, 0, len(indices))
		rd.Indices = make([]uint32, 0, len(indices))
		for t := 0; t+2 < len(indices); t += 3 {
			v0, v1, v2 := vertexAt(indices[t]), vertexAt(indices[t+1]), vertexAt(indices[t+2])
			normal := faceNormal(v0.Position, v1.Position, v2.Position)
			base := uint32(len(rd.Vertices))
			for _, v := range [3]Vertex{v0, v1, v2} {
				v.Normal = normal
				rd.Vertices = append(rd.Vertices, v)
				rd.Indices = append(rd.Indices, base)
				base++
			}
		}
		if opts.SmoothNormals {
			SmoothNormals(rd.Vertices)
		}
	} else {
		rd.Vertices = make([]Vertex, n)
		for i := range rd.Vertices {
			rd.Vertices[i] = vertexAt(uint32(i))
		}
		rd.Indices = slices.Clone(indices)
	}

	for i := range rd.Vertices {
		updateBounds(&rd.Bounds, rd.Vertices[i].Position)
	}
	if rd.Bounds.Empty() {
		rd.Bounds = Bounds{}
	}
	return rd, nil
}

func checkCount(name string, got, want int) error {
	if got != 0 && got != want {
		return fmt.Errorf("%w: %s has %d, want %d", ErrAttributeCount, name, got, want)
	}
	return nil
}

// StripToList converts triangle strip indices to a triangle list, keeping
// a consistent winding by swapping every odd triangle.
func StripToList(strip []uint32) []uint32 {
	if len(strip) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(strip)-2)*3)
	for i := 0; i+2 < len(strip); i++ {
		if i%2 == 0 {
			out = append(out, strip[i], strip[i+1], strip[i+2])
		} else {
			out = append(out, strip[i+1], strip[i], strip[i+2])
		}
	}
	return out
}

// FanToList converts triangle fan indices to a triangle list.
func FanToList(fan []uint32) []uint32 {
	if len(fan) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(fan)-2)*3)
	for i := 1; i+1 < len(fan); i++ {
		out = append(out, fan[0], fan[i], fan[i+1])
	}
	return out
}

func flipWinding(indices []uint32) []uint32 {
	out := make([]uint32, len(indices))
	copy(out, indices)
	for i := 0; i+2 < len(out); i += 3 {
		out[i+1], out[i+2] = out[i+2], out[i+1]
	}
	return out
}

// smoothWeldEpsilon is the distance in model units below which positions
// share a smoothed normal.
const smoothWeldEpsilon = 0.001

// SmoothNormals averages normals at shared vertex positions.
// Positions are quantized relative to the minimum corner in 64-bit so
// ECEF-scale coordinates still weld only vertices that actually coincide.
func SmoothNormals(vertices []Vertex) {
	if len(vertices) < 2 {
		return
	}

	origin := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	for i := range vertices {
		for c := 0; c < 3; c++ {
			origin[c] = math.Min(origin[c], float64(vertices[i].Position[c]))
		}
	}

	groups := make(map[[3]int64][]int)
	for i := range vertices {
		var key [3]int64
		for c := 0; c < 3; c++ {
			key[c] = int64(math.Round((float64(vertices[i].Position[c]) - origin[c]) / smoothWeldEpsilon))
		}
		groups[key] = append(groups[key], i)
	}

	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		var sum [3]float32
		for _, idx := range idxs {
			n := vertices[idx].Normal
			sum[0] += n[0]
			sum[1] += n[1]
			sum[2] += n[2]
		}
		avg := Normalize(sum)
		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}
