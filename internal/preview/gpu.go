package preview

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/tilestage/internal/model"
	"github.com/Faultbox/tilestage/internal/texture"
)

// glWrap maps an address mode to a GL wrap mode.
func glWrap(m texture.AddressMode) int32 {
	switch m {
	case texture.AddressClamp:
		return gl.CLAMP_TO_EDGE
	case texture.AddressMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

// glFilters maps a filter mode to GL min and mag filters. Mipmapped
// minification is only used when the texture has a mip chain.
func glFilters(f texture.FilterMode, mips int) (minFilter, magFilter int32) {
	hasMips := mips > 1
	switch f {
	case texture.FilterNearest:
		if hasMips {
			return gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST
		}
		return gl.NEAREST, gl.NEAREST
	case texture.FilterBilinear:
		if hasMips {
			return gl.LINEAR_MIPMAP_NEAREST, gl.LINEAR
		}
		return gl.LINEAR, gl.LINEAR
	default:
		if hasMips {
			return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
		}
		return gl.LINEAR, gl.LINEAR
	}
}

// glFormat maps a pixel format to GL internal and client formats.
func glFormat(p texture.PixelFormat) (internal int32, format uint32) {
	if p == texture.FormatR8 {
		return gl.R8, gl.RED
	}
	return gl.RGBA8, gl.RGBA
}

// uploadTexture creates a GL texture from every mip level of tex.
func uploadTexture(tex *texture.LoadedTexture) uint32 {
	if tex == nil || tex.PlatformData == nil || len(tex.PlatformData.Mips) == 0 {
		return 0
	}
	pd := tex.PlatformData
	internal, format := glFormat(pd.Format)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for level, mip := range pd.Mips {
		gl.TexImage2D(gl.TEXTURE_2D, int32(level), internal, int32(mip.Width), int32(mip.Height), 0,
			format, gl.UNSIGNED_BYTE, unsafe.Pointer(&mip.Data[0]))
	}

	minF, magF := glFilters(tex.Filter, len(pd.Mips))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(len(pd.Mips)-1))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minF)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magF)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(tex.AddressX))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(tex.AddressY))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// gpuMesh is one model's render data on the GPU.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func uploadMesh(rd *model.RenderData) *gpuMesh {
	if rd == nil || len(rd.Vertices) == 0 || len(rd.Indices) == 0 {
		return nil
	}
	m := &gpuMesh{indexCount: int32(len(rd.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	stride := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(rd.Vertices)*stride, unsafe.Pointer(&rd.Vertices[0]), gl.STATIC_DRAW)

	var v model.Vertex
	attrib := func(loc uint32, size int32, offset uintptr) {
		gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, int32(stride), offset)
		gl.EnableVertexAttribArray(loc)
	}
	attrib(0, 3, unsafe.Offsetof(v.Position))
	attrib(1, 3, unsafe.Offsetof(v.Normal))
	attrib(2, 4, unsafe.Offsetof(v.Color))
	for ch := 0; ch < model.MaxUVChannels; ch++ {
		attrib(uint32(3+ch), 2, unsafe.Offsetof(v.UV)+uintptr(ch*8))
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(rd.Indices)*4, unsafe.Pointer(&rd.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m
}

func (m *gpuMesh) draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
}

func (m *gpuMesh) delete() {
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}
