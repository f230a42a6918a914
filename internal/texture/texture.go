// Package texture stages decoded images as upload-ready texture data.
package texture

import (
	"fmt"

	"github.com/qmuntal/gltf"
)

// AddressMode is how texture coordinates outside [0, 1] are resolved.
type AddressMode uint8

const (
	AddressWrap   AddressMode = iota // Repeat
	AddressClamp                     // Clamp to edge
	AddressMirror                    // Mirrored repeat
)

// String returns a human-readable address mode name.
func (a AddressMode) String() string {
	switch a {
	case AddressWrap:
		return "Wrap"
	case AddressClamp:
		return "Clamp"
	case AddressMirror:
		return "Mirror"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// FilterMode is the sampling filter used when the texture is minified.
type FilterMode uint8

const (
	FilterDefault FilterMode = iota // Consumer default
	FilterNearest
	FilterBilinear
	FilterTrilinear
)

// String returns a human-readable filter name.
func (f FilterMode) String() string {
	switch f {
	case FilterDefault:
		return "Default"
	case FilterNearest:
		return "Nearest"
	case FilterBilinear:
		return "Bilinear"
	case FilterTrilinear:
		return "Trilinear"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// PixelFormat is the layout of one pixel in PlatformData.
type PixelFormat uint8

const (
	FormatRGBA8 PixelFormat = iota
	FormatR8
)

// BytesPerPixel returns the pixel stride for the format.
func (p PixelFormat) BytesPerPixel() int {
	if p == FormatR8 {
		return 1
	}
	return 4
}

// String returns the format name.
func (p PixelFormat) String() string {
	switch p {
	case FormatRGBA8:
		return "RGBA8"
	case FormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// MipLevel is one level of a mip chain, rows tightly packed.
type MipLevel struct {
	Width  int
	Height int
	Data   []byte
}

// PlatformData is the upload-ready pixel payload of a texture.
// It belongs to exactly one LoadedTexture and is never shared.
type PlatformData struct {
	Width  int
	Height int
	Format PixelFormat
	Mips   []MipLevel
}

// SizeBytes returns the total pixel storage across all mips.
func (p *PlatformData) SizeBytes() int {
	if p == nil {
		return 0
	}
	total := 0
	for i := range p.Mips {
		total += len(p.Mips[i].Data)
	}
	return total
}

// Release drops the pixel storage.
func (p *PlatformData) Release() {
	if p == nil {
		return
	}
	p.Mips = nil
}

// LoadedTexture is a decoded texture plus its sampler state.
type LoadedTexture struct {
	PlatformData *PlatformData
	AddressX     AddressMode
	AddressY     AddressMode
	Filter       FilterMode
}

// Release frees the platform data. The texture must not be used afterwards.
func (t *LoadedTexture) Release() {
	if t == nil || t.PlatformData == nil {
		return
	}
	t.PlatformData.Release()
	t.PlatformData = nil
}

// AddressFromGLTF maps a glTF wrapping mode to an address mode.
func AddressFromGLTF(mode gltf.WrappingMode) AddressMode {
	switch mode {
	case gltf.WrapClampToEdge:
		return AddressClamp
	case gltf.WrapMirroredRepeat:
		return AddressMirror
	default:
		return AddressWrap
	}
}

// FilterFromGLTF maps glTF sampler filters to a filter mode.
// The minification filter decides; the magnification filter is only
// consulted when minification is unset.
func FilterFromGLTF(minFilter gltf.MinFilter, magFilter gltf.MagFilter) FilterMode {
	switch minFilter {
	case gltf.MinNearest, gltf.MinNearestMipMapNearest:
		return FilterNearest
	case gltf.MinLinear, gltf.MinLinearMipMapNearest:
		return FilterBilinear
	case gltf.MinNearestMipMapLinear, gltf.MinLinearMipMapLinear:
		return FilterTrilinear
	}

	switch magFilter {
	case gltf.MagNearest:
		return FilterNearest
	case gltf.MagLinear:
		return FilterBilinear
	}
	return FilterDefault
}

// SamplerModes resolves the address and filter modes for a glTF sampler.
// A nil sampler yields repeat addressing and the default filter.
func SamplerModes(s *gltf.Sampler) (x, y AddressMode, filter FilterMode) {
	if s == nil {
		return AddressWrap, AddressWrap, FilterDefault
	}
	return AddressFromGLTF(s.WrapS), AddressFromGLTF(s.WrapT), FilterFromGLTF(s.MinFilter, s.MagFilter)
}
