package water

import (
	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/Faultbox/tilestage/internal/texture"
	"github.com/Faultbox/tilestage/pkg/qmesh"
)

// FromQuantizedMesh builds a mask from a quantized-mesh water mask extension.
// A single byte classifies the whole tile (0 land, anything else water).
// A full 256x256 mask becomes an R8 texture sampled with clamped bilinear
// filtering, covering the tile with no offset.
func FromQuantizedMesh(ext *qmesh.WaterMaskExtension) (LoadedWaterMask, error) {
	if ext == nil {
		return Land(), nil
	}
	if v, ok := ext.Uniform(); ok {
		if v == qmesh.MaskLand {
			return Land(), nil
		}
		return Water(), nil
	}
	if !ext.IsFull() {
		return LoadedWaterMask{}, qmesh.ErrInvalidWaterMaskLength
	}

	pd, err := texture.NewPlatformDataR8(qmesh.WaterMaskSize, qmesh.WaterMaskSize, ext.Mask)
	if err != nil {
		return LoadedWaterMask{}, err
	}
	tex := &texture.LoadedTexture{
		PlatformData: pd,
		AddressX:     texture.AddressClamp,
		AddressY:     texture.AddressClamp,
		Filter:       texture.FilterBilinear,
	}
	return Mixed(tex, vec2d.T{}, 1)
}

// WaterFraction returns the share of water texels in a full mask, or the
// uniform answer (0 or 1) for single-byte masks.
func WaterFraction(ext *qmesh.WaterMaskExtension) float64 {
	if ext == nil || len(ext.Mask) == 0 {
		return 0
	}
	water := 0
	for _, v := range ext.Mask {
		if v != qmesh.MaskLand {
			water++
		}
	}
	return float64(water) / float64(len(ext.Mask))
}
