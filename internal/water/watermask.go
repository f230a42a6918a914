// Package water classifies tiles as land, water or a mix, and stages the
// mask texture used to shade mixed tiles.
package water

import (
	"errors"
	"fmt"

	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/Faultbox/tilestage/internal/texture"
)

// WaterMaskType indicates the kind of water mask a tile uses.
type WaterMaskType uint8

const (
	// OnlyLand means the tile has no water.
	OnlyLand WaterMaskType = iota
	// OnlyWater means the tile has no land.
	OnlyWater
	// MixOfLandAndWater means a texture defines where each is found.
	MixOfLandAndWater
)

// String returns a human-readable mask type.
func (t WaterMaskType) String() string {
	switch t {
	case OnlyLand:
		return "OnlyLand"
	case OnlyWater:
		return "OnlyWater"
	case MixOfLandAndWater:
		return "MixOfLandAndWater"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Water mask errors.
var (
	ErrMissingTexture    = errors.New("mixed water mask requires a texture")
	ErrUnexpectedTexture = errors.New("uniform water mask must not carry a texture")
	ErrInvalidScale      = errors.New("water mask scale must be positive")
)

// LoadedWaterMask is the water overlay for one tile.
//
// The fields are unexported so a mask can only be built through Land, Water
// or Mixed; the texture is present if and only if the type is
// MixOfLandAndWater.
type LoadedWaterMask struct {
	kind        WaterMaskType
	texture     *texture.LoadedTexture
	translation vec2d.T
	scale       float64
}

// Land returns a mask for a tile without water.
func Land() LoadedWaterMask {
	return LoadedWaterMask{kind: OnlyLand, scale: 1}
}

// Water returns a mask for a tile without land.
func Water() LoadedWaterMask {
	return LoadedWaterMask{kind: OnlyWater, scale: 1}
}

// Mixed returns a mask whose texture decides land and water per texel.
// translation and scale place the mask texture within the tile's UV space.
func Mixed(tex *texture.LoadedTexture, translation vec2d.T, scale float64) (LoadedWaterMask, error) {
	if tex == nil {
		return LoadedWaterMask{}, ErrMissingTexture
	}
	if scale <= 0 {
		return LoadedWaterMask{}, fmt.Errorf("%w: %g", ErrInvalidScale, scale)
	}
	return LoadedWaterMask{
		kind:        MixOfLandAndWater,
		texture:     tex,
		translation: translation,
		scale:       scale,
	}, nil
}

// Type returns the mask classification.
func (m LoadedWaterMask) Type() WaterMaskType {
	return m.kind
}

// Texture returns the mask texture; ok is false unless the tile is mixed.
func (m LoadedWaterMask) Texture() (tex *texture.LoadedTexture, ok bool) {
	return m.texture, m.texture != nil
}

// Translation returns the UV offset of the mask texture.
func (m LoadedWaterMask) Translation() vec2d.T {
	return m.translation
}

// Scale returns the UV scale of the mask texture. A zero value mask reports 1.
func (m LoadedWaterMask) Scale() float64 {
	if m.scale == 0 {
		return 1
	}
	return m.scale
}

// Validate re-checks the texture-iff-mixed invariant.
func (m LoadedWaterMask) Validate() error {
	switch m.kind {
	case MixOfLandAndWater:
		if m.texture == nil {
			return ErrMissingTexture
		}
	case OnlyLand, OnlyWater:
		if m.texture != nil {
			return fmt.Errorf("%w: %s", ErrUnexpectedTexture, m.kind)
		}
	default:
		return fmt.Errorf("unknown water mask type %d", m.kind)
	}
	return nil
}

// Release frees the mask texture, if any.
func (m *LoadedWaterMask) Release() {
	if m.texture != nil {
		m.texture.Release()
	}
}
