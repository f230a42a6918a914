package water

import (
	"encoding/json"
	"fmt"

	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/Faultbox/tilestage/internal/texture"
)

// Extras are the primitive extras written when quantized-mesh terrain is
// converted to glTF. All fields are optional.
type Extras struct {
	OnlyWater             *bool    `json:"OnlyWater,omitempty"`
	OnlyLand              *bool    `json:"OnlyLand,omitempty"`
	WaterMaskTex          *int     `json:"WaterMaskTex,omitempty"`
	WaterMaskTranslationX *float64 `json:"WaterMaskTranslationX,omitempty"`
	WaterMaskTranslationY *float64 `json:"WaterMaskTranslationY,omitempty"`
	WaterMaskScale        *float64 `json:"WaterMaskScale,omitempty"`
}

// ParseExtras decodes primitive extras in whatever shape the glTF decoder
// produced (raw JSON, bytes or a generic map). Missing extras yield an empty
// value; extras that are not an object are ignored.
func ParseExtras(raw any) (Extras, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return Extras{}, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return Extras{}, fmt.Errorf("re-encoding extras: %w", err)
		}
		data = b
	default:
		return Extras{}, nil
	}

	if len(data) == 0 || data[0] != '{' {
		return Extras{}, nil
	}

	var e Extras
	if err := json.Unmarshal(data, &e); err != nil {
		return Extras{}, fmt.Errorf("decoding water mask extras: %w", err)
	}
	return e, nil
}

// HasWaterMask reports whether any water mask field is present.
func (e Extras) HasWaterMask() bool {
	return e.OnlyWater != nil || e.OnlyLand != nil || e.WaterMaskTex != nil
}

// FromExtras builds a mask from primitive extras.
//
// OnlyWater wins over OnlyLand. When neither flag is set and a texture
// index is present, the tile is mixed and resolve supplies the texture.
// Without any water mask field the tile is land.
func FromExtras(e Extras, resolve func(textureIndex int) (*texture.LoadedTexture, error)) (LoadedWaterMask, error) {
	if e.OnlyWater != nil && *e.OnlyWater {
		return Water(), nil
	}
	if e.OnlyLand != nil && *e.OnlyLand {
		return Land(), nil
	}
	if e.WaterMaskTex == nil || *e.WaterMaskTex < 0 {
		return Land(), nil
	}

	tex, err := resolve(*e.WaterMaskTex)
	if err != nil {
		return LoadedWaterMask{}, fmt.Errorf("water mask texture %d: %w", *e.WaterMaskTex, err)
	}

	var translation vec2d.T
	if e.WaterMaskTranslationX != nil {
		translation[0] = *e.WaterMaskTranslationX
	}
	if e.WaterMaskTranslationY != nil {
		translation[1] = *e.WaterMaskTranslationY
	}
	scale := 1.0
	if e.WaterMaskScale != nil {
		scale = *e.WaterMaskScale
	}
	m, err := Mixed(tex, translation, scale)
	if err != nil {
		tex.Release()
		return LoadedWaterMask{}, err
	}
	return m, nil
}
