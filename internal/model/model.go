package model

import (
	"github.com/Faultbox/tilestage/internal/physics"
	"github.com/Faultbox/tilestage/internal/texture"
	"github.com/Faultbox/tilestage/internal/water"
	"github.com/Faultbox/tilestage/pkg/math"
)

// Texture coordinate parameter names, one per texture a model can sample.
const (
	ParamBaseColor         = "baseColorTextureCoordinateIndex"
	ParamMetallicRoughness = "metallicRoughnessTextureCoordinateIndex"
	ParamNormal            = "normalTextureCoordinateIndex"
	ParamEmissive          = "emissiveTextureCoordinateIndex"
	ParamOcclusion         = "occlusionTextureCoordinateIndex"
	ParamWaterMask         = "waterMaskTextureCoordinateIndex"
)

// OverlaySet is the UV set key for raster overlay coordinates
// (_CESIUMOVERLAY_0), used by water masks on upsampled terrain.
const OverlaySet = -1

// LoadedModel is one glTF primitive staged for rendering and physics.
type LoadedModel struct {
	NodeIndex      int
	MeshIndex      int
	PrimitiveIndex int
	Name           string

	// Transform maps primitive space to tile space in double precision.
	Transform math.DMat4

	RenderData    *RenderData
	CollisionMesh physics.CollisionMesh

	// TextureCoordinateParameters maps a texture parameter name to the UV
	// channel holding its coordinates.
	TextureCoordinateParameters map[string]uint32

	BaseColorTexture         *texture.LoadedTexture
	MetallicRoughnessTexture *texture.LoadedTexture
	NormalTexture            *texture.LoadedTexture
	EmissiveTexture          *texture.LoadedTexture
	OcclusionTexture         *texture.LoadedTexture

	WaterMask water.LoadedWaterMask
}

// NamedTexture pairs a texture with the parameter it is sampled through.
type NamedTexture struct {
	Param   string
	Texture *texture.LoadedTexture
}

// Textures lists the present material textures in a fixed order.
func (m *LoadedModel) Textures() []NamedTexture {
	all := []NamedTexture{
		{ParamBaseColor, m.BaseColorTexture},
		{ParamMetallicRoughness, m.MetallicRoughnessTexture},
		{ParamNormal, m.NormalTexture},
		{ParamEmissive, m.EmissiveTexture},
		{ParamOcclusion, m.OcclusionTexture},
	}
	out := all[:0]
	for _, nt := range all {
		if nt.Texture != nil {
			out = append(out, nt)
		}
	}
	return out
}

// Release frees everything the model owns. It is safe to call twice.
func (m *LoadedModel) Release() {
	if m == nil {
		return
	}
	m.RenderData.Release()
	m.RenderData = nil
	if m.CollisionMesh != nil {
		m.CollisionMesh.Release()
		m.CollisionMesh = nil
	}
	for _, tex := range []**texture.LoadedTexture{
		&m.BaseColorTexture,
		&m.MetallicRoughnessTexture,
		&m.NormalTexture,
		&m.EmissiveTexture,
		&m.OcclusionTexture,
	} {
		(*tex).Release()
		*tex = nil
	}
	m.WaterMask.Release()
	m.WaterMask = water.Land()
}

// UVMapper assigns render UV channels to glTF TEXCOORD sets in first-seen
// order, so a primitive only carries the sets its textures use.
type UVMapper struct {
	channels map[int]uint32
	sets     []int
	params   map[string]uint32
}

// NewUVMapper returns an empty mapper.
func NewUVMapper() *UVMapper {
	return &UVMapper{
		channels: make(map[int]uint32),
		params:   make(map[string]uint32),
	}
}

// Assign records that param samples TEXCOORD_<set> and returns its channel.
// ok is false when every channel is already taken by another set.
func (u *UVMapper) Assign(param string, set int) (channel uint32, ok bool) {
	ch, seen := u.channels[set]
	if !seen {
		if len(u.sets) >= MaxUVChannels {
			return 0, false
		}
		ch = uint32(len(u.sets))
		u.channels[set] = ch
		u.sets = append(u.sets, set)
	}
	u.params[param] = ch
	return ch, true
}

// Sets returns the TEXCOORD set feeding each channel, indexed by channel.
func (u *UVMapper) Sets() []int {
	return u.sets
}

// Channels returns the number of UV channels required.
func (u *UVMapper) Channels() int {
	return len(u.sets)
}

// Parameters returns the parameter to channel map.
func (u *UVMapper) Parameters() map[string]uint32 {
	return u.params
}
