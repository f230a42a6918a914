package loader

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/internal/model"
	"github.com/Faultbox/tilestage/internal/physics"
	"github.com/Faultbox/tilestage/internal/texture"
	"github.com/Faultbox/tilestage/internal/water"
	"github.com/Faultbox/tilestage/pkg/math"
)

const attrOverlay = "_CESIUMOVERLAY_0"

func texCoordAttribute(set int) string {
	if set == model.OverlaySet {
		return attrOverlay
	}
	return fmt.Sprintf("TEXCOORD_%d", set)
}

// loadPrimitive stages one primitive. A nil model with a reason means the
// primitive was skipped.
func (l *Loader) loadPrimitive(st *loadState, pos primitivePos, name string, prim *gltf.Primitive, transform math.DMat4) (*model.LoadedModel, string, error) {
	var topology model.Topology
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		topology = model.Triangles
	case gltf.PrimitiveTriangleStrip:
		topology = model.TriangleStrip
	case gltf.PrimitiveTriangleFan:
		topology = model.TriangleFan
	default:
		return nil, fmt.Sprintf("unsupported primitive mode %d", prim.Mode), nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, "missing POSITION attribute", nil
	}

	m := &model.LoadedModel{
		NodeIndex:      pos.node,
		MeshIndex:      pos.mesh,
		PrimitiveIndex: pos.primitive,
		Name:           name,
		Transform:      transform,
		WaterMask:      water.Land(),
	}
	ok = false
	defer func() {
		if !ok {
			m.Release()
		}
	}()

	in := model.PrimitiveData{Topology: topology}
	var err error
	if in.Positions, err = readPositions(st.doc, posIdx); err != nil {
		return nil, "", err
	}
	if idx, has := prim.Attributes[gltf.NORMAL]; has {
		if in.Normals, err = readNormals(st.doc, idx); err != nil {
			return nil, "", err
		}
	}
	if idx, has := prim.Attributes[gltf.COLOR_0]; has {
		if in.Colors, err = readColors(st.doc, idx); err != nil {
			return nil, "", err
		}
	}
	if prim.Indices != nil {
		if in.Indices, err = readIndices(st.doc, *prim.Indices); err != nil {
			return nil, "", err
		}
	}

	uv := model.NewUVMapper()
	var mat model.Material
	if mat, err = l.loadMaterial(st, prim, m, uv); err != nil {
		return nil, "", err
	}
	if err := l.loadWaterMask(st, prim, m, uv); err != nil {
		return nil, "", err
	}

	for ch, set := range uv.Sets() {
		in.UVs = append(in.UVs, nil)
		idx, has := prim.Attributes[texCoordAttribute(set)]
		if !has {
			logger.Debug("texture coordinates missing",
				zap.Stringer("primitive", pos),
				zap.String("attribute", texCoordAttribute(set)))
			continue
		}
		if in.UVs[ch], err = readTexCoords(st.doc, idx); err != nil {
			return nil, "", err
		}
	}
	m.TextureCoordinateParameters = uv.Parameters()

	rd, err := model.Build(in, model.BuildOptions{
		FlipWinding:   transform.Determinant3() < 0,
		SmoothNormals: l.opts.SmoothNormals,
	})
	if err != nil {
		return nil, "", err
	}
	rd.Material = mat
	m.RenderData = rd

	if l.cooker != nil {
		mesh, err := l.cooker.Cook(rd.Positions(), rd.Indices)
		switch {
		case errors.Is(err, physics.ErrNoTriangles):
			logger.Debug("no collision triangles", zap.Stringer("primitive", pos))
		case err != nil:
			return nil, "", fmt.Errorf("cooking collision mesh: %w", err)
		default:
			m.CollisionMesh = mesh
		}
	}

	ok = true
	return m, "", nil
}

// loadMaterial fills the material factors and textures of m and registers
// every texture's UV set with uv.
func (l *Loader) loadMaterial(st *loadState, prim *gltf.Primitive, m *model.LoadedModel, uv *model.UVMapper) (model.Material, error) {
	mat := model.DefaultMaterial()
	if prim.Material == nil {
		return mat, nil
	}
	idx := *prim.Material
	if idx < 0 || idx >= len(st.doc.Materials) {
		return mat, fmt.Errorf("material %d out of range", idx)
	}
	src := st.doc.Materials[idx]

	mat.DoubleSided = src.DoubleSided
	mat.EmissiveFactor = src.EmissiveFactor
	switch src.AlphaMode {
	case gltf.AlphaMask:
		mat.AlphaMode = model.AlphaMask
	case gltf.AlphaBlend:
		mat.AlphaMode = model.AlphaBlend
	}
	if src.AlphaCutoff != nil {
		mat.AlphaCutoff = *src.AlphaCutoff
	}

	assign := func(dst **texture.LoadedTexture, param string, texIdx, set int) error {
		tex, err := st.loadTexture(texIdx)
		if err != nil {
			if l.opts.StrictTextures {
				return fmt.Errorf("%s: %w", param, err)
			}
			logger.Warn("texture dropped", zap.String("param", param), zap.Error(err))
			return nil
		}
		if _, ok := uv.Assign(param, set); !ok {
			tex.Release()
			logger.Warn("no free UV channel", zap.String("param", param), zap.Int("set", set))
			return nil
		}
		*dst = tex
		return nil
	}

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mat.BaseColorFactor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			mat.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mat.RoughnessFactor = *pbr.RoughnessFactor
		}
		if ti := pbr.BaseColorTexture; ti != nil {
			if err := assign(&m.BaseColorTexture, model.ParamBaseColor, ti.Index, ti.TexCoord); err != nil {
				return mat, err
			}
		}
		if ti := pbr.MetallicRoughnessTexture; ti != nil {
			if err := assign(&m.MetallicRoughnessTexture, model.ParamMetallicRoughness, ti.Index, ti.TexCoord); err != nil {
				return mat, err
			}
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		if err := assign(&m.NormalTexture, model.ParamNormal, *nt.Index, nt.TexCoord); err != nil {
			return mat, err
		}
	}
	if ot := src.OcclusionTexture; ot != nil && ot.Index != nil {
		if err := assign(&m.OcclusionTexture, model.ParamOcclusion, *ot.Index, ot.TexCoord); err != nil {
			return mat, err
		}
	}
	if ti := src.EmissiveTexture; ti != nil {
		if err := assign(&m.EmissiveTexture, model.ParamEmissive, ti.Index, ti.TexCoord); err != nil {
			return mat, err
		}
	}
	return mat, nil
}

// loadWaterMask reads the water mask from the primitive extras. Mixed masks
// sample overlay coordinates when present, else TEXCOORD_0.
func (l *Loader) loadWaterMask(st *loadState, prim *gltf.Primitive, m *model.LoadedModel, uv *model.UVMapper) error {
	extras, err := water.ParseExtras(prim.Extras)
	if err != nil {
		return err
	}
	if !extras.HasWaterMask() {
		return nil
	}

	mask, err := water.FromExtras(extras, st.loadTexture)
	if err != nil {
		if l.opts.StrictTextures {
			return err
		}
		logger.Warn("water mask dropped", zap.Error(err))
		return nil
	}

	if mask.Type() == water.MixOfLandAndWater {
		set := 0
		if _, has := prim.Attributes[attrOverlay]; has {
			set = model.OverlaySet
		}
		if _, ok := uv.Assign(model.ParamWaterMask, set); !ok {
			mask.Release()
			logger.Warn("no free UV channel for water mask")
			return nil
		}
	}
	m.WaterMask = mask
	return nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: %d", ErrAccessorIndex, idx)
	}
	return doc.Accessors[idx], nil
}

func readPositions(doc *gltf.Document, idx int) ([][3]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading POSITION: %w", err)
	}
	return out, nil
}

func readNormals(doc *gltf.Document, idx int) ([][3]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadNormal(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading NORMAL: %w", err)
	}
	return out, nil
}

func readTexCoords(doc *gltf.Document, idx int) ([][2]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadTextureCoord(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading texture coordinates: %w", err)
	}
	return out, nil
}

func readColors(doc *gltf.Document, idx int) ([][4]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	rgba, err := modeler.ReadColor(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading COLOR_0: %w", err)
	}
	out := make([][4]float32, len(rgba))
	for i, c := range rgba {
		out[i] = [4]float32{
			float32(c[0]) / 255,
			float32(c[1]) / 255,
			float32(c[2]) / 255,
			float32(c[3]) / 255,
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, idx int) ([]uint32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadIndices(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading indices: %w", err)
	}
	return out, nil
}
