package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var quadPositions = [][3]float32{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
}

var quadUVs = [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// quadDocument builds a one-node document holding a textured quad.
func quadDocument(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, quadPositions)
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})
	uv := modeler.WriteTextureCoord(doc, quadUVs)
	img, err := modeler.WriteImage(doc, "checker.png", "image/png", bytes.NewReader(pngBytes(t, 4, 2)))
	if err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	metallic := 0.0
	doc.Samplers = []*gltf.Sampler{{WrapS: gltf.WrapClampToEdge, WrapT: gltf.WrapMirroredRepeat, MinFilter: gltf.MinLinearMipMapLinear}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(img), Sampler: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name:        "ground",
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
			BaseColorFactor:  &[4]float64{0.5, 0.5, 0.5, 1},
			MetallicFactor:   &metallic,
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:  gltf.Index(idx),
			Material: gltf.Index(0),
			Attributes: map[string]int{
				gltf.POSITION:   pos,
				gltf.TEXCOORD_0: uv,
			},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "tile", Mesh: gltf.Index(0)}}
	doc.Scene = gltf.Index(0)
	doc.Scenes = []*gltf.Scene{{Name: "tile", Nodes: []int{0}}}
	return doc
}

func newTestLoader(t *testing.T, mutate func(*Options)) *Loader {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}
