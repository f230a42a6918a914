package loader

import (
	"encoding/base64"
	"fmt"
	"image"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/tilestage/internal/texture"
)

// loadState is the per-load cache of decoded images.
type loadState struct {
	doc    *gltf.Document
	fsys   fs.FS
	opts   Options
	images map[int]image.Image
}

func newLoadState(doc *gltf.Document, fsys fs.FS, opts Options) *loadState {
	return &loadState{
		doc:    doc,
		fsys:   fsys,
		opts:   opts,
		images: make(map[int]image.Image),
	}
}

// loadTexture stages glTF texture idx. Every call returns a new
// LoadedTexture with its own PlatformData; only the decoded image is shared.
func (s *loadState) loadTexture(idx int) (*texture.LoadedTexture, error) {
	if idx < 0 || idx >= len(s.doc.Textures) {
		return nil, fmt.Errorf("%w: %d", ErrTextureIndex, idx)
	}
	tex := s.doc.Textures[idx]
	if tex.Source == nil {
		return nil, fmt.Errorf("texture %d: %w", idx, ErrImageSource)
	}

	img, err := s.image(*tex.Source)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", idx, err)
	}

	var sampler *gltf.Sampler
	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(s.doc.Samplers) {
		sampler = s.doc.Samplers[*tex.Sampler]
	}
	ax, ay, filter := texture.SamplerModes(sampler)

	return &texture.LoadedTexture{
		PlatformData: texture.NewPlatformData(img, s.opts.Mips),
		AddressX:     ax,
		AddressY:     ay,
		Filter:       filter,
	}, nil
}

func (s *loadState) image(idx int) (image.Image, error) {
	if img, ok := s.images[idx]; ok {
		return img, nil
	}
	if idx < 0 || idx >= len(s.doc.Images) {
		return nil, fmt.Errorf("%w: image %d out of range", ErrImageSource, idx)
	}

	data, mime, err := s.imageBytes(s.doc.Images[idx])
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", idx, err)
	}
	img, err := texture.Decode(data, mime)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", idx, err)
	}
	s.images[idx] = img
	return img, nil
}

// imageBytes returns the encoded image and its mime type from a buffer view,
// a data URI or a file next to the asset.
func (s *loadState) imageBytes(img *gltf.Image) ([]byte, string, error) {
	if img.BufferView != nil {
		data, err := bufferViewBytes(s.doc, *img.BufferView)
		return data, img.MimeType, err
	}

	uri := img.URI
	if uri == "" {
		return nil, "", ErrImageSource
	}
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	if s.fsys == nil {
		return nil, "", fmt.Errorf("%w: external image %q without a file system", ErrImageSource, uri)
	}
	name, err := url.PathUnescape(uri)
	if err != nil {
		name = uri
	}
	name = path.Clean(strings.TrimPrefix(name, "./"))
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrImageSource, err)
	}
	mime := img.MimeType
	if mime == "" {
		mime = texture.MimeFromPath(name)
	}
	return data, mime, nil
}

func bufferViewBytes(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view %d out of range", ErrImageSource, idx)
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: buffer %d out of range", ErrImageSource, bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("%w: buffer view %d exceeds buffer", ErrImageSource, idx)
	}
	return data[bv.ByteOffset:end], nil
}

// decodeDataURI decodes "data:<mime>;base64,<payload>".
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data URI", ErrImageSource)
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: data URI is not base64", ErrImageSource)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrImageSource, err)
	}
	return data, mime, nil
}
