package texture

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrPixelDataSize is returned when raw pixel data does not match its dimensions.
var ErrPixelDataSize = errors.New("pixel data size does not match dimensions")

// MipOptions controls how decoded images become PlatformData.
type MipOptions struct {
	// GenerateMips builds a full chain down to 1x1.
	GenerateMips bool
	// MaxSize caps the larger edge of level 0 (0 = unlimited).
	MaxSize int
}

// DefaultMipOptions returns the loader defaults.
func DefaultMipOptions() MipOptions {
	return MipOptions{GenerateMips: true, MaxSize: 4096}
}

// NewPlatformData converts an image to RGBA8 and builds its mip chain.
func NewPlatformData(img image.Image, opts MipOptions) *PlatformData {
	base := toRGBA(img)

	if opts.MaxSize > 0 {
		w, h := base.Rect.Dx(), base.Rect.Dy()
		if w > opts.MaxSize || h > opts.MaxSize {
			nw, nh := fitWithin(w, h, opts.MaxSize)
			scaled := image.NewRGBA(image.Rect(0, 0, nw, nh))
			draw.BiLinear.Scale(scaled, scaled.Rect, base, base.Rect, draw.Src, nil)
			base = scaled
		}
	}

	pd := &PlatformData{
		Width:  base.Rect.Dx(),
		Height: base.Rect.Dy(),
		Format: FormatRGBA8,
	}
	pd.Mips = append(pd.Mips, MipLevel{Width: pd.Width, Height: pd.Height, Data: base.Pix})

	if !opts.GenerateMips {
		return pd
	}

	prev := base
	for w, h := pd.Width, pd.Height; w > 1 || h > 1; {
		w, h = max(1, w/2), max(1, h/2)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Rect, prev, prev.Rect, draw.Src, nil)
		pd.Mips = append(pd.Mips, MipLevel{Width: w, Height: h, Data: next.Pix})
		prev = next
	}
	return pd
}

// NewPlatformDataR8 wraps single-channel pixels without mips.
func NewPlatformDataR8(width, height int, pix []byte) (*PlatformData, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrPixelDataSize, width, height, len(pix))
	}
	data := make([]byte, len(pix))
	copy(data, pix)
	return &PlatformData{
		Width:  width,
		Height: height,
		Format: FormatR8,
		Mips:   []MipLevel{{Width: width, Height: height, Data: data}},
	}, nil
}

// MipCount returns the number of levels a full chain has for w x h.
func MipCount(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w, h = max(1, w/2), max(1, h/2)
		n++
	}
	return n
}

// toRGBA returns a tightly packed copy of img anchored at the origin.
// The result never aliases img, so every PlatformData owns its pixels.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

func fitWithin(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
