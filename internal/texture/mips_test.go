package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestNewPlatformData_MipChain(t *testing.T) {
	img := solidImage(8, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	pd := NewPlatformData(img, MipOptions{GenerateMips: true})

	if pd.Format != FormatRGBA8 {
		t.Errorf("expected RGBA8, got %v", pd.Format)
	}
	if len(pd.Mips) != MipCount(8, 2) {
		t.Fatalf("expected %d mips, got %d", MipCount(8, 2), len(pd.Mips))
	}

	wantDims := [][2]int{{8, 2}, {4, 1}, {2, 1}, {1, 1}}
	for i, mip := range pd.Mips {
		if mip.Width != wantDims[i][0] || mip.Height != wantDims[i][1] {
			t.Errorf("mip %d: got %dx%d, want %dx%d", i, mip.Width, mip.Height, wantDims[i][0], wantDims[i][1])
		}
		if len(mip.Data) != mip.Width*mip.Height*4 {
			t.Errorf("mip %d: data length %d", i, len(mip.Data))
		}
	}

	// A solid color stays solid through bilinear downsampling.
	last := pd.Mips[len(pd.Mips)-1].Data
	if last[0] != 200 || last[1] != 100 || last[2] != 50 || last[3] != 255 {
		t.Errorf("1x1 mip color = %v", last)
	}
}

func TestNewPlatformData_NoMips(t *testing.T) {
	pd := NewPlatformData(solidImage(4, 4, color.RGBA{A: 255}), MipOptions{})
	if len(pd.Mips) != 1 {
		t.Errorf("expected a single level, got %d", len(pd.Mips))
	}
	if pd.SizeBytes() != 4*4*4 {
		t.Errorf("SizeBytes = %d", pd.SizeBytes())
	}
}

func TestNewPlatformData_MaxSize(t *testing.T) {
	pd := NewPlatformData(solidImage(64, 16, color.RGBA{A: 255}), MipOptions{MaxSize: 32})
	if pd.Width != 32 || pd.Height != 8 {
		t.Errorf("expected 32x8 after clamping, got %dx%d", pd.Width, pd.Height)
	}
}

func TestNewPlatformData_MaxSizeStaysInRange(t *testing.T) {
	// A hard edge must not ring past the source values when clamped.
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(64)
			if x >= 10 {
				v = 192
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	pd := NewPlatformData(img, MipOptions{MaxSize: 7})
	if pd.Width != 7 || pd.Height != 7 {
		t.Fatalf("size = %dx%d, want 7x7", pd.Width, pd.Height)
	}
	data := pd.Mips[0].Data
	for i := 0; i < len(data); i += 4 {
		if r := data[i]; r < 64 || r > 192 {
			t.Fatalf("pixel %d = %d, outside the source range [64, 192]", i/4, r)
		}
	}
}

func TestNewPlatformData_OwnsPixels(t *testing.T) {
	src := solidImage(2, 2, color.RGBA{R: 1, A: 255})
	a := NewPlatformData(src, MipOptions{})
	b := NewPlatformData(src, MipOptions{})

	a.Mips[0].Data[0] = 99
	if b.Mips[0].Data[0] == 99 || src.Pix[0] == 99 {
		t.Error("platform data must not share pixel storage")
	}
}

func TestNewPlatformData_SubImageOrigin(t *testing.T) {
	src := solidImage(4, 4, color.RGBA{G: 7, A: 255}).SubImage(image.Rect(2, 2, 4, 4))
	pd := NewPlatformData(src, MipOptions{})
	if pd.Width != 2 || pd.Height != 2 || pd.Mips[0].Data[1] != 7 {
		t.Errorf("sub image not copied correctly: %dx%d %v", pd.Width, pd.Height, pd.Mips[0].Data[:4])
	}
}

func TestNewPlatformDataR8(t *testing.T) {
	pd, err := NewPlatformDataR8(2, 1, []byte{0, 255})
	if err != nil {
		t.Fatalf("NewPlatformDataR8: %v", err)
	}
	if pd.Format != FormatR8 || len(pd.Mips) != 1 || pd.SizeBytes() != 2 {
		t.Errorf("unexpected platform data %+v", pd)
	}

	if _, err := NewPlatformDataR8(2, 2, []byte{0}); !errors.Is(err, ErrPixelDataSize) {
		t.Errorf("expected ErrPixelDataSize, got %v", err)
	}
}

func TestMipCount(t *testing.T) {
	tests := []struct{ w, h, want int }{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{8, 2, 4},
	}
	for _, tt := range tests {
		if got := MipCount(tt.w, tt.h); got != tt.want {
			t.Errorf("MipCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}
